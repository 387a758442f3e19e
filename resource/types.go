package resource

// Handle is an opaque reference to a value in a table.
//
// The low 16 bits hold the slot index plus one and the high 16 bits hold the
// slot's generation, so a handle to a removed value never resolves to a
// newer value that reuses its slot. Handle 0 is reserved and always invalid.
type Handle uint32

const (
	indexBits = 16
	maxSlots  = 1<<indexBits - 1
)

func makeHandle(slot int, gen uint16) Handle {
	return Handle(uint32(gen)<<indexBits | uint32(slot+1))
}

// Slot returns the zero-based slot index, or -1 for the zero handle.
func (h Handle) Slot() int { return int(h&maxSlots) - 1 }

// Generation returns the slot generation encoded in h.
func (h Handle) Generation() uint16 { return uint16(h >> indexBits) }

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventDropped:
		return "dropped"
	}
	return "unknown"
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle Handle
	TypeID uint32
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnResourceEvent(e Event) { f(e) }

// Backend provides the underlying storage mechanism for resources.
type Backend interface {
	// Create stores a value and returns a handle.
	Create(typeID uint32, value any) (Handle, error)

	// Get retrieves a value by handle.
	Get(handle Handle) (any, bool)

	// Drop removes a resource and returns (value, true) if it was live.
	Drop(handle Handle) (any, bool)

	// Close releases all resources held by the backend.
	Close() error
}

// Table manages resources with type information and observer support.
type Table interface {
	Insert(typeID uint32, value any) Handle
	Get(handle Handle) (any, bool)
	GetTyped(handle Handle, typeID uint32) (any, bool)
	Remove(handle Handle) (any, bool)
	Subscribe(Observer)
	Len() int
	Clear()
	Close() error
}

// Dropper is optionally implemented by resource values that need cleanup
// when they leave a table.
type Dropper interface {
	Drop()
}
