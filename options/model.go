package options

import (
	"sync"
)

// Model holds the current option definitions and the value store.
// It is safe for concurrent use. The display callback runs without the
// model lock held so it may call back into the model.
type Model struct {
	values     map[string]string
	visible    map[string]bool
	index      map[string]int
	onDisplay  func()
	defs       []Definition
	categories []Category
	mu         sync.Mutex
	version    Version
	defined    bool
	dirty      bool
}

// New returns an empty model.
func New() *Model {
	return &Model{
		values:  make(map[string]string),
		visible: make(map[string]bool),
		index:   make(map[string]int),
	}
}

// Define replaces the current definitions with set. Stored values are kept
// and revalidated on read. A set that fails validation leaves the model
// unchanged.
func (m *Model) Define(set Set) error {
	if err := set.Validate(); err != nil {
		return err
	}
	set = Localize(set, Set{})
	set.normalize()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.version = set.Version
	m.defs = set.Definitions
	m.categories = set.Categories
	m.index = make(map[string]int, len(set.Definitions))
	for i := range set.Definitions {
		m.index[set.Definitions[i].Key] = i
	}
	m.defined = true
	return nil
}

// DefineLocalized is Define with local labels merged over us.
func (m *Model) DefineLocalized(us, local Set) error {
	if err := us.Validate(); err != nil {
		return err
	}
	return m.Define(Localize(us, local))
}

// Defined reports whether any set has been defined.
func (m *Model) Defined() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defined
}

func (m *Model) Version() Version {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

// Definitions returns a copy of the current definitions in declaration order.
func (m *Model) Definitions() []Definition {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Definition, len(m.defs))
	for i := range m.defs {
		out[i] = m.defs[i].clone()
	}
	return out
}

// Categories returns a copy of the current categories.
func (m *Model) Categories() []Category {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Category(nil), m.categories...)
}

// Definition returns the current definition for key.
func (m *Model) Definition(key string) (Definition, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[key]
	if !ok {
		return Definition{}, false
	}
	return m.defs[i].clone(), true
}

// Get returns the effective value of key: the stored value when it is one of
// the declared values, otherwise the default. Undefined keys report false.
func (m *Model) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(key)
}

func (m *Model) get(key string) (string, bool) {
	i, ok := m.index[key]
	if !ok {
		return "", false
	}
	d := &m.defs[i]
	if v, ok := m.values[key]; ok && d.Has(v) {
		return v, true
	}
	return d.Default, true
}

// Set stores value for key. It returns false, leaving the store unchanged,
// when key is undefined or value is not declared for it.
func (m *Model) Set(key, value string) bool {
	m.mu.Lock()
	i, ok := m.index[key]
	if !ok || !m.defs[i].Has(value) {
		m.mu.Unlock()
		return false
	}
	cur, _ := m.get(key)
	m.values[key] = value
	changed := cur != value
	if changed {
		m.dirty = true
	}
	cb := m.onDisplay
	m.mu.Unlock()

	if changed && cb != nil {
		cb()
	}
	return true
}

// Seed stores values without validation, as if they had been loaded from a
// previous run. They take effect once a definition accepts them.
func (m *Model) Seed(values map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
}

// Values returns the effective value of every defined key.
func (m *Model) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.defs))
	for _, d := range m.defs {
		out[d.Key], _ = m.get(d.Key)
	}
	return out
}

// Updated reports whether a value changed since the last call and clears
// the flag.
func (m *Model) Updated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := m.dirty
	m.dirty = false
	return u
}

// SetVisible records whether key should be shown. Keys need not be defined.
func (m *Model) SetVisible(key string, visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.visible[key] = visible
}

// Visible reports whether key should be shown. Unknown keys are visible.
func (m *Model) Visible(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.visible[key]
	return !ok || v
}

// SetUpdateDisplayCallback installs fn, or clears it when fn is nil.
func (m *Model) SetUpdateDisplayCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onDisplay = fn
}

// HasUpdateDisplayCallback reports whether a display callback is installed.
func (m *Model) HasUpdateDisplayCallback() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onDisplay != nil
}
