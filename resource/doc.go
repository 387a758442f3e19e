// Package resource provides generation-checked handle tables.
//
// Handles are small integers that the host hands to a core in place of
// pointers to Go values, for example microphone handles returned by
// open_mic. A handle encodes its slot and the slot's generation, so once a
// value is removed its handle stays invalid even after the slot is reused.
//
// # Handle Table
//
//	table := resource.NewTable()
//
//	h := table.Insert(typeID, value)
//	value, ok := table.Get(h)
//	value, ok = table.Remove(h)
//	_, ok = table.Get(h) // false, even if the slot is reused
//
// # Typed Views
//
// Typed restricts a table to one type ID and one Go type:
//
//	mics := resource.NewTyped[*mic](table, kindMicrophone)
//	h := mics.Insert(m)
//	m, ok := mics.Get(h)
//
// # Observers
//
// Observers see every insert and removal:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("%s %d", e.Type, e.Handle)
//	}))
//
// Values implementing Dropper have Drop called when they leave the table,
// either through Remove, Clear or Close.
package resource
