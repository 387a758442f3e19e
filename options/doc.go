// Package options implements the core options model.
//
// A core declares its configurable settings once through one of several
// environment commands: flat variables ("Description; a|b|c"), v1 definitions
// with info text, or v2 definitions with categories. Each version may come
// with a localized set that overrides labels for the same keys. Whatever the
// version, the result is a Set of Definitions that replaces the previous one.
//
// # Values
//
// Stored values are kept by key and outlive redefinition. Get validates the
// stored value against the current definition and falls back to the default
// when it is missing or no longer valid, so a key that disappears and later
// returns with the same value set recovers its old value.
//
//	m := options.New()
//	m.Define(options.Set{Version: options.VersionV1, Definitions: defs})
//	m.Set("snes9x_region", "PAL")
//	v, _ := m.Get("snes9x_region")
//
// # Change Tracking
//
// Set marks the model dirty when it changes a value. Updated reports and
// clears that flag, matching GET_VARIABLE_UPDATE. An optional display
// callback runs once per changing Set so a settings UI can be refreshed.
// Define never marks the model dirty and never runs the callback.
//
// # Visibility
//
// Visibility is tracked independently of values. Hidden options keep their
// value; options default to visible.
package options
