package accessor

import (
	"fmt"
	"reflect"
	"sync"
)

// The function registry holds free functions registered under a (type, name).
// Unlike methods discovered by reflection, registered names may carry several
// overloads, trailing default values, and generic definitions. This is how
// mods expose callbacks, button actions, and generic operations that the host
// runtime resolves by name.

type funcEntry struct {
	name     string
	ordinal  int
	fn       reflect.Value // invalid for generic definitions
	sig      ParamSignature
	defaults []any
	generic  *genericDef
}

var (
	funcMu    sync.RWMutex
	functions = make(map[reflect.Type]map[string][]*funcEntry)
)

// FuncOption customizes a function registration.
type FuncOption func(*funcEntry) error

// WithDefaults declares default values for the trailing parameters, in
// declaration order. A call that omits those arguments has them filled from
// the declared defaults, mirroring optional parameters.
func WithDefaults(values ...any) FuncOption {
	return func(e *funcEntry) error {
		e.defaults = values
		return nil
	}
}

// RegisterFunc registers fn as a callable named member of t. Multiple
// registrations under one name form an overload set disambiguated by
// ParamSignature; re-registering an identical signature replaces the earlier
// entry. Defaults must be assignable to the trailing parameters.
func RegisterFunc(t reflect.Type, name string, fn any, opts ...FuncOption) error {
	t = derefType(t)
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		return argumentErr(t, name, "fn must be a func")
	}
	entry := &funcEntry{
		name: name,
		fn:   v,
		sig:  signatureOfFunc(v.Type(), false),
	}
	for _, opt := range opts {
		if err := opt(entry); err != nil {
			return err
		}
	}
	if err := validateDefaults(t, name, v.Type(), entry.defaults, v.Type().IsVariadic()); err != nil {
		return err
	}
	storeEntry(t, name, entry)
	return nil
}

func validateDefaults(t reflect.Type, name string, ft reflect.Type, defaults []any, variadic bool) error {
	n := ft.NumIn()
	if variadic {
		n-- // the variadic tail has no declared defaults
	}
	if len(defaults) > n {
		return argumentErr(t, name, "more defaults than parameters")
	}
	for i, d := range defaults {
		want := ft.In(n - len(defaults) + i)
		if _, err := convertBoxed(d, want); err != nil {
			return argumentErr(t, name, fmt.Sprintf("default %d: %s", i, err))
		}
	}
	return nil
}

func storeEntry(t reflect.Type, name string, entry *funcEntry) {
	funcMu.Lock()
	defer funcMu.Unlock()

	byName := functions[t]
	if byName == nil {
		byName = make(map[string][]*funcEntry)
		functions[t] = byName
	}
	entries := byName[name]
	for i, existing := range entries {
		if existing.sig.Equal(entry.sig) && (existing.generic == nil) == (entry.generic == nil) {
			entry.ordinal = existing.ordinal
			entries[i] = entry
			return
		}
	}
	entry.ordinal = len(entries)
	byName[name] = append(entries, entry)
}

// registeredEntries snapshots the overload set for (t, name).
func registeredEntries(t reflect.Type, name string) []*funcEntry {
	funcMu.RLock()
	defer funcMu.RUnlock()
	if byName, ok := functions[t]; ok {
		return byName[name]
	}
	return nil
}

func registeredEntry(t reflect.Type, name string, ordinal int) *funcEntry {
	for _, e := range registeredEntries(t, name) {
		if e.ordinal == ordinal {
			return e
		}
	}
	return nil
}

func clearFunctions() {
	funcMu.Lock()
	defer funcMu.Unlock()
	functions = make(map[reflect.Type]map[string][]*funcEntry)
}
