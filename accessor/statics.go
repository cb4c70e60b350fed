package accessor

import (
	"reflect"
	"sync"
	"unsafe"
)

// statics holds the per-type singleton instances backing static members.
// A type with a bound singleton exposes its fields through nil-target
// accessors, the way the host runtime exposes statics.
var statics sync.Map // map[reflect.Type]reflect.Value (addressable struct)

// BindStatic registers instance as the singleton backing static member
// access for its type. instance must be a non-nil pointer to struct; the
// binding is idempotent for the same pointer and first-writer-wins under
// races, matching the cache discipline.
func BindStatic(instance any) error {
	v := reflect.ValueOf(instance)
	if !v.IsValid() || v.Kind() != reflect.Ptr || v.IsNil() {
		return argumentErr(reflect.TypeOf(instance), "BindStatic", "instance must be a non-nil pointer to struct")
	}
	elem := v.Elem()
	if elem.Kind() != reflect.Struct {
		return argumentErr(v.Type(), "BindStatic", "instance must point to a struct")
	}
	statics.LoadOrStore(elem.Type(), v)
	return nil
}

// staticInstance returns the bound singleton pointer for t, if any.
func staticInstance(t reflect.Type) (reflect.Value, bool) {
	if v, ok := statics.Load(t); ok {
		return v.(reflect.Value), true
	}
	return reflect.Value{}, false
}

func staticPointer(t reflect.Type) (unsafe.Pointer, bool) {
	v, ok := staticInstance(t)
	if !ok {
		return nil, false
	}
	return unsafe.Pointer(v.Pointer()), true
}

func clearStatics() {
	statics.Range(func(key, _ any) bool {
		statics.Delete(key)
		return true
	})
}
