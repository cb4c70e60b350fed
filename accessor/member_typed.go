package accessor

import (
	"reflect"
	"unsafe"
)

// Strongly-typed member access. These paths take the instance by address and
// read or write the field through its offset, so they never box and do not
// share the boxed path's value-copy limitation. Available only when the
// caller statically knows both the declaring type and the value type; the
// boxed path remains the fallback and produces identical observable results.

// Getter returns a typed getter for the member, or an error when T or V do
// not match the declared types, or the member is an indexer or constant.
func Getter[T any, V any](a *MemberAccessor) (func(*T) V, error) {
	if err := checkTyped[T, V](a); err != nil {
		return nil, err
	}
	offset := a.offset
	return func(instance *T) V {
		return *(*V)(unsafe.Add(unsafe.Pointer(instance), offset))
	}, nil
}

// Setter returns a typed setter for the member. Read-only and constant
// members are rejected with ErrInvalidOperation.
func Setter[T any, V any](a *MemberAccessor) (func(*T, V), error) {
	if err := checkTyped[T, V](a); err != nil {
		return nil, err
	}
	if !a.CanWrite() {
		return nil, invalidOpErr(a.desc.Type, a.field.Name, "member is not writable")
	}
	offset := a.offset
	return func(instance *T, value V) {
		*(*V)(unsafe.Add(unsafe.Pointer(instance), offset)) = value
	}, nil
}

// StaticGetter returns a typed getter for a static member, closed over the
// type's bound singleton.
func StaticGetter[V any](a *MemberAccessor) (func() V, error) {
	ptr, err := checkTypedStatic[V](a)
	if err != nil {
		return nil, err
	}
	offset := a.offset
	return func() V {
		return *(*V)(unsafe.Add(ptr, offset))
	}, nil
}

// StaticSetter returns a typed setter for a static member.
func StaticSetter[V any](a *MemberAccessor) (func(V), error) {
	ptr, err := checkTypedStatic[V](a)
	if err != nil {
		return nil, err
	}
	if !a.CanWrite() {
		return nil, invalidOpErr(a.desc.Type, a.field.Name, "member is not writable")
	}
	offset := a.offset
	return func(value V) {
		*(*V)(unsafe.Add(ptr, offset)) = value
	}, nil
}

func checkTyped[T any, V any](a *MemberAccessor) error {
	if a.class == classIndexer {
		return invalidOpErr(a.desc.Type, a.field.Name, "indexer member requires the indexed API")
	}
	if a.class == classConstant {
		return invalidOpErr(a.desc.Type, a.field.Name, "constant member has no typed instance path")
	}
	declared := reflect.TypeOf((*T)(nil)).Elem()
	if declared != a.desc.Type {
		return argumentErr(a.desc.Type, a.field.Name, "declaring type mismatch: got "+declared.String())
	}
	return checkValueType[V](a)
}

func checkTypedStatic[V any](a *MemberAccessor) (unsafe.Pointer, error) {
	if a.class != classStatic {
		return nil, invalidOpErr(a.desc.Type, a.field.Name, "member is not static")
	}
	if err := checkValueType[V](a); err != nil {
		return nil, err
	}
	ptr, ok := staticPointer(a.desc.Type)
	if !ok {
		return nil, invalidOpErr(a.desc.Type, a.field.Name, "no static instance bound")
	}
	return ptr, nil
}

func checkValueType[V any](a *MemberAccessor) error {
	valueType := reflect.TypeOf((*V)(nil)).Elem()
	if valueType != a.valueType {
		return argumentErr(a.desc.Type, a.field.Name, "value type mismatch: got "+valueType.String())
	}
	return nil
}
