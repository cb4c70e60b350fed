package accessor

import (
	"fmt"
	"reflect"
	"unsafe"
)

// memberClass is the construction-time classification of a member. Exactly
// one class applies to each accessor.
type memberClass uint8

const (
	classInstance memberClass = iota // exported read/write instance field
	classStatic                      // routed through the type's bound singleton
	classReadOnly                    // unexported or tagged readonly; getter only
	classConstant                    // value snapshotted at construction
	classIndexer                     // slice/array/map field; indexed API only
)

// MemberAccessor unifies read and write access for one struct field across
// every supported shape: instance, static, read-only, constant, and indexer.
// Immutable once constructed; safe for unsynchronized concurrent use.
type MemberAccessor struct {
	desc       MemberDescriptor
	field      reflect.StructField
	valueType  reflect.Type
	class      memberClass
	offset     uintptr
	constant   any
	indexArity int
	elemType   reflect.Type // indexer element type
	keyType    reflect.Type // indexer key type (maps) or int
}

// GetMember returns the accessor for the named field of t, building and
// caching it on first request. Repeated requests for the same (type, field)
// return the identical accessor instance.
func GetMember(t reflect.Type, name string) (*MemberAccessor, error) {
	t = derefType(t)
	if t.Kind() != reflect.Struct {
		return nil, argumentErr(t, name, "declaring type must be a struct")
	}
	var field reflect.StructField
	found := false
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			continue
		}
		if f.Name == name {
			field = f
			found = true
			break
		}
	}
	if !found {
		return nil, notFoundErr(t, name)
	}
	desc := fieldDescriptor(t, field)
	return memberCache.GetOrCreate(desc, func() (*MemberAccessor, error) {
		return buildMember(desc, field)
	})
}

// buildMember classifies the field and constructs its accessor. Pure: a
// discarded duplicate build under a construction race has no side effect.
func buildMember(desc MemberDescriptor, f reflect.StructField) (*MemberAccessor, error) {
	switch f.Type.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return nil, unsupportedErr(desc.Type, f.Name, f.Type)
	}

	a := &MemberAccessor{
		desc:      desc,
		field:     f,
		valueType: f.Type,
		offset:    f.Offset,
	}

	access := f.Tag.Get("access")
	switch {
	case !f.IsExported():
		a.class = classReadOnly
	case access == "const":
		inst, ok := staticInstance(desc.Type)
		if !ok {
			return nil, invalidOpErr(desc.Type, f.Name, "constant member requires a bound static instance")
		}
		a.class = classConstant
		a.constant = inst.Elem().Field(desc.Index).Interface()
	case access == "static":
		a.class = classStatic
	case access == "readonly":
		a.class = classReadOnly
	case isIndexable(f.Type):
		a.class = classIndexer
		a.indexArity = 1
		a.elemType = f.Type.Elem()
		if f.Type.Kind() == reflect.Map {
			a.keyType = f.Type.Key()
		} else {
			a.keyType = reflect.TypeOf(int(0))
		}
	default:
		a.class = classInstance
	}
	return a, nil
}

func isIndexable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// Name returns the declared field name.
func (a *MemberAccessor) Name() string { return a.field.Name }

// DeclaringType returns the struct type that declares the member.
func (a *MemberAccessor) DeclaringType() reflect.Type { return a.desc.Type }

// ValueType returns the declared value type of the member.
func (a *MemberAccessor) ValueType() reflect.Type { return a.valueType }

// CanRead reports whether GetValue is available. True for every class.
func (a *MemberAccessor) CanRead() bool { return true }

// CanWrite reports whether SetValue is available.
func (a *MemberAccessor) CanWrite() bool {
	return a.class == classInstance || a.class == classStatic
}

// IsStatic reports whether the member is routed through the type singleton.
func (a *MemberAccessor) IsStatic() bool {
	return a.class == classStatic || a.class == classConstant
}

// IsIndexer reports whether the member must be accessed through the indexed
// API.
func (a *MemberAccessor) IsIndexer() bool { return a.class == classIndexer }

// GetValue reads the member through the boxed path. target must be nil for
// static and constant members and a non-nil instance otherwise.
func (a *MemberAccessor) GetValue(target any) (any, error) {
	switch a.class {
	case classIndexer:
		return nil, invalidOpErr(a.desc.Type, a.field.Name, "indexer member requires the indexed API")
	case classConstant:
		if target != nil {
			return nil, argumentErr(a.desc.Type, a.field.Name, "constant member takes no instance")
		}
		return a.constant, nil
	case classStatic:
		if target != nil {
			return nil, argumentErr(a.desc.Type, a.field.Name, "static member takes no instance")
		}
		inst, ok := staticInstance(a.desc.Type)
		if !ok {
			return nil, invalidOpErr(a.desc.Type, a.field.Name, "no static instance bound")
		}
		return a.readField(inst.Elem()), nil
	default:
		structVal, err := a.instanceValue(target)
		if err != nil {
			return nil, err
		}
		return a.readField(structVal), nil
	}
}

// SetValue writes the member through the boxed path. Writes to read-only and
// constant members fail with ErrInvalidOperation. Note that a value-type
// target is addressed as a boxed copy: the caller's original struct is not
// mutated unless a pointer was supplied.
func (a *MemberAccessor) SetValue(target any, value any) error {
	switch a.class {
	case classIndexer:
		return invalidOpErr(a.desc.Type, a.field.Name, "indexer member requires the indexed API")
	case classReadOnly:
		return invalidOpErr(a.desc.Type, a.field.Name, "member is read-only")
	case classConstant:
		return invalidOpErr(a.desc.Type, a.field.Name, "member is constant")
	case classStatic:
		if target != nil {
			return argumentErr(a.desc.Type, a.field.Name, "static member takes no instance")
		}
		inst, ok := staticInstance(a.desc.Type)
		if !ok {
			return invalidOpErr(a.desc.Type, a.field.Name, "no static instance bound")
		}
		return a.writeField(inst.Elem(), value)
	default:
		structVal, err := a.instanceValue(target)
		if err != nil {
			return err
		}
		if !structVal.CanSet() && !structVal.CanAddr() {
			// Boxed copy of a value type: write lands on the copy.
			structVal = boxedCopy(structVal)
		}
		return a.writeField(structVal, value)
	}
}

// GetIndex reads one element of an indexer member. The argument count must
// exactly match the indexer arity.
func (a *MemberAccessor) GetIndex(target any, indexArgs ...any) (any, error) {
	container, err := a.indexContainer(target, len(indexArgs))
	if err != nil {
		return nil, err
	}
	switch container.Kind() {
	case reflect.Map:
		key, err := a.indexKey(indexArgs[0])
		if err != nil {
			return nil, err
		}
		v := container.MapIndex(key)
		if !v.IsValid() {
			return nil, notFoundErr(a.desc.Type, fmt.Sprintf("%s[%v]", a.field.Name, key))
		}
		return v.Interface(), nil
	default:
		i, err := a.indexOrdinal(indexArgs[0], container.Len())
		if err != nil {
			return nil, err
		}
		return container.Index(i).Interface(), nil
	}
}

// SetIndex writes one element of an indexer member.
func (a *MemberAccessor) SetIndex(target any, value any, indexArgs ...any) error {
	container, err := a.indexContainer(target, len(indexArgs))
	if err != nil {
		return err
	}
	converted, err := convertBoxed(value, a.elemType)
	if err != nil {
		return argumentErr(a.desc.Type, a.field.Name, err.Error())
	}
	switch container.Kind() {
	case reflect.Map:
		key, kerr := a.indexKey(indexArgs[0])
		if kerr != nil {
			return kerr
		}
		if container.IsNil() {
			return invalidOpErr(a.desc.Type, a.field.Name, "map member is nil")
		}
		container.SetMapIndex(key, converted)
		return nil
	default:
		i, ierr := a.indexOrdinal(indexArgs[0], container.Len())
		if ierr != nil {
			return ierr
		}
		elem := container.Index(i)
		if !elem.CanSet() {
			return invalidOpErr(a.desc.Type, a.field.Name, "element is not settable")
		}
		elem.Set(converted)
		return nil
	}
}

func (a *MemberAccessor) indexContainer(target any, argCount int) (reflect.Value, error) {
	if a.class != classIndexer {
		return reflect.Value{}, invalidOpErr(a.desc.Type, a.field.Name, "member is not an indexer")
	}
	if argCount != a.indexArity {
		return reflect.Value{}, argumentErr(a.desc.Type, a.field.Name, "indexer arity mismatch")
	}
	structVal, err := a.instanceValue(target)
	if err != nil {
		return reflect.Value{}, err
	}
	return a.fieldValue(structVal), nil
}

func (a *MemberAccessor) indexKey(arg any) (reflect.Value, error) {
	key, err := convertBoxed(arg, a.keyType)
	if err != nil {
		return reflect.Value{}, argumentErr(a.desc.Type, a.field.Name, err.Error())
	}
	return key, nil
}

func (a *MemberAccessor) indexOrdinal(arg any, length int) (int, error) {
	key, err := a.indexKey(arg)
	if err != nil {
		return 0, err
	}
	i := int(key.Int())
	if i < 0 || i >= length {
		return 0, argumentErr(a.desc.Type, a.field.Name, "index out of range")
	}
	return i, nil
}

// instanceValue validates and normalizes the target into an addressable
// struct value when possible. Pointer targets stay addressable; value
// targets are used as-is for reads and copied for writes.
func (a *MemberAccessor) instanceValue(target any) (reflect.Value, error) {
	if target == nil {
		return reflect.Value{}, argumentErr(a.desc.Type, a.field.Name, "instance member requires a non-nil instance")
	}
	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, argumentErr(a.desc.Type, a.field.Name, "instance member requires a non-nil instance")
		}
		v = v.Elem()
	}
	if v.Type() != a.desc.Type {
		return reflect.Value{}, argumentErr(a.desc.Type, a.field.Name, "instance type mismatch: got "+v.Type().String())
	}
	return v, nil
}

// readField reads the field value, reaching unexported fields through their
// offset when the struct is addressable.
func (a *MemberAccessor) readField(structVal reflect.Value) any {
	f := structVal.Field(a.desc.Index)
	if f.CanInterface() {
		return f.Interface()
	}
	if structVal.CanAddr() {
		ptr := unsafe.Pointer(structVal.UnsafeAddr())
		return reflect.NewAt(a.valueType, unsafe.Add(ptr, a.offset)).Elem().Interface()
	}
	// Unexported field of a non-addressable value: copy first.
	return a.readField(boxedCopy(structVal))
}

func (a *MemberAccessor) writeField(structVal reflect.Value, value any) error {
	converted, err := convertBoxed(value, a.valueType)
	if err != nil {
		return argumentErr(a.desc.Type, a.field.Name, err.Error())
	}
	f := structVal.Field(a.desc.Index)
	if !f.CanSet() {
		if !structVal.CanAddr() {
			structVal = boxedCopy(structVal)
		}
		ptr := unsafe.Pointer(structVal.UnsafeAddr())
		reflect.NewAt(a.valueType, unsafe.Add(ptr, a.offset)).Elem().Set(converted)
		return nil
	}
	f.Set(converted)
	return nil
}

func (a *MemberAccessor) fieldValue(structVal reflect.Value) reflect.Value {
	return structVal.Field(a.desc.Index)
}

// boxedCopy returns an addressable copy of v.
func boxedCopy(v reflect.Value) reflect.Value {
	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)
	return cp
}

// convertBoxed normalizes a boxed value to the declared type. Named integer
// types (enums) convert through their underlying representation, so a plain
// int assigns to an enum field and an enum value assigns to its primitive.
func convertBoxed(value any, want reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(want), nil
	}
	v := reflect.ValueOf(value)
	if v.Type() == want {
		return v, nil
	}
	if v.Kind() == reflect.Ptr && !v.IsNil() && v.Type().Elem() == want {
		return v.Elem(), nil
	}
	if isEnumConvertible(v.Type(), want) || v.Type().ConvertibleTo(want) && sameKindFamily(v.Kind(), want.Kind()) {
		return v.Convert(want), nil
	}
	return reflect.Value{}, &conversionError{from: v.Type(), to: want}
}

// isEnumConvertible reports whether src and dst share an integer underlying
// representation, with at least one of them being a named (enum-like) type.
func isEnumConvertible(src, dst reflect.Type) bool {
	if !isIntegerKind(src.Kind()) || !isIntegerKind(dst.Kind()) {
		return false
	}
	return src.Kind() == dst.Kind() && (src.Name() != "" || dst.Name() != "")
}

func isIntegerKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func sameKindFamily(a, b reflect.Kind) bool {
	return a == b || (isIntegerKind(a) && isIntegerKind(b))
}

type conversionError struct {
	from, to reflect.Type
}

func (e *conversionError) Error() string {
	return "cannot convert " + e.from.String() + " to " + e.to.String()
}
