package accessor

import (
	"fmt"
	"reflect"
)

// MethodAccessor resolves one method or registered function and invokes it
// with correctness for trailing defaults, by-reference (pointer) parameters,
// generic definitions, enum arguments, and value-type receivers.
//
// An accessor is in one of two states. An open generic definition cannot be
// invoked until MakeGeneric closes it. A closed accessor always offers the
// general boxed Invoke; when the method has no pointer or default parameters
// it is additionally eligible for the fixed-arity fast paths (arity <= 3)
// and the fully-typed delegate path. Immutable once constructed.
type MethodAccessor struct {
	desc     MemberDescriptor
	fn       reflect.Value
	fnType   reflect.Type
	recvType reflect.Type // receiver type (*T) for methods; nil for functions
	sig      ParamSignature
	defaults []any
	required int
	variadic bool
	byRef    []bool
	generic  *genericDef

	fastEligible  bool
	typedEligible bool
}

// GetMethod returns the accessor for the named method or registered function
// of t.
//
// When paramTypes is omitted, the first method found in enumeration order
// wins: reflection methods first, then registered functions in registration
// order. Enumeration order is not guaranteed stable across platforms.
//
// When paramTypes is supplied, a candidate matches if every supplied type
// equals the corresponding declared parameter type (declared generic
// positions match any supplied type) and every declared parameter beyond the
// supplied count is optional. Wildcard may be passed for "any type here".
func GetMethod(t reflect.Type, name string, paramTypes ...reflect.Type) (*MethodAccessor, error) {
	t = derefType(t)

	var desc MemberDescriptor
	var err error
	if paramTypes == nil {
		desc, err = firstByName.GetOrCreate(nameIndexKey{t, name}, func() (MemberDescriptor, error) {
			return resolveFirst(t, name)
		})
	} else {
		key := sigIndexKey{t, name, NewSignature(paramTypes...).Fingerprint()}
		desc, err = signatureIndex.GetOrCreate(key, func() (MemberDescriptor, error) {
			return resolveBySignature(t, name, paramTypes)
		})
	}
	if err != nil {
		return nil, err
	}

	return methodCache.GetOrCreate(desc, func() (*MethodAccessor, error) {
		return buildMethod(desc)
	})
}

// resolveFirst finds the first callable named name in enumeration order.
func resolveFirst(t reflect.Type, name string) (MemberDescriptor, error) {
	ptrType := reflect.PtrTo(t)
	if m, ok := ptrType.MethodByName(name); ok {
		return methodDescriptor(t, m), nil
	}
	if entries := registeredEntries(t, name); len(entries) > 0 {
		return functionDescriptor(t, name, entries[0].ordinal), nil
	}
	return MemberDescriptor{}, notFoundErr(t, name)
}

// resolveBySignature picks the overload matching the supplied types.
func resolveBySignature(t reflect.Type, name string, paramTypes []reflect.Type) (MemberDescriptor, error) {
	supplied := NewSignature(paramTypes...).params

	ptrType := reflect.PtrTo(t)
	if m, ok := ptrType.MethodByName(name); ok {
		sig := signatureOfFunc(m.Func.Type(), true)
		if sig.Matches(supplied, requiredArity(m.Func.Type(), nil, true)) {
			return methodDescriptor(t, m), nil
		}
	}
	for _, e := range registeredEntries(t, name) {
		req := len(e.sig.params)
		if e.generic == nil {
			req = requiredArity(e.fn.Type(), e.defaults, false)
		}
		if e.sig.Matches(supplied, req) {
			return functionDescriptor(t, name, e.ordinal), nil
		}
	}
	return MemberDescriptor{}, fmt.Errorf("%w: %s%s on %s",
		ErrNotFound, name, NewSignature(paramTypes...), t)
}

// requiredArity counts parameters with neither a default nor variadic slack.
func requiredArity(ft reflect.Type, defaults []any, skipReceiver bool) int {
	n := ft.NumIn()
	if skipReceiver {
		n--
	}
	if ft.IsVariadic() {
		n--
	}
	return n - len(defaults)
}

func buildMethod(desc MemberDescriptor) (*MethodAccessor, error) {
	switch desc.Kind {
	case KindMethod:
		ptrType := reflect.PtrTo(desc.Type)
		m := ptrType.Method(desc.Index)
		return buildFromFunc(desc, m.Func, nil, ptrType)
	case KindFunction:
		e := registeredEntry(desc.Type, desc.Name, desc.Index)
		if e == nil {
			return nil, notFoundErr(desc.Type, desc.Name)
		}
		if e.generic != nil {
			return &MethodAccessor{desc: desc, sig: e.sig, generic: e.generic}, nil
		}
		return buildFromFunc(desc, e.fn, e.defaults, nil)
	default:
		return nil, invalidOpErr(desc.Type, desc.Name, "descriptor is not callable")
	}
}

// buildFromFunc constructs a closed accessor and computes its invocation
// tier eligibility once.
func buildFromFunc(desc MemberDescriptor, fn reflect.Value, defaults []any, recvType reflect.Type) (*MethodAccessor, error) {
	ft := fn.Type()
	m := &MethodAccessor{
		desc:     desc,
		fn:       fn,
		fnType:   ft,
		recvType: recvType,
		sig:      signatureOfFunc(ft, recvType != nil),
		defaults: defaults,
		variadic: ft.IsVariadic(),
		required: requiredArity(ft, defaults, recvType != nil),
	}

	m.byRef = make([]bool, m.sig.Arity())
	hasByRef := false
	for i := range m.byRef {
		if m.sig.At(i).Kind() == reflect.Ptr {
			m.byRef[i] = true
			hasByRef = true
		}
	}

	plain := !m.variadic && !hasByRef && len(defaults) == 0
	m.fastEligible = plain && m.sig.Arity() <= 3
	m.typedEligible = plain
	return m, nil
}

// Name returns the resolved method name.
func (m *MethodAccessor) Name() string { return m.desc.Name }

// DeclaringType returns the type the method belongs to.
func (m *MethodAccessor) DeclaringType() reflect.Type { return m.desc.Type }

// IsStatic reports whether Invoke takes a nil instance.
func (m *MethodAccessor) IsStatic() bool { return m.recvType == nil }

// IsGenericDefinition reports whether the accessor is an open generic
// definition that must be closed via MakeGeneric before invocation.
func (m *MethodAccessor) IsGenericDefinition() bool { return m.generic != nil }

// Signature returns the declared parameter signature, excluding any
// receiver.
func (m *MethodAccessor) Signature() ParamSignature { return m.sig }

// ReturnType returns the first declared result type, or nil for none.
func (m *MethodAccessor) ReturnType() reflect.Type {
	if m.generic != nil || m.fnType.NumOut() == 0 {
		return nil
	}
	return m.fnType.Out(0)
}

// MakeGeneric closes an open generic definition into a concrete accessor for
// the given type arguments. Calling it on a closed accessor fails with
// ErrInvalidOperation; unregistered type arguments fail with ErrNotFound.
func (m *MethodAccessor) MakeGeneric(typeArgs ...reflect.Type) (*MethodAccessor, error) {
	if m.generic == nil {
		return nil, invalidOpErr(m.desc.Type, m.desc.Name, "accessor is already closed")
	}
	if len(typeArgs) == 0 {
		return nil, argumentErr(m.desc.Type, m.desc.Name, "at least one type argument required")
	}
	return m.generic.close(typeArgs)
}

// Invoke calls the method through the general boxed path.
//
// instance must be nil for static accessors and a value or pointer of the
// declaring type otherwise; value receivers are addressed through a copy so
// pointer-receiver methods dispatch uniformly. Missing trailing arguments
// are filled from declared defaults. After the call, the final value of
// every by-reference parameter is written back into the caller-visible
// argument slot.
func (m *MethodAccessor) Invoke(instance any, args ...any) (any, error) {
	if m.generic != nil {
		return nil, invalidOpErr(m.desc.Type, m.desc.Name,
			"unresolved generic method: close it via MakeGeneric first")
	}
	in, writeBacks, err := m.prepareCall(instance, args)
	if err != nil {
		return nil, err
	}
	out := m.fn.Call(in)
	for _, wb := range writeBacks {
		args[wb.slot] = wb.ptr.Elem().Interface()
	}
	return m.collect(out)
}

type writeBack struct {
	slot int
	ptr  reflect.Value
}

// prepareCall validates the receiver and arguments and assembles the
// reflect.Value argument list for fn.Call.
func (m *MethodAccessor) prepareCall(instance any, args []any) ([]reflect.Value, []writeBack, error) {
	arity := m.sig.Arity()
	fixed := arity
	if m.variadic {
		fixed--
	}
	if !m.variadic && len(args) > arity {
		return nil, nil, argumentErr(m.desc.Type, m.desc.Name,
			fmt.Sprintf("too many arguments: got %d, declared %d", len(args), arity))
	}
	if len(args) < m.required {
		return nil, nil, argumentErr(m.desc.Type, m.desc.Name,
			fmt.Sprintf("too few arguments: got %d, required %d", len(args), m.required))
	}

	in := make([]reflect.Value, 0, arity+1)
	recv, err := m.receiver(instance)
	if err != nil {
		return nil, nil, err
	}
	if recv.IsValid() {
		in = append(in, recv)
	}

	var writeBacks []writeBack
	for i := 0; i < fixed; i++ {
		want := m.sig.At(i)
		var arg any
		if i < len(args) {
			arg = args[i]
		} else {
			arg = m.defaults[i-(fixed-len(m.defaults))]
		}

		if m.byRef[i] && i < len(args) {
			v, wb, cerr := m.byRefArg(i, arg, want)
			if cerr != nil {
				return nil, nil, cerr
			}
			if wb != nil {
				writeBacks = append(writeBacks, *wb)
			}
			in = append(in, v)
			continue
		}

		v, cerr := convertBoxed(arg, want)
		if cerr != nil {
			return nil, nil, argumentErr(m.desc.Type, m.desc.Name,
				fmt.Sprintf("argument %d: %s", i, cerr))
		}
		in = append(in, v)
	}

	if m.variadic {
		elem := m.sig.At(arity - 1).Elem()
		for i := fixed; i < len(args); i++ {
			v, cerr := convertBoxed(args[i], elem)
			if cerr != nil {
				return nil, nil, argumentErr(m.desc.Type, m.desc.Name,
					fmt.Sprintf("argument %d: %s", i, cerr))
			}
			in = append(in, v)
		}
	}
	return in, writeBacks, nil
}

// byRefArg passes pointer parameters. A caller-supplied pointer flows
// through untouched (the callee mutates the caller's pointee directly); a
// caller-supplied value is boxed behind a fresh pointer whose final pointee
// is written back after the call.
func (m *MethodAccessor) byRefArg(slot int, arg any, want reflect.Type) (reflect.Value, *writeBack, error) {
	if arg != nil {
		v := reflect.ValueOf(arg)
		if v.Type() == want {
			return v, nil, nil
		}
	}
	ptr := reflect.New(want.Elem())
	if arg != nil {
		elem, err := convertBoxed(arg, want.Elem())
		if err != nil {
			return reflect.Value{}, nil, argumentErr(m.desc.Type, m.desc.Name,
				fmt.Sprintf("argument %d: %s", slot, err))
		}
		ptr.Elem().Set(elem)
	}
	return ptr, &writeBack{slot: slot, ptr: ptr}, nil
}

// receiver validates instance nullability against the method's static-ness
// and produces the bound receiver value. Value instances are copied to an
// addressable location so the pointer method set applies.
func (m *MethodAccessor) receiver(instance any) (reflect.Value, error) {
	if m.recvType == nil {
		if instance != nil {
			return reflect.Value{}, argumentErr(m.desc.Type, m.desc.Name, "static method takes no instance")
		}
		return reflect.Value{}, nil
	}
	if instance == nil {
		return reflect.Value{}, argumentErr(m.desc.Type, m.desc.Name, "instance method requires a non-nil instance")
	}
	v := reflect.ValueOf(instance)
	switch {
	case v.Type() == m.recvType:
		if v.IsNil() {
			return reflect.Value{}, argumentErr(m.desc.Type, m.desc.Name, "instance method requires a non-nil instance")
		}
		return v, nil
	case v.Type() == m.desc.Type:
		return boxedCopy(v).Addr(), nil
	default:
		return reflect.Value{}, argumentErr(m.desc.Type, m.desc.Name,
			"instance type mismatch: got "+v.Type().String())
	}
}

// collect normalizes call results: a trailing error result is split out as
// the invocation error, no results yield nil, a single result yields its
// value, and several results yield a []any.
func (m *MethodAccessor) collect(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if errVal := out[n-1]; !errVal.IsNil() {
			return nil, errVal.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	default:
		results := make([]any, len(out))
		for i, v := range out {
			results[i] = v.Interface()
		}
		return results, nil
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()
