package accessor

import "reflect"

// Fixed-arity fast paths. Behaviorally identical to the general Invoke but
// the argument container lives on the stack, so no []any or writeBack slice
// is allocated. Eligible when the method is closed, takes no pointer or
// default parameters, is not variadic, and declares at most 3 parameters;
// ineligible accessors fall back to the general path.

// FastPathEligible reports whether the fixed-arity overloads bypass the
// general path for this accessor.
func (m *MethodAccessor) FastPathEligible() bool { return m.fastEligible }

// Invoke0 calls a parameterless method.
func (m *MethodAccessor) Invoke0(instance any) (any, error) {
	if !m.fastEligible || m.sig.Arity() != 0 {
		return m.Invoke(instance)
	}
	var in [1]reflect.Value
	n, err := m.fastReceiver(instance, in[:0])
	if err != nil {
		return nil, err
	}
	return m.collect(m.fn.Call(n))
}

// Invoke1 calls a one-parameter method.
func (m *MethodAccessor) Invoke1(instance any, a1 any) (any, error) {
	if !m.fastEligible || m.sig.Arity() != 1 {
		return m.Invoke(instance, a1)
	}
	var in [2]reflect.Value
	n, err := m.fastReceiver(instance, in[:0])
	if err != nil {
		return nil, err
	}
	if n, err = m.fastArg(n, 0, a1); err != nil {
		return nil, err
	}
	return m.collect(m.fn.Call(n))
}

// Invoke2 calls a two-parameter method.
func (m *MethodAccessor) Invoke2(instance any, a1, a2 any) (any, error) {
	if !m.fastEligible || m.sig.Arity() != 2 {
		return m.Invoke(instance, a1, a2)
	}
	var in [3]reflect.Value
	n, err := m.fastReceiver(instance, in[:0])
	if err != nil {
		return nil, err
	}
	if n, err = m.fastArg(n, 0, a1); err != nil {
		return nil, err
	}
	if n, err = m.fastArg(n, 1, a2); err != nil {
		return nil, err
	}
	return m.collect(m.fn.Call(n))
}

// Invoke3 calls a three-parameter method.
func (m *MethodAccessor) Invoke3(instance any, a1, a2, a3 any) (any, error) {
	if !m.fastEligible || m.sig.Arity() != 3 {
		return m.Invoke(instance, a1, a2, a3)
	}
	var in [4]reflect.Value
	n, err := m.fastReceiver(instance, in[:0])
	if err != nil {
		return nil, err
	}
	if n, err = m.fastArg(n, 0, a1); err != nil {
		return nil, err
	}
	if n, err = m.fastArg(n, 1, a2); err != nil {
		return nil, err
	}
	if n, err = m.fastArg(n, 2, a3); err != nil {
		return nil, err
	}
	return m.collect(m.fn.Call(n))
}

func (m *MethodAccessor) fastReceiver(instance any, in []reflect.Value) ([]reflect.Value, error) {
	recv, err := m.receiver(instance)
	if err != nil {
		return nil, err
	}
	if recv.IsValid() {
		in = append(in, recv)
	}
	return in, nil
}

func (m *MethodAccessor) fastArg(in []reflect.Value, i int, arg any) ([]reflect.Value, error) {
	v, err := convertBoxed(arg, m.sig.At(i))
	if err != nil {
		return nil, argumentErr(m.desc.Type, m.desc.Name, err.Error())
	}
	return append(in, v), nil
}
