package accessor

// Fully-typed delegate path. When the caller statically knows every
// parameter and return type, the underlying func value is surfaced through a
// plain type assertion: the resulting delegate is the method itself, with no
// boxing and no per-call reflection. Available only for closed accessors
// with no pointer, default, or variadic parameters; anything else returns
// ErrInvalidOperation and the caller falls back to a boxed path.

// TypedEligible reports whether the typed delegate path is available.
func (m *MethodAccessor) TypedEligible() bool { return m.typedEligible }

func (m *MethodAccessor) typedCheck() error {
	if m.generic != nil {
		return invalidOpErr(m.desc.Type, m.desc.Name,
			"unresolved generic method: close it via MakeGeneric first")
	}
	if !m.typedEligible {
		return invalidOpErr(m.desc.Type, m.desc.Name, "method is not typed-delegate eligible")
	}
	return nil
}

func typedAssert[F any](m *MethodAccessor) (F, error) {
	var zero F
	if err := m.typedCheck(); err != nil {
		return zero, err
	}
	f, ok := m.fn.Interface().(F)
	if !ok {
		return zero, argumentErr(m.desc.Type, m.desc.Name, "delegate type mismatch")
	}
	return f, nil
}

// Func0 returns the method as func() R. Static accessors only.
func Func0[R any](m *MethodAccessor) (func() R, error) {
	return typedAssert[func() R](m)
}

// Func1 returns the method as func(A) R.
func Func1[A, R any](m *MethodAccessor) (func(A) R, error) {
	return typedAssert[func(A) R](m)
}

// Func2 returns the method as func(A, B) R.
func Func2[A, B, R any](m *MethodAccessor) (func(A, B) R, error) {
	return typedAssert[func(A, B) R](m)
}

// Func3 returns the method as func(A, B, C) R.
func Func3[A, B, C, R any](m *MethodAccessor) (func(A, B, C) R, error) {
	return typedAssert[func(A, B, C) R](m)
}

// Action0 returns a parameterless, resultless method as func().
func Action0(m *MethodAccessor) (func(), error) {
	return typedAssert[func()](m)
}

// Action1 returns a single-parameter, resultless method as func(A).
func Action1[A any](m *MethodAccessor) (func(A), error) {
	return typedAssert[func(A)](m)
}

// Method0 returns an instance method as func(*T) R; the receiver is taken by
// address, so value-receiver methods see the caller's struct, not a copy.
func Method0[T, R any](m *MethodAccessor) (func(*T) R, error) {
	return typedAssert[func(*T) R](m)
}

// Method1 returns an instance method as func(*T, A) R.
func Method1[T, A, R any](m *MethodAccessor) (func(*T, A) R, error) {
	return typedAssert[func(*T, A) R](m)
}

// Method2 returns an instance method as func(*T, A, B) R.
func Method2[T, A, B, R any](m *MethodAccessor) (func(*T, A, B) R, error) {
	return typedAssert[func(*T, A, B) R](m)
}
