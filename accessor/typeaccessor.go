package accessor

import (
	"os"
	"reflect"
	"sync"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "accessor"})

// SetLogger replaces the package logger. The host's mod runtime routes this
// into its own sink at load time.
func SetLogger(l *log.Logger) { logger = l }

// TypeAccessor wraps one type for instance construction and attribute
// queries, giving every reflective entity the same accessor-style surface.
// Immutable once constructed; one instance exists per type.
type TypeAccessor struct {
	t       reflect.Type
	members []string
	methods []string
}

// constructors holds registered constructor functions per type, used by
// CreateInstance when arguments are supplied or the type needs non-zero
// initialization.
var constructors sync.Map // map[reflect.Type]reflect.Value

// RegisterConstructor registers ctor as the constructor for its return
// type. ctor must be a func whose first result is the constructed value (a
// pointer return registers for the pointee type).
func RegisterConstructor(ctor any) error {
	v := reflect.ValueOf(ctor)
	if !v.IsValid() || v.Kind() != reflect.Func || v.Type().NumOut() == 0 {
		return argumentErr(reflect.TypeOf(ctor), "RegisterConstructor", "ctor must be a func with at least one result")
	}
	constructors.Store(derefType(v.Type().Out(0)), v)
	return nil
}

func clearConstructors() {
	constructors.Range(func(key, _ any) bool {
		constructors.Delete(key)
		return true
	})
}

// GetType returns the accessor for t, building and caching it on first
// request.
func GetType(t reflect.Type) (*TypeAccessor, error) {
	t = derefType(t)
	return typeCache.GetOrCreate(t, func() (*TypeAccessor, error) {
		return buildType(t), nil
	})
}

// TypeOf returns the accessor for the dynamic type of v.
func TypeOf(v any) (*TypeAccessor, error) {
	return GetType(reflect.TypeOf(v))
}

func buildType(t reflect.Type) *TypeAccessor {
	a := &TypeAccessor{t: t}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() || f.Anonymous || isSkipped(f.Tag) {
				continue
			}
			a.members = append(a.members, f.Name)
		}
	}
	ptrType := reflect.PtrTo(t)
	for i := 0; i < ptrType.NumMethod(); i++ {
		a.methods = append(a.methods, ptrType.Method(i).Name)
	}
	return a
}

// Type returns the wrapped reflect.Type.
func (a *TypeAccessor) Type() reflect.Type { return a.t }

// Name returns the type's declared name.
func (a *TypeAccessor) Name() string { return a.t.Name() }

// Members lists the scannable field names, in declaration order.
func (a *TypeAccessor) Members() []string { return a.members }

// Methods lists the reflection-visible method names.
func (a *TypeAccessor) Methods() []string { return a.methods }

// Member returns the member accessor for the named field.
func (a *TypeAccessor) Member(name string) (*MemberAccessor, error) {
	return GetMember(a.t, name)
}

// Method returns the method accessor for the named method or registered
// function.
func (a *TypeAccessor) Method(name string, paramTypes ...reflect.Type) (*MethodAccessor, error) {
	return GetMethod(a.t, name, paramTypes...)
}

// Marker reports the named marker on the named field.
func (a *TypeAccessor) Marker(field, marker string) (*Marker, bool) {
	return FieldMarker(a.t, field, marker)
}

// Attributes lists every marker on the named field.
func (a *TypeAccessor) Attributes(field string) []*Marker {
	return FieldMarkers(a.t, field)
}

// BindStatic registers instance as the singleton backing this type's static
// members.
func (a *TypeAccessor) BindStatic(instance any) error {
	return BindStatic(instance)
}

// CreateInstance constructs a new value of the wrapped type. With no
// arguments and no registered constructor it returns a zero-valued pointer.
// Construction failure is logged and reported as nil rather than thrown:
// enumeration layers must tolerate uninstantiable types gracefully.
func (a *TypeAccessor) CreateInstance(ctorArgs ...any) any {
	if ctor, ok := constructors.Load(a.t); ok {
		return a.construct(ctor.(reflect.Value), ctorArgs)
	}
	if len(ctorArgs) > 0 {
		logger.Error("no constructor registered for type with arguments",
			"type", a.t.String(), "args", len(ctorArgs))
		return nil
	}
	switch a.t.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer:
		logger.Error("cannot instantiate unsupported type", "type", a.t.String())
		return nil
	}
	return reflect.New(a.t).Interface()
}

func (a *TypeAccessor) construct(ctor reflect.Value, ctorArgs []any) any {
	ft := ctor.Type()
	if len(ctorArgs) != ft.NumIn() {
		logger.Error("constructor arity mismatch",
			"type", a.t.String(), "want", ft.NumIn(), "got", len(ctorArgs))
		return nil
	}
	in := make([]reflect.Value, len(ctorArgs))
	for i, arg := range ctorArgs {
		v, err := convertBoxed(arg, ft.In(i))
		if err != nil {
			logger.Error("constructor argument mismatch",
				"type", a.t.String(), "arg", i, "err", err)
			return nil
		}
		in[i] = v
	}
	out := ctor.Call(in)
	if n := len(out); n > 1 && out[n-1].Type() == errorType && !out[n-1].IsNil() {
		logger.Error("constructor failed",
			"type", a.t.String(), "err", out[n-1].Interface())
		return nil
	}
	return out[0].Interface()
}
