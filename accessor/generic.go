package accessor

import (
	"fmt"
	"reflect"
	"strings"
)

// Generic method support. The host runtime this library originally targeted
// can close an open generic method definition at runtime; Go instantiates
// generics at compile time, so a generic definition here is a registered set
// of concrete instantiations keyed by their type-argument lists. MakeGeneric
// selects the instantiation; the definition itself can never be invoked.

// GenericInstance pairs one compile-time instantiation of a generic function
// with the type arguments that produced it.
type GenericInstance struct {
	typeArgs []reflect.Type
	fn       reflect.Value
	defaults []any
}

// Instantiation declares one instantiation of a generic definition.
// typeArgs are the closed type arguments, fn the concrete function.
func Instantiation(fn any, typeArgs ...reflect.Type) GenericInstance {
	return GenericInstance{typeArgs: typeArgs, fn: reflect.ValueOf(fn)}
}

// WithInstanceDefaults attaches trailing defaults to one instantiation.
func (g GenericInstance) WithInstanceDefaults(values ...any) GenericInstance {
	g.defaults = values
	return g
}

type genericDef struct {
	name      string
	owner     reflect.Type
	instances []GenericInstance
	closed    Cache[uint64, *MethodAccessor]
}

// RegisterGeneric registers an open generic definition named name on t,
// backed by the supplied instantiations. At least one instantiation is
// required; all must be funcs with equal arity.
func RegisterGeneric(t reflect.Type, name string, instances ...GenericInstance) error {
	t = derefType(t)
	if len(instances) == 0 {
		return argumentErr(t, name, "generic definition needs at least one instantiation")
	}
	arity := -1
	for _, inst := range instances {
		if !inst.fn.IsValid() || inst.fn.Kind() != reflect.Func {
			return argumentErr(t, name, "instantiation must be a func")
		}
		if arity == -1 {
			arity = inst.fn.Type().NumIn()
		} else if inst.fn.Type().NumIn() != arity {
			return argumentErr(t, name, "instantiations disagree on arity")
		}
		if err := validateDefaults(t, name, inst.fn.Type(), inst.defaults, inst.fn.Type().IsVariadic()); err != nil {
			return err
		}
	}
	def := &genericDef{name: name, owner: t, instances: instances}
	storeEntry(t, name, &funcEntry{
		name:    name,
		sig:     def.openSignature(),
		generic: def,
	})
	return nil
}

// openSignature derives the definition's declared signature: positions where
// every instantiation agrees keep that type; positions that vary across
// instantiations are generic and normalize to the wildcard marker.
func (d *genericDef) openSignature() ParamSignature {
	first := d.instances[0].fn.Type()
	params := make([]reflect.Type, first.NumIn())
	for i := range params {
		params[i] = first.In(i)
	}
	for _, inst := range d.instances[1:] {
		ft := inst.fn.Type()
		for i := range params {
			if params[i] != Wildcard && ft.In(i) != params[i] {
				params[i] = Wildcard
			}
		}
	}
	return ParamSignature{params: params}
}

// close resolves the instantiation for typeArgs, building (and memoizing)
// its closed accessor. Missing instantiations are a NotFound condition: the
// type arguments were never registered at build time.
func (d *genericDef) close(typeArgs []reflect.Type) (*MethodAccessor, error) {
	key := typeArgsFingerprint(typeArgs)
	return d.closed.GetOrCreate(key, func() (*MethodAccessor, error) {
		for _, inst := range d.instances {
			if typeArgsEqual(inst.typeArgs, typeArgs) {
				desc := functionDescriptor(d.owner, d.name+"["+typeArgsString(typeArgs)+"]", 0)
				return buildFromFunc(desc, inst.fn, inst.defaults, nil)
			}
		}
		return nil, fmt.Errorf("%w: no instantiation of %s on %s for %s",
			ErrNotFound, d.name, d.owner, typeArgsString(typeArgs))
	})
}

func typeArgsEqual(a, b []reflect.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func typeArgsFingerprint(args []reflect.Type) uint64 {
	fp := fingerprintString("typeargs")
	for _, a := range args {
		fp = mix64(fp, fingerprintString(a.String()))
	}
	return fp
}

func typeArgsString(args []reflect.Type) string {
	names := make([]string, len(args))
	for i, a := range args {
		names[i] = a.String()
	}
	return strings.Join(names, ", ")
}
