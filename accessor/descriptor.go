package accessor

import (
	"reflect"
)

// MemberKind discriminates what a MemberDescriptor points at.
type MemberKind uint8

const (
	KindField MemberKind = iota
	KindMethod
	KindFunction // free function registered under a (type, name)
)

// MemberDescriptor identifies exactly one field, method, or registered
// function of a type. reflect.Type values are interned by the runtime, so the
// struct is a stable, allocation-independent cache key: two descriptors are
// equal iff they reference the identical metadata, never merely the same
// name resolved twice against different types.
type MemberDescriptor struct {
	Type  reflect.Type
	Kind  MemberKind
	Name  string
	Index int // field index or method index; overload ordinal for functions
}

func fieldDescriptor(t reflect.Type, f reflect.StructField) MemberDescriptor {
	return MemberDescriptor{Type: t, Kind: KindField, Name: f.Name, Index: f.Index[0]}
}

func methodDescriptor(t reflect.Type, m reflect.Method) MemberDescriptor {
	return MemberDescriptor{Type: t, Kind: KindMethod, Name: m.Name, Index: m.Index}
}

func functionDescriptor(t reflect.Type, name string, ordinal int) MemberDescriptor {
	return MemberDescriptor{Type: t, Kind: KindFunction, Name: name, Index: ordinal}
}

// String renders the descriptor for error messages and logs.
func (d MemberDescriptor) String() string {
	if d.Type == nil {
		return "<nil>." + d.Name
	}
	return d.Type.String() + "." + d.Name
}
