package accessor

import (
	"hash/fnv"
	"reflect"
	"strings"
)

// genericParam marks a generic-parameter position in a ParamSignature. Any
// supplied type matches a wildcard position.
type genericParam struct{}

// Wildcard is the generic-parameter placeholder used when requesting a
// method by parameter types: positions holding Wildcard match any declared
// type, and declared generic positions match any supplied type.
var Wildcard = reflect.TypeOf(genericParam{})

// ParamSignature is a structural overload key: parameter count plus
// per-position type identity, with generic-parameter positions normalized to
// Wildcard. It disambiguates overloads without a full descriptor comparison.
type ParamSignature struct {
	params []reflect.Type
}

// NewSignature builds a signature from declared parameter types. Nil entries
// are normalized to Wildcard.
func NewSignature(params ...reflect.Type) ParamSignature {
	ps := make([]reflect.Type, len(params))
	for i, p := range params {
		if p == nil {
			p = Wildcard
		}
		ps[i] = p
	}
	return ParamSignature{params: ps}
}

func signatureOfFunc(ft reflect.Type, skipReceiver bool) ParamSignature {
	start := 0
	if skipReceiver {
		start = 1
	}
	params := make([]reflect.Type, 0, ft.NumIn()-start)
	for i := start; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}
	return ParamSignature{params: params}
}

// Arity returns the number of parameter positions.
func (s ParamSignature) Arity() int { return len(s.params) }

// At returns the type at position i.
func (s ParamSignature) At(i int) reflect.Type { return s.params[i] }

// Equal reports structural equality: arities match and every
// non-wildcard position matches by type identity. A wildcard on either side
// matches anything at that position.
func (s ParamSignature) Equal(other ParamSignature) bool {
	if len(s.params) != len(other.params) {
		return false
	}
	for i, p := range s.params {
		q := other.params[i]
		if p == Wildcard || q == Wildcard {
			continue
		}
		if p != q {
			return false
		}
	}
	return true
}

// Matches reports whether supplied argument types satisfy this declared
// signature: every supplied type equals the declared type (wildcard declared
// positions match anything), and every declared position beyond the supplied
// count is covered by optionalFrom (the index of the first parameter that
// has a default).
func (s ParamSignature) Matches(supplied []reflect.Type, optionalFrom int) bool {
	if len(supplied) > len(s.params) {
		return false
	}
	for i, arg := range supplied {
		p := s.params[i]
		if p == Wildcard || arg == Wildcard {
			continue
		}
		if p != arg {
			return false
		}
	}
	return len(supplied) >= optionalFrom
}

// Fingerprint returns an FNV-64a digest of the signature, used to key the
// signature index without retaining string keys.
func (s ParamSignature) Fingerprint() uint64 {
	h := fnv.New64a()
	for _, p := range s.params {
		_, _ = h.Write([]byte(p.String()))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

func (s ParamSignature) String() string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		if p == Wildcard {
			names[i] = "?"
		} else {
			names[i] = p.String()
		}
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// fingerprintString hashes a string with FNV-64a. Used for name-index keys.
func fingerprintString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// mix64 combines two 64-bit fingerprints into one key.
func mix64(a, b uint64) uint64 {
	h := fnv.New64a()
	var buf [16]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(a >> (56 - 8*i))
		buf[8+i] = byte(b >> (56 - 8*i))
	}
	_, _ = h.Write(buf[:])
	return h.Sum64()
}
