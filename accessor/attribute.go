package accessor

import (
	"reflect"
	"strings"
)

// Marker is one parsed annotation on a struct field, extracted from the
// `mod` tag. A field may carry several markers separated by semicolons;
// each marker has a name and optional key:value options.
//
// Tag syntax:
//
//	`mod:"config"`                          // bare marker
//	`mod:"config,name:volume,default:0.8"`  // marker with options
//	`mod:"config;action:OnReset"`           // several markers
//	`mod:"-"`                               // skip field entirely
//
// A colon in the name position declares an inline value: "action:OnReset"
// is shorthand for "action,value:OnReset".
type Marker struct {
	Name    string
	Options map[string]string
	Flags   []string
}

// Option returns the value for an option key and whether it was present.
func (m *Marker) Option(key string) (string, bool) {
	v, ok := m.Options[key]
	return v, ok
}

// HasFlag reports whether a bare flag was present on the marker.
func (m *Marker) HasFlag(flag string) bool {
	for _, f := range m.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

type attributeKey struct {
	desc   MemberDescriptor
	marker string
}

type attributeEntry struct {
	present bool
	marker  *Marker
}

// MarkerOf reports whether the field identified by desc carries the named
// marker, returning its parsed instance. Results are memoized per
// (descriptor, marker) pair; parsing runs once per pair for the process
// lifetime.
func MarkerOf(desc MemberDescriptor, marker string) (*Marker, bool) {
	entry, err := attributeCache.GetOrCreate(attributeKey{desc, marker}, func() (attributeEntry, error) {
		return lookupMarker(desc, marker), nil
	})
	if err != nil {
		return nil, false
	}
	return entry.marker, entry.present
}

// FieldMarker resolves the field by name and reports its marker. A missing
// field reports absent rather than an error: marker scans must tolerate
// members the engine cannot see.
func FieldMarker(t reflect.Type, field, marker string) (*Marker, bool) {
	owner, f, ok := namedField(t, field)
	if !ok {
		return nil, false
	}
	return MarkerOf(fieldDescriptor(owner, f), marker)
}

// FieldMarkers lists every marker on the named field, in tag order.
func FieldMarkers(t reflect.Type, field string) []*Marker {
	_, f, ok := namedField(t, field)
	if !ok {
		return nil
	}
	return parseMarkers(f.Tag)
}

// namedField resolves a field by name. Promoted fields are followed down the
// embedding chain to the struct that declares them, so the tag read is the
// declared field's, never the embedding anonymous field's.
func namedField(t reflect.Type, name string) (reflect.Type, reflect.StructField, bool) {
	t = derefType(t)
	if t.Kind() != reflect.Struct {
		return nil, reflect.StructField{}, false
	}
	f, ok := t.FieldByName(name)
	if !ok {
		return nil, reflect.StructField{}, false
	}
	owner := t
	for _, i := range f.Index[:len(f.Index)-1] {
		owner = derefType(owner.Field(i).Type)
	}
	return owner, owner.Field(f.Index[len(f.Index)-1]), true
}

func lookupMarker(desc MemberDescriptor, marker string) attributeEntry {
	if desc.Kind != KindField {
		return attributeEntry{}
	}
	t := desc.Type
	if desc.Index >= t.NumField() {
		return attributeEntry{}
	}
	f := t.Field(desc.Index)
	for _, m := range parseMarkers(f.Tag) {
		if m.Name == marker {
			return attributeEntry{present: true, marker: m}
		}
	}
	return attributeEntry{}
}

// parseMarkers splits a `mod` tag into its markers. Unknown option keys are
// preserved verbatim for forward compatibility.
func parseMarkers(tag reflect.StructTag) []*Marker {
	raw := tag.Get("mod")
	if raw == "" || raw == "-" {
		return nil
	}

	var markers []*Marker
	for _, chunk := range strings.Split(raw, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		parts := strings.Split(chunk, ",")
		head := strings.TrimSpace(parts[0])
		m := &Marker{Name: head}
		if idx := strings.IndexByte(head, ':'); idx != -1 {
			m.Name = strings.TrimSpace(head[:idx])
			m.Options = map[string]string{"value": strings.TrimSpace(head[idx+1:])}
		}
		for _, opt := range parts[1:] {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				continue
			}
			if idx := strings.IndexByte(opt, ':'); idx != -1 {
				key := strings.TrimSpace(opt[:idx])
				val := strings.TrimSpace(opt[idx+1:])
				if m.Options == nil {
					m.Options = make(map[string]string, 4)
				}
				m.Options[key] = val
			} else {
				m.Flags = append(m.Flags, opt)
			}
		}
		markers = append(markers, m)
	}
	return markers
}

// isSkipped reports whether the field opted out of scanning entirely.
func isSkipped(tag reflect.StructTag) bool {
	return tag.Get("mod") == "-"
}

func derefType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Ptr {
		return t.Elem()
	}
	return t
}
