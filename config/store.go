package config

import (
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Load reads every schema entry present in the JSON document and writes it
// into settings through the bound member accessors. Keys absent from the
// document keep their current value; unknown keys in the document are
// ignored. Type mismatches are reported with the offending key.
func (s *Schema) Load(doc []byte, settings any) error {
	for _, entry := range s.entries {
		result := gjson.GetBytes(doc, entry.Key)
		if !result.Exists() {
			continue
		}
		value, err := decode(result, entry.member.ValueType())
		if err != nil {
			return fmt.Errorf("config: %s: %w", entry.Key, err)
		}
		if err := entry.member.SetValue(settings, value); err != nil {
			return fmt.Errorf("config: %s: %w", entry.Key, err)
		}
	}
	return nil
}

// Save reads every entry from settings and writes it into doc, returning the
// updated document. A nil doc starts from an empty object.
func (s *Schema) Save(doc []byte, settings any) ([]byte, error) {
	if doc == nil {
		doc = []byte("{}")
	}
	var err error
	for _, entry := range s.entries {
		var value any
		value, err = entry.member.GetValue(settings)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", entry.Key, err)
		}
		doc, err = sjson.SetBytes(doc, entry.Key, normalize(value))
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", entry.Key, err)
		}
	}
	return doc, nil
}

// decode converts a JSON value to the entry's declared Go type. Named
// integer types (enums) come back through their underlying representation.
func decode(result gjson.Result, want reflect.Type) (any, error) {
	switch want.Kind() {
	case reflect.String:
		if result.Type != gjson.String {
			return nil, typeErr("string", result)
		}
		return result.String(), nil
	case reflect.Bool:
		if !result.IsBool() {
			return nil, typeErr("boolean", result)
		}
		return result.Bool(), nil
	case reflect.Float32, reflect.Float64:
		if result.Type != gjson.Number {
			return nil, typeErr("number", result)
		}
		return reflect.ValueOf(result.Float()).Convert(want).Interface(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if result.Type != gjson.Number {
			return nil, typeErr("integer", result)
		}
		return reflect.ValueOf(result.Int()).Convert(want).Interface(), nil
	default:
		return nil, fmt.Errorf("unsupported entry type %s", want)
	}
}

// normalize flattens named types to JSON-friendly primitives before writing.
func normalize(value any) any {
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		return v.Float()
	default:
		return value
	}
}

func typeErr(want string, got gjson.Result) error {
	return fmt.Errorf("expected %s, got %s", want, got.Type)
}
