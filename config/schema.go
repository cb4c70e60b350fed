// Package config binds marked struct fields to persisted configuration
// entries. A settings struct declares entries with `mod:"config"` markers and
// button actions with `mod:"action"` markers; the schema resolves each one to
// an accessor once and reuses it for every load, save, and click.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/modforge/modkit/accessor"
)

// Entry is one bound configuration setting.
type Entry struct {
	// Key is the persisted path, dot-separated (e.g. "audio.volume").
	Key string
	// Field is the Go field name the entry binds to.
	Field string
	// Description is the optional human-readable text from the marker.
	Description string

	member *accessor.MemberAccessor
}

// Action is one bound button callback: activating it invokes the named
// method on the settings struct.
type Action struct {
	Key    string
	Method string

	method *accessor.MethodAccessor
}

// Schema is the scanned shape of a settings struct: its entries and actions,
// each bound to a cached accessor. Build once per type with Scan.
type Schema struct {
	t       reflect.Type
	entries []*Entry
	actions []*Action
	byKey   map[string]*Entry
}

// Scan builds the schema for the settings struct type of prototype.
// Fields marked `mod:"config"` become entries; the marker's `name` option
// overrides the derived key, and `desc` supplies a description. Fields
// marked `mod:"action,method:M"` become button actions invoking method M.
func Scan(prototype any) (*Schema, error) {
	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("config: settings type must be a struct, got %s", t.Kind())
	}

	ta, err := accessor.GetType(t)
	if err != nil {
		return nil, err
	}

	s := &Schema{t: t, byKey: make(map[string]*Entry)}
	for _, field := range ta.Members() {
		if marker, ok := ta.Marker(field, "config"); ok {
			entry, err := s.buildEntry(field, marker)
			if err != nil {
				return nil, err
			}
			s.entries = append(s.entries, entry)
			s.byKey[entry.Key] = entry
		}
		if marker, ok := ta.Marker(field, "action"); ok {
			action, err := s.buildAction(field, marker)
			if err != nil {
				return nil, err
			}
			s.actions = append(s.actions, action)
		}
	}
	return s, nil
}

func (s *Schema) buildEntry(field string, marker *accessor.Marker) (*Entry, error) {
	member, err := accessor.GetMember(s.t, field)
	if err != nil {
		return nil, fmt.Errorf("config: entry %s: %w", field, err)
	}
	if member.IsIndexer() {
		return nil, fmt.Errorf("config: entry %s: indexer members cannot be persisted", field)
	}
	entry := &Entry{Key: deriveKey(field), Field: field, member: member}
	if name, ok := marker.Option("name"); ok {
		entry.Key = name
	}
	if desc, ok := marker.Option("desc"); ok {
		entry.Description = desc
	}
	return entry, nil
}

func (s *Schema) buildAction(field string, marker *accessor.Marker) (*Action, error) {
	methodName, ok := marker.Option("method")
	if !ok {
		return nil, fmt.Errorf("config: action %s: marker needs a method option", field)
	}
	method, err := accessor.GetMethod(s.t, methodName)
	if err != nil {
		return nil, fmt.Errorf("config: action %s: %w", field, err)
	}
	a := &Action{Key: deriveKey(field), Method: methodName, method: method}
	if name, ok := marker.Option("name"); ok {
		a.Key = name
	}
	return a, nil
}

// Entries lists the bound configuration entries in declaration order.
func (s *Schema) Entries() []*Entry { return s.entries }

// Actions lists the bound button actions in declaration order.
func (s *Schema) Actions() []*Action { return s.actions }

// Entry returns the entry bound to key.
func (s *Schema) Entry(key string) (*Entry, bool) {
	e, ok := s.byKey[key]
	return e, ok
}

// Invoke triggers the action bound to key on the given settings instance.
func (s *Schema) Invoke(settings any, key string) error {
	for _, a := range s.actions {
		if a.Key == key {
			_, err := a.method.Invoke(settings)
			return err
		}
	}
	return fmt.Errorf("config: no action bound to %q", key)
}

// deriveKey lowercases the field name with dots between words, matching the
// persisted layout convention ("MaxFPS" -> "max.fps").
func deriveKey(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && field[i-1] >= 'a' && field[i-1] <= 'z' {
				b.WriteByte('.')
			}
			b.WriteByte(byte(r - 'A' + 'a'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
