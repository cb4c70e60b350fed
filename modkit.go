package modkit

import (
	"io"

	"github.com/modforge/modkit/accessor"
	"github.com/modforge/modkit/config"
	"github.com/modforge/modkit/locale"
	"github.com/modforge/modkit/modreg"
)

type MemberAccessor = accessor.MemberAccessor
type MethodAccessor = accessor.MethodAccessor
type TypeAccessor = accessor.TypeAccessor
type Marker = accessor.Marker

type Schema = config.Schema
type LocaleTable = locale.Table

type Manifest = modreg.Manifest
type Handle = modreg.Handle
type Registry = modreg.Registry

var (
	GetMember           = accessor.GetMember
	GetMethod           = accessor.GetMethod
	GetType             = accessor.GetType
	BindStatic          = accessor.BindStatic
	RegisterFunc        = accessor.RegisterFunc
	RegisterGeneric     = accessor.RegisterGeneric
	RegisterConstructor = accessor.RegisterConstructor
)

// ScanConfig builds the config schema for a settings prototype.
func ScanConfig(prototype any) (*config.Schema, error) {
	return config.Scan(prototype)
}

// LoadLocale parses a CSV localization table with the given fallback
// language.
func LoadLocale(r io.Reader, fallback string) (*locale.Table, error) {
	return locale.Load(r, fallback)
}

// NewRegistry creates an empty mod registry.
func NewRegistry() *modreg.Registry {
	return modreg.New()
}
