package accessor

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type annotated struct {
	Volume  float64 `mod:"config,name:audio.volume,default:0.8"`
	Debug   bool    `mod:"config;action:OnDebugToggle"`
	Hidden  string  `mod:"-"`
	Plain   int
	Special string `mod:"config,experimental,name:special"`
}

var annotatedType = reflect.TypeOf(annotated{})

func TestFieldMarker(t *testing.T) {
	ClearCaches()

	m, ok := FieldMarker(annotatedType, "Volume", "config")
	require.True(t, ok)
	assert.Equal(t, "config", m.Name)

	name, ok := m.Option("name")
	require.True(t, ok)
	assert.Equal(t, "audio.volume", name)

	def, ok := m.Option("default")
	require.True(t, ok)
	assert.Equal(t, "0.8", def)

	_, ok = m.Option("missing")
	assert.False(t, ok)
}

func TestMultipleMarkers(t *testing.T) {
	ClearCaches()

	config, ok := FieldMarker(annotatedType, "Debug", "config")
	require.True(t, ok)
	assert.Empty(t, config.Options)

	action, ok := FieldMarker(annotatedType, "Debug", "action")
	require.True(t, ok)
	assert.Equal(t, "action", action.Name)

	// The inline value after the marker name lands in the "value" option.
	v, ok := action.Option("value")
	require.True(t, ok)
	assert.Equal(t, "OnDebugToggle", v)
}

type audioSection struct {
	Volume float64 `mod:"config,name:audio.volume"`
}

type layeredSettings struct {
	audioSection
	Extra string `mod:"config"`
}

func TestPromotedFieldMarker(t *testing.T) {
	ClearCaches()
	layeredType := reflect.TypeOf(layeredSettings{})

	// A promoted field reports the markers its declaring struct carries.
	m, ok := FieldMarker(layeredType, "Volume", "config")
	require.True(t, ok)
	name, ok := m.Option("name")
	require.True(t, ok)
	assert.Equal(t, "audio.volume", name)

	markers := FieldMarkers(layeredType, "Volume")
	require.Len(t, markers, 1)
	assert.Equal(t, "config", markers[0].Name)

	// Direct fields of the embedding struct resolve as before.
	_, ok = FieldMarker(layeredType, "Extra", "config")
	assert.True(t, ok)
}

func TestMarkerFlags(t *testing.T) {
	ClearCaches()

	m, ok := FieldMarker(annotatedType, "Special", "config")
	require.True(t, ok)
	assert.True(t, m.HasFlag("experimental"))
	assert.False(t, m.HasFlag("stable"))
}

func TestMarkerAbsent(t *testing.T) {
	ClearCaches()

	tests := []struct {
		name  string
		field string
	}{
		{"PlainField", "Plain"},
		{"SkippedField", "Hidden"},
		{"MissingField", "Nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := FieldMarker(annotatedType, tt.field, "config")
			assert.False(t, ok)
			assert.Nil(t, m)
		})
	}
}

func TestFieldMarkers(t *testing.T) {
	ClearCaches()

	markers := FieldMarkers(annotatedType, "Debug")
	require.Len(t, markers, 2)
	assert.Equal(t, "config", markers[0].Name)
	assert.Equal(t, "action", markers[1].Name)

	assert.Nil(t, FieldMarkers(annotatedType, "Hidden"))
	assert.Nil(t, FieldMarkers(annotatedType, "Nope"))
}

func TestMarkerMemoization(t *testing.T) {
	ClearCaches()

	m1, ok := FieldMarker(annotatedType, "Volume", "config")
	require.True(t, ok)
	m2, ok := FieldMarker(annotatedType, "Volume", "config")
	require.True(t, ok)

	assert.True(t, m1 == m2, "expected the memoized marker instance")
	assert.Equal(t, 1, CacheStats()["attributes"])
}
