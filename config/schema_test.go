package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type quality int

const (
	low quality = iota
	medium
	high
)

type settings struct {
	Volume     float64 `mod:"config,name:audio.volume,desc:Master volume"`
	PlayerName string  `mod:"config"`
	MaxFPS     int     `mod:"config"`
	Shadows    quality `mod:"config,name:video.shadows"`
	VSync      bool    `mod:"config"`
	Debug      bool
	ResetBtn   struct{} `mod:"action,method:Reset,name:reset"`

	resets int
}

func (s *settings) Reset() {
	s.Volume = 1.0
	s.resets++
}

func TestScan(t *testing.T) {
	schema, err := Scan(&settings{})
	require.NoError(t, err)

	require.Len(t, schema.Entries(), 5)
	require.Len(t, schema.Actions(), 1)

	volume, ok := schema.Entry("audio.volume")
	require.True(t, ok)
	assert.Equal(t, "Volume", volume.Field)
	assert.Equal(t, "Master volume", volume.Description)

	// Unmarked fields are not scanned.
	_, ok = schema.Entry("debug")
	assert.False(t, ok)

	// Derived keys split camel-case words with dots.
	_, ok = schema.Entry("player.name")
	assert.True(t, ok)
}

func TestScanRejectsNonStruct(t *testing.T) {
	_, err := Scan(42)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	schema, err := Scan(&settings{})
	require.NoError(t, err)

	doc := []byte(`{
		"audio": {"volume": 0.25},
		"player": {"name": "hero"},
		"video": {"shadows": 2},
		"vsync": true,
		"unknown": {"key": 1}
	}`)

	s := &settings{Volume: 1.0, MaxFPS: 60}
	require.NoError(t, schema.Load(doc, s))

	assert.Equal(t, 0.25, s.Volume)
	assert.Equal(t, "hero", s.PlayerName)
	assert.Equal(t, high, s.Shadows)
	assert.True(t, s.VSync)
	// Absent keys keep their current value.
	assert.Equal(t, 60, s.MaxFPS)
}

func TestLoadTypeMismatch(t *testing.T) {
	schema, err := Scan(&settings{})
	require.NoError(t, err)

	err = schema.Load([]byte(`{"audio": {"volume": "loud"}}`), &settings{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audio.volume")
}

func TestSaveRoundTrip(t *testing.T) {
	schema, err := Scan(&settings{})
	require.NoError(t, err)

	s := &settings{
		Volume:     0.7,
		PlayerName: "mage",
		MaxFPS:     144,
		Shadows:    medium,
		VSync:      true,
	}
	doc, err := schema.Save(nil, s)
	require.NoError(t, err)

	assert.Equal(t, 0.7, gjson.GetBytes(doc, "audio.volume").Float())
	assert.Equal(t, "mage", gjson.GetBytes(doc, "player.name").String())
	assert.Equal(t, int64(1), gjson.GetBytes(doc, "video.shadows").Int())

	loaded := &settings{}
	require.NoError(t, schema.Load(doc, loaded))
	assert.Equal(t, s.Volume, loaded.Volume)
	assert.Equal(t, s.PlayerName, loaded.PlayerName)
	assert.Equal(t, s.MaxFPS, loaded.MaxFPS)
	assert.Equal(t, s.Shadows, loaded.Shadows)
	assert.Equal(t, s.VSync, loaded.VSync)
}

func TestInvokeAction(t *testing.T) {
	schema, err := Scan(&settings{})
	require.NoError(t, err)

	s := &settings{Volume: 0.1}
	require.NoError(t, schema.Invoke(s, "reset"))
	assert.Equal(t, 1.0, s.Volume)
	assert.Equal(t, 1, s.resets)

	err = schema.Invoke(s, "missing")
	assert.Error(t, err)
}
