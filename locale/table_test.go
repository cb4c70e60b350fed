package locale

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `key,en,de
menu.start,Start Game,Spiel starten
menu.quit,Quit,Beenden
item.sword,sword,Schwert
item.arrow,{n} arrow,
item.arrow.plural,{n} arrows,{n} Pfeile
partial.only.en,Only English,
`

func loadSample(t *testing.T) *Table {
	t.Helper()
	table, err := Load(strings.NewReader(sampleCSV), "en")
	require.NoError(t, err)
	return table
}

func TestLoad(t *testing.T) {
	table := loadSample(t)
	assert.Equal(t, []string{"en", "de"}, table.Languages())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		csv      string
		fallback string
	}{
		{"BadHeader", "nope,en\na,b\n", "en"},
		{"MissingFallback", "key,en\na,b\n", "fr"},
		{"Empty", "", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.csv), tt.fallback)
			assert.Error(t, err)
		})
	}
}

func TestGet(t *testing.T) {
	table := loadSample(t)

	got, ok := table.Get("menu.start", "de")
	require.True(t, ok)
	assert.Equal(t, "Spiel starten", got)

	got, ok = table.Get("menu.start", "en")
	require.True(t, ok)
	assert.Equal(t, "Start Game", got)

	// Missing translation falls back to the default language.
	got, ok = table.Get("partial.only.en", "de")
	require.True(t, ok)
	assert.Equal(t, "Only English", got)

	// Unknown language falls back too.
	got, ok = table.Get("menu.quit", "fr")
	require.True(t, ok)
	assert.Equal(t, "Quit", got)

	_, ok = table.Get("missing.key", "en")
	assert.False(t, ok)
}

func TestGetCached(t *testing.T) {
	table := loadSample(t)

	first, ok := table.Get("menu.start", "en")
	require.True(t, ok)
	second, ok := table.Get("menu.start", "en")
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestGetN(t *testing.T) {
	table := loadSample(t)

	// Explicit plural row wins.
	got, ok := table.GetN("item.arrow", "en", 3)
	require.True(t, ok)
	assert.Equal(t, "3 arrows", got)

	got, ok = table.GetN("item.arrow", "de", 5)
	require.True(t, ok)
	assert.Equal(t, "5 Pfeile", got)

	// Singular count uses the singular row.
	got, ok = table.GetN("item.arrow", "en", 1)
	require.True(t, ok)
	assert.Equal(t, "1 arrow", got)

	// No explicit plural row: the singular is pluralized.
	got, ok = table.GetN("item.sword", "en", 2)
	require.True(t, ok)
	assert.Equal(t, "swords", got)

	_, ok = table.GetN("missing.key", "en", 2)
	assert.False(t, ok)
}
