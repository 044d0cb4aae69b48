package localization

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_CataloguesMatch(t *testing.T) {
	l, err := Default()
	require.NoError(t, err)
	require.True(t, l.Has("en"))
	require.True(t, l.Has("uk"))

	for key := range l.translations["en"] {
		_, ok := l.translations["uk"][key]
		assert.True(t, ok, "uk is missing %q", key)
	}
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"i18n/en.json":   {Data: []byte(`{"hello":"Hello","only_en":"English"}`)},
		"i18n/uk.json":   {Data: []byte(`{"hello":"Привіт"}`)},
		"i18n/notes.txt": {Data: []byte(`ignored`)},
	}
	l, err := NewLocalizerFS(fsys, "i18n")
	require.NoError(t, err)

	assert.Equal(t, "Привіт", l.GetString("uk", "hello"))
	assert.Equal(t, "English", l.GetString("uk", "only_en"))
	assert.Equal(t, "Hello", l.GetString("fr", "hello"))
	assert.Equal(t, "missing", l.GetString("en", "missing"))
}

func TestFormat(t *testing.T) {
	l, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "Welcome, boss", l.Format("en", "welcome", "boss"))
}

func TestNewLocalizerFS_BadJSON(t *testing.T) {
	_, err := NewLocalizerFS(fstest.MapFS{"x/en.json": {Data: []byte(`{`)}}, "x")
	assert.Error(t, err)
}
