package i18n

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestT(t *testing.T) {
	assert.Equal(t, "Dashboard", T("en", "dashboard"))
	assert.Equal(t, "डैशबोर्ड", T("hi", "dashboard"))
	assert.Equal(t, "Required", T("hi", "required"), "missing hi phrase falls back to English")
	assert.Equal(t, "Dashboard", T("fr", "dashboard"), "unknown language falls back to English")
	assert.Equal(t, "no_such_code", T("en", "no_such_code"), "unknown code falls back to itself")
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "hi", DetectLanguage("hi-IN,hi;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", DetectLanguage("en-US,en;q=0.9"))
	assert.Equal(t, "en", DetectLanguage("fr-FR,de;q=0.8"), "unsupported languages default to English")
	assert.Equal(t, "en", DetectLanguage(""))
}

type fakeTranslator struct {
	calls int
	out   string
	err   error
}

func (f *fakeTranslator) Translate(phrase, lang string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func TestCachePopulatesOnMiss(t *testing.T) {
	tr := &fakeTranslator{out: "Tableau de bord"}
	c := NewCache(tr)

	// base catalog hit never consults the translator
	assert.Equal(t, "डैशबोर्ड", c.Lookup("hi", "dashboard"))
	assert.Equal(t, 0, tr.calls)

	// miss translates once, then serves from cache
	assert.Equal(t, "Tableau de bord", c.Lookup("fr", "dashboard"))
	assert.Equal(t, "Tableau de bord", c.Lookup("fr", "dashboard"))
	assert.Equal(t, 1, tr.calls)
}

func TestCacheFallsBackToEnglishOnFailure(t *testing.T) {
	c := NewCache(&fakeTranslator{err: errors.New("unavailable")})
	assert.Equal(t, "Dashboard", c.Lookup("fr", "dashboard"))

	// nil translator degrades the same way
	assert.Equal(t, "Dashboard", NewCache(nil).Lookup("fr", "dashboard"))
}

func TestCacheEnglishShortCircuits(t *testing.T) {
	tr := &fakeTranslator{out: "never used"}
	c := NewCache(tr)
	assert.Equal(t, "Dashboard", c.Lookup("en", "dashboard"))
	assert.Equal(t, 0, tr.calls)
}
