package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"fandomia/internal/validate"
)

func TestEmail(t *testing.T) {
	s, ok := validate.Email("  ana@fandomia.test ")
	assert.True(t, ok)
	assert.Equal(t, "ana@fandomia.test", s)
	_, ok = validate.Email("ana@")
	assert.False(t, ok)
}

func TestPassword(t *testing.T) {
	assert.True(t, validate.Password("Passw0rd!"))
	assert.False(t, validate.Password("password"))
	assert.False(t, validate.Password("Sh0rt!"))
}

func TestPhoneOptional(t *testing.T) {
	_, ok := validate.Phone("")
	assert.True(t, ok)
	_, ok = validate.Phone("+52 (55) 1234-5678")
	assert.True(t, ok)
	_, ok = validate.Phone("call me")
	assert.False(t, ok)
}

func TestSlugAndToken(t *testing.T) {
	_, ok := validate.Slug("figura-goku-super-saiyajin")
	assert.True(t, ok)
	_, ok = validate.Slug("Figura Goku")
	assert.False(t, ok)
	_, ok = validate.Token("9b2f0c8e-0a51-4f0e-9d55-2b1a5d1e7f3c")
	assert.True(t, ok)
	_, ok = validate.Token("a b")
	assert.False(t, ok)
}

func TestQuery(t *testing.T) {
	s, ok := validate.Query("  naruto ")
	assert.True(t, ok)
	assert.Equal(t, "naruto", s)

	s, ok = validate.Query("")
	assert.True(t, ok, "empty query lists everything")
	assert.Empty(t, s)

	_, ok = validate.Query("Pokémon 100%")
	assert.True(t, ok)
	_, ok = validate.Query("taza\x00")
	assert.False(t, ok)
	_, ok = validate.Query(strings.Repeat("a", 61))
	assert.False(t, ok)
}
