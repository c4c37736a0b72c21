package pins

import (
	"strings"
	"testing"

	"CricketScoreApi/internal/assert"
)

func TestGeneratePin(t *testing.T) {
	pin := GeneratePin(8)
	assert.Equal(t, len(pin), 8)

	for _, r := range pin {
		if !strings.ContainsRune(string(letterRunes), r) {
			t.Errorf("pin contains unexpected rune %q", r)
		}
	}
}

func TestHashAndMatches(t *testing.T) {
	hash, err := Hash("1907cc")
	assert.NilError(t, err)

	ok, err := Matches("1907cc", hash)
	assert.NilError(t, err)
	assert.Equal(t, ok, true)

	ok, err = Matches("wrong", hash)
	assert.NilError(t, err)
	assert.Equal(t, ok, false)
}
