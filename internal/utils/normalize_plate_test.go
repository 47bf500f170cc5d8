package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlate(t *testing.T) {
	assert.Equal(t, "AB12CDE", NormalizePlate("ab 12 cde"))
	assert.Equal(t, "AB12CDE", NormalizePlate("AB12CDE"))
	assert.Equal(t, "AB12CDE", NormalizePlate("  ab12-cde\t"))
	assert.Equal(t, "", NormalizePlate("   "))
}

func TestNormalizePlateIdempotent(t *testing.T) {
	inputs := []string{"ab 12 cde", "AB-12-CDE", " x 1 ", ""}
	for _, in := range inputs {
		once := NormalizePlate(in)
		assert.Equal(t, once, NormalizePlate(once))
	}
}

func TestNormalizePlateCaseAndWhitespaceInsensitive(t *testing.T) {
	assert.Equal(t, NormalizePlate("AB12CDE"), NormalizePlate("ab 12 cde"))
	assert.Equal(t, NormalizePlate("a b c"), NormalizePlate("ABC"))
}
