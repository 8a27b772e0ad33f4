package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidForceNumber(t *testing.T) {
	valid := []string{"90119292MI", "01020344MC", "12345678PE", "87654321PV"}
	for _, number := range valid {
		assert.True(t, ValidForceNumber(number), number)
	}

	invalid := []string{"", "98045679M", "1234567MI", "123456789MI", "12345678XX", "12345678mi"}
	for _, number := range invalid {
		assert.False(t, ValidForceNumber(number), number)
	}
}

func TestValidMusteringCode(t *testing.T) {
	assert.True(t, ValidMusteringCode("C2"))
	assert.True(t, ValidMusteringCode("INT"))
	assert.False(t, ValidMusteringCode("c2"))
	assert.False(t, ValidMusteringCode("XYZ"))
}
