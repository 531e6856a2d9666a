package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpheres(t *testing.T) {
	s := Spheres()
	require.Len(t, s, 81)
	assert.Equal(t, "10.00", s[0])
	assert.Equal(t, "9.75", s[1])
	assert.Equal(t, "0.00", s[40])
	assert.Equal(t, "-0.25", s[41])
	assert.Equal(t, "-10.00", s[80])
}

func TestCylinders(t *testing.T) {
	c := Cylinders()
	require.Len(t, c, 27)
	assert.Equal(t, "0.00", c[0])
	assert.Equal(t, "0.75", c[3])
	assert.Equal(t, "6.50", c[26])
}

func TestAxesAreImmutable(t *testing.T) {
	s := Spheres()
	s[0] = "changed"
	assert.Equal(t, "10.00", Spheres()[0])
}

func TestParseValue(t *testing.T) {
	v, ok := ParseValue("+2.00")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)

	_, ok = ParseValue("abc")
	assert.False(t, ok)
}
