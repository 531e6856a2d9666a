// Package grading generates the fixed sphere and cylinder axes of the stock grid.
package grading

import (
	"slices"
	"strconv"
)

const (
	sphereMax   = 10.00
	sphereCount = 81 // +10.00 .. -10.00
	cylCount    = 27 // 0.00 .. +6.50
	step        = 0.25
)

var (
	spheres   = generate(sphereCount, func(i int) float64 { return sphereMax - float64(i)*step })
	cylinders = generate(cylCount, func(i int) float64 { return float64(i) * step })
)

func generate(n int, at func(int) float64) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = Format(at(i))
	}
	return out
}

// Format renders a grading value with exactly two decimals.
func Format(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	if s == "-0.00" {
		return "0.00"
	}
	return s
}

// Spheres returns the sphere axis, +10.00 down to -10.00.
func Spheres() []string { return slices.Clone(spheres) }

// Cylinders returns the cylinder axis, 0.00 up to 6.50.
func Cylinders() []string { return slices.Clone(cylinders) }

// ParseValue parses an axis string. Unparsable values yield 0 and false.
func ParseValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
