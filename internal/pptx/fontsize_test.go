package pptx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFontSizer_StepDown(t *testing.T) {
	sizer := NewFontSizer(10)

	tests := []struct {
		name     string
		size     int
		expected int
	}{
		{name: "standard size steps to next", size: 2400, expected: 2000},
		{name: "non-standard size snaps below", size: 2500, expected: 2400},
		{name: "above ladder top", size: 9600, expected: 7200},
		{name: "at ladder bottom", size: 500, expected: 1000},
		{name: "below ladder bottom", size: 400, expected: 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sizer.StepDown(tt.size))
		})
	}
}

func TestFontSizer_SizeFor(t *testing.T) {
	sizer := NewFontSizer(10)

	tests := []struct {
		name      string
		size      int
		origRunes int
		newRunes  int
		expected  int
	}{
		{name: "shrinking text keeps size", size: 2400, origRunes: 11, newRunes: 4, expected: 2400},
		{name: "equal length keeps size", size: 2400, origRunes: 5, newRunes: 5, expected: 2400},
		{name: "mild growth one step", size: 2400, origRunes: 10, newRunes: 14, expected: 2000},
		{name: "strong growth two steps", size: 2400, origRunes: 2, newRunes: 11, expected: 1800},
		{name: "clamped at floor", size: 1000, origRunes: 2, newRunes: 11, expected: 1000},
		{name: "inherited size untouched", size: 0, origRunes: 2, newRunes: 11, expected: 0},
		{name: "empty original untouched", size: 2400, origRunes: 0, newRunes: 11, expected: 2400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sizer.SizeFor(tt.size, tt.origRunes, tt.newRunes))
		})
	}
}

func TestFontSizer_NeverGrows(t *testing.T) {
	sizer := NewFontSizer(10)

	// A floor above the current size must not push the size up
	high := NewFontSizer(30)
	assert.Equal(t, 1200, high.SizeFor(1200, 2, 20))

	// Growth from any standard size stays at or below the original. Sizes
	// already at or below the floor cannot shrink further, so for those the
	// lower bound is the size itself, not the floor.
	for _, size := range standardSizes {
		got := sizer.SizeFor(size, 2, 20)
		assert.LessOrEqual(t, got, size, "size %d grew to %d", size, got)
		lower := sizer.Floor
		if size < lower {
			lower = size
		}
		assert.GreaterOrEqual(t, got, lower, "size %d shrank past %d to %d", size, lower, got)
	}

	// At and below the floor the size passes through unchanged
	for _, size := range []int{1000, 900, 500} {
		assert.Equal(t, size, sizer.SizeFor(size, 2, 20))
	}
}
