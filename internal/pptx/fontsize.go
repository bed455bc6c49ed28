package pptx

// Standard presentation font sizes in hundredths of a point, descending.
// Shrinking steps down this ladder instead of scaling, so resized text still
// lands on a size a deck author would have picked.
var standardSizes = []int{
	7200, 4800, 4400, 4000, 3600, 3200, 2800, 2400,
	2000, 1800, 1600, 1400, 1200, 1100, 1000, 900,
	800, 700, 600, 500,
}

// FontSizer decides whether and how far to shrink a run's font after
// translation, clamped at a floor below which legibility wins over fit.
type FontSizer struct {
	Floor int // hundredths of a point
}

// NewFontSizer returns a sizer with the given floor in whole points.
func NewFontSizer(floorPoints int) *FontSizer {
	return &FontSizer{Floor: floorPoints * 100}
}

// StepDown returns the next standard size strictly below size, or the floor
// when size is already at or below the bottom of the ladder.
func (s *FontSizer) StepDown(size int) int {
	for _, std := range standardSizes {
		if std < size {
			return std
		}
	}
	return s.Floor
}

// SizeFor returns the size to use for a run whose text grew from origRunes
// to newRunes characters. Text that did not grow keeps its size. Growth
// steps down the ladder once, or twice past a 1.6x expansion. The result
// never drops below the floor and never exceeds the original size.
func (s *FontSizer) SizeFor(size, origRunes, newRunes int) int {
	if size <= 0 || origRunes <= 0 || newRunes <= origRunes {
		return size
	}

	result := s.StepDown(size)
	if newRunes > origRunes*8/5 {
		result = s.StepDown(result)
	}

	if result < s.Floor {
		result = s.Floor
	}
	if result > size {
		result = size
	}
	return result
}
