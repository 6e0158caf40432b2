// Package zoom derives the zoom range of a viewport from its content mode.
package zoom

import (
	"fmt"
	"strconv"
	"strings"
)

type modeKind uint8

const (
	aspectFill modeKind = iota
	aspectFit
	widthFill
	heightFill
	customOffset
)

// ContentMode decides how the image's native aspect ratio maps into the
// viewport at minimum zoom. ContentMode values are comparable; two
// CustomOffset modes are equal when their factors are equal.
type ContentMode struct {
	kind   modeKind
	factor float64
}

var (
	// AspectFill covers the whole viewport, cropping the longer side.
	AspectFill = ContentMode{kind: aspectFill}
	// AspectFit shows the whole image inside the viewport.
	AspectFit = ContentMode{kind: aspectFit}
	// WidthFill matches the image width to the viewport width.
	WidthFill = ContentMode{kind: widthFill}
	// HeightFill matches the image height to the viewport height.
	HeightFill = ContentMode{kind: heightFill}
)

// CustomOffset scales the width-fill scale by factor.
func CustomOffset(factor float64) ContentMode {
	return ContentMode{kind: customOffset, factor: factor}
}

// Factor returns the CustomOffset factor, and false for other modes.
func (m ContentMode) Factor() (float64, bool) {
	return m.factor, m.kind == customOffset
}

// IsCustomOffset reports whether m was built by CustomOffset.
func (m ContentMode) IsCustomOffset() bool {
	return m.kind == customOffset
}

func (m ContentMode) String() string {
	switch m.kind {
	case aspectFill:
		return "aspectFill"
	case aspectFit:
		return "aspectFit"
	case widthFill:
		return "widthFill"
	case heightFill:
		return "heightFill"
	case customOffset:
		return "customOffset:" + strconv.FormatFloat(m.factor, 'g', -1, 64)
	}
	return "ContentMode(" + strconv.Itoa(int(m.kind)) + ")"
}

// ParseContentMode parses the form produced by String. A fraction such
// as "customOffset:2/3" is accepted for the factor.
func ParseContentMode(s string) (ContentMode, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch strings.ToLower(name) {
	case "aspectfill":
		return AspectFill, nil
	case "aspectfit":
		return AspectFit, nil
	case "widthfill":
		return WidthFill, nil
	case "heightfill":
		return HeightFill, nil
	case "customoffset":
		if !hasArg {
			return ContentMode{}, fmt.Errorf("content mode %q: missing factor", s)
		}
		f, err := parseFactor(arg)
		if err != nil {
			return ContentMode{}, fmt.Errorf("content mode %q: %w", s, err)
		}
		return CustomOffset(f), nil
	}
	return ContentMode{}, fmt.Errorf("unknown content mode %q", s)
}

func parseFactor(s string) (float64, error) {
	num, den, isFrac := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(strings.TrimSpace(num), 64)
	if err != nil {
		return 0, err
	}
	if !isFrac {
		return n, nil
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(den), 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("zero denominator")
	}
	return n / d, nil
}
