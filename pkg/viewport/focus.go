package viewport

import (
	"fmt"
	"strings"
)

// FocusOffset decides where content is scrolled to after it is loaded,
// reconfigured or rotated.
type FocusOffset uint8

const (
	// Beginning scrolls to the top left corner.
	Beginning FocusOffset = iota
	// Center scrolls to the middle of the overflowing axis.
	Center
)

func (f FocusOffset) String() string {
	switch f {
	case Beginning:
		return "beginning"
	case Center:
		return "center"
	}
	return fmt.Sprintf("FocusOffset(%d)", uint8(f))
}

// ParseFocusOffset parses "beginning" or "center".
func ParseFocusOffset(s string) (FocusOffset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginning", "begin", "top":
		return Beginning, nil
	case "center", "centre":
		return Center, nil
	}
	return 0, fmt.Errorf("unknown focus offset %q", s)
}
