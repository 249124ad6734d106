package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseArea parses an area specification string. Two grammars are accepted:
//
//	x:y:w:h    four non-negative integers, a literal rectangle
//	center:w:h two positive integers, centered on the screen
//
// Any other shape fails with an invalid-format error carrying a corrective
// example.
func ParseArea(s string) (Area, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")

	if len(parts) == 3 && strings.EqualFold(parts[0], "center") {
		w, errW := parsePositive(parts[1])
		h, errH := parsePositive(parts[2])
		if errW != nil || errH != nil {
			return Area{}, formatError(s)
		}
		return Centered(w, h), nil
	}

	if len(parts) == 4 {
		vals := make([]int, 4)
		for i, p := range parts {
			v, err := parseNonNegative(p)
			if err != nil {
				return Area{}, formatError(s)
			}
			vals[i] = v
		}
		return Custom(vals[0], vals[1], vals[2], vals[3]), nil
	}

	return Area{}, formatError(s)
}

func formatError(s string) *Error {
	return &Error{
		Kind: ErrInvalidFormat,
		Msg:  fmt.Sprintf("invalid area %q: use x:y:w:h (e.g. 0:0:1280:720) or center:w:h (e.g. center:800:600)", s),
	}
}

func parseNonNegative(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %d", v)
	}
	return v, nil
}

func parsePositive(s string) (int, error) {
	v, err := parseNonNegative(s)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, fmt.Errorf("zero value")
	}
	return v, nil
}
