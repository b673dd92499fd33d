package filter

import (
	"fmt"
	"strconv"
	"strings"
)

var sizeUnits = map[string]int64{
	"":  1,
	"B": 1,
	"K": 1 << 10,
	"M": 1 << 20,
	"G": 1 << 30,
	"T": 1 << 40,
}

// ParseSize parses a human-readable size into bytes. Suffixes K, M, G and T
// (optionally followed by B or iB, case-insensitive) are powers of 1024:
// "100", "64K", "1.5G", "100MB" and "2GiB" are all accepted.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	upper := strings.ToUpper(s)
	numEnd := strings.IndexFunc(upper, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	if numEnd < 0 {
		numEnd = len(upper)
	}
	numStr, unit := upper[:numEnd], strings.TrimSpace(upper[numEnd:])
	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if len(unit) > 1 {
		unit = strings.TrimSuffix(strings.TrimSuffix(unit, "B"), "I")
	}
	multiplier, ok := sizeUnits[unit]
	if !ok {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		return n * multiplier, nil
	}
	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return int64(f * float64(multiplier)), nil
}
