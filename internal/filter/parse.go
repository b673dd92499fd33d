package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads rules from a file, one per line:
//
//	+ pattern   include
//	- pattern   exclude
//	pattern     exclude
//	# comment
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		pattern, include := line, false
		if rest, ok := strings.CutPrefix(line, "+ "); ok {
			pattern, include = strings.TrimSpace(rest), true
		} else if rest, ok := strings.CutPrefix(line, "- "); ok {
			pattern = strings.TrimSpace(rest)
		}

		if err := c.add(pattern, include); err != nil {
			return fmt.Errorf("filter file %s line %d: %w", path, lineNum, err)
		}
	}
	return scanner.Err()
}
