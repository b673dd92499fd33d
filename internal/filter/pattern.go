package filter

import (
	"regexp"
	"strings"
)

// compiledPattern is an rsync-style glob compiled to a regular expression.
type compiledPattern struct {
	re       *regexp.Regexp
	original string
	anchored bool // matched against the whole relative path
	dirOnly  bool // trailing slash: directories only
}

func compilePattern(pattern string) (*compiledPattern, error) {
	cp := &compiledPattern{original: pattern}

	body := pattern
	if trimmed, ok := strings.CutSuffix(body, "/"); ok {
		cp.dirOnly = true
		body = trimmed
	}
	if trimmed, ok := strings.CutPrefix(body, "/"); ok {
		cp.anchored = true
		body = trimmed
	} else if strings.Contains(body, "/") {
		cp.anchored = true
	}

	expr := globToRegex(body)
	if cp.anchored {
		expr = "^" + expr + "$"
	} else {
		expr = "(^|/)" + expr + "$"
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	cp.re = re
	return cp, nil
}

func (cp *compiledPattern) match(relPath string, isDir bool) bool {
	if cp.dirOnly && !isDir {
		return false
	}
	return cp.re.MatchString(relPath)
}

// globToRegex translates glob syntax: * stays within a path segment, **
// crosses segments, ? is one non-slash character, [..] and [!..] are classes.
func globToRegex(glob string) string {
	var b strings.Builder
	for i := 0; i < len(glob); {
		switch c := glob[i]; c {
		case '*':
			n := doubleStar(glob[i:])
			b.WriteString(n.expr)
			i += n.width
		case '?':
			b.WriteString("[^/]")
			i++
		case '[':
			cls, width := charClass(glob[i:])
			b.WriteString(cls)
			i += width
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}
	return b.String()
}

type starToken struct {
	expr  string
	width int
}

func doubleStar(s string) starToken {
	switch {
	case strings.HasPrefix(s, "**/"):
		return starToken{expr: "(.*/)?", width: 3}
	case strings.HasPrefix(s, "**"):
		return starToken{expr: ".*", width: 2}
	default:
		return starToken{expr: "[^/]*", width: 1}
	}
}

// charClass converts a bracket expression starting at s[0] == '['. An
// unterminated bracket is treated as a literal.
func charClass(s string) (string, int) {
	j := 1
	if j < len(s) && s[j] == '!' {
		j++
	}
	if j < len(s) && s[j] == ']' {
		j++
	}
	end := strings.IndexByte(s[j:], ']')
	if end < 0 {
		return regexp.QuoteMeta("["), 1
	}
	end += j
	body := s[1:end]
	if rest, ok := strings.CutPrefix(body, "!"); ok {
		body = "^" + rest
	}
	return "[" + body + "]", end + 1
}
