package filter

// Rule is a single include or exclude rule.
type Rule struct {
	Pattern *compiledPattern
	Include bool
}

// Chain is an ordered list of rules plus file size bounds, evaluated by the
// walker for every entry below a scan root. Paths are slash-separated and
// relative to the root being walked.
type Chain struct {
	rules   []Rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// AddExclude appends an exclude rule.
func (c *Chain) AddExclude(pattern string) error {
	return c.add(pattern, false)
}

// AddInclude appends an include rule.
func (c *Chain) AddInclude(pattern string) error {
	return c.add(pattern, true)
}

// AddExcludes appends one exclude rule per pattern, stopping at the first
// invalid pattern.
func (c *Chain) AddExcludes(patterns ...string) error {
	for _, p := range patterns {
		if err := c.AddExclude(p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Chain) add(pattern string, include bool) error {
	cp, err := compilePattern(pattern)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, Rule{Pattern: cp, Include: include})
	return nil
}

// SetMinSize sets the minimum file size; zero disables the bound.
func (c *Chain) SetMinSize(n int64) {
	c.minSize = n
}

// SetMaxSize sets the maximum file size; zero disables the bound.
func (c *Chain) SetMaxSize(n int64) {
	c.maxSize = n
}

// Empty reports whether the chain has no rules and no size bounds.
func (c *Chain) Empty() bool {
	return len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0
}

// AllowDir reports whether the walker should descend into the directory at
// relPath. Size bounds never apply to directories.
func (c *Chain) AllowDir(relPath string) bool {
	return c.Match(relPath, true, 0)
}

// AllowFile reports whether a regular file at relPath of the given size
// should be considered.
func (c *Chain) AllowFile(relPath string, size int64) bool {
	return c.Match(relPath, false, size)
}

// Match returns true if the path should be kept. The first matching rule
// wins; a path no rule matches is kept.
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if c == nil {
		return true
	}
	if !isDir && !c.sizeOK(size) {
		return false
	}
	for _, rule := range c.rules {
		if rule.Pattern.match(relPath, isDir) {
			return rule.Include
		}
	}
	return true
}

func (c *Chain) sizeOK(size int64) bool {
	if c.minSize > 0 && size < c.minSize {
		return false
	}
	if c.maxSize > 0 && size > c.maxSize {
		return false
	}
	return true
}
