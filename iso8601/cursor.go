package iso8601

// cursor scans a string one byte at a time. Positions are byte offsets.
type cursor struct {
	s string
	i int
}

func (c *cursor) peek() byte {
	if c.i >= len(c.s) {
		return 0
	}
	return c.s[c.i]
}

// peekAt returns the byte k positions ahead of the cursor, or 0.
func (c *cursor) peekAt(k int) byte {
	if c.i+k >= len(c.s) {
		return 0
	}
	return c.s[c.i+k]
}

func (c *cursor) advance() {
	if c.i < len(c.s) {
		c.i++
	}
}

func (c *cursor) atEnd() bool { return c.i >= len(c.s) }

func (c *cursor) pos() int { return c.i }

// digitRun counts the consecutive ASCII digits starting at the cursor.
func (c *cursor) digitRun() int {
	n := 0
	for j := c.i; j < len(c.s) && isDigit(c.s[j]); j++ {
		n++
	}
	return n
}

// digits consumes exactly n digits and returns their value.
func (c *cursor) digits(n int, field string) (int, error) {
	v := 0
	for k := 0; k < n; k++ {
		if c.atEnd() {
			return 0, errTruncated(c.i, field, n-k)
		}
		ch := c.peek()
		if !isDigit(ch) {
			return 0, errInvalidChar(c.s, c.i, field)
		}
		v = v*10 + int(ch-'0')
		c.advance()
	}
	return v, nil
}

func isDigit(b byte) bool { return '0' <= b && b <= '9' }
