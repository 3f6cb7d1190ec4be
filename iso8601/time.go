package iso8601

// maxOffsetMinutes bounds the magnitude of a UTC offset.
const maxOffsetMinutes = 1440

// clock parses "hh", "hhmm", "hhmmss", "hh:mm" or "hh:mm:ss" with an
// optional fraction of a second and an optional UTC designator.
func (p *parser) clock(dt *DateTime) (format, error) {
	hourPos := p.pos()
	hour, err := p.digits(2, "hour")
	if err != nil {
		return formatNone, err
	}

	f := formatNone
	minute, second, micro := 0, 0, 0
	minutePos, secondPos := 0, 0
	hasSeconds := false

	switch c := p.peek(); {
	case c == ':':
		f = formatExtended
		p.advance()
		minutePos = p.pos()
		if minute, err = p.digits(2, "minute"); err != nil {
			return f, err
		}
		switch c := p.peek(); {
		case c == ':':
			p.advance()
			secondPos = p.pos()
			if second, err = p.digits(2, "second"); err != nil {
				return f, err
			}
			hasSeconds = true
		case isDigit(c):
			return f, errf(p.pos(), ErrFormat, "second", "missing separator before second")
		}

	case isDigit(c):
		f = formatBasic
		minutePos = p.pos()
		if minute, err = p.digits(2, "minute"); err != nil {
			return f, err
		}
		switch c := p.peek(); {
		case isDigit(c):
			secondPos = p.pos()
			if second, err = p.digits(2, "second"); err != nil {
				return f, err
			}
			hasSeconds = true
		case c == ':':
			return f, errf(p.pos(), ErrFormat, "second", "separator in a basic format time")
		}
	}

	if hasSeconds {
		if c := p.peek(); c == '.' || c == ',' {
			p.advance()
			if micro, err = p.fraction(); err != nil {
				return f, err
			}
		}
	}

	switch {
	case hour == 24:
		if minute != 0 || second != 0 || micro != 0 {
			return f, errRange(hourPos, ErrInvalidValue, "hour", hour, 0, 23)
		}
		dt.MidnightRollover = true
	case hour > 23:
		return f, errRange(hourPos, ErrInvalidValue, "hour", hour, 0, 23)
	}
	if minute > 59 {
		return f, errRange(minutePos, ErrInvalidValue, "minute", minute, 0, 59)
	}
	if second > 59 {
		return f, errRange(secondPos, ErrInvalidValue, "second", second, 0, 59)
	}
	dt.Clock = Clock{Hour: hour, Minute: minute, Second: second, Microsecond: micro}

	switch p.peek() {
	case 'Z', '+', '-':
		z, err := p.zone()
		if err != nil {
			return f, err
		}
		dt.Zone = &z
	}
	return f, nil
}

// fraction reads the digits after a decimal sign as microseconds. Digits
// past the sixth are consumed and dropped.
func (p *parser) fraction() (int, error) {
	n := p.digitRun()
	if n == 0 {
		if p.atEnd() {
			return 0, errTruncated(p.pos(), "fraction", 1)
		}
		return 0, errInvalidChar(p.s, p.pos(), "fraction")
	}
	micro := 0
	for k := 0; k < n; k++ {
		if k < 6 {
			micro = micro*10 + int(p.peek()-'0')
		}
		p.advance()
	}
	for k := n; k < 6; k++ {
		micro *= 10
	}
	return micro, nil
}

func (p *parser) zone() (Zone, error) {
	var neg bool
	switch p.peek() {
	case 'Z':
		p.advance()
		return UTC, nil
	case '+':
	case '-':
		neg = true
	default:
		return Zone{}, errInvalidChar(p.s, p.pos(), "timezone")
	}
	p.advance()

	hourPos := p.pos()
	h, err := p.digits(2, "timezone hour")
	if err != nil {
		return Zone{}, err
	}
	m := 0
	minutePos := p.pos()
	switch c := p.peek(); {
	case c == ':':
		p.advance()
		minutePos = p.pos()
		if m, err = p.digits(2, "timezone minute"); err != nil {
			return Zone{}, err
		}
	case isDigit(c):
		if m, err = p.digits(2, "timezone minute"); err != nil {
			return Zone{}, err
		}
	}

	if m > 59 {
		return Zone{}, errRange(minutePos, ErrZoneRange, "timezone minute", m, 0, 59)
	}
	total := h*60 + m
	if total > maxOffsetMinutes {
		return Zone{}, errRange(hourPos, ErrZoneRange, "timezone offset minutes", total, 0, maxOffsetMinutes)
	}
	offset := total * 60
	if neg {
		offset = -offset
	}
	return Zone{Offset: offset}, nil
}
