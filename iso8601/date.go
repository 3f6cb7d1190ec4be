package iso8601

import "isocal/calendar"

type format int

const (
	formatNone format = iota
	formatBasic
	formatExtended
)

func (p *parser) dateTime() (DateTime, error) {
	dt := DateTime{Date: Date{Month: 1, Day: 1}}
	if p.atEnd() {
		return dt, errTruncated(p.pos(), "date", 4)
	}

	if p.timeOnly() {
		if p.peek() == 'T' {
			p.advance()
		}
		tf, err := p.clock(&dt)
		if err != nil {
			return dt, err
		}
		dt.HasTime = true
		dt.Extended = tf == formatExtended
		return dt, nil
	}

	df, reduced, err := p.date(&dt)
	if err != nil {
		return dt, err
	}
	dt.HasDate = true
	dt.Extended = df == formatExtended

	if c := p.peek(); c != 'T' && c != ' ' {
		return dt, nil
	}
	if reduced {
		return dt, errf(p.pos(), ErrFormat, "date", "a date without a day cannot be followed by a time")
	}
	p.advance()

	timePos := p.pos()
	tf, err := p.clock(&dt)
	if err != nil {
		return dt, err
	}
	if df != formatNone && tf != formatNone && df != tf {
		return dt, errf(timePos, ErrFormat, "time", "date and time must both use the basic or both use the extended format")
	}
	dt.HasTime = true
	dt.Extended = df == formatExtended || tf == formatExtended
	return dt, nil
}

// timeOnly reports whether the input at the cursor is a time without a
// date: a "T" designator, "hh:" or exactly six digits.
func (p *parser) timeOnly() bool {
	if p.peek() == 'T' {
		return true
	}
	n := p.digitRun()
	next := p.peekAt(n)
	switch n {
	case 2:
		return next == ':'
	case 6:
		switch next {
		case 0, '.', ',', 'Z', '+', '-':
			return true
		}
	}
	return false
}

// date parses the date part into dt. reduced is set when the day was
// omitted ("YYYY" or "YYYY-MM").
func (p *parser) date(dt *DateTime) (f format, reduced bool, err error) {
	if dt.Year, err = p.digits(4, "year"); err != nil {
		return formatNone, false, err
	}

	switch c := p.peek(); {
	case c == '-':
		p.advance()
		if p.peek() == 'W' {
			p.advance()
			return formatExtended, false, p.weekDate(dt, true)
		}
		if p.digitRun() == 3 {
			return formatExtended, false, p.ordinalDate(dt)
		}
		if err := p.month(dt); err != nil {
			return formatExtended, false, err
		}
		if p.peek() != '-' {
			return formatExtended, true, nil
		}
		p.advance()
		return formatExtended, false, p.day(dt)

	case c == 'W':
		p.advance()
		return formatBasic, false, p.weekDate(dt, false)

	case isDigit(c):
		switch p.digitRun() {
		case 3:
			return formatBasic, false, p.ordinalDate(dt)
		case 2:
			return formatBasic, false, errf(p.pos(), ErrFormat, "month", "basic year and month without a day is ambiguous")
		}
		if err := p.month(dt); err != nil {
			return formatBasic, false, err
		}
		return formatBasic, false, p.day(dt)
	}

	return formatNone, true, nil
}

func (p *parser) month(dt *DateTime) error {
	pos := p.pos()
	m, err := p.digits(2, "month")
	if err != nil {
		return err
	}
	if m < 1 || m > 12 {
		return errRange(pos, ErrInvalidValue, "month", m, 1, 12)
	}
	dt.Month = m
	return nil
}

func (p *parser) day(dt *DateTime) error {
	pos := p.pos()
	d, err := p.digits(2, "day")
	if err != nil {
		return err
	}
	if last := calendar.DaysInMonth(dt.Year, dt.Month); d < 1 || d > last {
		return errRange(pos, ErrInvalidValue, "day", d, 1, last)
	}
	dt.Day = d
	return nil
}

func (p *parser) ordinalDate(dt *DateTime) error {
	pos := p.pos()
	ord, err := p.digits(3, "ordinal day")
	if err != nil {
		return err
	}
	if last := calendar.DaysInYear(dt.Year); ord < 1 || ord > last {
		return errRange(pos, ErrInvalidValue, "ordinal day", ord, 1, last)
	}
	dt.Month, dt.Day = calendar.FromDayOfYear(dt.Year, ord)
	return nil
}

// weekDate parses "ww" or "wwD" (basic) and "ww" or "ww-D" (extended)
// following the W designator.
func (p *parser) weekDate(dt *DateTime, extended bool) error {
	weekPos := p.pos()
	week, err := p.digits(2, "week")
	if err != nil {
		return err
	}

	weekday := 1
	dayPos := p.pos()
	switch c := p.peek(); {
	case extended && c == '-':
		p.advance()
		dayPos = p.pos()
		if weekday, err = p.digits(1, "weekday"); err != nil {
			return err
		}
	case extended && isDigit(c):
		return errf(dayPos, ErrFormat, "weekday", "missing separator before weekday")
	case !extended && isDigit(c):
		if weekday, err = p.digits(1, "weekday"); err != nil {
			return err
		}
	case !extended && c == '-':
		return errf(dayPos, ErrFormat, "weekday", "separator in a basic format week date")
	}

	maxWeek := 52
	if calendar.IsLongYear(dt.Year) {
		maxWeek = 53
	}
	if week < 1 || week > maxWeek {
		return errRange(weekPos, ErrInvalidValue, "week", week, 1, maxWeek)
	}
	if weekday < 1 || weekday > 7 {
		return errRange(dayPos, ErrInvalidValue, "weekday", weekday, 1, 7)
	}

	dt.Year, dt.Month, dt.Day = calendar.ISOWeekDate(dt.Year, week, weekday)
	return nil
}
