// Package iso8601 parses ISO-8601 dates, times, durations and intervals.
//
// The parser makes a single pass over the input with one byte of
// lookahead. The choice between a date and a duration, between the basic
// and extended formats, and between month and ordinal days is made from
// separators and digit counts without backtracking. Every failure is
// reported as a *ParseError carrying the byte offset where it occurred.
package iso8601

// Parse parses a date, time, date and time, duration, or interval of two
// of those. An interval is written "start/end" and may contain at most
// one duration.
func Parse(text string) (Result, error) {
	p := parser{cursor: cursor{s: text}}

	first, err := p.side()
	if err != nil {
		return Result{}, err
	}

	if p.peek() == '/' {
		p.advance()
		secondPos := p.pos()
		second, err := p.side()
		if err != nil {
			return Result{}, err
		}
		if first.Duration != nil && second.Duration != nil {
			return Result{}, errf(secondPos, ErrFormat, "interval", "interval cannot have a duration on both sides")
		}
		if err := p.expectEnd(); err != nil {
			return Result{}, err
		}
		return Result{Kind: KindInterval, Start: &first, End: &second}, nil
	}

	if err := p.expectEnd(); err != nil {
		return Result{}, err
	}
	if first.Duration != nil {
		return Result{Kind: KindDuration, Duration: first.Duration}, nil
	}
	return Result{Kind: KindDateTime, DateTime: first.DateTime}, nil
}

// ParseDateTime parses a date, a time, or a combined date and time.
func ParseDateTime(text string) (DateTime, error) {
	p := parser{cursor: cursor{s: text}}
	dt, err := p.dateTime()
	if err != nil {
		return DateTime{}, err
	}
	if err := p.expectEnd(); err != nil {
		return DateTime{}, err
	}
	return dt, nil
}

// ParseDuration parses a duration such as "P1Y2M10DT2H30M" or "P1.5W".
func ParseDuration(text string) (Duration, error) {
	p := parser{cursor: cursor{s: text}}
	if p.peek() != 'P' {
		if p.atEnd() {
			return Duration{}, errTruncated(0, "duration", 2)
		}
		return Duration{}, errInvalidChar(text, 0, "duration")
	}
	d, err := p.duration()
	if err != nil {
		return Duration{}, err
	}
	if err := p.expectEnd(); err != nil {
		return Duration{}, err
	}
	return d, nil
}

// ParseZone parses a standalone UTC designator: "Z", "±hh", "±hhmm" or
// "±hh:mm".
func ParseZone(text string) (Zone, error) {
	p := parser{cursor: cursor{s: text}}
	if p.atEnd() {
		return Zone{}, errTruncated(0, "timezone", 1)
	}
	z, err := p.zone()
	if err != nil {
		return Zone{}, err
	}
	if err := p.expectEnd(); err != nil {
		return Zone{}, err
	}
	return z, nil
}

type parser struct {
	cursor
}

func (p *parser) side() (Side, error) {
	if p.peek() == 'P' {
		d, err := p.duration()
		if err != nil {
			return Side{}, err
		}
		return Side{Duration: &d}, nil
	}
	dt, err := p.dateTime()
	if err != nil {
		return Side{}, err
	}
	return Side{DateTime: &dt}, nil
}

func (p *parser) expectEnd() error {
	if p.atEnd() {
		return nil
	}
	return &ParseError{
		Pos:   p.pos(),
		Kind:  ErrTrailing,
		Field: "end of value",
		Msg:   errInvalidChar(p.s, p.pos(), "end of value").Msg,
	}
}
