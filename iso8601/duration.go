package iso8601

import (
	"math"

	"github.com/cockroachdb/apd/v3"
)

var apdContext = apd.BaseContext.WithPrecision(34)

// Designator ranks, coarsest first. A duration lists its components in
// strictly increasing rank.
const (
	rankYear = iota + 1
	rankMonth
	rankWeek
	rankDay
	rankHour
	rankMinute
	rankSecond
)

var rankNames = [...]string{
	rankYear:   "years",
	rankMonth:  "months",
	rankWeek:   "weeks",
	rankDay:    "days",
	rankHour:   "hours",
	rankMinute: "minutes",
	rankSecond: "seconds",
}

// duration parses "PnYnMnWnDTnHnMnS" with the cursor on the P.
func (p *parser) duration() (Duration, error) {
	var d Duration
	p.advance()

	inTime := false
	timeParts := 0
	last := 0
	weeks := false
	fractional := false
	components := 0

	for !p.atEnd() && p.peek() != '/' {
		if p.peek() == 'T' {
			if inTime {
				return d, errf(p.pos(), ErrDuration, "duration", "duration has more than one time designator")
			}
			inTime = true
			p.advance()
			continue
		}

		numPos := p.pos()
		if fractional {
			return d, errf(numPos, ErrDuration, "duration", "only the last duration component may have a fraction")
		}
		if !isDigit(p.peek()) {
			return d, errInvalidChar(p.s, numPos, "duration")
		}
		value, err := p.durationInt()
		if err != nil {
			return d, err
		}

		frac := ""
		if c := p.peek(); c == '.' || c == ',' {
			p.advance()
			start := p.pos()
			n := p.digitRun()
			if n == 0 {
				if p.atEnd() {
					return d, errTruncated(p.pos(), "duration fraction", 1)
				}
				return d, errInvalidChar(p.s, p.pos(), "duration fraction")
			}
			for k := 0; k < n; k++ {
				p.advance()
			}
			frac = p.s[start:p.pos()]
		}

		if p.atEnd() {
			return d, errTruncated(p.pos(), "duration designator", 1)
		}
		unitPos := p.pos()
		rank := designatorRank(p.peek(), inTime)
		if rank == 0 {
			return d, errInvalidChar(p.s, unitPos, "duration designator")
		}
		p.advance()

		if rank <= last {
			return d, errf(unitPos, ErrDuration, rankNames[rank], "%s may not follow %s", rankNames[rank], rankNames[last])
		}
		if rank == rankWeek && last != 0 || rank == rankDay && weeks {
			return d, errf(unitPos, ErrDuration, rankNames[rank], "weeks cannot be combined with other date components")
		}
		if rank == rankWeek {
			weeks = true
		}
		last = rank
		components++
		if inTime {
			timeParts++
		}

		d.set(rank, value)
		if frac != "" {
			if rank == rankYear || rank == rankMonth {
				return d, errf(numPos, ErrDuration, rankNames[rank], "fractional %s are not supported", rankNames[rank])
			}
			if err := d.spill(rank, frac); err != nil {
				return d, errf(numPos, ErrDuration, rankNames[rank], "invalid fraction: %v", err)
			}
			fractional = true
		}
	}

	switch {
	case components == 0 && !inTime:
		return d, errTruncated(p.pos(), "duration", 2)
	case inTime && timeParts == 0:
		return d, errTruncated(p.pos(), "duration time", 2)
	}
	return d, nil
}

// durationInt reads an unsigned integer of any length.
func (p *parser) durationInt() (int, error) {
	pos := p.pos()
	v := 0
	for isDigit(p.peek()) {
		digit := int(p.peek() - '0')
		if v > (math.MaxInt32-digit)/10 {
			return 0, errf(pos, ErrDuration, "duration", "duration component is too large")
		}
		v = v*10 + digit
		p.advance()
	}
	return v, nil
}

func designatorRank(c byte, inTime bool) int {
	if inTime {
		switch c {
		case 'H':
			return rankHour
		case 'M':
			return rankMinute
		case 'S':
			return rankSecond
		}
		return 0
	}
	switch c {
	case 'Y':
		return rankYear
	case 'M':
		return rankMonth
	case 'W':
		return rankWeek
	case 'D':
		return rankDay
	}
	return 0
}

func (d *Duration) set(rank, v int) {
	switch rank {
	case rankYear:
		d.Years = v
	case rankMonth:
		d.Months = v
	case rankWeek:
		d.Weeks = v
	case rankDay:
		d.Days = v
	case rankHour:
		d.Hours = v
	case rankMinute:
		d.Minutes = v
	case rankSecond:
		d.Seconds = v
	}
}

func (d *Duration) add(rank, v int) {
	switch rank {
	case rankDay:
		d.Days += v
	case rankHour:
		d.Hours += v
	case rankMinute:
		d.Minutes += v
	case rankSecond:
		d.Seconds += v
	}
}

// spillFactors is how many units of the next finer rank make up one unit.
var spillFactors = map[int]int64{
	rankWeek:   7,
	rankDay:    24,
	rankHour:   60,
	rankMinute: 60,
	rankSecond: 1000000,
}

// spill distributes the fraction "0.frac" of one unit of rank over the
// finer components with exact decimal arithmetic. Whatever remains below a
// microsecond is rounded.
func (d *Duration) spill(rank int, frac string) error {
	f, _, err := apd.NewFromString("0." + frac)
	if err != nil {
		return err
	}
	for r := rank; ; r++ {
		if _, err := apdContext.Mul(f, f, apd.New(spillFactors[r], 0)); err != nil {
			return err
		}
		if r == rankSecond {
			if _, err := apdContext.RoundToIntegralValue(f, f); err != nil {
				return err
			}
			us, err := f.Int64()
			if err != nil {
				return err
			}
			d.Microseconds += int(us)
			if d.Microseconds >= 1000000 {
				d.Microseconds -= 1000000
				d.Seconds++
			}
			return nil
		}

		var whole, rest apd.Decimal
		f.Modf(&whole, &rest)
		n, err := whole.Int64()
		if err != nil {
			return err
		}
		d.add(r+1, int(n))
		if rest.IsZero() {
			return nil
		}
		f.Set(&rest)
	}
}
