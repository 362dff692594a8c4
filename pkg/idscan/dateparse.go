package idscan

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	errBadToken   = errors.New("unusable token")
	errNoDate     = errors.New("no date fields")
	errFieldRange = errors.New("field out of range")
)

// unset marks a date or time field the text did not supply.
const unset = -1

var monthNames = map[string]time.Month{
	"JAN": time.January, "JANUARY": time.January,
	"FEB": time.February, "FEBRUARY": time.February,
	"MAR": time.March, "MARCH": time.March,
	"APR": time.April, "APRIL": time.April,
	"MAY": time.May,
	"JUN": time.June, "JUNE": time.June,
	"JUL": time.July, "JULY": time.July,
	"AUG": time.August, "AUGUST": time.August,
	"SEP": time.September, "SEPT": time.September, "SEPTEMBER": time.September,
	"OCT": time.October, "OCTOBER": time.October,
	"NOV": time.November, "NOVEMBER": time.November,
	"DEC": time.December, "DECEMBER": time.December,
}

// Monday is 0.
var weekdayNames = map[string]int{
	"MON": 0, "MONDAY": 0,
	"TUE": 1, "TUESDAY": 1,
	"WED": 2, "WEDNESDAY": 2,
	"THU": 3, "THURSDAY": 3,
	"FRI": 4, "FRIDAY": 4,
	"SAT": 5, "SATURDAY": 5,
	"SUN": 6, "SUNDAY": 6,
}

// Unit labels that turn the adjacent number into a time of day.
var hmsWords = map[string]int{
	"H": 0, "HOUR": 0, "HOURS": 0,
	"M": 1, "MINUTE": 1, "MINUTES": 1,
	"S": 2, "SECOND": 2, "SECONDS": 2,
}

var ampmWords = map[string]int{"AM": 0, "A": 0, "PM": 1, "P": 1}

// Filler tokens a number may be followed by and still count as a date field.
var jumpWords = map[string]bool{
	" ": true, ".": true, ",": true, ";": true, "-": true, "/": true, "'": true,
	"AT": true, "ON": true, "AND": true, "AD": true, "M": true, "T": true,
	"OF": true, "ST": true, "ND": true, "RD": true, "TH": true,
}

// ParseDate reads a date candidate such as "15/03/1990", "03-15-90" or
// "15 MAR 1990" fuzzily.
//
// The candidate is split into runs of letters, runs of digits and single
// separators, so "1I" yields "1" and "I". Month names set the month; other
// words are skipped. Numbers longer than two digits (or above 100) are years.
// The rest are read day-first or month-first according to dayFirst, falling
// back to the other order when a value above 12 rules the preferred one out.
// A field the candidate does not supply is taken from now, and two-digit
// years land within fifty years of now.
func ParseDate(candidate string, dayFirst bool, now time.Time) (time.Time, error) {
	p := &dateParser{
		tokens:  splitDateTokens(strings.ToUpper(candidate)),
		ymd:     ymdList{yIdx: unset, mIdx: unset},
		hour:    unset,
		minute:  unset,
		second:  unset,
		weekday: unset,
	}
	if err := p.run(); err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", candidate, err)
	}
	t, err := p.build(dayFirst, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", candidate, err)
	}
	return t, nil
}

const (
	lexNone = iota
	lexWord
	lexNum
	lexWordDot
	lexNumDot
)

// splitDateTokens breaks s into words, numbers (which may carry a decimal
// point), single spaces and single punctuation marks. Dotted runs that mix
// letters or hold several dots are split at each dot.
func splitDateTokens(s string) []string {
	rs := []rune(s)
	var out []string
	for pos := 0; pos < len(rs); {
		var toks []string
		toks, pos = nextDateToken(rs, pos)
		out = append(out, toks...)
	}
	return out
}

func nextDateToken(rs []rune, pos int) ([]string, int) {
	var (
		tok         []rune
		state       = lexNone
		seenLetters bool
		i           = pos
	)
scan:
	for ; i < len(rs); i++ {
		c := rs[i]
		if c == 0 {
			continue
		}
		switch state {
		case lexNone:
			tok = []rune{c}
			switch {
			case unicode.IsLetter(c):
				state = lexWord
			case isASCIIDigit(c):
				state = lexNum
			case isTextSpace(c):
				return []string{" "}, i + 1
			default:
				return []string{string(c)}, i + 1
			}
		case lexWord:
			seenLetters = true
			switch {
			case unicode.IsLetter(c):
				tok = append(tok, c)
			case c == '.':
				tok = append(tok, c)
				state = lexWordDot
			default:
				break scan
			}
		case lexNum:
			switch {
			case isASCIIDigit(c):
				tok = append(tok, c)
			case c == '.' || (c == ',' && len(tok) >= 2):
				tok = append(tok, c)
				state = lexNumDot
			default:
				break scan
			}
		case lexWordDot:
			seenLetters = true
			switch {
			case c == '.' || unicode.IsLetter(c):
				tok = append(tok, c)
			case isASCIIDigit(c) && tok[len(tok)-1] == '.':
				tok = append(tok, c)
				state = lexNumDot
			default:
				break scan
			}
		case lexNumDot:
			switch {
			case c == '.' || isASCIIDigit(c):
				tok = append(tok, c)
			case unicode.IsLetter(c) && tok[len(tok)-1] == '.':
				tok = append(tok, c)
				state = lexWordDot
			default:
				break scan
			}
		}
	}
	if tok == nil {
		return nil, i
	}

	s := string(tok)
	if (state == lexWordDot || state == lexNumDot) &&
		(seenLetters || strings.Count(s, ".") > 1 || strings.ContainsAny(s[len(s)-1:], ".,")) {
		return splitDecimal(s), i
	}
	if state == lexNumDot && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return []string{s}, i
}

// splitDecimal splits s at every '.' or ',' keeping the separators.
func splitDecimal(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r != '.' && r != ',' {
			continue
		}
		if i > start {
			out = append(out, s[start:i])
		}
		out = append(out, string(r))
		start = i + 1
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

// isTextSpace reports Unicode white space, which includes vertical tab and
// NBSP, plus the ASCII information separators.
func isTextSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

func isDigitString(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isASCIIDigit(r) {
			return false
		}
	}
	return true
}

// isNumberToken reports whether tok is digits with at most one inner '.'.
func isNumberToken(tok string) bool {
	whole, frac, found := strings.Cut(tok, ".")
	if !isDigitString(whole) {
		return false
	}
	return !found || isDigitString(frac)
}

// Words a float parser accepts that never make a usable date field.
func isNonFiniteWord(tok string) bool {
	return tok == "NAN" || tok == "INF" || tok == "INFINITY"
}

// ymdList collects candidate year, month and day values in text order.
type ymdList struct {
	vals             []int
	yIdx, mIdx       int
	centurySpecified bool
}

const (
	labelNone = iota
	labelYear
	labelMonth
)

func (y *ymdList) add(n, label int) error {
	y.vals = append(y.vals, n)
	switch label {
	case labelYear:
		if y.yIdx != unset {
			return fmt.Errorf("second year %d: %w", n, errBadToken)
		}
		y.yIdx = len(y.vals) - 1
	case labelMonth:
		if y.mIdx != unset {
			return fmt.Errorf("second month %d: %w", n, errBadToken)
		}
		y.mIdx = len(y.vals) - 1
	}
	return nil
}

// addLiteral adds a token copied from the text. More than two digits make a
// year.
func (y *ymdList) addLiteral(tok string) error {
	label := labelNone
	if isDigitString(tok) && len(tok) > 2 {
		y.centurySpecified = true
		label = labelYear
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return fmt.Errorf("%q: %w", tok, errBadToken)
	}
	return y.add(n, label)
}

// addValue adds a parsed number. Values above 100 make a year.
func (y *ymdList) addValue(v float64) error {
	label := labelNone
	if v > 100 {
		y.centurySpecified = true
		label = labelYear
	}
	return y.add(int(v), label)
}

func (y *ymdList) couldBeDay(v float64) bool {
	if y.mIdx == unset {
		return v >= 1 && v <= 31
	}
	year := 2000
	if y.yIdx != unset {
		year = y.vals[y.yIdx]
	}
	return v >= 1 && v <= float64(daysIn(year, y.vals[y.mIdx]))
}

// resolve assigns the collected values to year, month and day. Fields the
// values do not cover are unset.
func (y *ymdList) resolve(dayFirst bool) (year, month, day int, err error) {
	year, month, day = unset, unset, unset
	v := y.vals
	labelled := 0
	if y.yIdx != unset {
		labelled++
	}
	if y.mIdx != unset {
		labelled++
	}

	if (labelled > 0 && len(v) == labelled) || (len(v) == 3 && labelled == 2) {
		if y.yIdx != unset {
			year = v[y.yIdx]
		}
		if y.mIdx != unset {
			month = v[y.mIdx]
		}
		if len(v) == 3 {
			day = v[3-y.yIdx-y.mIdx]
		}
		return year, month, day, nil
	}

	switch {
	case len(v) > 3:
		return year, month, day, fmt.Errorf("%d date values: %w", len(v), errBadToken)

	case len(v) == 1 || (y.mIdx != unset && len(v) == 2):
		other := v[0]
		if y.mIdx != unset {
			month = v[y.mIdx]
			other = v[(y.mIdx+len(v)-1)%len(v)]
		}
		if len(v) > 1 || y.mIdx == unset {
			if other > 31 {
				year = other
			} else {
				day = other
			}
		}

	case len(v) == 2:
		switch {
		case v[0] > 31:
			year, month = v[0], v[1]
		case v[1] > 31:
			month, year = v[0], v[1]
		case dayFirst && v[1] <= 12:
			day, month = v[0], v[1]
		default:
			month, day = v[0], v[1]
		}

	case len(v) == 3:
		switch y.mIdx {
		case 0:
			if v[1] > 31 {
				return v[1], v[0], v[2], nil
			}
			return v[2], v[0], v[1], nil
		case 1:
			if v[0] > 31 {
				return v[0], v[1], v[2], nil
			}
			return v[2], v[1], v[0], nil
		case 2:
			if v[1] > 31 {
				return v[1], v[2], v[0], nil
			}
			return v[0], v[2], v[1], nil
		}
		switch {
		case v[0] > 31 || y.yIdx == 0:
			if dayFirst && v[2] <= 12 {
				return v[0], v[2], v[1], nil
			}
			return v[0], v[1], v[2], nil
		case v[0] > 12 || (dayFirst && v[1] <= 12):
			return v[2], v[1], v[0], nil
		default:
			return v[2], v[0], v[1], nil
		}
	}
	return year, month, day, nil
}

// dateParser walks the tokens of one candidate. Time-of-day fields are only
// tracked so that numbers labelled as times stay out of the date and so that
// impossible times reject the candidate.
type dateParser struct {
	tokens []string
	ymd    ymdList

	hour, minute, second, weekday int
}

func (p *dateParser) run() error {
	toks := p.tokens
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch {
		case isNumberToken(tok):
			next, err := p.numeric(i)
			if err != nil {
				return err
			}
			i = next
		case isNonFiniteWord(tok):
			return fmt.Errorf("%q: %w", tok, errBadToken)
		default:
			if wd, ok := weekdayNames[tok]; ok {
				p.weekday = wd
				continue
			}
			m, ok := monthNames[tok]
			if !ok {
				if p.hour != unset && (tok == "+" || tok == "-") {
					// a sign after a time starts a UTC offset, which swallows
					// the following number
					if err := p.utcOffset(i); err != nil {
						return err
					}
					i++
				}
				continue
			}
			if err := p.ymd.add(int(m), labelMonth); err != nil {
				return err
			}
			if i+1 < len(toks) && (toks[i+1] == "-" || toks[i+1] == "/") {
				sep := toks[i+1]
				if i+2 >= len(toks) {
					return fmt.Errorf("month %q: %w", tok, errBadToken)
				}
				if err := p.ymd.addLiteral(toks[i+2]); err != nil {
					return err
				}
				if i+3 < len(toks) && toks[i+3] == sep {
					if i+4 >= len(toks) {
						return fmt.Errorf("month %q: %w", tok, errBadToken)
					}
					if err := p.ymd.addLiteral(toks[i+4]); err != nil {
						return err
					}
					i += 2
				}
				i += 2
			}
		}
	}
	return nil
}

// numeric consumes the number at idx and returns the index of the last
// token it used.
func (p *dateParser) numeric(idx int) (int, error) {
	toks := p.tokens
	repr := toks[idx]
	value, err := strconv.ParseFloat(repr, 64)
	if err != nil {
		return idx, fmt.Errorf("%q: %w", repr, errBadToken)
	}
	n := len(repr)
	last := len(toks) - 1

	switch {
	case len(p.ymd.vals) == 3 && (n == 2 || n == 4) && p.hour == unset &&
		(idx == last || !isHMS(toks[idx+1])):
		// HHMM trailing a complete date
		if p.hour, err = atoi(repr[:2]); err != nil {
			return idx, err
		}
		if n == 4 {
			if p.minute, err = atoi(repr[2:]); err != nil {
				return idx, err
			}
		}

	case n == 6 || (n > 6 && strings.Index(repr, ".") == 6):
		if len(p.ymd.vals) == 0 && !strings.Contains(repr, ".") {
			for _, part := range []string{repr[:2], repr[2:4], repr[4:]} {
				if err := p.ymd.addLiteral(part); err != nil {
					return idx, err
				}
			}
			break
		}
		if p.hour, err = atoi(repr[:2]); err != nil {
			return idx, err
		}
		if p.minute, err = atoi(repr[2:4]); err != nil {
			return idx, err
		}
		if p.second, err = seconds(repr[4:]); err != nil {
			return idx, err
		}

	case n == 8 || n == 12 || n == 14:
		for _, part := range []string{repr[:4], repr[4:6], repr[6:8]} {
			if err := p.ymd.addLiteral(part); err != nil {
				return idx, err
			}
		}
		if n > 8 {
			if p.hour, err = atoi(repr[8:10]); err != nil {
				return idx, err
			}
			if p.minute, err = atoi(repr[10:12]); err != nil {
				return idx, err
			}
		}
		if n > 12 {
			if p.second, err = atoi(repr[12:]); err != nil {
				return idx, err
			}
		}

	case p.findHMS(idx) != unset:
		hmsIdx := p.findHMS(idx)
		unit := hmsWords[toks[hmsIdx]]
		if hmsIdx > idx {
			idx = hmsIdx
		} else {
			unit++
		}
		if err := p.assignHMS(value, repr, unit); err != nil {
			return idx, err
		}

	case idx < last && (toks[idx+1] == "-" || toks[idx+1] == "/" || toks[idx+1] == "."):
		sep := toks[idx+1]
		if err := p.ymd.addLiteral(repr); err != nil {
			return idx, err
		}
		if idx+2 <= last && !jumpWords[toks[idx+2]] {
			mid := toks[idx+2]
			if isDigitString(mid) {
				if err := p.ymd.addLiteral(mid); err != nil {
					return idx, err
				}
			} else if m, ok := monthNames[mid]; ok {
				if err := p.ymd.add(int(m), labelMonth); err != nil {
					return idx, err
				}
			} else {
				return idx, fmt.Errorf("%q between separators: %w", mid, errBadToken)
			}
			if idx+3 <= last && toks[idx+3] == sep {
				if idx+4 > last {
					return idx, fmt.Errorf("dangling %q: %w", sep, errBadToken)
				}
				end := toks[idx+4]
				if m, ok := monthNames[end]; ok {
					err = p.ymd.add(int(m), labelMonth)
				} else {
					err = p.ymd.addLiteral(end)
				}
				if err != nil {
					return idx, err
				}
				idx += 2
			}
			idx++
		}
		idx++

	case idx == last || jumpWords[toks[idx+1]]:
		if idx+2 <= last {
			if ap, ok := ampmWords[toks[idx+2]]; ok {
				p.hour = adjustAMPM(int(value), ap)
				return idx + 2, nil
			}
		}
		if err := p.ymd.addValue(value); err != nil {
			return idx, err
		}
		idx++

	case isAMPM(toks[idx+1]) && value >= 0 && value < 24:
		p.hour = adjustAMPM(int(value), ampmWords[toks[idx+1]])
		idx++

	case p.ymd.couldBeDay(value):
		if err := p.ymd.addValue(value); err != nil {
			return idx, err
		}
	}
	return idx, nil
}

// findHMS returns the index of the unit label belonging to the number at
// idx, or unset.
func (p *dateParser) findHMS(idx int) int {
	toks := p.tokens
	last := len(toks) - 1
	switch {
	case idx < last && isHMS(toks[idx+1]):
		return idx + 1
	case idx+2 <= last && toks[idx+1] == " " && isHMS(toks[idx+2]):
		return idx + 2
	case idx > 0 && isHMS(toks[idx-1]):
		return idx - 1
	case idx > 1 && idx == last && toks[idx-1] == " " && isHMS(toks[idx-2]):
		return idx - 2
	}
	return unset
}

// utcOffset checks the "-HHMM" or "-H" offset whose sign is at idx. The
// offset itself does not affect the date.
func (p *dateParser) utcOffset(idx int) error {
	if idx+1 >= len(p.tokens) {
		return fmt.Errorf("dangling %q: %w", p.tokens[idx], errBadToken)
	}
	off := p.tokens[idx+1]
	switch {
	case len(off) == 4:
		if _, err := atoi(off[:2]); err != nil {
			return err
		}
		_, err := atoi(off[2:])
		return err
	case len(off) <= 2:
		_, err := atoi(off)
		return err
	}
	return fmt.Errorf("offset %q: %w", off, errBadToken)
}

func (p *dateParser) assignHMS(value float64, repr string, unit int) error {
	whole, frac := math.Modf(value)
	switch unit {
	case 0:
		p.hour = int(whole)
		if frac != 0 {
			p.minute = int(60 * frac)
		}
	case 1:
		p.minute = int(whole)
		if frac != 0 {
			p.second = int(60 * frac)
		}
	case 2:
		s, err := seconds(repr)
		if err != nil {
			return err
		}
		p.second = s
	}
	return nil
}

func (p *dateParser) build(dayFirst bool, now time.Time) (time.Time, error) {
	year, month, day, err := p.ymd.resolve(dayFirst)
	if err != nil {
		return time.Time{}, err
	}
	if year == unset && month == unset && day == unset &&
		p.hour == unset && p.minute == unset && p.second == unset && p.weekday == unset {
		return time.Time{}, errNoDate
	}
	if year != unset && year < 100 && !p.ymd.centurySpecified {
		year = convertYear(year, now.Year())
	}
	if !inRange(p.hour, 0, 23) || !inRange(p.minute, 0, 59) || !inRange(p.second, 0, 59) {
		return time.Time{}, fmt.Errorf("time %d:%d:%d: %w", p.hour, p.minute, p.second, errFieldRange)
	}

	y, m, d := now.Year(), int(now.Month()), now.Day()
	if year != unset {
		y = year
	}
	if month != unset {
		m = month
	}
	if y < 1 || y > 9999 || m < 1 || m > 12 {
		return time.Time{}, fmt.Errorf("year %d month %d: %w", y, m, errFieldRange)
	}
	if day != unset {
		if day < 1 || day > daysIn(y, m) {
			return time.Time{}, fmt.Errorf("day %d of %04d-%02d: %w", day, y, m, errFieldRange)
		}
		d = day
	} else if d > daysIn(y, m) {
		d = daysIn(y, m)
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if p.weekday != unset && day == unset {
		have := (int(t.Weekday()) + 6) % 7
		t = t.AddDate(0, 0, (p.weekday-have+7)%7)
	}
	return t, nil
}

// convertYear places a two-digit year in the century window around thisYear.
func convertYear(year, thisYear int) int {
	year += thisYear / 100 * 100
	if year >= thisYear+50 {
		year -= 100
	} else if year < thisYear-50 {
		year += 100
	}
	return year
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func inRange(v, lo, hi int) bool { return v == unset || (v >= lo && v <= hi) }

func isHMS(tok string) bool {
	_, ok := hmsWords[tok]
	return ok
}

func isAMPM(tok string) bool {
	_, ok := ampmWords[tok]
	return ok
}

func adjustAMPM(hour, ampm int) int {
	switch {
	case hour < 12 && ampm == 1:
		return hour + 12
	case hour == 12 && ampm == 0:
		return 0
	}
	return hour
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, errBadToken)
	}
	return n, nil
}

// seconds reads "SS" or "SS.ffffff", keeping the whole seconds.
func seconds(s string) (int, error) {
	whole, frac, found := strings.Cut(s, ".")
	if found {
		if _, err := atoi(frac); err != nil {
			return 0, err
		}
	}
	return atoi(whole)
}
