// Package timevar computes the values of YP_TIME_* variables.
//
// A time variable names a base time, an optional list of modifiers and
// an optional output format:
//
//	YP_TIME_NOW
//	YP_TIME_REF_AT_1D_PLUS_T12H
//	YP_TIME_NOW_MINUS_1Y2M_FORMAT_DATE
//
// NOW is the time the Calculator was created. REF is the reference
// time, which defaults to NOW. Modifiers are applied left to right.
// AT sets calendar fields, PLUS and MINUS add or subtract a calendar
// delta. A delta is written as digits followed by Y, M or D, then
// optionally T and digits followed by H, M or S.
package timevar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/signadot/yamlprocessor/yp/debug"
)

const (
	// Prefix starts every time variable name.
	Prefix = "YP_TIME"

	DefaultFormat = "%FT%T%:z"
)

var (
	nameRE = regexp.MustCompile(
		`^YP_TIME_(NOW|REF)((?:_(?:AT|PLUS|MINUS)_(?:\d+[YMD])*(?:T(?:\d+[HMS])+)?)*)(?:_FORMAT_(\w+))?$`)
	modRE  = regexp.MustCompile(`_(AT|PLUS|MINUS)_((?:\d+[YMD])*)((?:T(?:\d+[HMS])+)?)`)
	partRE = regexp.MustCompile(`(\d+)([YMDHS])`)
)

type Calculator struct {
	Now time.Time
	Ref time.Time

	// Formats maps format names to strftime formats. The empty name
	// holds the default format.
	Formats map[string]string
}

func New() *Calculator {
	now := time.Now()
	return &Calculator{
		Now:     now,
		Ref:     now,
		Formats: map[string]string{"": DefaultFormat},
	}
}

// IsTimeName reports whether name should be resolved by a Calculator.
func IsTimeName(name string) bool {
	return strings.HasPrefix(name, Prefix)
}

func (c *Calculator) Eval(name string) (string, error) {
	t, format, err := c.Time(name)
	if err != nil {
		return "", err
	}
	res := Format(t, format)
	if debug.Time() {
		debug.Logf("time variable %s = %s\n", name, res)
	}
	return res, nil
}

// Time computes the time named by name along with the strftime format
// it selects.
func (c *Calculator) Time(name string) (time.Time, string, error) {
	m := nameRE.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, "", fmt.Errorf("%w: %s", ErrBadName, name)
	}
	t := c.Now
	if m[1] == "REF" {
		t = c.Ref
	}
	for _, mod := range modRE.FindAllStringSubmatch(m[2], -1) {
		delta, err := parseDelta(mod[2], mod[3])
		if err != nil {
			return time.Time{}, "", fmt.Errorf("%w: %s: %w", ErrBadName, name, err)
		}
		switch mod[1] {
		case "AT":
			t, err = delta.at(t)
			if err != nil {
				return time.Time{}, "", fmt.Errorf("%w: %s: %w", ErrBadName, name, err)
			}
		case "PLUS":
			t = delta.add(t, 1)
		case "MINUS":
			t = delta.add(t, -1)
		}
	}
	format, ok := c.Formats[m[3]]
	if !ok {
		if m[3] != "" {
			return time.Time{}, "", fmt.Errorf("%w: %s: unknown format %q", ErrBadName, name, m[3])
		}
		format = DefaultFormat
	}
	return t, format, nil
}

const (
	years = iota
	months
	days
	hours
	minutes
	seconds
	nFields
)

type delta struct {
	v   [nFields]int
	set [nFields]bool
}

func parseDelta(date, clock string) (*delta, error) {
	if date == "" && clock == "" {
		return nil, fmt.Errorf("empty delta")
	}
	d := &delta{}
	for _, part := range partRE.FindAllStringSubmatch(date, -1) {
		if err := d.put(part[1], map[string]int{"Y": years, "M": months, "D": days}[part[2]]); err != nil {
			return nil, err
		}
	}
	if strings.HasPrefix(clock, "T") {
		for _, part := range partRE.FindAllStringSubmatch(clock[1:], -1) {
			if err := d.put(part[1], map[string]int{"H": hours, "M": minutes, "S": seconds}[part[2]]); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func (d *delta) put(digits string, field int) error {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return err
	}
	d.v[field] = n
	d.set[field] = true
	return nil
}

func (d *delta) at(t time.Time) (time.Time, error) {
	y, mo, day := t.Date()
	h, mi, s := t.Clock()
	cur := [nFields]int{y, int(mo), day, h, mi, s}
	for i := range cur {
		if d.set[i] {
			cur[i] = d.v[i]
		}
	}
	switch {
	case cur[months] < 1 || cur[months] > 12:
		return time.Time{}, fmt.Errorf("month %d out of range", cur[months])
	case cur[days] < 1:
		return time.Time{}, fmt.Errorf("day %d out of range", cur[days])
	case cur[hours] > 23, cur[minutes] > 59, cur[seconds] > 59:
		return time.Time{}, fmt.Errorf("time of day %02d:%02d:%02d out of range", cur[hours], cur[minutes], cur[seconds])
	}
	cur[days] = min(cur[days], daysIn(cur[years], time.Month(cur[months])))
	return time.Date(cur[years], time.Month(cur[months]), cur[days],
		cur[hours], cur[minutes], cur[seconds], t.Nanosecond(), t.Location()), nil
}

// add moves t by sign times d. Years and months move first, keeping
// the day within the resulting month, then the remaining fields move
// in wall clock time.
func (d *delta) add(t time.Time, sign int) time.Time {
	y, mo, day := t.Date()
	h, mi, s := t.Clock()
	total := y*12 + int(mo) - 1 + sign*(d.v[years]*12+d.v[months])
	y, mo = floorDiv(total, 12), time.Month(total-floorDiv(total, 12)*12+1)
	day = min(day, daysIn(y, mo))
	return time.Date(y, mo, day+sign*d.v[days],
		h+sign*d.v[hours], mi+sign*d.v[minutes], s+sign*d.v[seconds],
		t.Nanosecond(), t.Location())
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
