package bibdoc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DatePart is one calendar point. Month and Day are zero when absent.
type DatePart struct {
	Year        int
	Month       int
	Day         int
	Approximate bool
	Uncertain   bool
}

// Date is a single point or an interval. An interval with a nil End is open
// towards the future.
type Date struct {
	Start    DatePart
	End      *DatePart
	Interval bool
}

// IsOpen reports whether d is an interval without an end.
func (d Date) IsOpen() bool { return d.Interval && d.End == nil }

func (p DatePart) String() string {
	var sb strings.Builder
	if p.Year < 0 {
		fmt.Fprintf(&sb, "-%04d", -p.Year)
	} else {
		fmt.Fprintf(&sb, "%04d", p.Year)
	}
	if p.Month > 0 {
		fmt.Fprintf(&sb, "-%02d", p.Month)
		if p.Day > 0 {
			fmt.Fprintf(&sb, "-%02d", p.Day)
		}
	}
	switch {
	case p.Approximate && p.Uncertain:
		sb.WriteByte('%')
	case p.Approximate:
		sb.WriteByte('~')
	case p.Uncertain:
		sb.WriteByte('?')
	}
	return sb.String()
}

// String formats d as an EDTF date: "2020-05/..", "1990~".
func (d Date) String() string {
	if !d.Interval {
		return d.Start.String()
	}
	if d.End == nil {
		return d.Start.String() + "/.."
	}
	return d.Start.String() + "/" + d.End.String()
}

// ParseDate parses an ISO 8601 style date as found in the biblatex date
// fields: "2020", "2020-05-17", "~1990", "1850?", "2020-05/2021",
// "1999/". A trailing "%" marks a point both approximate and uncertain.
func ParseDate(raw string) (Date, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Date{}, dateError("empty date")
	}
	left, right, interval := strings.Cut(s, "/")
	start, err := parseDatePart(left)
	if err != nil {
		return Date{}, err
	}
	d := Date{Start: start, Interval: interval}
	if !interval {
		return d, nil
	}
	right = strings.TrimSpace(right)
	if right == "" || right == ".." {
		return d, nil
	}
	end, err := parseDatePart(right)
	if err != nil {
		return Date{}, err
	}
	if before(end, start) {
		return Date{}, dateError("interval %q ends before it starts", s)
	}
	d.End = &end
	return d, nil
}

func parseDatePart(s string) (DatePart, error) {
	s = strings.TrimSpace(s)
	orig := s
	var p DatePart
	if strings.HasPrefix(s, "~") {
		p.Approximate = true
		s = s[1:]
	}
markers:
	for s != "" {
		switch s[len(s)-1] {
		case '~':
			p.Approximate = true
		case '?':
			p.Uncertain = true
		case '%':
			p.Approximate, p.Uncertain = true, true
		default:
			break markers
		}
		s = s[:len(s)-1]
	}
	if s == "" {
		return DatePart{}, dateError("missing year in %q", orig)
	}
	neg := false
	if s[0] == '-' {
		neg, s = true, s[1:]
	}
	comps := strings.Split(s, "-")
	if len(comps) > 3 {
		return DatePart{}, dateError("too many components in %q", orig)
	}
	if len(comps[0]) != 4 || !isNumber(comps[0]) {
		return DatePart{}, dateError("year must have four digits in %q", orig)
	}
	p.Year, _ = strconv.Atoi(comps[0])
	if neg {
		p.Year = -p.Year
	}
	if len(comps) > 1 {
		m, ok := component(comps[1])
		if !ok || m < 1 || m > 12 {
			return DatePart{}, dateError("invalid month in %q", orig)
		}
		p.Month = m
	}
	if len(comps) > 2 {
		d, ok := component(comps[2])
		if !ok || d < 1 || d > daysIn(p.Year, p.Month) {
			return DatePart{}, dateError("invalid day in %q", orig)
		}
		p.Day = d
	}
	return p, nil
}

// component parses a one or two digit month or day.
func component(s string) (int, bool) {
	if len(s) == 0 || len(s) > 2 || !isNumber(s) {
		return 0, false
	}
	n, _ := strconv.Atoi(s)
	return n, true
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// before compares at the precision both parts share.
func before(a, b DatePart) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Month == 0 || b.Month == 0 || a.Month != b.Month {
		return a.Month != 0 && b.Month != 0 && a.Month < b.Month
	}
	return a.Day != 0 && b.Day != 0 && a.Day < b.Day
}

var monthNames = []string{"january", "february", "march", "april", "may", "june",
	"july", "august", "september", "october", "november", "december"}

// parseMonth accepts "5", "05", "may", "May" and "sept." style values.
func parseMonth(s string) (int, bool) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".")
	if m, ok := component(s); ok {
		return m, m >= 1 && m <= 12
	}
	if len(s) < 3 {
		return 0, false
	}
	for i, name := range monthNames {
		if strings.HasPrefix(name, s) {
			return i + 1, true
		}
	}
	return 0, false
}
