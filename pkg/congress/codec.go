package congress

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // legislative day boundaries are defined in US Eastern time
)

// yearOffset anchors the congress numbering: the 1st Congress convened in 1789.
const yearOffset = 894

// Chamber identifies the publishing chamber of a roll call.
type Chamber string

const (
	Senate Chamber = "senate"
	House  Chamber = "house"
)

// Prefix is the one-letter chamber prefix used in roll and amendment ids.
func (c Chamber) Prefix() string {
	switch c {
	case House:
		return "h"
	default:
		return "s"
	}
}

func chamberForPrefix(p byte) (Chamber, bool) {
	switch p {
	case 's':
		return Senate, true
	case 'h':
		return House, true
	}
	return "", false
}

var eastern = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic(err)
	}
	return loc
}

// Eastern returns the US Eastern location the upstream publishes timestamps in.
func Eastern() *time.Location { return eastern }

// YearsForCongress returns the two calendar years spanned by a congress.
func YearsForCongress(congress int) (first, second int) {
	second = (congress + yearOffset) * 2
	return second - 1, second
}

// CongressForYear returns the congress sitting during a legislative year.
func CongressForYear(year int) int {
	return (year+1)/2 - yearOffset
}

// SessionForYear returns 1 for the odd (first) year of a congress and 2 for the even one.
func SessionForYear(year int) int {
	if year%2 == 0 {
		return 2
	}
	return 1
}

// YearFor returns the legislative year of a congress session.
func YearFor(congress, session int) (int, error) {
	first, second := YearsForCongress(congress)
	switch session {
	case 1:
		return first, nil
	case 2:
		return second, nil
	default:
		return 0, fmt.Errorf("unsupported session %d for congress %d", session, congress)
	}
}

// LegislativeYear returns the legislative year containing t. A new congress year
// begins at noon Eastern on January 3rd, so the first days of January still
// belong to the previous year.
func LegislativeYear(t time.Time) int {
	t = t.In(eastern)
	year := t.Year()
	if t.Month() != time.January {
		return year
	}
	switch {
	case t.Day() < 3:
		return year - 1
	case t.Day() == 3 && t.Hour() < 12:
		return year - 1
	default:
		return year
	}
}

// Current returns the congress and session in effect at t.
func Current(t time.Time) (congress, session int) {
	year := LegislativeYear(t)
	return CongressForYear(year), SessionForYear(year)
}

// RollID identifies one roll call vote. Its canonical form is
// "{chamber prefix}{number}-{year}", e.g. "s5-2009".
type RollID struct {
	Chamber  Chamber
	Congress int
	Session  int
	Year     int
	Number   int
}

// NewRollID builds the Senate roll id for a vote number within a congress session.
func NewRollID(number, congress, session int) (RollID, error) {
	if number <= 0 {
		return RollID{}, fmt.Errorf("invalid roll number %d", number)
	}
	year, err := YearFor(congress, session)
	if err != nil {
		return RollID{}, err
	}
	return RollID{
		Chamber:  Senate,
		Congress: congress,
		Session:  session,
		Year:     year,
		Number:   number,
	}, nil
}

// ParseRollID decodes a canonical roll id, deriving congress and session from the year.
func ParseRollID(s string) (RollID, error) {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return RollID{}, fmt.Errorf("malformed roll id %q", s)
	}
	chamber, ok := chamberForPrefix(s[0])
	if !ok {
		return RollID{}, fmt.Errorf("malformed roll id %q: unknown chamber prefix", s)
	}
	numberPart, yearPart, found := strings.Cut(s[1:], "-")
	if !found {
		return RollID{}, fmt.Errorf("malformed roll id %q: missing year", s)
	}
	number, err := strconv.Atoi(numberPart)
	if err != nil || number <= 0 {
		return RollID{}, fmt.Errorf("malformed roll id %q: bad number", s)
	}
	year, err := strconv.Atoi(yearPart)
	if err != nil || year < 1789 || len(yearPart) != 4 {
		return RollID{}, fmt.Errorf("malformed roll id %q: bad year", s)
	}
	return RollID{
		Chamber:  chamber,
		Congress: CongressForYear(year),
		Session:  SessionForYear(year),
		Year:     year,
		Number:   number,
	}, nil
}

func (r RollID) String() string {
	return fmt.Sprintf("%s%d-%d", r.Chamber.Prefix(), r.Number, r.Year)
}

// IsZero reports whether r is the zero value.
func (r RollID) IsZero() bool { return r == RollID{} }

// ZeroPrefix pads a roll number to the five digits used in upstream file names.
func ZeroPrefix(number int) string {
	return fmt.Sprintf("%05d", number)
}

// ShortZeroPrefix pads to two digits.
func ShortZeroPrefix(number int) string {
	return fmt.Sprintf("%02d", number)
}

// Ordinal renders a congress number as "111th".
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}
