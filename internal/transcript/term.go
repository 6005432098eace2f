package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Season is the within-year position of an academic term.
type Season int

const (
	SeasonWinter Season = iota
	SeasonSpring
	SeasonSummer
	SeasonFall
)

// String returns the canonical season name.
func (s Season) String() string {
	switch s {
	case SeasonWinter:
		return "Winter"
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonFall:
		return "Fall"
	default:
		return "Unknown"
	}
}

// Term is a parsed academic term label. Terms order by year first, then by
// season within the year (Winter < Spring < Summer < Fall).
type Term struct {
	Season Season
	Year   int
}

// String renders the canonical label, e.g. "Fall 2023".
func (t Term) String() string {
	return fmt.Sprintf("%s %d", t.Season, t.Year)
}

// Compare orders two terms chronologically. Negative means t precedes o.
func (t Term) Compare(o Term) int {
	if t.Year != o.Year {
		return t.Year - o.Year
	}
	return int(t.Season) - int(o.Season)
}

// Next returns the following term. Summer and Winter are skipped unless
// includeSummer is set, matching a regular two-semester year.
func (t Term) Next(includeSummer bool) Term {
	if includeSummer {
		switch t.Season {
		case SeasonSpring:
			return Term{Season: SeasonSummer, Year: t.Year}
		case SeasonSummer:
			return Term{Season: SeasonFall, Year: t.Year}
		case SeasonFall:
			return Term{Season: SeasonSpring, Year: t.Year + 1}
		default:
			return Term{Season: SeasonSpring, Year: t.Year}
		}
	}

	switch t.Season {
	case SeasonFall:
		return Term{Season: SeasonSpring, Year: t.Year + 1}
	default:
		return Term{Season: SeasonFall, Year: t.Year}
	}
}

// AddSemesters advances the term by n regular semesters.
func (t Term) AddSemesters(n int, includeSummer bool) Term {
	out := t
	for i := 0; i < n; i++ {
		out = out.Next(includeSummer)
	}
	return out
}

var termRe = regexp.MustCompile(`(?i)\b(winter|spring|summer|fall|autumn|wi|sp|su|fa)\s*'?\s*(\d{4}|\d{2})\b|\b(\d{4})\s+(winter|spring|summer|fall|autumn)\b`)

var seasonNames = map[string]Season{
	"winter": SeasonWinter,
	"wi":     SeasonWinter,
	"spring": SeasonSpring,
	"sp":     SeasonSpring,
	"summer": SeasonSummer,
	"su":     SeasonSummer,
	"fall":   SeasonFall,
	"autumn": SeasonFall,
	"fa":     SeasonFall,
}

// ParseTerm parses labels such as "Fall 2023", "FA23", "Spring '24" or
// "2023 Fall". The second return is false when no term is present.
func ParseTerm(label string) (Term, bool) {
	m := termRe.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return Term{}, false
	}

	var seasonTok, yearTok string
	if m[1] != "" {
		seasonTok, yearTok = m[1], m[2]
	} else {
		seasonTok, yearTok = m[4], m[3]
	}

	season, ok := seasonNames[strings.ToLower(seasonTok)]
	if !ok {
		return Term{}, false
	}

	year, err := strconv.Atoi(yearTok)
	if err != nil {
		return Term{}, false
	}
	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}

	return Term{Season: season, Year: year}, true
}

// LatestTerm returns the chronologically last of the given terms.
func LatestTerm(terms []Term) (Term, bool) {
	if len(terms) == 0 {
		return Term{}, false
	}
	latest := terms[0]
	for _, t := range terms[1:] {
		if t.Compare(latest) > 0 {
			latest = t
		}
	}
	return latest, true
}
