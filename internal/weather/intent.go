package weather

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sheetcalc/pkg/contracts/domain"
)

var (
	districtPattern = regexp.MustCompile(
		`district\s+(?P<district>[a-z\s]+?)\s+in\s+each\s+(?P<months>[a-z\s,]+)\s+from\s+year\s+(?P<start>\d{4})\s+to\s+(?P<end>\d{4})`)
	statesPattern = regexp.MustCompile(
		`state\s+(?P<state_a>[a-z\s]+?)\s+and\s+state\s+(?P<state_b>[a-z\s]+?)\s+in\s+the\s+(?P<week_word>\w+)\s+week\s+of\s+(?P<month>[a-z]+)\s+(?P<year>\d{4})`)
	monthSeparator = regexp.MustCompile(`[,\s]+`)
)

var monthNumbers = map[string]int{
	"january":   1,
	"february":  2,
	"march":     3,
	"april":     4,
	"may":       5,
	"june":      6,
	"july":      7,
	"august":    8,
	"september": 9,
	"october":   10,
	"november":  11,
	"december":  12,
}

var weekNumbers = map[string]int{
	"first":  1,
	"second": 2,
	"third":  3,
	"fourth": 4,
	"fifth":  5,
}

// defaultWeek is used when the ordinal in a weekly question is not recognised.
const defaultWeek = 2

// Query is a parsed question.
type Query struct {
	Intent domain.Intent

	// Monthly district total.
	District  string
	Months    []int
	StartYear int
	EndYear   int

	// Weekly state comparison. Month is parsed for completeness but the
	// comparison filters on Year and Week only.
	StateA string
	StateB string
	Week   int
	Month  int
	Year   int
}

// ParseQuestion matches question against the supported templates. The
// district template is tried first.
func ParseQuestion(question string) Query {
	q := strings.ToLower(strings.TrimSpace(question))

	if m := namedGroups(districtPattern, q); m != nil {
		var months []int
		for _, word := range monthSeparator.Split(m["months"], -1) {
			if n, ok := monthNumbers[strings.TrimSpace(word)]; ok {
				months = append(months, n)
			}
		}
		return Query{
			Intent:    domain.IntentMonthlyDistrictTotal,
			District:  titleCase(m["district"]),
			Months:    months,
			StartYear: atoi(m["start"]),
			EndYear:   atoi(m["end"]),
		}
	}

	if m := namedGroups(statesPattern, q); m != nil {
		week, ok := weekNumbers[m["week_word"]]
		if !ok {
			week = defaultWeek
		}
		return Query{
			Intent: domain.IntentWeeklyStateCompare,
			StateA: titleCase(m["state_a"]),
			StateB: titleCase(m["state_b"]),
			Week:   week,
			Month:  monthNumbers[m["month"]],
			Year:   atoi(m["year"]),
		}
	}

	return Query{Intent: domain.IntentUnknown}
}

func namedGroups(re *regexp.Regexp, s string) map[string]string {
	match := re.FindStringSubmatch(s)
	if match == nil {
		return nil
	}
	groups := make(map[string]string, len(match))
	for i, name := range re.SubexpNames() {
		if name != "" {
			groups[name] = match[i]
		}
	}
	return groups
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// atoi is only called on \d{4} captures.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
