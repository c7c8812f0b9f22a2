package portal

import (
	"fmt"
	"iter"
	"time"
)

// Search dimensions. Every query is one point in the Cartesian product of
// date × company flag × surname initial × case category × court system.
var (
	CompanyFlags   = []string{"Y", "N"}
	CaseCategories = []string{"CIVIL", "CRIMINAL", "TRAFFIC", "CP"}
	CourtSystems   = []string{"C", "D"}
)

const surnameInitials = "abcdefghijklmnopqrstuvwxyz"

// Query is one immutable search form submission.
type Query struct {
	Date     time.Time
	Company  string // "Y" or "N"
	Letter   string // single lowercase surname initial
	Category string
	Court    string
}

// DateString renders the filing date the way the portal form expects:
// M/D/YYYY without zero padding.
func (q Query) DateString() string {
	return fmt.Sprintf("%d/%d/%d", q.Date.Month(), q.Date.Day(), q.Date.Year())
}

// FormValues returns the full search form, blank except for the active
// dimensions.
func (q Query) FormValues() map[string]string {
	return map[string]string{
		"action":      "Search",
		"company":     q.Company,
		"countyName":  "",
		"courtSystem": q.Court,
		"filingDate":  q.DateString(),
		"filingEnd":   "",
		"filingStart": "",
		"firstName":   "",
		"lastName":    q.Letter,
		"middleName":  "",
		"partyType":   "",
		"site":        q.Category,
	}
}

// String renders the query for progress logs.
func (q Query) String() string {
	return fmt.Sprintf("%s company=%s letter=%s category=%s court=%s",
		q.DateString(), q.Company, q.Letter, q.Category, q.Court)
}

// Enumerate yields every query over the inclusive date range, day by day
// (ascending when start is not after end, descending otherwise), and for
// each date the product of company flag, surname initial, case category,
// and court system, in that nesting order. The sequence is a stateless
// function of the range: finite, restartable, duplicate-free.
func Enumerate(start, end time.Time) iter.Seq[Query] {
	return func(yield func(Query) bool) {
		step := 1
		if start.After(end) {
			step = -1
		}
		for i := 0; i < rangeDays(start, end); i++ {
			date := start.AddDate(0, 0, i*step)
			for _, company := range CompanyFlags {
				for _, letter := range surnameInitials {
					for _, category := range CaseCategories {
						for _, court := range CourtSystems {
							q := Query{
								Date:     date,
								Company:  company,
								Letter:   string(letter),
								Category: category,
								Court:    court,
							}
							if !yield(q) {
								return
							}
						}
					}
				}
			}
		}
	}
}

// Count returns the number of queries Enumerate will yield for the range.
func Count(start, end time.Time) int {
	return rangeDays(start, end) *
		len(CompanyFlags) * len(surnameInitials) * len(CaseCategories) * len(CourtSystems)
}

func rangeDays(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		d = -d
	}
	return int(d.Hours()/24) + 1
}
