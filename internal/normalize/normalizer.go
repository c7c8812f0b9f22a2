// Package normalize maps segmented page records onto the canonical schema:
// section titles become table names, field prompts become columns, and the
// handful of weakly-typed page values get coerced.
package normalize

import (
	"strconv"
	"strings"

	"github.com/opencourts/casesearch/internal/parser"
	"github.com/opencourts/casesearch/internal/schema"
)

// Record is one canonical row candidate. Values are strings except for the
// designated boolean columns and the injuries count.
type Record map[string]any

// ParsedCase is the normalized form of one detail document: records grouped
// by canonical table, with table order preserved from the page so that
// cases-first insert ordering holds.
type ParsedCase struct {
	Order  []string
	Tables map[string][]Record
}

// CaseID returns the case identifier parsed from the Case Information
// section, or "" when the document is contentless.
func (pc *ParsedCase) CaseID() string {
	cases := pc.Tables["cases"]
	if len(cases) == 0 {
		return ""
	}
	id, _ := cases[0]["case_id"].(string)
	return id
}

func (pc *ParsedCase) add(table string, entries []Record) {
	if _, seen := pc.Tables[table]; !seen {
		pc.Order = append(pc.Order, table)
	}
	pc.Tables[table] = append(pc.Tables[table], entries...)
}

// Format assembles the segmented output sequence into a ParsedCase. A
// leading record without a section boundary is treated as the Case
// Information section.
func Format(items []parser.Item) *ParsedCase {
	out := &ParsedCase{Tables: map[string][]Record{}}

	if len(items) > 0 && !items[0].IsSection() {
		items = append([]parser.Item{{Section: "Case Information"}}, items...)
	}

	for i := 0; i < len(items); i++ {
		if !items[i].IsSection() {
			continue
		}
		section := items[i].Section
		table := schema.SectionTable(section)
		if table == "" {
			continue
		}
		var entries []Record
		for j := i + 1; j < len(items) && !items[j].IsSection(); j++ {
			if rec := formatFields(items[j].Fields, section, table); rec != nil {
				entries = append(entries, rec)
			}
		}
		if len(entries) > 0 || len(out.Tables[table]) > 0 {
			out.add(table, entries)
		}
	}

	reclassifyAttorneys(out)

	return out
}

// formatFields renames a record's fields to canonical column names and
// applies value coercions. It returns nil when the record turns out to be
// party bleed-through inside an attorney section.
func formatFields(fields map[string]string, section, table string) Record {
	rec := Record{}

	for label, value := range fields {
		name := schema.AttributeName(label)
		rec[name] = value
		if value == "" {
			continue
		}
		switch {
		case name == "height" && (strings.Contains(value, "'") || strings.Contains(value, `"`)):
			rec[name] = heightInches(value)
		case name == "sex":
			rec[name] = strings.ToUpper(value)[:1]
		case strings.Contains(name, "date") || name == "dob":
			// Two-part dates get a placeholder year of 01. This mirrors the
			// portal's historical month/day-only values; flagged with the
			// product owners rather than second-guessed here.
			if parts := strings.Split(value, "/"); len(parts) == 2 {
				rec[name] = parts[0] + "/01/" + parts[1]
			}
		case schema.BooleanColumns[name]:
			lower := strings.ToLower(value)
			rec[name] = lower == "y" || lower == "yes"
		case name == "injuries" && !isDigits(value):
			rec[name] = 0
		}
	}

	if strings.HasPrefix(section, "Attorney(s) for the ") {
		appearance, _ := rec["appearance_date"].(string)
		recName, _ := rec["name"].(string)
		if appearance != "" || strings.Contains(strings.ToLower(recName), "attorney") {
			rec["type"] = strings.TrimPrefix(section, "Attorney(s) for the ")
		} else {
			// Party fields bleed into attorney sections; drop those records.
			return nil
		}
	} else if table == "parties" && containsAny(section, "Surety", "Bond", "Defendant", "Plaintiff", "Officer") {
		rec["type"] = strings.ReplaceAll(section, " Information", "")
	}

	return rec
}

// reclassifyAttorneys moves parties whose type reads "attorney for X" into
// the attorneys table, rewriting the type to X.
func reclassifyAttorneys(pc *ParsedCase) {
	parties := pc.Tables["parties"]
	if len(parties) == 0 {
		return
	}
	kept := parties[:0]
	var moved []Record
	for _, rec := range parties {
		partyType, _ := rec["type"].(string)
		if strings.HasPrefix(strings.ToLower(partyType), "attorney for ") {
			rec["type"] = partyType[len("attorney for "):]
			moved = append(moved, rec)
			continue
		}
		kept = append(kept, rec)
	}
	pc.Tables["parties"] = kept
	if len(moved) > 0 {
		pc.add("attorneys", moved)
	}
}

// heightInches converts a feet-and-inches string like 5'11" to total inches.
func heightInches(value string) string {
	parts := strings.SplitN(strings.ReplaceAll(value, `"`, "'"), "'", 3)
	feet, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	inches := 0
	if len(parts) > 1 {
		inches, _ = strconv.Atoi(strings.TrimSpace(parts[1]))
	}
	return strconv.Itoa(feet*12 + inches)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Parse converts one raw detail document into its normalized form.
func Parse(content []byte) (*ParsedCase, error) {
	items, err := parser.Parse(content)
	if err != nil {
		return nil, err
	}
	return Format(items), nil
}
