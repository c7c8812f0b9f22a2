// Package schema holds the static registry mapping page labels, section
// titles, and canonical tables onto the fixed output schema. Everything in
// here is a pure lookup; no state, no I/O.
package schema

import "strings"

// TableColumns lists each canonical table's columns in insert order.
// case_id is always the first logical key and is injected at ingest time.
var TableColumns = map[string][]string{
	"cases": {
		"case_id", "title", "court_system", "type", "filing_date", "status",
		"disposition", "disposition_date", "violation_county", "violation_date",
	},
	"parties": {
		"case_id", "name", "type", "bus_org_name", "agency_name", "race", "sex",
		"height", "weight", "dob", "address", "city", "state", "zip",
	},
	"attorneys": {
		"case_id", "name", "type", "appearance_date", "removal_date",
		"practice_name", "address", "city", "state", "zip",
	},
	"events": {
		"case_id", "type", "date", "time", "result", "result_date",
	},
	"charges": {
		"case_id", "statute_code", "description", "offense_date_from",
		"offense_date_to", "class", "amended_date", "cjis_code", "probable_cause",
		"victim_age", "speed_limit", "recorded_speed", "location_stopped",
		"accident_contribution", "injuries", "property_damage", "seatbelts_used",
		"mandatory_court_appearance", "vehicle_tag", "state", "plea", "plea_date",
		"disposition", "disposition_date", "jail_extreme_punishment", "jail_term",
		"jail_suspended_term", "jail_unsuspended_term", "probation_term",
		"probation_supervised_term", "probation_unsupervised_term", "fine_amt",
		"fine_suspended_amt", "fine_restitution_amt", "fine_due",
		"fine_first_pmt_due", "cws_hours", "cws_deadline", "cws_location",
		"cws_date",
	},
	"documents": {
		"case_id", "name", "filing_date",
	},
	"judgements": {
		"case_id", "against", "in_favor_of", "type", "date", "interest", "amt",
	},
	"complaints": {
		"case_id", "type", "against", "status", "status_date", "filing_date", "amt",
	},
}

// Tables lists the canonical tables with cases first; dependent tables never
// precede it in any insert sequence.
var Tables = []string{
	"cases", "parties", "attorneys", "events", "charges",
	"documents", "judgements", "complaints",
}

// attributeNames maps page field prompts onto canonical column names.
// Labels arrive with trailing ':' / '?' already stripped and whitespace
// collapsed by the parser.
var attributeNames = map[string]string{
	// cases
	"Case Number":      "case_id",
	"Title":            "title",
	"Court System":     "court_system",
	"Case Type":        "type",
	"Filing Date":      "filing_date",
	"Case Status":      "status",
	"Case Disposition": "disposition",
	"Disposition Date": "disposition_date",
	"Violation County": "violation_county",
	"Violation Date":   "violation_date",

	// parties
	"Name":                          "name",
	"Party Type":                    "type",
	"Business or Organization Name": "bus_org_name",
	"Agency Name":                   "agency_name",
	"Race":                          "race",
	"Sex":                           "sex",
	"Height":                        "height",
	"Weight":                        "weight",
	"DOB":                           "dob",
	"Address":                       "address",
	"City":                          "city",
	"State":                         "state",
	"Zip Code":                      "zip",

	// attorneys
	"Appearance Date": "appearance_date",
	"Removal Date":    "removal_date",
	"Practice Name":   "practice_name",

	// events
	"Event Type":  "type",
	"Date":        "date",
	"Time":        "time",
	"Result":      "result",
	"Result Date": "result_date",

	// charges
	"Statute Code":               "statute_code",
	"Charge Description":         "description",
	"Description":                "description",
	"Offense Date From":          "offense_date_from",
	"Offense Date To":            "offense_date_to",
	"Charge Class":               "class",
	"Class":                      "class",
	"Amended Date":               "amended_date",
	"CJIS Code":                  "cjis_code",
	"CJIS Traffic Code":          "cjis_code",
	"Probable Cause":             "probable_cause",
	"Victim Age":                 "victim_age",
	"Speed Limit":                "speed_limit",
	"Recorded Speed":             "recorded_speed",
	"Location Stopped":           "location_stopped",
	"Contributed to Accident":    "accident_contribution",
	"Injuries":                   "injuries",
	"Property Damage":            "property_damage",
	"Seatbelts Used":             "seatbelts_used",
	"Mandatory Court Appearance": "mandatory_court_appearance",
	"Vehicle Tag":                "vehicle_tag",
	"Plea":                       "plea",
	"Plea Date":                  "plea_date",
	"Extreme Punishment":         "jail_extreme_punishment",
	"Jail Term":                  "jail_term",
	"Suspended Term":             "jail_suspended_term",
	"UnSuspended Term":           "jail_unsuspended_term",
	"Probation":                  "probation_term",
	"Supervised":                 "probation_supervised_term",
	"UnSupervised":               "probation_unsupervised_term",
	"Fine Amt":                   "fine_amt",
	"Amt":                        "amt",
	"Suspended Amt":              "fine_suspended_amt",
	"Restitution Amt":            "fine_restitution_amt",
	"Due":                        "fine_due",
	"First Pmt Due":              "fine_first_pmt_due",
	"Hours":                      "cws_hours",
	"Deadline":                   "cws_deadline",
	"Location":                   "cws_location",
	"Completion Date":            "cws_date",

	// documents
	"Document Name":        "name",
	"Document Filing Date": "filing_date",

	// judgements
	"Judgment Against":     "against",
	"Judgment in Favor of": "in_favor_of",
	"Judgment Type":        "type",
	"Judgment Date":        "date",
	"Judgment Interest":    "interest",
	"Judgment Amount":      "amt",

	// complaints
	"Complaint Type":   "type",
	"Complaint Status": "status",
	"Status Date":      "status_date",
}

// AttributeName maps a page label onto its canonical column name.
// Unknown labels fall back to a lowercased, underscored form so that layout
// drift surfaces as an unmapped column instead of a dropped value.
func AttributeName(label string) string {
	if name, ok := attributeNames[label]; ok {
		return name
	}
	return strings.ReplaceAll(strings.ToLower(label), " ", "_")
}

// partyMarkers are substrings of section titles whose records belong to the
// parties table.
var partyMarkers = []string{
	"Defendant", "Plaintiff", "Petitioner", "Respondent",
	"Surety", "Bond", "Officer", "Party", "Related Person",
}

// SectionTable maps a page section title onto its canonical table, or ""
// when records under that title are not persisted.
func SectionTable(title string) string {
	switch {
	case title == "Case Information":
		return "cases"
	case strings.HasPrefix(title, "Attorney(s) for the "):
		return "attorneys"
	case strings.Contains(title, "Charge"):
		return "charges"
	case strings.Contains(title, "Document"):
		return "documents"
	case strings.Contains(title, "Judgment") || strings.Contains(title, "Judgement"):
		return "judgements"
	case strings.Contains(title, "Complaint"):
		return "complaints"
	case strings.Contains(title, "Schedul") || strings.Contains(title, "Event"):
		return "events"
	}
	for _, marker := range partyMarkers {
		if strings.Contains(title, marker) {
			return "parties"
		}
	}
	return ""
}

// BooleanColumns are coerced from Y/Yes page values to booleans.
var BooleanColumns = map[string]bool{
	"probable_cause":             true,
	"accident_contribution":      true,
	"property_damage":            true,
	"seatbelts_used":             true,
	"mandatory_court_appearance": true,
}

// DurationLabels are the field prompts parsed with the four-part
// years/months/days/hours micro-format.
var DurationLabels = map[string]bool{
	"Jail Term":        true,
	"Suspended Term":   true,
	"UnSuspended Term": true,
	"Probation":        true,
	"Supervised":       true,
	"UnSupervised":     true,
}
