package parser

import (
	"strconv"
	"strings"

	"github.com/opencourts/casesearch/internal/schema"
)

// Item is one element of the segmented output sequence: either a section
// boundary (Section non-empty) or an accumulated record.
type Item struct {
	Section string
	Fields  map[string]string
}

// IsSection reports whether the item marks a section boundary.
func (it Item) IsSection() bool { return it.Section != "" }

// chargeSubheadings are decorative <i> markers inside a charge block. They
// belong to the enclosing charge record and never open a new section.
var chargeSubheadings = map[string]bool{
	"Disposition":            true,
	"Jail":                   true,
	"Probation":              true,
	"Fine":                   true,
	"Community Work Service": true,
}

// Segment walks the token stream and emits section boundaries and records.
// Multi-token micro-formats are recognized ahead of generic label/value
// pairing: the composite statute code, the four-part duration fields, and
// the tabular event block.
func Segment(tokens []Token) []Item {
	var out []Item
	data := map[string]string{}
	headerval := ""

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.Kind() == KindSkipped {
			continue
		}

		switch tok.Kind() {
		case KindLabel:
			headerval = tok.Label()

			switch {
			case headerval == "Article" && i+2 < len(tokens) && tokens[i+2].Collapsed() == "Sec:":
				// Composite statute code: every other one of the next ten
				// tokens that carries a value contributes a dotted segment.
				var parts []string
				for j := i + 1; j < i+10 && j < len(tokens); j += 2 {
					if tokens[j].HasClass("Value") {
						if v := tokens[j].Collapsed(); v != "" {
							parts = append(parts, v)
						}
					}
				}
				data["Statute Code"] = strings.Join(parts, ".")
				i += 10

			case schema.DurationLabels[headerval]:
				data[headerval] = durationInterval(
					valueAt(tokens, i+2),
					valueAt(tokens, i+4),
					valueAt(tokens, i+6),
					valueAt(tokens, i+8),
				)
				i += 8

			case tok.ParentTag == "th" && headerval == "Event Type":
				// Tabular event block: the run of header-cell tokens fixes
				// the column count, then value tokens are consumed in chunks
				// of that width, one record per chunk.
				var headerVals []string
				for j := i; j < len(tokens) && tokens[j].ParentTag == "th"; j++ {
					headerVals = append(headerVals, tokens[j].Collapsed())
				}
				var rowVals []string
				k := i + len(headerVals)
				for ; k < len(tokens); k++ {
					if !tokens[k].HasClass("Value") {
						break
					}
					rowVals = append(rowVals, tokens[k].Collapsed())
				}
				if k < len(tokens) {
					// Resume generic scanning from the first non-value token.
					i = k
				}
				for l := 0; l < len(rowVals); l += len(headerVals) {
					event := map[string]string{}
					for idx, name := range headerVals {
						if l+idx < len(rowVals) {
							event[name] = rowVals[l+idx]
						}
					}
					out = append(out, Item{Fields: event})
				}
			}

		case KindValue:
			dataval := tok.Collapsed()
			// The MONEY JUDGMENT marker carries no field content.
			if headerval != "" && dataval != "MONEY JUDGMENT" {
				data[headerval] = dataval
			}

		case KindSeparator, KindHeader:
			header := tok.Collapsed()
			if chargeSubheadings[header] && tok.Tag == "i" && tok.ParentTag == "left" {
				break
			}
			if len(data) > 0 {
				out = append(out, Item{Fields: data})
				data = map[string]string{}
			}
			if tok.Kind() != KindSeparator && header != "" {
				out = append(out, Item{Section: header})
			}
		}
	}

	if len(data) > 0 {
		out = append(out, Item{Fields: data})
	}

	return out
}

// valueAt returns the collapsed text of the token at index i, or "0" when
// the token is absent or blank.
func valueAt(tokens []Token, i int) string {
	if i >= len(tokens) {
		return "0"
	}
	if v := tokens[i].Collapsed(); v != "" {
		return v
	}
	return "0"
}

// durationInterval renders a jail or probation term as "Y-M D H:00:00",
// carrying months over twelve into years.
func durationInterval(yrs, mos, days, hrs string) string {
	iyrs, yerr := strconv.Atoi(yrs)
	imos, merr := strconv.Atoi(mos)
	if yerr == nil && merr == nil && imos > 12 {
		iyrs += imos / 12
		imos %= 12
		yrs = strconv.Itoa(iyrs)
		mos = strconv.Itoa(imos)
	}
	return yrs + "-" + mos + " " + days + " " + hrs + ":00:00"
}

// Parse tokenizes and segments a raw detail document. Parsing is a pure
// function of the content; identical input yields identical output.
func Parse(content []byte) ([]Item, error) {
	tokens, err := Tokenize(content)
	if err != nil {
		return nil, err
	}
	return Segment(tokens), nil
}
