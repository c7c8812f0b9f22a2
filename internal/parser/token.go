// Package parser reconstructs structured records from the labeled page
// fragments of a case detail document. The document is reduced to an ordered
// token stream which a cursor state machine walks, recognizing a handful of
// multi-token micro-formats before falling back to generic label/value
// pairing.
package parser

import "strings"

// Kind classifies a page token.
type Kind int

// Token kinds, in the priority order the segmenter applies them.
const (
	KindOther Kind = iota
	KindSkipped
	KindLabel
	KindValue
	KindChargeStatement
	KindSeparator
	KindHeader
)

// Token is one page fragment: an element tag, its parent tag, the raw text,
// and the element's class list. Cursor arithmetic in the segmenter indexes
// the full token slice, so every matched element becomes a token regardless
// of classification.
type Token struct {
	Tag       string
	ParentTag string
	Text      string
	Classes   []string
}

// HasClass reports whether the token's element carries the given class.
func (t Token) HasClass(name string) bool {
	for _, c := range t.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Kind returns the token's classification.
func (t Token) Kind() Kind {
	switch {
	case t.HasClass("AltBodyWindowDcCivil"):
		return KindSkipped
	case t.HasClass("FirstColumnPrompt") || t.HasClass("Prompt"):
		return KindLabel
	case t.HasClass("Value"):
		return KindValue
	case t.HasClass("InfoChargeStatement"):
		return KindChargeStatement
	case t.Tag == "hr":
		return KindSeparator
	case t.Tag == "h5" || t.Tag == "h6" || t.Tag == "i":
		return KindHeader
	}
	return KindOther
}

// Collapsed returns the token text with runs of whitespace collapsed to
// single spaces and the ends trimmed.
func (t Token) Collapsed() string {
	return strings.Join(strings.Fields(t.Text), " ")
}

// Label returns the token text as a field prompt: the trailing ':' or '?'
// stripped from the raw text, then whitespace collapsed.
func (t Token) Label() string {
	text := t.Text
	text = strings.TrimSuffix(text, ":")
	text = strings.TrimSuffix(text, "?")
	return strings.Join(strings.Fields(text), " ")
}
