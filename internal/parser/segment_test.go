package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func label(text string) Token {
	return Token{Tag: "span", Classes: []string{"FirstColumnPrompt"}, Text: text}
}

func value(text string) Token {
	return Token{Tag: "span", Classes: []string{"Value"}, Text: text}
}

func header(tag, text string) Token {
	return Token{Tag: tag, Text: text}
}

func TestSegment_GenericPairing(t *testing.T) {
	items := Segment([]Token{
		header("h5", "Case Information"),
		label("Case Number:"),
		value("24C10001"),
		label("Filing Date:"),
		value("1/5/2010"),
	})

	require.Len(t, items, 2)
	assert.Equal(t, "Case Information", items[0].Section)
	assert.Equal(t, map[string]string{
		"Case Number": "24C10001",
		"Filing Date": "1/5/2010",
	}, items[1].Fields)
}

func TestSegment_MoneyJudgmentDiscarded(t *testing.T) {
	items := Segment([]Token{
		label("Type:"),
		value("MONEY JUDGMENT"),
		value("Judgment"),
	})

	require.Len(t, items, 1)
	assert.Equal(t, map[string]string{"Type": "Judgment"}, items[0].Fields)
}

func TestSegment_SeparatorFlushesRecord(t *testing.T) {
	items := Segment([]Token{
		label("Name:"),
		value("DOE, JOHN"),
		header("hr", ""),
		label("Name:"),
		value("ROE, JANE"),
	})

	// The rule marker closes the first record but is not itself a boundary.
	require.Len(t, items, 2)
	assert.Equal(t, "DOE, JOHN", items[0].Fields["Name"])
	assert.Equal(t, "ROE, JANE", items[1].Fields["Name"])
}

func TestSegment_ChargeSubheadingNotABoundary(t *testing.T) {
	items := Segment([]Token{
		header("h5", "Charge and Disposition Information"),
		label("Charge Description:"),
		value("SPEEDING"),
		{Tag: "i", ParentTag: "left", Text: "Disposition"},
		label("Plea:"),
		value("Guilty"),
	})

	require.Len(t, items, 2)
	assert.Equal(t, "Charge and Disposition Information", items[0].Section)
	assert.Equal(t, map[string]string{
		"Charge Description": "SPEEDING",
		"Plea":               "Guilty",
	}, items[1].Fields)
}

func TestSegment_StatuteCode(t *testing.T) {
	items := Segment([]Token{
		label("Article:"),
		value("TA"),
		label("Sec:"),
		value("21"),
		label("Sub-Sec:"),
		value("902"),
		label("Para:"),
		value(""),
		label("Code:"),
		value("b"),
		header("h5", "Next Section"),
	})

	require.GreaterOrEqual(t, len(items), 1)
	assert.Equal(t, "TA.21.902.b", items[0].Fields["Statute Code"])
}

func TestSegment_DurationCarriesMonths(t *testing.T) {
	items := Segment([]Token{
		label("Jail Term:"),
		label("Yrs:"),
		value("1"),
		label("Mos:"),
		value("15"),
		label("Days:"),
		value(""),
		label("Hours:"),
		value(""),
	})

	require.Len(t, items, 1)
	assert.Equal(t, "2-3 0 0:00:00", items[0].Fields["Jail Term"])
}

func TestSegment_DurationWithoutCarry(t *testing.T) {
	items := Segment([]Token{
		label("Probation:"),
		label("Yrs:"),
		value("2"),
		label("Mos:"),
		value("6"),
		label("Days:"),
		value("10"),
		label("Hours:"),
		value(""),
	})

	require.Len(t, items, 1)
	assert.Equal(t, "2-6 10 0:00:00", items[0].Fields["Probation"])
}

func TestSegment_EventTable(t *testing.T) {
	th := func(text string) Token {
		return Token{Tag: "span", ParentTag: "th", Classes: []string{"Prompt"}, Text: text}
	}
	items := Segment([]Token{
		header("h5", "Court Scheduling Information"),
		th("Event Type"),
		th("Date"),
		th("Result"),
		value("HEARING"),
		value("1/5/2010"),
		value("Held"),
		value("TRIAL"),
		value("2/6/2010"),
		value("Postponed"),
		header("h5", "Next Section"),
	})

	// The token ending the value run is consumed along with the block.
	require.Len(t, items, 3)
	assert.Equal(t, "Court Scheduling Information", items[0].Section)
	assert.Equal(t, map[string]string{
		"Event Type": "HEARING",
		"Date":       "1/5/2010",
		"Result":     "Held",
	}, items[1].Fields)
	assert.Equal(t, map[string]string{
		"Event Type": "TRIAL",
		"Date":       "2/6/2010",
		"Result":     "Postponed",
	}, items[2].Fields)
}

func TestSegment_TrailingRecordFlushed(t *testing.T) {
	items := Segment([]Token{
		label("Case Number:"),
		value("D001"),
	})
	require.Len(t, items, 1)
	assert.Equal(t, "D001", items[0].Fields["Case Number"])
}

func TestTokenize_DocumentOrderAndClasses(t *testing.T) {
	html := `<html><body>
<h5>Case Information</h5>
<span class="FirstColumnPrompt">Case Number:</span>
<span class="Value">24C10001</span>
<hr>
<table><tr><th><span class="Prompt">Event Type</span></th></tr></table>
</body></html>`

	tokens, err := Tokenize([]byte(html))
	require.NoError(t, err)
	require.Len(t, tokens, 5)

	assert.Equal(t, KindHeader, tokens[0].Kind())
	assert.Equal(t, KindLabel, tokens[1].Kind())
	assert.Equal(t, "Case Number", tokens[1].Label())
	assert.Equal(t, KindValue, tokens[2].Kind())
	assert.Equal(t, KindSeparator, tokens[3].Kind())
	assert.Equal(t, "th", tokens[4].ParentTag)
}

func TestParse_Idempotent(t *testing.T) {
	html := []byte(`<html><body>
<h5>Case Information</h5>
<span class="FirstColumnPrompt">Case Number:</span>
<span class="Value">24C10001</span>
<span class="FirstColumnPrompt">Title:</span>
<span class="Value">State vs Doe</span>
</body></html>`)

	first, err := Parse(html)
	require.NoError(t, err)
	second, err := Parse(html)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSegment_SkipsAltBodyTokens(t *testing.T) {
	items := Segment([]Token{
		label("Case Number:"),
		{Tag: "span", Classes: []string{"AltBodyWindowDcCivil", "Value"}, Text: "ignored"},
		value("D002"),
	})
	require.Len(t, items, 1)
	assert.Equal(t, "D002", items[0].Fields["Case Number"])
}
