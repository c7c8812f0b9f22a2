package portal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourts/casesearch/internal/portal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func collect(start, end time.Time) []portal.Query {
	var out []portal.Query
	for q := range portal.Enumerate(start, end) {
		out = append(out, q)
	}
	return out
}

func TestEnumerate_SingleDayProduct(t *testing.T) {
	start := day(2010, time.January, 5)
	queries := collect(start, start)

	assert.Len(t, queries, 2*26*4*2)
	assert.Equal(t, portal.Count(start, start), len(queries))

	seen := map[portal.Query]bool{}
	for _, q := range queries {
		require.False(t, seen[q], "duplicate query %s", q)
		seen[q] = true
	}
}

func TestEnumerate_NestingOrder(t *testing.T) {
	start := day(2010, time.January, 5)
	queries := collect(start, start)

	// Court system varies fastest, then category, then letter, then company.
	assert.Equal(t, portal.Query{Date: start, Company: "Y", Letter: "a", Category: "CIVIL", Court: "C"}, queries[0])
	assert.Equal(t, portal.Query{Date: start, Company: "Y", Letter: "a", Category: "CIVIL", Court: "D"}, queries[1])
	assert.Equal(t, portal.Query{Date: start, Company: "Y", Letter: "a", Category: "CRIMINAL", Court: "C"}, queries[2])
	assert.Equal(t, portal.Query{Date: start, Company: "Y", Letter: "b", Category: "CIVIL", Court: "C"}, queries[8])
	assert.Equal(t, portal.Query{Date: start, Company: "N", Letter: "a", Category: "CIVIL", Court: "C"}, queries[26*8])
}

func TestEnumerate_AscendingAndDescendingRanges(t *testing.T) {
	start := day(2010, time.January, 5)
	end := day(2010, time.January, 7)

	asc := collect(start, end)
	require.Len(t, asc, 3*416)
	assert.Equal(t, day(2010, time.January, 5), asc[0].Date)
	assert.Equal(t, day(2010, time.January, 7), asc[len(asc)-1].Date)

	desc := collect(end, start)
	require.Len(t, desc, 3*416)
	assert.Equal(t, day(2010, time.January, 7), desc[0].Date)
	assert.Equal(t, day(2010, time.January, 5), desc[len(desc)-1].Date)
}

func TestEnumerate_Restartable(t *testing.T) {
	start := day(2010, time.January, 5)
	seq := portal.Enumerate(start, start)

	first := func() portal.Query {
		for q := range seq {
			return q
		}
		t.Fatal("empty sequence")
		return portal.Query{}
	}
	assert.Equal(t, first(), first())
}

func TestDateString_NoZeroPadding(t *testing.T) {
	q := portal.Query{Date: day(2010, time.January, 5)}
	assert.Equal(t, "1/5/2010", q.DateString())

	q.Date = day(2010, time.November, 23)
	assert.Equal(t, "11/23/2010", q.DateString())
}

func TestFormValues(t *testing.T) {
	q := portal.Query{
		Date:     day(2010, time.January, 5),
		Company:  "N",
		Letter:   "d",
		Category: "TRAFFIC",
		Court:    "D",
	}

	form := q.FormValues()
	assert.Equal(t, "Search", form["action"])
	assert.Equal(t, "N", form["company"])
	assert.Equal(t, "d", form["lastName"])
	assert.Equal(t, "TRAFFIC", form["site"])
	assert.Equal(t, "D", form["courtSystem"])
	assert.Equal(t, "1/5/2010", form["filingDate"])
	assert.Equal(t, "", form["firstName"])
	assert.Len(t, form, 12)
}
