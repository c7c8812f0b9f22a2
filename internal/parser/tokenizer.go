package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// tokenSelector matches every element the portal uses to carry a field
// prompt, a field value, a section title, or a section rule. Matches come
// back in document order, which the segmenter's cursor arithmetic depends on.
const tokenSelector = "span, h5, h6, i, hr"

// Tokenize reduces a raw detail document to its ordered token stream.
func Tokenize(content []byte) ([]Token, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var tokens []Token
	doc.Find(tokenSelector).Each(func(_ int, s *goquery.Selection) {
		tokens = append(tokens, Token{
			Tag:       goquery.NodeName(s),
			ParentTag: goquery.NodeName(s.Parent()),
			Text:      s.Text(),
			Classes:   strings.Fields(s.AttrOr("class", "")),
		})
	})
	return tokens, nil
}
