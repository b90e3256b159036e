package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ReadGlobal decodes the JavaScript global name of the loaded document into
// v. Pages that can evaluate scripts are asked directly; otherwise the
// assignment is located in the inline scripts of the document, which works
// as long as the value is written as JSON.
func ReadGlobal(ctx context.Context, page Page, name string, v any) error {
	if gr, ok := page.(GlobalReader); ok {
		raw, err := gr.Global(ctx, name)
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(raw)) == 0 || string(raw) == "null" {
			return fmt.Errorf("window.%s is not defined", name)
		}
		return json.Unmarshal(raw, v)
	}

	doc, err := page.Document(ctx)
	if err != nil {
		return err
	}
	raw, ok := inlineGlobal(doc, name)
	if !ok {
		return fmt.Errorf("window.%s is not defined", name)
	}
	return json.Unmarshal(raw, v)
}

func inlineGlobal(doc *goquery.Document, name string) (json.RawMessage, bool) {
	assign := regexp.MustCompile(`(?:\bwindow\.|\b(?:var|let|const)\s+)` + regexp.QuoteMeta(name) + `\s*=\s*`)

	var found json.RawMessage
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		loc := assign.FindStringIndex(text)
		if loc == nil {
			return true
		}
		var raw json.RawMessage
		// The decoder stops after the first complete value, so trailing
		// statements in the same script are ignored.
		if err := json.NewDecoder(strings.NewReader(text[loc[1]:])).Decode(&raw); err != nil {
			return true
		}
		found = raw
		return false
	})
	return found, found != nil
}
