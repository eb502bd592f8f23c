package catalog

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/patrickwarner/adsdk/internal/models"
)

// genEntry produces one attackPatterns element. kind 0-2 are valid text, image
// and html entries; 3 and 4 are invalid (unknown format, missing fields).
func genEntry(kind int, i int) (map[string]any, models.Format, bool) {
	id := fmt.Sprintf("p%d", i)
	switch kind {
	case 0:
		return map[string]any{"id": id, "name": id, "format": "text",
			"content": map[string]any{"text": "t", "backgroundColor": "#fff", "textColor": "#000"}}, models.FormatText, true
	case 1:
		return map[string]any{"id": id, "name": id, "format": "image",
			"content": map[string]any{"imageUrl": "i", "clickUrl": "c"}}, models.FormatImage, true
	case 2:
		return map[string]any{"id": id, "name": id, "format": "html",
			"content": map[string]any{"html": "<p/>"}}, models.FormatHTML, true
	case 3:
		return map[string]any{"id": id, "name": id, "format": "audio",
			"content": map[string]any{"src": "a"}}, "", false
	default:
		return map[string]any{"id": id, "format": "text",
			"content": map[string]any{"text": "t"}}, "", false
	}
}

func TestCatalogIndicesContiguousAndFormatsMatch(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("accepted patterns keep document order and declared format", prop.ForAll(
		func(kinds []int) bool {
			var elements []map[string]any
			var want []models.Format
			for i, k := range kinds {
				el, format, valid := genEntry(k, i)
				elements = append(elements, el)
				if valid {
					want = append(want, format)
				}
			}
			raw, err := json.Marshal(map[string]any{"attackPatterns": elements})
			if err != nil {
				return false
			}
			c, err := Load(raw, nil, nil)
			if err != nil || c.PatternCount() != len(want) {
				return false
			}
			for i, format := range want {
				p, ok := c.Pattern(i)
				if !ok || p.Format() != format || p.Content.Format() != format {
					return false
				}
			}
			_, ok := c.Pattern(len(want))
			return !ok
		},
		gen.SliceOf(gen.IntRange(0, 4)),
	))

	properties.TestingRun(t)
}
