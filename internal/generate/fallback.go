package generate

import (
	"fmt"
	"strings"

	"docwatch/internal/detect"
)

// FallbackAPIReference is the deterministic documentation template used
// when every generation attempt fails or returns empty text.
func FallbackAPIReference(rec detect.ChangeRecord) string {
	return fmt.Sprintf(`## %s %s

**Description:** %s

**Function:** `+"`%s`"+`

**Request/Response:** See code implementation for details.

**Notes:** This endpoint was automatically detected. Please review and update documentation as needed.
`, rec.Method, rec.Path, titleFromFunction(rec.FunctionName), rec.FunctionName)
}

// FallbackChangelog is the deterministic changelog template for a record.
func FallbackChangelog(rec detect.ChangeRecord, date string) string {
	return fmt.Sprintf(`### %s

#### New Features
- Added `+"`%s %s`"+` endpoint
- Function: `+"`%s`"+`
`, date, rec.Method, rec.Path, rec.FunctionName)
}

// titleFromFunction turns create_customer_preferences into
// "Create Customer Preferences".
func titleFromFunction(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
