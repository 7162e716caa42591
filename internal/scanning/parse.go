package scanning

import (
	"encoding/json"
	"regexp"
	"strconv"
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```json\n(.*?)\n```")
	braceSpanRe  = regexp.MustCompile(`(?s)\{.*\}`)
)

// parseModelText recovers a ReceiptRecord from the model's free-form reply.
// It is total: malformed replies degrade to best-effort field extraction
// rather than failing the request.
func parseModelText(text string) *ReceiptRecord {
	// Prefer an explicitly fenced JSON block, then the widest brace span.
	// Greedy matching from the first { to the last } tolerates verbose
	// preambles and epilogues around the JSON.
	candidate := text
	if m := fencedJSONRe.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if span := braceSpanRe.FindString(text); span != "" {
		candidate = span
	}

	var record ReceiptRecord
	if err := json.Unmarshal([]byte(candidate), &record); err != nil {
		return &ReceiptRecord{
			Vendor:  extractField(text, "vendor"),
			Amount:  extractAmount(text),
			Date:    extractField(text, "date"),
			RawText: text,
		}
	}
	return &record
}

// extractField pulls a quoted "<field>": "<value>" pair out of raw text,
// returning an empty string when no such pair exists
func extractField(text, field string) string {
	re := regexp.MustCompile(`"` + field + `":\s*"([^"]*)"`)
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func extractAmount(text string) float64 {
	v, err := strconv.ParseFloat(extractField(text, "amount"), 64)
	if err != nil {
		return 0.0
	}
	return v
}
