package report

import "strings"

// Normalize lowercases a label and strips everything that is not a letter
// or digit, so "Customer Pay:" and "customer pay" compare equal.
func Normalize(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ClassifyLabel assigns a row label to the first category whose keywords
// appear in the normalized label. Labels matching no category report
// ok=false; callers skip those rows.
func ClassifyLabel(label string, categories []Category) (string, bool) {
	norm := Normalize(label)
	if norm == "" {
		return "", false
	}
	for _, category := range categories {
		for _, keyword := range category.Keywords {
			if key := Normalize(keyword); key != "" && strings.Contains(norm, key) {
				return category.Name, true
			}
		}
	}
	return "", false
}
