package query

import "strings"

// sanitizeReplacer strips characters the backend uses for formatting
// and that read poorly when spoken.
var sanitizeReplacer = strings.NewReplacer("*", "", "´", "", "`", "", `"`, "", "'", "")

// Sanitize removes formatting characters from a backend answer.
func Sanitize(text string) string {
	return sanitizeReplacer.Replace(text)
}

// stopWords are skipped during tag extraction (Portuguese plus a few
// English fillers).
var stopWords = map[string]struct{}{
	"a": {}, "o": {}, "e": {}, "é": {}, "de": {}, "do": {}, "da": {},
	"em": {}, "para": {}, "com": {}, "um": {}, "uma": {},
	"the": {}, "and": {}, "for": {}, "with": {}, "that": {}, "this": {},
}

const maxTags = 5

// ExtractTags picks up to five keywords from the text for history
// search. Words are lowercased, stripped of punctuation, and filtered
// for length and stop words; first occurrence order is kept.
func ExtractTags(text string) []string {
	var tags []string
	seen := make(map[string]struct{})

	for _, word := range strings.Fields(strings.ToLower(text)) {
		var b strings.Builder
		for _, r := range word {
			if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
				b.WriteRune(r)
			}
		}
		w := b.String()
		if len(w) <= 3 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		tags = append(tags, w)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
