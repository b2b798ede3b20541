package ingest

import (
	"fmt"
	"strings"

	"github.com/okian/eeat/internal/domain/catalog"
	"github.com/okian/eeat/internal/domain/model"
)

// Prompt builds the classifier instruction for url. The requested JSON keys
// come from cat so a loaded catalog and the classifier never drift apart.
func Prompt(cat *catalog.Catalog, url string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyze this URL for E-E-A-T (Experience, Expertise, Authoritativeness, Trustworthiness) signals based on Google's Search Quality Rater Guidelines.\n\n")
	fmt.Fprintf(&b, "URL: %s\n\n", url)
	b.WriteString("Evaluate the page and return a JSON object with this exact structure:\n{\n")

	intents := make([]string, 0, len(model.Intents))
	for _, in := range model.Intents {
		intents = append(intents, string(in))
	}
	fmt.Fprintf(&b, "  \"intent\": \"%s\",\n", strings.Join(intents, "|"))
	b.WriteString("  \"intentNote\": \"Brief explanation of page intent\",\n")
	b.WriteString("  \"ymyl\": \"health|finance|safety|legal|news|shopping|other|none\",\n")
	b.WriteString("  \"ymylNote\": \"Why this is/isn't YMYL\",\n")
	b.WriteString("  \"harmful\": false,\n")
	b.WriteString("  \"harmNote\": \"Any concerns or 'No harmful content detected'\",\n")

	for _, name := range requiredGroups {
		fmt.Fprintf(&b, "  %q: {\n", name)
		var keys []string
		for _, g := range cat.Groups() {
			if g.Source != name {
				continue
			}
			for _, s := range g.Signals {
				rng := "0-2"
				if s.ManualCheck {
					rng = "-1 to 2"
				}
				keys = append(keys, fmt.Sprintf("    %q: %s", s.Key, rng))
			}
		}
		b.WriteString(strings.Join(keys, ",\n"))
		b.WriteString("\n  },\n")
	}

	b.WriteString("  \"strengths\": [\"strength 1\", \"strength 2\", \"strength 3\"],\n")
	b.WriteString("  \"weaknesses\": [\"weakness 1\", \"weakness 2\", \"weakness 3\"],\n")
	b.WriteString("  \"recommendations\": [\"Top priority fix 1\", \"Top priority fix 2\", \"Top priority fix 3\"]\n}\n\n")
	b.WriteString("Rating scale: 0 = Missing/Not found, 1 = Partial/Needs improvement, 2 = Fully demonstrated, ")
	b.WriteString("-1 = Cannot be verified from the page alone (needs manual review).\n\n")
	b.WriteString("Be thorough but concise. Return ONLY valid JSON, no other text.")
	return b.String()
}
