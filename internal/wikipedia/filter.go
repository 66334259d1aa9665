package wikipedia

import (
	"fmt"
	"strings"
)

// minSummaryLength rejects stub articles whose intro carries too little
// content to summarize.
const minSummaryLength = 100

var disambiguationIndicators = []string{
	"may refer to:", "may refer to", "may mean:", "may stand for:",
	"can refer to:", "most commonly refers to:", "commonly refers to:",
	"disambiguation", "is a disambiguation",
}

var namePageIndicators = []string{
	"is a surname", "is a family name", "is a given name",
	"is a masculine given name", "is a feminine given name",
	"is a common surname", "is an english surname", "is a name",
	"as a surname", "as a given name",
}

// FilterSummary applies the content-quality rules to an article intro:
// disambiguation pages, surname/given-name stubs, "list of" index pages, and
// too-short extracts are rejected. Matching is case-insensitive and the
// first matched rule wins. A non-empty reason means the summary is rejected.
func FilterSummary(summary string) (reason string) {
	lower := strings.ToLower(summary)

	for _, ind := range disambiguationIndicators {
		if strings.Contains(lower, ind) {
			return "disambiguation page"
		}
	}

	for _, ind := range namePageIndicators {
		if strings.Contains(lower, ind) {
			return "name/surname page"
		}
	}

	if strings.HasPrefix(lower, "this is a list of") || strings.HasPrefix(lower, "list of") {
		return "list index page"
	}

	if len(summary) < minSummaryLength {
		return fmt.Sprintf("summary too short (%d chars)", len(summary))
	}

	return ""
}
