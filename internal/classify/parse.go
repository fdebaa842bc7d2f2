package classify

import (
	"regexp"
	"strings"
)

// numberedLine matches reply lines carrying a category assignment: an
// integer followed by an optional separator. The claimed number is ignored;
// assignments apply in the order lines were matched.
var numberedLine = regexp.MustCompile(`^\d+[.)\-:]?\s*`)

// ParseNumberedList extracts the category per matched line of a free-form
// model reply. Unmatched lines (prose, blank lines, markdown fences) are
// skipped.
func ParseNumberedList(reply string) []string {
	var categories []string
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		loc := numberedLine.FindStringIndex(line)
		if loc == nil {
			continue
		}
		categories = append(categories, strings.TrimSpace(line[loc[1]:]))
	}
	return categories
}
