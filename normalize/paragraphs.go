package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"cardgen-server/core"
)

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// splitParagraphs makes one draft per blank-line separated section. The first
// line of a section is its title and the remaining lines are its content; a
// one-line section uses that line for both. A section whose first line is
// only whitespace is titled "<fallbackTitle> - Note N".
//
// bodies counts the sections that had lines after their title.
func splitParagraphs(raw, fallbackTitle string) (drafts []core.Draft, bodies int) {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")

	for _, section := range blankLine.Split(normalized, -1) {
		section = strings.Trim(section, "\n")
		if strings.TrimSpace(section) == "" {
			continue
		}

		lines := strings.Split(section, "\n")
		title := strings.TrimSpace(lines[0])
		if title == "" {
			title = fmt.Sprintf("%s - Note %d", fallbackTitle, len(drafts)+1)
		}

		content := strings.TrimRight(strings.Join(lines[1:], "\n"), " \t\n")
		if content == "" {
			content = title
		} else {
			bodies++
		}

		drafts = append(drafts, core.Draft{Title: title, Content: content})
	}
	return drafts, bodies
}
