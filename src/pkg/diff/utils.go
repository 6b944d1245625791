package diff

import "strings"

// CalcLineChanges counts the added and deleted lines of a unified diff
// returns: addedLines, deletedLines, totalLines
func CalcLineChanges(diffContent string) (int, int, int) {
	addedLines := 0
	deletedLines := 0
	for _, line := range strings.Split(diffContent, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			addedLines++
		case strings.HasPrefix(line, "-"):
			deletedLines++
		}
	}
	return addedLines, deletedLines, addedLines + deletedLines
}
