package parser

import (
	"regexp"
	"strings"
)

var reHandBoundary = regexp.MustCompile(`(?m)^\S.*Hand #\d+`)

// Split breaks the text of a history file into individual hand texts. Hands
// are delimited by their header lines; leading chatter before the first
// header is dropped. Returns nil when no hand headers are present.
func Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	locs := reHandBoundary.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	hands := make([]string, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chunk := strings.TrimSpace(text[loc[0]:end])
		if chunk != "" {
			hands = append(hands, chunk)
		}
	}
	return hands
}
