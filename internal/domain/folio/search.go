package folio

import "strings"

// Filter keeps the lines whose label, location or id contains term, ignoring
// case. A blank term keeps everything. The input slice is not modified.
func Filter(lines []Line, term string) []Line {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return lines
	}
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if matches(l, term) {
			out = append(out, l)
		}
	}
	return out
}

func matches(l Line, term string) bool {
	return strings.Contains(strings.ToLower(l.Label), term) ||
		strings.Contains(strings.ToLower(l.Location), term) ||
		strings.Contains(strings.ToLower(l.ID), term)
}
