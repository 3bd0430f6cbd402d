package delivery

import "strings"

// SplitText cuts text into pieces within budget characters each,
// preferring to split on a newline near the boundary and falling back to
// a hard cut. Destinations call this with their own size limits.
func SplitText(text string, budget int) []string {
	if budget < 1 || len(text) <= budget {
		return []string{text}
	}
	var parts []string
	for len(text) > budget {
		cut := budget
		if idx := strings.LastIndexByte(text[:budget], '\n'); idx > 0 {
			cut = idx
		}
		parts = append(parts, strings.TrimRight(text[:cut], "\n"))
		text = strings.TrimLeft(text[cut:], "\n")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}
