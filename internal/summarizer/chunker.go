package summarizer

import "strings"

// splitChunks cuts text into pieces no longer than chunkChars, splitting
// only on line boundaries. A single line longer than chunkChars is
// hard-split as a last resort.
func splitChunks(text string, chunkChars int) []string {
	lines := strings.Split(text, "\n")
	var chunks []string
	var cur strings.Builder
	for _, line := range lines {
		for len(line) > chunkChars {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			chunks = append(chunks, line[:chunkChars])
			line = line[chunkChars:]
		}
		extra := len(line)
		if cur.Len() > 0 {
			extra++
		}
		if cur.Len()+extra > chunkChars {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

// capChunks keeps at most max chunks, dropping the oldest first, and
// reports how many were omitted.
func capChunks(chunks []string, max int) ([]string, int) {
	if len(chunks) <= max {
		return chunks, 0
	}
	omitted := len(chunks) - max
	return chunks[omitted:], omitted
}
