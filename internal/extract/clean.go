package extract

import "strings"

// Clean normalises extracted text for indexing: each line is trimmed
// and its interior space runs collapsed, and runs of blank lines become
// a single blank line.
func Clean(text string) string {
	lines := strings.Split(text, "\n")

	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = true
			continue
		}
		if blank && len(out) > 0 {
			out = append(out, "")
		}
		blank = false
		out = append(out, line)
	}

	return strings.Join(out, "\n")
}
