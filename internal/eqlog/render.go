package eqlog

import "strings"

const renderIndentUnit = "    "

func writeIndent(out *[]string, depth int, s string) {
	*out = append(*out, strings.Repeat(renderIndentUnit, depth)+s)
}

func writeKore(out *[]string, kore []string, depth int) {
	prefix := strings.Repeat(renderIndentUnit, depth)
	for _, l := range kore {
		*out = append(*out, prefix+l)
	}
}

func writeContext(ctx []Context, contextStart, depth int, out *[]string) {
	writeIndent(out, depth, "Context:")
	for i := contextStart; i < len(ctx); i++ {
		writeIndent(out, depth+1, ctx[i].String())
	}
}

// WriteLog renders a sequence of organized top-level entries as the
// indented text block an operator reads, one blank line between each
// top-level entry.
func WriteLog(results []Organized) string {
	var out []string
	for _, r := range results {
		r.Write(0, 0, &out)
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}
