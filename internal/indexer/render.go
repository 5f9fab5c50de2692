package indexer

import "strings"

// Render produces the Markdown body of an index document: a title heading,
// then one section per marker listing every document id as a link, once per
// recorded occurrence.
func Render(title string, prefix rune, table Table) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(title)
	b.WriteString("\n\n")

	for _, name := range table.Names() {
		b.WriteString("## ")
		b.WriteRune(prefix)
		b.WriteString(name)
		b.WriteByte('\n')
		for _, id := range table[name] {
			b.WriteString("- [")
			b.WriteString(id)
			b.WriteString("](")
			b.WriteString(id)
			b.WriteString(")\n")
		}
	}
	return b.String()
}
