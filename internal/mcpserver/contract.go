package mcpserver

// MarkerSyntaxContract describes how chapters declare tags and mentions so
// LLM consumers can write chapters the indexer understands.
const MarkerSyntaxContract = `# Marker Syntax

Chapters are plain Markdown. Two marker kinds are indexed.

## Markers

- **Tag**: ` + "`" + `#name` + "`" + `, listed in ` + "`" + `tags.md` + "`" + `.
- **Mention**: ` + "`" + `@name` + "`" + `, listed in ` + "`" + `mentions.md` + "`" + `.

## Rules

1. A marker is a word that starts with exactly one prefix character.
   ` + "`" + `##x` + "`" + ` and a bare ` + "`" + `#` + "`" + ` are not markers.
2. Words end at whitespace or ASCII punctuation. The prefix itself does not
   end a word, so ` + "`" + `#foo#bar` + "`" + ` is the tag ` + "`" + `foo#bar` + "`" + `.
3. ` + "`" + `#my-tag` + "`" + ` is the tag ` + "`" + `my` + "`" + ` followed by ` + "`" + `-tag` + "`" + `. Use letters, digits
   and underscores for multi-word names (` + "`" + `#my_tag` + "`" + `).
4. Names are case-sensitive. Non-ASCII letters are allowed.
5. Markdown headings need a space after the hashes (` + "`" + `# Title` + "`" + `) so they
   are not read as tags.

## Output

Every marker is rewritten into a link to its index entry:

` + "```" + `markdown
See #rust and @alice.
` + "```" + `

becomes

` + "```" + `markdown
See [#rust](tags.md#rust) and [@alice](mentions.md#alice).
` + "```" + `

Each index chapter has one section per name, sorted by name, with one list
item per occurrence linking back to the chapter.
`
