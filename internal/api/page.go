package api

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"
)

// pageRenderer turns processed chapter Markdown into an HTML preview.
// Heading IDs are generated so index anchors resolve.
type pageRenderer struct {
	md goldmark.Markdown
}

func newPageRenderer() *pageRenderer {
	return &pageRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(ghhtml.WithXHTML()),
		),
	}
}

func (p *pageRenderer) render(title, content string) ([]byte, error) {
	var body bytes.Buffer
	if err := p.md.Convert([]byte(content), &body); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	var out bytes.Buffer
	fmt.Fprintf(&out, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n", html.EscapeString(title))
	out.Write(body.Bytes())
	out.WriteString("</body></html>\n")
	return out.Bytes(), nil
}
