package book

import (
	"encoding/json"
	"fmt"
	"io"
)

// Context is the render context mdBook passes alongside the book.
type Context struct {
	Root          string          `json:"root"`
	Config        json.RawMessage `json:"config"`
	Renderer      string          `json:"renderer"`
	MDBookVersion string          `json:"mdbook_version"`
}

// PreprocessorConfig returns the raw [preprocessor.<name>] table from
// book.toml, or nil when it is absent.
func (c *Context) PreprocessorConfig(name string) json.RawMessage {
	if len(c.Config) == 0 {
		return nil
	}
	var cfg struct {
		Preprocessor map[string]json.RawMessage `json:"preprocessor"`
	}
	if err := json.Unmarshal(c.Config, &cfg); err != nil {
		return nil
	}
	return cfg.Preprocessor[name]
}

// ParseInput decodes the [context, book] pair mdBook writes to a
// preprocessor's stdin.
func ParseInput(r io.Reader) (*Context, *Book, error) {
	var pair []json.RawMessage
	if err := json.NewDecoder(r).Decode(&pair); err != nil {
		return nil, nil, fmt.Errorf("book: decode input: %w", err)
	}
	if len(pair) != 2 {
		return nil, nil, fmt.Errorf("book: expected [context, book], got %d elements", len(pair))
	}

	var ctx Context
	if err := json.Unmarshal(pair[0], &ctx); err != nil {
		return nil, nil, fmt.Errorf("book: decode context: %w", err)
	}
	var b Book
	if err := json.Unmarshal(pair[1], &b); err != nil {
		return nil, nil, fmt.Errorf("book: decode book: %w", err)
	}
	return &ctx, &b, nil
}

// WriteOutput encodes the processed book for mdBook to read from stdout.
func WriteOutput(w io.Writer, b *Book) error {
	if err := json.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("book: encode output: %w", err)
	}
	return nil
}
