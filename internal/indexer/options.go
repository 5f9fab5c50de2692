package indexer

import (
	"encoding/json"
	"fmt"
	"path"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/bookindex/internal/marker"
)

// Rewrite modes.
const (
	// RewriteToken replaces only the marker occurrences found by the tokenizer.
	RewriteToken = "token"
	// RewriteSubstring replaces every literal prefix+name substring, one pass
	// per distinct name. Overlapping names ("#a", "#ab") corrupt each other.
	RewriteSubstring = "substring"
)

// Options configures index generation.
type Options struct {
	TagsPath            string `yaml:"tags_path" json:"tags-path"`
	MentionsPath        string `yaml:"mentions_path" json:"mentions-path"`
	TagsTitle           string `yaml:"tags_title" json:"tags-title"`
	MentionsTitle       string `yaml:"mentions_title" json:"mentions-title"`
	Rewrite             string `yaml:"rewrite" json:"rewrite"`
	UnsupportedRenderer string `yaml:"unsupported_renderer" json:"unsupported-renderer"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TagsPath:            "tags.md",
		MentionsPath:        "mentions.md",
		TagsTitle:           "Tags",
		MentionsTitle:       "Mentions",
		Rewrite:             RewriteToken,
		UnsupportedRenderer: "not-supported",
	}
}

// Validate validates the options.
func (o *Options) Validate() error {
	if err := validation.ValidateStruct(o,
		validation.Field(&o.TagsPath, validation.Required),
		validation.Field(&o.MentionsPath, validation.Required),
		validation.Field(&o.TagsTitle, validation.Required),
		validation.Field(&o.MentionsTitle, validation.Required),
		validation.Field(&o.Rewrite, validation.Required, validation.In(RewriteToken, RewriteSubstring)),
	); err != nil {
		return err
	}
	if path.Clean(o.TagsPath) == path.Clean(o.MentionsPath) {
		return fmt.Errorf("indexer: tags and mentions share index path %q", o.TagsPath)
	}
	return nil
}

// Overlay decodes a [preprocessor.<name>] table on top of o. Keys missing
// from the table keep their current value.
func (o *Options) Overlay(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, o); err != nil {
		return fmt.Errorf("indexer: decode book.toml options: %w", err)
	}
	return nil
}

// IndexPath returns the index document path for kind.
func (o *Options) IndexPath(k marker.Kind) string {
	if k == marker.Mention {
		return o.MentionsPath
	}
	return o.TagsPath
}

// Title returns the index document title for kind.
func (o *Options) Title(k marker.Kind) string {
	if k == marker.Mention {
		return o.MentionsTitle
	}
	return o.TagsTitle
}
