package indexer

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/starford/bookindex/internal/marker"
)

func TestOptions_DefaultsValid(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestOptions_InvalidRewrite(t *testing.T) {
	opts := DefaultOptions()
	opts.Rewrite = "regex"
	if err := opts.Validate(); err == nil {
		t.Fatal("unknown rewrite mode should fail")
	}
}

func TestOptions_SharedPath(t *testing.T) {
	opts := DefaultOptions()
	opts.MentionsPath = "./tags.md"
	err := opts.Validate()
	if err == nil {
		t.Fatal("shared index path should fail")
	}
	if !strings.Contains(err.Error(), "share index path") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOptions_Overlay(t *testing.T) {
	opts := DefaultOptions()
	raw := json.RawMessage(`{"command": "bookindex", "mentions-title": "People", "rewrite": "substring"}`)
	if err := opts.Overlay(raw); err != nil {
		t.Fatalf("Overlay: %v", err)
	}
	if opts.MentionsTitle != "People" || opts.Rewrite != RewriteSubstring {
		t.Errorf("opts = %+v", opts)
	}
	if opts.TagsPath != "tags.md" {
		t.Errorf("untouched key changed: %q", opts.TagsPath)
	}
	if err := opts.Overlay(nil); err != nil {
		t.Errorf("nil overlay: %v", err)
	}
	if err := opts.Overlay(json.RawMessage(`{"rewrite": 3}`)); err == nil {
		t.Error("expected decode error")
	}
}

func TestOptions_PerKind(t *testing.T) {
	opts := DefaultOptions()
	if opts.IndexPath(marker.Tag) != "tags.md" || opts.IndexPath(marker.Mention) != "mentions.md" {
		t.Error("unexpected index paths")
	}
	if opts.Title(marker.Tag) != "Tags" || opts.Title(marker.Mention) != "Mentions" {
		t.Error("unexpected titles")
	}
}
