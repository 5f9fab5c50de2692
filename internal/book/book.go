// Package book models the mdBook preprocessor wire format: the render
// context and the book tree exchanged as JSON over stdin/stdout.
package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Book is the ordered tree of book items.
type Book struct {
	Sections []Item
}

// Item is one entry of a book: a chapter, a separator or a part title.
// Exactly one of Chapter, Separator and PartTitle is set.
type Item struct {
	Chapter   *Chapter
	Separator bool
	PartTitle *string
}

// Chapter is a single document of the book.
type Chapter struct {
	Name        string   `json:"name"`
	Content     string   `json:"content"`
	Number      []uint32 `json:"number"`
	SubItems    []Item   `json:"sub_items"`
	Path        *string  `json:"path"`
	SourcePath  *string  `json:"source_path"`
	ParentNames []string `json:"parent_names"`
}

// NewChapter builds a top-level chapter whose path and source path are both path.
func NewChapter(name, content, path string) *Chapter {
	p, sp := path, path
	return &Chapter{
		Name:        name,
		Content:     content,
		SubItems:    []Item{},
		Path:        &p,
		SourcePath:  &sp,
		ParentNames: []string{},
	}
}

// ChapterItem wraps a chapter as a book item.
func ChapterItem(ch *Chapter) Item {
	return Item{Chapter: ch}
}

// ID returns the chapter's path, or "" for draft chapters.
func (c *Chapter) ID() string {
	if c.Path == nil {
		return ""
	}
	return *c.Path
}

// IsDraft reports whether the chapter has no backing file.
func (c *Chapter) IsDraft() bool {
	return c.Path == nil
}

// Push appends an item to the top level of the book.
func (b *Book) Push(item Item) {
	b.Sections = append(b.Sections, item)
}

// Chapters returns every chapter in reading order (parents before their
// sub-chapters). The pointers alias the book's own chapters.
func (b *Book) Chapters() []*Chapter {
	var out []*Chapter
	var walk func(items []Item)
	walk = func(items []Item) {
		for _, it := range items {
			if it.Chapter == nil {
				continue
			}
			out = append(out, it.Chapter)
			walk(it.Chapter.SubItems)
		}
	}
	walk(b.Sections)
	return out
}

// ChaptersPostOrder returns every chapter with sub-chapters before their
// parent, the order mdBook's for_each_mut visits them. The pointers alias
// the book's own chapters.
func (b *Book) ChaptersPostOrder() []*Chapter {
	var out []*Chapter
	var walk func(items []Item)
	walk = func(items []Item) {
		for _, it := range items {
			if it.Chapter == nil {
				continue
			}
			walk(it.Chapter.SubItems)
			out = append(out, it.Chapter)
		}
	}
	walk(b.Sections)
	return out
}

// Clone returns a deep copy of the book.
func (b *Book) Clone() *Book {
	return &Book{Sections: cloneItems(b.Sections)}
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{Separator: it.Separator}
		if it.PartTitle != nil {
			t := *it.PartTitle
			out[i].PartTitle = &t
		}
		if it.Chapter != nil {
			out[i].Chapter = it.Chapter.clone()
		}
	}
	return out
}

func (c *Chapter) clone() *Chapter {
	cp := *c
	if c.Number != nil {
		cp.Number = append(make([]uint32, 0, len(c.Number)), c.Number...)
	}
	cp.SubItems = cloneItems(c.SubItems)
	if c.ParentNames != nil {
		cp.ParentNames = append(make([]string, 0, len(c.ParentNames)), c.ParentNames...)
	}
	if c.Path != nil {
		p := *c.Path
		cp.Path = &p
	}
	if c.SourcePath != nil {
		p := *c.SourcePath
		cp.SourcePath = &p
	}
	return &cp
}

type bookJSON struct {
	Sections      []Item          `json:"sections"`
	NonExhaustive json.RawMessage `json:"__non_exhaustive"`
}

// MarshalJSON always emits the sections array and the __non_exhaustive
// marker mdBook expects.
func (b Book) MarshalJSON() ([]byte, error) {
	sections := b.Sections
	if sections == nil {
		sections = []Item{}
	}
	return json.Marshal(bookJSON{Sections: sections, NonExhaustive: json.RawMessage("null")})
}

// UnmarshalJSON decodes a book, ignoring the __non_exhaustive marker.
func (b *Book) UnmarshalJSON(data []byte) error {
	var raw bookJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Sections = raw.Sections
	return nil
}

// MarshalJSON encodes the item in mdBook's externally tagged form:
// {"Chapter": {...}}, "Separator" or {"PartTitle": "..."}.
func (it Item) MarshalJSON() ([]byte, error) {
	switch {
	case it.Chapter != nil:
		return json.Marshal(map[string]*Chapter{"Chapter": it.Chapter})
	case it.PartTitle != nil:
		return json.Marshal(map[string]string{"PartTitle": *it.PartTitle})
	case it.Separator:
		return []byte(`"Separator"`), nil
	}
	return nil, errors.New("book: empty item")
}

// UnmarshalJSON decodes an externally tagged book item.
func (it *Item) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return err
		}
		if tag != "Separator" {
			return fmt.Errorf("book: unknown item %q", tag)
		}
		*it = Item{Separator: true}
		return nil
	}

	var raw struct {
		Chapter   *Chapter `json:"Chapter"`
		PartTitle *string  `json:"PartTitle"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Chapter != nil:
		*it = Item{Chapter: raw.Chapter}
	case raw.PartTitle != nil:
		*it = Item{PartTitle: raw.PartTitle}
	default:
		return fmt.Errorf("book: unknown item %s", data)
	}
	return nil
}

// MarshalJSON emits nil slices as empty arrays; mdBook rejects null there.
func (c Chapter) MarshalJSON() ([]byte, error) {
	type plain Chapter
	p := plain(c)
	if p.SubItems == nil {
		p.SubItems = []Item{}
	}
	if p.ParentNames == nil {
		p.ParentNames = []string{}
	}
	return json.Marshal(p)
}
