package api

import "github.com/starford/bookindex/internal/catalog"

// MarkerListResponse lists every marker of one kind.
type MarkerListResponse struct {
	Kind    string                `json:"kind" example:"tag" validate:"required"`
	Index   string                `json:"index" example:"tags.md" validate:"required"`
	Markers []catalog.MarkerCount `json:"markers" validate:"required"`
}

// MarkerResponse lists the chapters one marker occurs in, once per occurrence.
type MarkerResponse struct {
	Kind      string   `json:"kind" example:"tag" validate:"required"`
	Name      string   `json:"name" example:"alpha" validate:"required"`
	Anchor    string   `json:"anchor" example:"tags.md#alpha" validate:"required"`
	Locations []string `json:"locations" validate:"required"`
}

// ChapterListResponse lists processed chapters in book order.
type ChapterListResponse struct {
	Chapters []catalog.ChapterRow `json:"chapters" validate:"required"`
}
