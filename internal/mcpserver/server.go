// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the book index to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/bookindex/internal/apperr"
	"github.com/starford/bookindex/internal/indexservice"
	"github.com/starford/bookindex/internal/marker"
)

// MarkerSyntaxURI is the resource URI of MarkerSyntaxContract.
const MarkerSyntaxURI = "bookindex://marker-syntax"

// Server wraps the MCP server with index tools.
type Server struct {
	mcp *server.MCPServer
	svc *indexservice.Service
}

// New creates a new MCP server with all index tools registered.
func New(svc *indexservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"bookindex",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_markers",
		mcp.WithDescription("List every tag or mention in the book with its occurrence count."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Marker kind: tag or mention")),
	), s.listMarkers)

	s.mcp.AddTool(mcp.NewTool("find_marker",
		mcp.WithDescription("List the chapters a tag or mention occurs in, once per occurrence."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("Marker kind: tag or mention")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Marker name without the # or @ prefix")),
	), s.findMarker)

	s.mcp.AddTool(mcp.NewTool("read_chapter",
		mcp.WithDescription("Read a processed chapter with its markers rewritten into index links."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Chapter path relative to the book source (e.g. part/chapter.md)")),
	), s.readChapter)

	s.mcp.AddTool(mcp.NewTool("rebuild_index",
		mcp.WithDescription("Rebuild the index from the source chapters and report the run summary."),
	), s.rebuildIndex)

	s.mcp.AddTool(mcp.NewTool("get_marker_syntax",
		mcp.WithDescription("Returns the tag and mention syntax the indexer recognises. "+
			"Call this before writing chapters that should appear in the index."),
	), s.getMarkerSyntax)

	s.mcp.AddResource(
		mcp.NewResource(MarkerSyntaxURI, "Marker Syntax",
			mcp.WithResourceDescription("How chapters declare tags and mentions."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readMarkerSyntaxResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func requireKind(req mcp.CallToolRequest) (marker.Kind, error) {
	raw, err := req.RequireString("kind")
	if err != nil {
		return 0, err
	}
	kind, ok := marker.ParseKind(raw)
	if !ok {
		return 0, fmt.Errorf("unknown kind %q: want tag or mention", raw)
	}
	return kind, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listMarkers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	markers, err := s.svc.Markers(ctx, kind)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(markers) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("no %ss found", kind)), nil
	}
	return jsonResult(markers), nil
}

func (s *Server) findMarker(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, err := requireKind(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name = strings.TrimPrefix(name, string(kind.Prefix()))
	locs, err := s.svc.Locations(ctx, kind, name)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", marker.Marker{Kind: kind, Name: name})), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(strings.Join(locs, "\n")), nil
}

func (s *Server) readChapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ch, err := s.svc.Chapter(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(ch.Content), nil
}

func (s *Server) rebuildIndex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := s.svc.Rebuild(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res), nil
}

func (s *Server) getMarkerSyntax(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MarkerSyntaxContract), nil
}

func (s *Server) readMarkerSyntaxResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      MarkerSyntaxURI,
			MIMEType: "text/markdown",
			Text:     MarkerSyntaxContract,
		},
	}, nil
}
