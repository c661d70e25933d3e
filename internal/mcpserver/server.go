// Package mcpserver exposes scope-name resolution over MCP, following
// the same mcp.NewServer/AddTool/StdioTransport shape the teacher
// codebase uses for its own code-intelligence server, adapted to this
// engine's two real capabilities: resolve a (path, line, column)
// stack-trace location to its original scope name, and fuzzy-search a
// bundle's recovered scope names for a remembered term.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/jsscopes/internal/fuzzyname"
	"github.com/standardbeagle/jsscopes/internal/logging"
	"github.com/standardbeagle/jsscopes/internal/scopeindex"
)

// Resolver looks up the scope name covering a (line, column) position
// in a previously extracted file. The CLI's serve command supplies an
// implementation backed by a batch-extracted cache; tests can supply
// a stub.
type Resolver interface {
	Resolve(path string, line, column int) (scopeindex.Result, error)
}

// NameSearcher fuzzy-searches a previously extracted file's scope
// names. Registering one is optional: EnableSearch adds the
// "search_scope_names" tool only when a searcher is supplied.
type NameSearcher interface {
	Search(path, query string, limit int) ([]fuzzyname.Match, error)
}

// Server wraps an MCP server exposing "resolve_scope_name" and,
// optionally, "search_scope_names".
type Server struct {
	mcp      *mcp.Server
	resolver Resolver
	searcher NameSearcher
}

// New builds a Server backed by resolver and registers its tools.
func New(resolver Resolver) *Server {
	s := &Server{
		resolver: resolver,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "jsscopes-mcp-server",
			Version: "0.1.0",
		}, nil),
	}
	s.registerTools()
	return s
}

// EnableSearch registers the "search_scope_names" tool backed by
// searcher. Must be called before Run; calling it more than once
// re-registers the tool with the latest searcher.
func (s *Server) EnableSearch(searcher NameSearcher) {
	s.searcher = searcher
	s.mcp.AddTool(&mcp.Tool{
		Name:        "search_scope_names",
		Description: "Fuzzy-search a minified bundle's recovered scope names for one roughly matching a remembered term.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path":  {Type: "string", Description: "Path to the minified bundle, relative to the project root"},
				"query": {Type: "string", Description: "Term to fuzzy-match against recovered scope names"},
				"limit": {Type: "integer", Description: "Maximum number of matches to return (default 10)"},
			},
			Required: []string{"path", "query"},
		},
	}, s.handleSearch)
}

type resolveParams struct {
	Path   string `json:"path"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type searchParams struct {
	Path  string `json:"path"`
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (s *Server) registerTools() {
	s.mcp.AddTool(&mcp.Tool{
		Name:        "resolve_scope_name",
		Description: "Resolve a minified JS stack-trace location (path, line, column) to its original, fully-qualified scope name.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"path":   {Type: "string", Description: "Path to the minified bundle, relative to the project root"},
				"line":   {Type: "integer", Description: "1-indexed line number in the minified source"},
				"column": {Type: "integer", Description: "0-indexed UTF-16 column in the minified source"},
			},
			Required: []string{"path", "line", "column"},
		},
	}, s.handleResolve)
}

func (s *Server) handleResolve(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params resolveParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("invalid parameters: %v", err)}},
		}, nil
	}

	result, err := s.resolver.Resolve(params.Path, params.Line, params.Column)
	if err != nil {
		logging.Errorf("resolve_scope_name failed for %s:%d:%d: %v", params.Path, params.Line, params.Column, err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		}, nil
	}

	var text string
	switch result.Kind() {
	case scopeindex.NamedScope:
		text = result.Text()
	case scopeindex.AnonymousScope:
		text = "(anonymous)"
	default:
		text = "(global)"
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("%s:%d:%d -> %s", params.Path, params.Line, params.Column, text)}},
	}, nil
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params searchParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("invalid parameters: %v", err)}},
		}, nil
	}
	if params.Limit <= 0 {
		params.Limit = 10
	}

	matches, err := s.searcher.Search(params.Path, params.Query, params.Limit)
	if err != nil {
		logging.Errorf("search_scope_names failed for %s %q: %v", params.Path, params.Query, err)
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		}, nil
	}

	if len(matches) == 0 {
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("no scope names in %s matched %q", params.Path, params.Query)}},
		}, nil
	}

	var b strings.Builder
	for _, m := range matches {
		fmt.Fprintf(&b, "%s (%.2f)\n", m.Name, m.Score)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: strings.TrimRight(b.String(), "\n")}},
	}, nil
}

// Run starts the server over stdio, blocking until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
