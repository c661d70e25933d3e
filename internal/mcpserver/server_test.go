package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/standardbeagle/jsscopes/internal/fuzzyname"
	"github.com/standardbeagle/jsscopes/internal/scopeindex"
	"github.com/standardbeagle/jsscopes/internal/scopename"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubResolver struct {
	result scopeindex.Result
	err    error
}

func (s stubResolver) Resolve(path string, line, column int) (scopeindex.Result, error) {
	return s.result, s.err
}

// namedResult builds a one-entry ScopeIndex and looks the entry back
// up, since scopeindex.Result has no public constructor outside New.
func namedResult(t *testing.T, text string) scopeindex.Result {
	t.Helper()
	idx, err := scopeindex.New([]scopename.Entry{
		{Span: scopename.Span{Start: 0}, Name: scopename.New(scopename.Interpolation(text))},
	})
	require.NoError(t, err)
	return idx.Lookup(0)
}

func anonymousResult(t *testing.T) scopeindex.Result {
	t.Helper()
	idx, err := scopeindex.New([]scopename.Entry{
		{Span: scopename.Span{Start: 0}, Name: nil},
	})
	require.NoError(t, err)
	return idx.Lookup(0)
}

func unknownResult(t *testing.T) scopeindex.Result {
	t.Helper()
	idx, err := scopeindex.New(nil)
	require.NoError(t, err)
	return idx.Lookup(0)
}

func callResolve(t *testing.T, s *Server, params resolveParams) *mcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}}
	res, err := s.handleResolve(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestHandleResolve_NamedScope(t *testing.T) {
	s := New(stubResolver{result: namedResult(t, "Klass.prototype.method")})
	res := callResolve(t, s, resolveParams{Path: "bundle.js", Line: 1, Column: 10})

	require.False(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	require.Contains(t, text, "Klass.prototype.method")
}

func TestHandleResolve_AnonymousScope(t *testing.T) {
	s := New(stubResolver{result: anonymousResult(t)})
	res := callResolve(t, s, resolveParams{Path: "bundle.js", Line: 1, Column: 0})

	require.False(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	require.Contains(t, text, "(anonymous)")
}

func TestHandleResolve_UnknownScope(t *testing.T) {
	s := New(stubResolver{result: unknownResult(t)})
	res := callResolve(t, s, resolveParams{Path: "bundle.js", Line: 1, Column: 0})

	require.False(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	require.Contains(t, text, "(global)")
}

func TestHandleResolve_ResolverErrorReturnsErrorResult(t *testing.T) {
	s := New(stubResolver{err: errors.New("bundle not found")})
	res := callResolve(t, s, resolveParams{Path: "missing.js", Line: 1, Column: 0})

	require.True(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	require.Contains(t, text, "bundle not found")
}

func TestHandleResolve_InvalidParamsReturnsErrorResult(t *testing.T) {
	s := New(stubResolver{})
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: []byte("not json")}}
	res, err := s.handleResolve(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.IsError)
}

type stubSearcher struct {
	matches []fuzzyname.Match
	err     error
}

func (s stubSearcher) Search(path, query string, limit int) ([]fuzzyname.Match, error) {
	return s.matches, s.err
}

func callSearch(t *testing.T, s *Server, params searchParams) *mcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: raw}}
	res, err := s.handleSearch(context.Background(), req)
	require.NoError(t, err)
	return res
}

func TestHandleSearch_ReturnsRankedMatches(t *testing.T) {
	s := New(stubResolver{})
	s.EnableSearch(stubSearcher{matches: []fuzzyname.Match{
		{Name: "Klass.prototype.onSubmitError", Score: 0.92},
		{Name: "Klass.prototype.onCancel", Score: 0.4},
	}})

	res := callSearch(t, s, searchParams{Path: "bundle.js", Query: "onSubmit"})
	require.False(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	require.Contains(t, text, "Klass.prototype.onSubmitError")
	require.Contains(t, text, "Klass.prototype.onCancel")
}

func TestHandleSearch_NoMatchesReturnsInformativeText(t *testing.T) {
	s := New(stubResolver{})
	s.EnableSearch(stubSearcher{matches: nil})

	res := callSearch(t, s, searchParams{Path: "bundle.js", Query: "nope"})
	require.False(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	require.Contains(t, text, "no scope names")
}

func TestHandleSearch_SearcherErrorReturnsErrorResult(t *testing.T) {
	s := New(stubResolver{})
	s.EnableSearch(stubSearcher{err: errors.New("bundle not found")})

	res := callSearch(t, s, searchParams{Path: "missing.js", Query: "onSubmit"})
	require.True(t, res.IsError)
	text := res.Content[0].(*mcp.TextContent).Text
	require.Contains(t, text, "bundle not found")
}

func TestHandleSearch_InvalidParamsReturnsErrorResult(t *testing.T) {
	s := New(stubResolver{})
	s.EnableSearch(stubSearcher{})
	req := &mcp.CallToolRequest{Params: &mcp.CallToolParamsRaw{Arguments: []byte("not json")}}
	res, err := s.handleSearch(context.Background(), req)
	require.NoError(t, err)
	require.True(t, res.IsError)
}
