package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// fakeReview implements Reviewer with canned results, recording the refs
// each operation received.
type fakeReview struct {
	out string
	err error

	gotBase   string
	gotTarget string
}

func (f *fakeReview) BranchDiff(_ context.Context, base, target string) (string, error) {
	f.gotBase, f.gotTarget = base, target
	return f.out, f.err
}

func (f *fakeReview) DiffStats(_ context.Context, base, target string) (string, error) {
	f.gotBase, f.gotTarget = base, target
	return f.out, f.err
}

func (f *fakeReview) BranchList(context.Context) (string, error) {
	return f.out, f.err
}

func (f *fakeReview) CommitRange(_ context.Context, base, target string) (string, error) {
	f.gotBase, f.gotTarget = base, target
	return f.out, f.err
}

// sendMessage marshals a JSON-RPC request, sends it through HandleMessage,
// and returns the JSONRPCResponse.
func sendMessage(t *testing.T, srv *Server, method string, id int, params map[string]any) mcp.JSONRPCResponse {
	t.Helper()

	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"method":  method,
	}
	if params != nil {
		msg["params"] = params
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	result := srv.MCPServer().HandleMessage(context.Background(), raw)

	resp, ok := result.(mcp.JSONRPCResponse)
	if !ok {
		t.Fatalf("expected JSONRPCResponse, got %T: %+v", result, result)
	}
	return resp
}

// resultJSON re-marshals the Result field through JSON into dst.
func resultJSON(t *testing.T, resp mcp.JSONRPCResponse, dst any) {
	t.Helper()
	b, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		t.Fatalf("unmarshal result into %T: %v", dst, err)
	}
}

func textFromContent(t *testing.T, result mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("no content in result")
	}
	b, err := json.Marshal(result.Content[0])
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	var tc struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &tc); err != nil {
		t.Fatalf("unmarshal text content: %v", err)
	}
	return tc.Text
}

func initializeParams() map[string]any {
	return map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "0.0.1",
		},
	}
}

func initialized(t *testing.T, review Reviewer) *Server {
	t.Helper()
	srv := NewServer(review, "0.1.0-test", nil)
	sendMessage(t, srv, "initialize", 1, initializeParams())
	return srv
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) mcp.CallToolResult {
	t.Helper()
	resp := sendMessage(t, srv, "tools/call", 2, map[string]any{
		"name":      name,
		"arguments": args,
	})
	var result mcp.CallToolResult
	resultJSON(t, resp, &result)
	return result
}

func TestServer_ListTools(t *testing.T) {
	srv := initialized(t, &fakeReview{})

	resp := sendMessage(t, srv, "tools/list", 2, nil)

	var result mcp.ListToolsResult
	resultJSON(t, resp, &result)

	if len(result.Tools) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(result.Tools))
	}

	tools := map[string]mcp.Tool{}
	for _, tool := range result.Tools {
		tools[tool.Name] = tool
	}
	for _, name := range []string{"get_branch_diff", "get_diff_stats", "get_branch_list", "get_commit_range"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("missing tool: %s", name)
		}
	}

	props := tools["get_branch_diff"].InputSchema.Properties
	if props == nil {
		t.Fatal("get_branch_diff has no properties")
	}
	for _, param := range []string{"base_branch", "target_branch"} {
		if _, ok := props[param]; !ok {
			t.Errorf("get_branch_diff missing %s parameter", param)
		}
	}
}

func TestServer_BranchDiff(t *testing.T) {
	review := &fakeReview{out: "Git Diff: main...feature"}
	srv := initialized(t, review)

	result := callTool(t, srv, "get_branch_diff", map[string]any{
		"base_branch":   "main",
		"target_branch": "feature",
	})

	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}
	if text := textFromContent(t, result); text != "Git Diff: main...feature" {
		t.Errorf("unexpected text: %q", text)
	}
	if review.gotBase != "main" || review.gotTarget != "feature" {
		t.Errorf("unexpected refs: %s %s", review.gotBase, review.gotTarget)
	}
}

func TestServer_BranchDiffDefaults(t *testing.T) {
	review := &fakeReview{out: "ok"}
	srv := initialized(t, review)

	result := callTool(t, srv, "get_branch_diff", map[string]any{})

	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}
	if review.gotBase != "main" || review.gotTarget != "HEAD" {
		t.Errorf("expected default refs main/HEAD, got %s/%s", review.gotBase, review.gotTarget)
	}
}

func TestServer_BranchDiffError(t *testing.T) {
	review := &fakeReview{err: errors.New("get branch diff: ref not found: nope")}
	srv := initialized(t, review)

	result := callTool(t, srv, "get_branch_diff", map[string]any{
		"target_branch": "nope",
	})

	if !result.IsError {
		t.Fatal("expected error response")
	}
	if text := textFromContent(t, result); !strings.Contains(text, "ref not found: nope") {
		t.Errorf("error text missing cause: %q", text)
	}
}

func TestServer_BranchList(t *testing.T) {
	review := &fakeReview{out: "Available Branches:\n\nLocal:\n  - main (current)"}
	srv := initialized(t, review)

	result := callTool(t, srv, "get_branch_list", map[string]any{})

	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}
	if text := textFromContent(t, result); !strings.Contains(text, "main (current)") {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestServer_CommitRange(t *testing.T) {
	review := &fakeReview{out: "No new commits found between main and HEAD"}
	srv := initialized(t, review)

	result := callTool(t, srv, "get_commit_range", map[string]any{})

	if result.IsError {
		t.Fatalf("expected success, got error: %s", textFromContent(t, result))
	}
	if text := textFromContent(t, result); !strings.Contains(text, "No new commits") {
		t.Errorf("unexpected text: %q", text)
	}
}
