package mcptools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"calc-server/internal/history"
	"calc-server/internal/store"
)

func newList(t *testing.T) *history.List {
	t.Helper()

	list, err := history.Load(context.Background(), history.NewKVRepository(store.NewMemory()))
	if err != nil {
		t.Fatalf("loading history: %v", err)
	}
	return list
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()

	var req mcp.CallToolRequest
	req.Params.Arguments = args

	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if len(res.Content) != 1 {
		t.Fatalf("expected one content item, got %d", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text, res.IsError
}

func TestEvaluate(t *testing.T) {
	h := EvaluateHandler(newList(t))

	tests := []struct {
		name    string
		args    map[string]any
		want    string
		wantErr bool
	}{
		{"precedence", map[string]any{"expression": "2+3*4"}, "14", false},
		{"rounded", map[string]any{"expression": "1/3"}, "0.3333333333", false},
		{"divide by zero", map[string]any{"expression": "5/0"}, "Cannot divide by zero", true},
		{"malformed", map[string]any{"expression": "2+"}, "Invalid expression", true},
		{"missing", map[string]any{}, "expression is required", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, isErr := call(t, h, tt.args)
			if got != tt.want || isErr != tt.wantErr {
				t.Fatalf("expected (%q, %v), got (%q, %v)", tt.want, tt.wantErr, got, isErr)
			}
		})
	}
}

func TestEvaluateRecordsOnRequest(t *testing.T) {
	list := newList(t)
	h := EvaluateHandler(list)

	call(t, h, map[string]any{"expression": "1+1"})
	if list.Len() != 0 {
		t.Fatalf("expected nothing recorded without record flag, got %d", list.Len())
	}

	call(t, h, map[string]any{"expression": "6/2-1", "record": true})
	entries := list.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Expression != "6÷2−1" || entries[0].Result != "2" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestHistoryPages(t *testing.T) {
	list := newList(t)
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		if _, err := list.Add(ctx, "1+1", "2"); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	h := HistoryHandler(list)

	text, isErr := call(t, h, map[string]any{"page": float64(2)})
	if isErr {
		t.Fatalf("unexpected tool error: %s", text)
	}

	var page history.Page
	if err := json.Unmarshal([]byte(text), &page); err != nil {
		t.Fatalf("decoding page: %v", err)
	}
	if page.Number != 2 || page.TotalPages != 2 || len(page.Entries) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}

	text, _ = call(t, h, nil)
	if err := json.Unmarshal([]byte(text), &page); err != nil {
		t.Fatalf("decoding page: %v", err)
	}
	if page.Number != 1 {
		t.Fatalf("expected default page 1, got %d", page.Number)
	}
}

func TestNewServer(t *testing.T) {
	if s := NewServer("test", newList(t)); s == nil {
		t.Fatal("expected a server")
	}
}
