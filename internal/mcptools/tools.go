// Package mcptools exposes the evaluator and the history list as Model
// Context Protocol tools.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"calc-server/internal/calculator"
	"calc-server/internal/expr"
	"calc-server/internal/history"
	"calc-server/internal/observability"
)

// NewServer builds an MCP server with the calculator tools registered.
func NewServer(version string, list *history.List) *server.MCPServer {
	s := server.NewMCPServer(
		"calc",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.AddTool(evaluateTool(), EvaluateHandler(list))
	s.AddTool(historyTool(), HistoryHandler(list))

	return s
}

// ServeStdio blocks serving s over stdin and stdout.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func evaluateTool() mcp.Tool {
	return mcp.NewTool("evaluate",
		mcp.WithDescription("Evaluate an arithmetic expression using + - * / with multiplication and division before addition and subtraction"),
		mcp.WithString("expression",
			mcp.Required(),
			mcp.Description("Expression to evaluate, e.g. '2+3*4'"),
		),
		mcp.WithBoolean("record",
			mcp.Description("Add the calculation to the saved history"),
		),
	)
}

func historyTool() mcp.Tool {
	return mcp.NewTool("history",
		mcp.WithDescription("List saved calculations, newest first, one page at a time"),
		mcp.WithNumber("page",
			mcp.Description("Page number starting at 1 (defaults to 1)"),
		),
	)
}

// EvaluateHandler answers the evaluate tool. Calculator errors come back as
// tool errors carrying the user-facing message.
func EvaluateHandler(list *history.List) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		expression, ok := args["expression"].(string)
		if !ok || expression == "" {
			return mcp.NewToolResultError("expression is required"), nil
		}
		record, _ := args["record"].(bool)

		value, err := expr.Evaluate(expression)
		if err != nil {
			observability.Logger.Debug("mcp evaluate rejected",
				zap.String("expression", expression),
				zap.Error(err),
			)
			return mcp.NewToolResultError(calculator.UserMessage(err)), nil
		}

		result := calculator.FormatResult(value)
		if record {
			if _, err := calculator.Record(ctx, list, expression, value); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("saving history: %v", err)), nil
			}
		}

		return mcp.NewToolResultText(result), nil
	}
}

// HistoryHandler answers the history tool with one page as JSON.
func HistoryHandler(list *history.List) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page := 1
		if n, ok := request.GetArguments()["page"].(float64); ok {
			page = int(n)
		}

		body, err := json.Marshal(list.PageAt(page))
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}
