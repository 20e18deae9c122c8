// Package tools implements the MCP tool handlers of the dashboard.
//
// Each tool is a struct holding the service it drives, built with a
// NewXTool constructor, exposing Definition() for registration and
// Handle() for calls. Validation and not-found errors from the services
// become tool error results the assistant can read and correct; anything
// that is not part of the error taxonomy is returned as a Go error.
package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/mission-control/internal/apperr"
)

// timeNow anchors relative times in tool output.
var timeNow = time.Now

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// optString returns a pointer to the argument when it was supplied, so
// partial updates can tell "absent" from "empty".
func optString(req mcp.CallToolRequest, key string) *string {
	v, ok := req.GetArguments()[key].(string)
	if !ok {
		return nil
	}
	return &v
}

// optBool is optString for booleans.
func optBool(req mcp.CallToolRequest, key string) *bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

// stringsArg accepts a JSON array of strings or a comma-separated string.
func stringsArg(req mcp.CallToolRequest, key string) []string {
	switch v := req.GetArguments()[key].(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return strings.Split(v, ",")
	default:
		return nil
	}
}

// timeArg parses an RFC 3339 timestamp argument. A missing argument
// yields the zero time and ok == true.
func timeArg(req mcp.CallToolRequest, key string) (time.Time, bool) {
	s := req.GetString(key, "")
	if s == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// errorResult maps a service error onto the tool protocol.
func errorResult(err error) (*mcp.CallToolResult, error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindNotFound:
		return mcp.NewToolResultError(err.Error()), nil
	case apperr.KindStore:
		return mcp.NewToolResultError(fmt.Sprintf("record store failure: %v", err)), nil
	default:
		return nil, err
	}
}

// ago renders t relative to now ("3 days ago").
func ago(t time.Time) string {
	return humanize.RelTime(t, timeNow(), "ago", "from now")
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
