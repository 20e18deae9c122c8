// Package resources implements the dashboard's MCP resources.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (dashboard://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/mission-control/internal/dashboard"
)

// SummaryURI addresses the dashboard summary resource.
const SummaryURI = "dashboard://summary"

// SummaryBuilder is implemented by *dashboard.Builder.
type SummaryBuilder interface {
	Build(ctx context.Context) (*dashboard.Summary, error)
}

// Handler manages the dashboard resource endpoints.
type Handler struct {
	summary SummaryBuilder
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(summary SummaryBuilder) *Handler {
	return &Handler{summary: summary}
}

// SummaryResource returns the MCP resource definition for the summary.
func (h *Handler) SummaryResource() mcp.Resource {
	return mcp.NewResource(
		SummaryURI,
		"Mission Control summary",
		mcp.WithResourceDescription("Task, content, calendar, memory and meal headline numbers"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSummary returns the current summary as JSON.
func (h *Handler) HandleSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sum, err := h.summary.Build(ctx)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling summary: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
