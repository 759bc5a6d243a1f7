package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/humanintuition/insight/internal/storage"
)

// MCPAnalyzer abstracts the analysis operations the MCP layer exposes.
type MCPAnalyzer interface {
	BuildProfile(ctx context.Context, transcriptBlock, contextNote string) (json.RawMessage, error)
	MapEmotions(ctx context.Context, transcriptText string) (json.RawMessage, error)
	Analyze(ctx context.Context, transcriptText, contextNote string) (string, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store    *storage.Store
	Analyzer MCPAnalyzer
}

// NewMCPServer creates an MCP server with all insight tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"insight",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("insight — conversation transcript analysis: relational dynamics, emotional mapping, and behavioral profiles."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("analyze_transcript",
			mcp.WithDescription("Run a layered relational analysis of a conversation transcript. Returns markdown."),
			mcp.WithString("transcript", mcp.Description("The conversation transcript text"), mcp.Required()),
			mcp.WithString("context", mcp.Description("Optional context about the relationship or situation")),
		),
		mcpAnalyzeTranscript(deps),
	)

	s.AddTool(
		mcp.NewTool("map_emotions",
			mcp.WithDescription("Map the emotional trajectory of a conversation transcript. Returns a JSON timeline with a global summary."),
			mcp.WithString("transcript", mcp.Description("The conversation transcript text"), mcp.Required()),
		),
		mcpMapEmotions(deps),
	)

	s.AddTool(
		mcp.NewTool("build_profile",
			mcp.WithDescription("Build a behavioral profile JSON document from one or more transcripts."),
			mcp.WithString("transcripts", mcp.Description("Combined transcript text"), mcp.Required()),
			mcp.WithString("context", mcp.Description("Optional context about the person")),
		),
		mcpBuildProfile(deps),
	)

	s.AddTool(
		mcp.NewTool("get_analysis",
			mcp.WithDescription("Fetch a stored analysis from history by id."),
			mcp.WithString("id", mcp.Description("Analysis id"), mcp.Required()),
		),
		mcpGetAnalysis(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"insight://recent",
			"Recent Analyses",
			mcp.WithResourceDescription("Last 10 stored analyses (summaries only)"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRecent(deps),
	)

	return s
}

func mcpAnalyzeTranscript(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		transcriptText, err := req.RequireString("transcript")
		if err != nil {
			return mcpError("transcript is required"), nil
		}
		contextNote := req.GetString("context", "")

		markdown, err := deps.Analyzer.Analyze(ctx, transcriptText, contextNote)
		if err != nil {
			return mcpError(fmt.Sprintf("analysis failed: %v", err)), nil
		}

		saveMCPResult(deps.Store, storage.KindAnalysis, "MCP analysis", contextNote, transcriptText, markdown)
		return mcpText(markdown), nil
	}
}

func mcpMapEmotions(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		transcriptText, err := req.RequireString("transcript")
		if err != nil {
			return mcpError("transcript is required"), nil
		}

		doc, err := deps.Analyzer.MapEmotions(ctx, transcriptText)
		if err != nil {
			return mcpError(fmt.Sprintf("emotional mapping failed: %v", err)), nil
		}

		saveMCPResult(deps.Store, storage.KindEmotions, "MCP emotional map", "", transcriptText, string(doc))
		return mcpText(string(doc)), nil
	}
}

func mcpBuildProfile(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		transcripts, err := req.RequireString("transcripts")
		if err != nil {
			return mcpError("transcripts is required"), nil
		}
		contextNote := req.GetString("context", "")

		doc, err := deps.Analyzer.BuildProfile(ctx, transcripts, contextNote)
		if err != nil {
			return mcpError(fmt.Sprintf("profile build failed: %v", err)), nil
		}

		saveMCPResult(deps.Store, storage.KindProfile, "MCP profile", contextNote, transcripts, string(doc))
		return mcpText(string(doc)), nil
	}
}

func mcpGetAnalysis(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}

		a, err := deps.Store.GetAnalysis(id)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to get analysis: %v", err)), nil
		}

		b, err := json.Marshal(a)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal analysis: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

// saveMCPResult records a tool run in history. Failures are swallowed; the
// caller already has the result.
func saveMCPResult(store *storage.Store, kind, title, contextNote, transcriptText, result string) {
	if store == nil {
		return
	}
	_ = store.SaveAnalysis(storage.Analysis{
		ID:          uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
		Kind:        kind,
		Title:       title,
		ContextNote: contextNote,
		Transcript:  transcriptText,
		Result:      result,
	})
}

func mcpResourceRecent(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		analyses, err := deps.Store.ListAnalyses("", 10)
		if err != nil {
			return nil, fmt.Errorf("failed to list analyses: %w", err)
		}

		type analysisSummary struct {
			ID        string `json:"id"`
			CreatedAt string `json:"created_at"`
			Kind      string `json:"kind"`
			Title     string `json:"title"`
			Preview   string `json:"preview"`
		}

		summaries := make([]analysisSummary, len(analyses))
		for i, a := range analyses {
			preview := a.Result
			if utf8.RuneCountInString(preview) > 200 {
				runes := []rune(preview)
				preview = string(runes[:200]) + "..."
			}
			summaries[i] = analysisSummary{
				ID:        a.ID,
				CreatedAt: a.CreatedAt.Format(time.RFC3339),
				Kind:      a.Kind,
				Title:     a.Title,
				Preview:   preview,
			}
		}

		b, err := json.Marshal(summaries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal analyses: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
