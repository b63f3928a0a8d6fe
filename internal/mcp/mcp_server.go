// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/codiehq/codesight/core"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the CodeSight MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, svc *core.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"CodeSight Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		svc:     svc,
	}

	// --- 1. Tool: analyze_code ---
	s.AddTool(mcp.NewTool("analyze_code",
		mcp.WithDescription("Run every analysis model against one code sample and return the full file insight."),
		mcp.WithString("path", mcp.Description("Path of a source file to read (optional when content is given).")),
		mcp.WithString("content", mcp.Description("Inline source text to analyze instead of reading from disk.")),
		mcp.WithString("language", mcp.Description("Source language of the sample. Defaults to detection by file extension."), mcp.Enum("python", "go", "javascript", "typescript", "java", "ruby", "generic")),
	), h.handleAnalyzeCode)

	// --- 2. Tool: predict_vulnerabilities ---
	s.AddTool(mcp.NewTool("predict_vulnerabilities",
		mcp.WithDescription("Estimate the vulnerability risk of one code sample with the classifier alone."),
		mcp.WithString("path", mcp.Description("Path of a source file to read (optional when content is given).")),
		mcp.WithString("content", mcp.Description("Inline source text to analyze instead of reading from disk.")),
		mcp.WithString("language", mcp.Description("Source language of the sample."), mcp.Enum("python", "go", "javascript", "typescript", "java", "ruby", "generic")),
	), h.handlePredictVulnerabilities)

	// --- 3. Tool: analyze_quality ---
	s.AddTool(mcp.NewTool("analyze_quality",
		mcp.WithDescription("Score the maintainability of one code sample with the quality regressor alone."),
		mcp.WithString("path", mcp.Description("Path of a source file to read (optional when content is given).")),
		mcp.WithString("content", mcp.Description("Inline source text to analyze instead of reading from disk.")),
		mcp.WithString("language", mcp.Description("Source language of the sample."), mcp.Enum("python", "go", "javascript", "typescript", "java", "ruby", "generic")),
	), h.handleAnalyzeQuality)

	// --- 4. Tool: detect_patterns ---
	s.AddTool(mcp.NewTool("detect_patterns",
		mcp.WithDescription("Match one code sample against the trained pattern clusters."),
		mcp.WithString("path", mcp.Description("Path of a source file to read (optional when content is given).")),
		mcp.WithString("content", mcp.Description("Inline source text to analyze instead of reading from disk.")),
		mcp.WithString("language", mcp.Description("Source language of the sample."), mcp.Enum("python", "go", "javascript", "typescript", "java", "ruby", "generic")),
	), h.handleDetectPatterns)

	// --- 5. Tool: analyze_project ---
	s.AddTool(mcp.NewTool("analyze_project",
		mcp.WithDescription("Analyze every recognized source file under a directory and return the aggregated project report."),
		mcp.WithString("path", mcp.Description("Root directory (or single file) to analyze."), mcp.Required()),
		mcp.WithString("language", mcp.Description("Force one language for all files instead of detecting by extension."), mcp.Enum("python", "go", "javascript", "typescript", "java", "ruby", "generic")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of hotspots returned.")),
	), h.handleAnalyzeProject)

	// --- 6. Tool: train_models ---
	s.AddTool(mcp.NewTool("train_models",
		mcp.WithDescription("Train a new model generation from a labeled corpus file and report the resulting models."),
		mcp.WithString("corpus", mcp.Description("Path to a JSON or Parquet corpus of training examples."), mcp.Required()),
	), h.handleTrainModels)

	// --- 7. Tool: get_model_status ---
	s.AddTool(mcp.NewTool("get_model_status",
		mcp.WithDescription("Report the loaded model generation, the store connection and the training state."),
	), h.handleGetModelStatus)

	return s
}

// StartMCPServer starts the CodeSight MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, svc *core.Service) error {
	s := NewMCPServer(baseCfg, svc)
	return server.ServeStdio(s)
}
