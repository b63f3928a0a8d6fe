package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/codiehq/codesight/core"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	svc     *core.Service
}

// projectPayload is the JSON shape of the analyze_project tool result.
// Hotspots are ranked and capped at the result limit so large projects do
// not flood the client.
type projectPayload struct {
	Hotspots        []schema.HotspotRow            `json:"hotspots"`
	TopCandidate    *schema.RefactoringCandidate   `json:"top_refactoring_candidate,omitempty"`
	Vulnerabilities []schema.ReportedVulnerability `json:"vulnerabilities"`
	Coverage        *float64                       `json:"coverage_percentage,omitempty"`
	GeneratedAt     time.Time                      `json:"generated_at"`
	ScannedFiles    int                            `json:"scanned_files"`
	FailedFiles     []schema.FileError             `json:"failed_files,omitempty"`
}

// modelStatusPayload combines the registry, store and training views that
// the get_model_status tool reports in one call.
type modelStatusPayload struct {
	Registry schema.RegistryStatus `json:"registry"`
	Store    schema.StoreStatus    `json:"store"`
	Training schema.TrainingState  `json:"training"`
}

// sampleFromRequest builds the code sample for the single-file tools.
// Inline content wins over path; a path without content is read from disk.
func sampleFromRequest(request mcp.CallToolRequest) (schema.CodeSample, error) {
	path := request.GetString("path", "")
	content := request.GetString("content", "")
	if path == "" && content == "" {
		return schema.CodeSample{}, errors.New("either path or content is required")
	}

	sample := schema.CodeSample{Path: path, Content: content}
	if content == "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return schema.CodeSample{}, fmt.Errorf("failed to read %s: %v", path, err)
		}
		sample.Content = string(data)
	}
	if sample.Path == "" {
		sample.Path = "inline"
	}
	if l := request.GetString("language", ""); l != "" {
		sample.Language = schema.Language(l)
	}
	return sample, nil
}

func (h *toolHandler) handleAnalyzeCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sample, err := sampleFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sample parameters: %v", err)), nil
	}

	insight, err := h.svc.AnalyzeCode(ctx, sample)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(insight, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handlePredictVulnerabilities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sample, err := sampleFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sample parameters: %v", err)), nil
	}

	prediction, err := h.svc.PredictVulnerabilities(ctx, sample)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("vulnerability prediction failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(prediction, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeQuality(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sample, err := sampleFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sample parameters: %v", err)), nil
	}

	quality, err := h.svc.AnalyzeQuality(ctx, sample)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("quality analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(quality, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleDetectPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sample, err := sampleFromRequest(request)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid sample parameters: %v", err)), nil
	}

	patterns, err := h.svc.DetectPatterns(ctx, sample)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("pattern detection failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(patterns, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAnalyzeProject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := request.GetString("path", "")
	if root == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	cfg := h.baseCfg.Clone()
	cfg.Paths = []string{root}
	if l := request.GetString("language", ""); l != "" {
		cfg.Language = schema.Language(l)
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		cfg.ResultLimit = limit
	}

	paths, err := core.CollectPaths(cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("path collection failed: %v", err)), nil
	}
	samples, failed := core.ReadSamples(paths, cfg.Language)

	report, err := h.svc.AnalyzeProject(ctx, samples)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("project analysis failed: %v", err)), nil
	}

	ranked := schema.RankHotspots(report.Hotspots)
	if limit := cfg.ResultLimit; limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	payload := projectPayload{
		Hotspots:        ranked,
		TopCandidate:    report.TopCandidate,
		Vulnerabilities: report.Vulnerabilities,
		Coverage:        report.CoveragePercentage,
		GeneratedAt:     report.GeneratedAt,
		ScannedFiles:    len(samples),
	}
	for _, out := range failed {
		payload.FailedFiles = append(payload.FailedFiles, *out.Err)
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleTrainModels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	corpusPath := request.GetString("corpus", "")
	if corpusPath == "" {
		return mcp.NewToolResultError("corpus is required"), nil
	}

	examples, err := core.LoadCorpus(corpusPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("corpus loading failed: %v", err)), nil
	}

	records, err := h.svc.TrainModels(ctx, examples)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("training failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(records, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetModelStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	store, err := h.svc.StoreStatus()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("store status failed: %v", err)), nil
	}

	payload := modelStatusPayload{
		Registry: h.svc.RegistryStatus(),
		Store:    store,
		Training: h.svc.TrainingState(),
	}

	jsonData, _ := json.MarshalIndent(payload, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
