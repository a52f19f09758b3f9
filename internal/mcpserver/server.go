// Package mcpserver exposes a live, queryable view of a run over MCP
// (SPEC_FULL §11.5): get_status, list_failed, and trigger_manifest_patch.
// It supplements, and never replaces, the Report Writer's on-disk output.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/rust-workshop-downloader/internal/config"
	"github.com/standardbeagle/rust-workshop-downloader/internal/manifest"
	"github.com/standardbeagle/rust-workshop-downloader/internal/outcome"
	"github.com/standardbeagle/rust-workshop-downloader/internal/report"
	"github.com/standardbeagle/rust-workshop-downloader/internal/version"
)

// Server wraps the live run state an MCP client can query or nudge.
type Server struct {
	cfg    *config.Config
	om     *outcome.Map
	server *mcp.Server
}

// New builds a Server bound to the run's config and live OutcomeMap, and
// registers its tools.
func New(cfg *config.Config, om *outcome.Map) *Server {
	s := &Server{
		cfg: cfg,
		om:  om,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "rust-workshop-downloader-mcp-server",
			Version: version.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

// Run blocks serving MCP requests over stdio until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "get_status",
		Description: "Return current OutcomeMap tallies for the live run: processed, success, skipped, and per-failure-kind counts.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleGetStatus)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_failed",
		Description: "Return the contents of failed_ids.txt from the run's working directory, one identifier per line.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleListFailed)

	s.server.AddTool(&mcp.Tool{
		Name:        "trigger_manifest_patch",
		Description: "Run the Manifest Patcher against the shared content tree now, without restarting the orchestrator.",
		InputSchema: &jsonschema.Schema{Type: "object"},
	}, s.handleTriggerManifestPatch)
}

func (s *Server) handleGetStatus(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	counts, processed := s.om.Counts()

	byOutcome := make(map[string]int64, len(counts))
	for o, n := range counts {
		byOutcome[string(o)] = n
	}

	return jsonResult(map[string]interface{}{
		"processed":  processed,
		"by_outcome": byOutcome,
	})
}

func (s *Server) handleListFailed(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := s.cfg.WorkingDir + "/" + report.FailedIDsFilename
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return jsonResult(map[string]interface{}{"failed_ids": []string{}})
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var ids []string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		if line != "" {
			ids = append(ids, line)
		}
	}
	return jsonResult(map[string]interface{}{"failed_ids": ids})
}

func (s *Server) handleTriggerManifestPatch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	manifestPath := s.cfg.SharedRoot + "/steamapps/workshop/AppWorkshop_" + s.cfg.AppID + ".acf"
	contentRoot := s.cfg.SharedRoot + "/steamapps/workshop/content"

	if err := manifest.Patch(manifestPath, contentRoot, s.cfg.AppID); err != nil {
		return jsonResult(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	}
	return jsonResult(map[string]interface{}{"success": true})
}

func jsonResult(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(content)}},
	}, nil
}
