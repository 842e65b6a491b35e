// Package server exposes the execution engine over MCP stdio. Four
// tools: execute_code, install_packages, list_packages,
// reset_environment. Every handler returns a structured result; tool
// failures set IsError and never surface as protocol faults, so one
// failing call cannot affect another.
package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ChaNg1o1/pythonrun-mcp/internal/config"
	"github.com/ChaNg1o1/pythonrun-mcp/internal/engine"
	"github.com/ChaNg1o1/pythonrun-mcp/internal/venv"
)

// Server wires the MCP tool surface to the execution engine.
type Server struct {
	mcp    *server.MCPServer
	engine *engine.Engine
	venvs  *venv.Manager
	cfg    *config.Config
}

// New builds the server and registers its tools.
func New(cfg *config.Config) *Server {
	venvs := venv.NewManager(cfg.PythonCandidates...)
	s := &Server{
		mcp: server.NewMCPServer("pythonrun", "0.1.0"),
		engine: &engine.Engine{
			Venvs:     venvs,
			VenvRoot:  cfg.VenvRoot(),
			Workspace: cfg.WorkspaceRoot,
			Limits: engine.Limits{
				Timeout:        cfg.Timeout(),
				MaxMemoryMB:    cfg.MaxMemoryMB,
				MaxOutputBytes: cfg.MaxOutputBytes,
			},
			MaxArtifacts: cfg.MaxArtifacts,
			StaleAfter:   cfg.StaleAfter(),
		},
		venvs: venvs,
		cfg:   cfg,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.Tool{
		Name: "execute_code",
		Description: "Execute a Python code snippet in an isolated virtualenv. " +
			"Captures stdout, stderr, and any matplotlib/PIL images the code produces.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Python source code to execute",
				},
				"setup_environment": map[string]any{
					"type":        "boolean",
					"description": "Force environment setup before the run (optional)",
				},
				"requirements": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "pip packages to install before the run (optional)",
				},
			},
			Required: []string{"code"},
		},
	}, s.handleExecuteCode)

	s.mcp.AddTool(mcp.Tool{
		Name:        "install_packages",
		Description: "Install pip packages into the managed virtualenv.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"packages": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "Package names to install",
				},
			},
			Required: []string{"packages"},
		},
	}, s.handleInstallPackages)

	s.mcp.AddTool(mcp.Tool{
		Name:        "list_packages",
		Description: "List packages installed in the managed virtualenv.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, s.handleListPackages)

	s.mcp.AddTool(mcp.Tool{
		Name:        "reset_environment",
		Description: "Destroy and recreate the managed virtualenv. All installed packages are removed.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, s.handleResetEnvironment)
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
