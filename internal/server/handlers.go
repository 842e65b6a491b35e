package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func getArgs(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	return args
}

func stringSlice(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}

func (s *Server) handleExecuteCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	if args == nil {
		return errResult("error: invalid arguments"), nil
	}

	code, _ := args["code"].(string)
	if code == "" {
		return errResult("error: 'code' is required"), nil
	}

	setup, _ := args["setup_environment"].(bool)
	requirements := stringSlice(args, "requirements")

	if setup || len(requirements) > 0 {
		if _, err := s.venvs.Ensure(ctx, s.cfg.VenvRoot()); err != nil {
			return errResult(fmt.Sprintf("environment setup failed: %v", err)), nil
		}
	}
	if len(requirements) > 0 {
		if _, err := s.venvs.InstallPackages(ctx, s.cfg.VenvRoot(), requirements); err != nil {
			return errResult(fmt.Sprintf("installing requirements: %v", err)), nil
		}
	}

	outcome, err := s.engine.Run(ctx, code)
	if err != nil {
		return errResult(fmt.Sprintf("execution aborted: %v", err)), nil
	}

	var text strings.Builder
	if outcome.Stdout != "" {
		text.WriteString(outcome.Stdout)
	}
	if outcome.Stderr != "" {
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.WriteString("STDERR:\n" + outcome.Stderr)
	}
	if outcome.TimedOut {
		text.WriteString(fmt.Sprintf("\nexecution timed out after %s", outcome.Duration.Round(time.Millisecond)))
	} else if outcome.ExitCode != 0 {
		text.WriteString(fmt.Sprintf("\nexit code: %d", outcome.ExitCode))
		if outcome.Signal != "" {
			text.WriteString(fmt.Sprintf(" (signal: %s)", outcome.Signal))
		}
	}
	if outcome.Truncated {
		text.WriteString("\n... (output truncated)")
	}
	if outcome.Hint != "" {
		text.WriteString("\nhint: " + outcome.Hint)
	}
	if text.Len() == 0 {
		text.WriteString("(no output)")
	}

	content := []mcp.Content{mcp.TextContent{Type: "text", Text: text.String()}}
	for _, a := range outcome.Artifacts {
		content = append(content, mcp.ImageContent{
			Type:     "image",
			Data:     a.Data,
			MIMEType: a.MIMEType,
		})
	}

	return &mcp.CallToolResult{
		Content: content,
		IsError: outcome.Failed(),
	}, nil
}

func (s *Server) handleInstallPackages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	packages := stringSlice(args, "packages")
	if len(packages) == 0 {
		return errResult("error: 'packages' is required"), nil
	}

	out, err := s.venvs.InstallPackages(ctx, s.cfg.VenvRoot(), packages)
	if err != nil {
		return errResult(fmt.Sprintf("install failed: %v", err)), nil
	}
	return textResult(out), nil
}

func (s *Server) handleListPackages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.venvs.ListPackages(ctx, s.cfg.VenvRoot())
	if err != nil {
		return errResult(fmt.Sprintf("listing packages failed: %v", err)), nil
	}
	return textResult(out), nil
}

func (s *Server) handleResetEnvironment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.venvs.Reset(ctx, s.cfg.VenvRoot()); err != nil {
		return errResult(fmt.Sprintf("reset failed: %v", err)), nil
	}
	return textResult("environment reset: virtualenv recreated at " + s.cfg.VenvRoot()), nil
}
