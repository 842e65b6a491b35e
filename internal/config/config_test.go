package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.TimeoutSeconds != 30 {
		t.Errorf("timeout_seconds default: got %d", cfg.TimeoutSeconds)
	}
	if cfg.MaxMemoryMB != 512 {
		t.Errorf("max_memory_mb default: got %d", cfg.MaxMemoryMB)
	}
	if cfg.MaxOutputBytes != 1<<20 {
		t.Errorf("max_output_bytes default: got %d", cfg.MaxOutputBytes)
	}
	if cfg.MaxArtifacts != 3 {
		t.Errorf("max_artifacts default: got %d", cfg.MaxArtifacts)
	}
	if cfg.WorkspaceRoot == "" {
		t.Error("workspace_root default is empty")
	}
	if len(cfg.PythonCandidates) != 2 || cfg.PythonCandidates[0] != "python3" {
		t.Errorf("python_candidates default: got %v", cfg.PythonCandidates)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("PYTHONRUN_TIMEOUT_SECONDS", "7")
	t.Setenv("PYTHONRUN_WORKSPACE_ROOT", "/custom/ws")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TimeoutSeconds != 7 {
		t.Errorf("env override ignored: got %d", cfg.TimeoutSeconds)
	}
	if cfg.WorkspaceRoot != "/custom/ws" {
		t.Errorf("env override ignored: got %s", cfg.WorkspaceRoot)
	}
}

func TestDerivedSettings(t *testing.T) {
	cfg := &Config{
		WorkspaceRoot:     "/ws",
		TimeoutSeconds:    10,
		StaleAfterMinutes: 90,
	}

	if cfg.VenvRoot() != filepath.Join("/ws", ".venv") {
		t.Errorf("VenvRoot: got %s", cfg.VenvRoot())
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Timeout: got %s", cfg.Timeout())
	}
	if cfg.StaleAfter() != 90*time.Minute {
		t.Errorf("StaleAfter: got %s", cfg.StaleAfter())
	}
}
