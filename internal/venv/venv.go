// Package venv manages the isolated Python virtualenv that snippets
// execute in: creation, validity probing, self-healing rebuild, package
// installation, and full reset.
package venv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// Sentinel errors for environment failures.
var (
	// ErrToolchainMissing indicates no usable Python interpreter was
	// found on the host. Not retriable without operator intervention.
	ErrToolchainMissing = errors.New("no usable python interpreter found")

	// ErrEnvironmentCorrupted indicates the virtualenv failed its probe
	// and could not be rebuilt.
	ErrEnvironmentCorrupted = errors.New("environment corrupted")

	// ErrInstallFailed indicates pip reported a non-zero exit.
	ErrInstallFailed = errors.New("package installation failed")
)

const probeTimeout = 10 * time.Second

// Environment is one isolated interpreter installation rooted at a
// directory. Validity is derived by probing, never stored.
type Environment struct {
	Root string
}

// Python returns the path of the environment's interpreter binary.
func (e *Environment) Python() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Root, "Scripts", "python.exe")
	}
	return filepath.Join(e.Root, "bin", "python")
}

// Pip returns the path of the environment's package manager binary.
func (e *Environment) Pip() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(e.Root, "Scripts", "pip.exe")
	}
	return filepath.Join(e.Root, "bin", "pip")
}

// probe checks that the interpreter binary exists, is executable, and
// answers --version. Any failure means the environment is corrupted.
func (e *Environment) probe(ctx context.Context) error {
	info, err := os.Stat(e.Python())
	if err != nil {
		return fmt.Errorf("interpreter missing: %w", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("interpreter %s is not executable", e.Python())
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if err := exec.CommandContext(ctx, e.Python(), "--version").Run(); err != nil {
		return fmt.Errorf("interpreter probe failed: %w", err)
	}
	return nil
}
