package venv

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"sync"
)

// Manager creates, validates, repairs, and resets environments. All
// mutations against the same root are serialized through a per-root
// lock; reads may overlap with each other but never with a mutation.
type Manager struct {
	mu         sync.Mutex
	locks      map[string]*sync.RWMutex // env root → lock
	candidates []string                 // base interpreter names, tried in order
}

// NewManager creates a Manager that discovers the base interpreter from
// the given candidate binary names (e.g. "python3", "python").
func NewManager(candidates ...string) *Manager {
	if len(candidates) == 0 {
		candidates = []string{"python3", "python"}
	}
	return &Manager{
		locks:      make(map[string]*sync.RWMutex),
		candidates: candidates,
	}
}

func (m *Manager) lock(root string) *sync.RWMutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[root]
	if !ok {
		l = &sync.RWMutex{}
		m.locks[root] = l
	}
	return l
}

// Ensure returns a validated, ready-to-use environment at root. An
// absent environment is created; a present one is probed and, on probe
// failure, torn down and rebuilt once. Callers never observe a
// half-built environment.
func (m *Manager) Ensure(ctx context.Context, root string) (*Environment, error) {
	l := m.lock(root)
	l.Lock()
	defer l.Unlock()
	return m.ensureLocked(ctx, root)
}

func (m *Manager) ensureLocked(ctx context.Context, root string) (*Environment, error) {
	env := &Environment{Root: root}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		if err := m.create(ctx, root); err != nil {
			return nil, err
		}
		return env, nil
	}

	if err := env.probe(ctx); err != nil {
		// Corrupted: full teardown and one rebuild attempt.
		log.Printf("environment at %s failed probe, rebuilding: %v", root, err)
		if rmErr := os.RemoveAll(root); rmErr != nil {
			return nil, fmt.Errorf("%w: removing corrupted environment: %v", ErrEnvironmentCorrupted, rmErr)
		}
		if err := m.create(ctx, root); err != nil {
			return nil, fmt.Errorf("%w: rebuild failed: %v", ErrEnvironmentCorrupted, err)
		}
		if err := env.probe(ctx); err != nil {
			return nil, fmt.Errorf("%w: rebuilt environment still failing: %v", ErrEnvironmentCorrupted, err)
		}
	}
	return env, nil
}

// create builds a fresh virtualenv at root using the first base
// interpreter that resolves on PATH.
func (m *Manager) create(ctx context.Context, root string) error {
	base, err := m.findBase()
	if err != nil {
		return err
	}
	out, err := exec.CommandContext(ctx, base, "-m", "venv", root).CombinedOutput()
	if err != nil {
		return fmt.Errorf("creating virtualenv at %s: %w\n%s", root, err, out)
	}
	return nil
}

func (m *Manager) findBase() (string, error) {
	for _, name := range m.candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tried %v", ErrToolchainMissing, m.candidates)
}

// Reset unconditionally destroys and recreates the environment.
// Installed packages are lost; that is the point.
func (m *Manager) Reset(ctx context.Context, root string) (*Environment, error) {
	l := m.lock(root)
	l.Lock()
	defer l.Unlock()

	if err := os.RemoveAll(root); err != nil {
		return nil, fmt.Errorf("removing environment at %s: %w", root, err)
	}
	return m.ensureLocked(ctx, root)
}

// InstallPackages runs pip install for the given names and returns the
// combined output verbatim. No rollback on partial failure; the report
// is whatever pip reports.
func (m *Manager) InstallPackages(ctx context.Context, root string, names []string) (string, error) {
	l := m.lock(root)
	l.Lock()
	defer l.Unlock()

	env, err := m.ensureLocked(ctx, root)
	if err != nil {
		return "", err
	}

	args := append([]string{"install"}, names...)
	out, err := exec.CommandContext(ctx, env.Pip(), args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%w: %v\n%s", ErrInstallFailed, err, out)
	}
	return string(out), nil
}

// ListPackages runs pip list and returns its output. Listing requires a
// present environment, so Ensure runs first.
func (m *Manager) ListPackages(ctx context.Context, root string) (string, error) {
	env, err := m.Ensure(ctx, root)
	if err != nil {
		return "", err
	}

	l := m.lock(root)
	l.RLock()
	defer l.RUnlock()

	out, err := exec.CommandContext(ctx, env.Pip(), "list").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("listing packages: %w\n%s", err, out)
	}
	return string(out), nil
}
