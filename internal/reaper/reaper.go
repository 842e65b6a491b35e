// Package reaper removes a run's scratch state after every outcome and
// sweeps orphaned scratch files left behind by prior interrupted runs.
package reaper

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ScratchPrefix is the naming convention for per-run scratch files and
// artifact directories under the workspace. The stale sweep only ever
// touches entries carrying this prefix.
const ScratchPrefix = "pyrun_"

// Cleanup deletes the run's scratch program and artifact directory and
// sweeps stale scratch entries from prior runs. The three tasks run
// concurrently and are independently fault-tolerant: failures are
// logged warnings, never returned.
func Cleanup(workspace, scriptPath, artifactDir string, staleAfter time.Duration) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		if scriptPath == "" {
			return
		}
		if err := os.Remove(scriptPath); err != nil && !os.IsNotExist(err) {
			log.Printf("cleanup: removing scratch program %s: %v", scriptPath, err)
		}
	}()

	go func() {
		defer wg.Done()
		if artifactDir == "" {
			return
		}
		if err := os.RemoveAll(artifactDir); err != nil {
			log.Printf("cleanup: removing artifact dir %s: %v", artifactDir, err)
		}
	}()

	go func() {
		defer wg.Done()
		sweepStale(workspace, staleAfter, scriptPath, artifactDir)
	}()

	wg.Wait()
}

// sweepStale removes scratch entries in the workspace that do not belong
// to the current run and are older than staleAfter. This recovers from
// runs that crashed before their own cleanup executed.
func sweepStale(workspace string, staleAfter time.Duration, keep ...string) {
	if workspace == "" || staleAfter <= 0 {
		return
	}

	entries, err := os.ReadDir(workspace)
	if err != nil {
		log.Printf("cleanup: scanning workspace %s: %v", workspace, err)
		return
	}

	cutoff := time.Now().Add(-staleAfter)
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), ScratchPrefix) {
			continue
		}
		path := filepath.Join(workspace, entry.Name())
		if owned(path, keep) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			log.Printf("cleanup: removing stale scratch %s: %v", path, err)
		}
	}
}

func owned(path string, keep []string) bool {
	for _, k := range keep {
		if k != "" && filepath.Base(k) == filepath.Base(path) {
			return true
		}
	}
	return false
}
