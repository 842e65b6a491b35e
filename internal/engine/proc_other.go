//go:build !unix

package engine

import "os/exec"

// Process groups are a unix facility; elsewhere the context cancel
// kills only the direct child.
func configureProc(cmd *exec.Cmd) {}

func exitSignal(err *exec.ExitError) string { return "" }
