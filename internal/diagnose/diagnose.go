// Package diagnose maps raw execution failures to a human-readable
// diagnosis with a remediation hint. Classification is advisory only:
// it augments the reported message and never changes the exit status.
package diagnose

import "strings"

// Diagnosis is a classified failure with an optional hint.
type Diagnosis struct {
	Message string
	Hint    string
}

type rule struct {
	match func(stderr string) bool
	hint  string
}

func contains(substrs ...string) func(string) bool {
	return func(stderr string) bool {
		lower := strings.ToLower(stderr)
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// Ordered; first match wins.
var rules = []rule{
	{contains("modulenotfounderror", "no module named"), "install the missing package with install_packages"},
	{contains("syntaxerror"), "check the code syntax"},
	{contains("memoryerror", "memory"), "reduce data size or raise the memory limit"},
	{contains("permissionerror", "permission denied"), "check file permissions"},
}

// Classify inspects stderr text and process-exit metadata and returns a
// diagnosis. timedOut takes precedence over everything else; a
// non-timeout signal kill falls through the text rules to a generic
// resource-limit hint.
func Classify(stderr string, exitCode int, signal string, timedOut bool) Diagnosis {
	if timedOut {
		return Diagnosis{
			Message: "execution timed out",
			Hint:    "optimize the code or raise the timeout limit",
		}
	}

	message := strings.TrimSpace(stderr)
	if message == "" {
		message = "execution failed"
	}

	for _, r := range rules {
		if r.match(stderr) {
			return Diagnosis{Message: message, Hint: r.hint}
		}
	}

	if signal != "" {
		return Diagnosis{
			Message: message,
			Hint:    "process was terminated, possibly due to resource limits",
		}
	}

	return Diagnosis{Message: message}
}
