package diagnose

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		stderr   string
		exitCode int
		signal   string
		timedOut bool
		wantHint string
	}{
		{
			name:     "timeout",
			stderr:   "",
			exitCode: -1,
			timedOut: true,
			wantHint: "timeout",
		},
		{
			name:     "missing module",
			stderr:   "ModuleNotFoundError: No module named 'numpy'",
			exitCode: 1,
			wantHint: "install the missing package",
		},
		{
			name:     "syntax error",
			stderr:   "  File \"prog.py\", line 1\n    def :\nSyntaxError: invalid syntax",
			exitCode: 1,
			wantHint: "syntax",
		},
		{
			name:     "memory error",
			stderr:   "MemoryError",
			exitCode: 1,
			wantHint: "memory limit",
		},
		{
			name:     "permission error",
			stderr:   "PermissionError: [Errno 13] Permission denied: '/etc/shadow'",
			exitCode: 1,
			wantHint: "permissions",
		},
		{
			name:     "killed by signal",
			stderr:   "",
			exitCode: -1,
			signal:   "killed",
			wantHint: "resource limits",
		},
		{
			name:     "plain failure has no hint",
			stderr:   "ValueError: bad value",
			exitCode: 1,
			wantHint: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Classify(tt.stderr, tt.exitCode, tt.signal, tt.timedOut)
			if tt.wantHint == "" {
				if d.Hint != "" {
					t.Errorf("expected no hint, got %q", d.Hint)
				}
				return
			}
			if !strings.Contains(d.Hint, tt.wantHint) {
				t.Errorf("hint %q does not mention %q", d.Hint, tt.wantHint)
			}
		})
	}
}

func TestClassify_TimeoutWinsOverText(t *testing.T) {
	d := Classify("MemoryError", -1, "killed", true)
	if !strings.Contains(d.Hint, "timeout") {
		t.Errorf("timeout should take precedence, got hint %q", d.Hint)
	}
}

func TestClassify_MessageFallsBackWhenStderrEmpty(t *testing.T) {
	d := Classify("", 1, "", false)
	if d.Message == "" {
		t.Error("expected non-empty message for empty stderr")
	}
}
