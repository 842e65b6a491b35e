package instrument

import (
	"strings"
	"testing"
)

func TestInject_EmbedsArtifactDir(t *testing.T) {
	got := Inject("print(1)", "/tmp/run/artifacts")
	if !strings.Contains(got, `_PYRUN_ARTIFACT_DIR = "/tmp/run/artifacts"`) {
		t.Error("artifact dir not embedded as a string literal")
	}
}

func TestInject_PreservesUserCode(t *testing.T) {
	code := "x = 40 + 2\nprint(x)"
	got := Inject(code, "/tmp/a")
	if !strings.Contains(got, code) {
		t.Error("user code missing from instrumented program")
	}
}

func TestInject_Ordering(t *testing.T) {
	got := Inject("print('marker')", "/tmp/a")

	hooks := strings.Index(got, "_pyrun_plt.show = _pyrun_show")
	user := strings.Index(got, "print('marker')")
	sweep := strings.Index(got, "_pyrun_plt_sweep")

	if hooks == -1 || user == -1 || sweep == -1 {
		t.Fatal("expected hook install, user code, and final sweep to all be present")
	}
	if !(hooks < user && user < sweep) {
		t.Errorf("expected hooks < user code < sweep, got %d, %d, %d", hooks, user, sweep)
	}
}

func TestInject_HooksBothLibrariesIndependently(t *testing.T) {
	got := Inject("pass", "/tmp/a")

	for _, want := range []string{
		"import matplotlib",
		`matplotlib.use("Agg")`,
		"matplotlib.figure.Figure.savefig = _pyrun_savefig",
		"from PIL import Image",
		"_pyrun_pil.Image.save = _pyrun_pil_save",
		"_pyrun_pil.Image.show = _pyrun_pil_show",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("instrumented program missing %q", want)
		}
	}

	// Each library block carries its own guard so one failing does not
	// block the other.
	if strings.Count(got, "except Exception as _pyrun_e:\n    print(\"warning:") < 2 {
		t.Error("expected independent top-level guards for matplotlib and PIL")
	}
}

func TestInject_TracksSavedIdentity(t *testing.T) {
	got := Inject("pass", "/tmp/a")
	if !strings.Contains(got, "_pyrun_saved = set()") {
		t.Error("missing per-run saved-identity set")
	}
	if !strings.Contains(got, "_pyrun_saved.add(id(self))") {
		t.Error("explicit save does not mark figure identity as persisted")
	}
	if !strings.Contains(got, "if id(_fig) in _pyrun_saved:") {
		t.Error("display hook does not skip already-persisted figures")
	}
}

func TestInject_HonorsAbsoluteSavePaths(t *testing.T) {
	got := Inject("pass", "/tmp/a")
	// Relative destinations are redirected into the artifact dir;
	// absolute ones pass through untouched.
	if !strings.Contains(got, "not _pyrun_os.path.isabs(fname)") {
		t.Error("savefig hook should only redirect relative destinations")
	}
	if !strings.Contains(got, "not _pyrun_os.path.isabs(fp)") {
		t.Error("PIL save hook should only redirect relative destinations")
	}
}

func TestInject_FallsBackToCwd(t *testing.T) {
	got := Inject("pass", "/tmp/a")
	if !strings.Contains(got, "_PYRUN_ARTIFACT_DIR = _pyrun_os.getcwd()") {
		t.Error("missing working-directory fallback for artifact dir creation failure")
	}
}
