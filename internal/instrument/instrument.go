// Package instrument rewrites a submitted Python snippet into an
// equivalent program that also intercepts matplotlib and PIL output
// calls and persists figures as image files in a per-run artifact
// directory. The snippet itself needs no changes: interception happens
// by shadowing the libraries' display and save entry points, plus an
// end-of-program sweep for figures that were never shown or saved.
package instrument

import "fmt"

// Inject wraps code with the capture preamble and epilogue. artifactDir
// is embedded as a Python string literal; the generated program creates
// it on startup and falls back to the working directory if that fails.
func Inject(code, artifactDir string) string {
	return fmt.Sprintf("%s\n\n%s\n\n%s\n", fmt.Sprintf(preamble, artifactDir), code, epilogue)
}

// Hook state is local to each generated program, so concurrent runs
// never share counters or the saved-identity set. Every hook body is
// guarded: instrumentation failures print a warning and the run
// continues. A figure saved to an explicit absolute path is marked as
// persisted but the destination is honored as given; relative
// destinations are redirected into the artifact directory so the
// collector finds them.
const preamble = `import os as _pyrun_os

_PYRUN_ARTIFACT_DIR = %q
try:
    _pyrun_os.makedirs(_PYRUN_ARTIFACT_DIR, exist_ok=True)
except Exception as _pyrun_e:
    print("warning: could not create artifact dir: %%s" %% _pyrun_e)
    _PYRUN_ARTIFACT_DIR = _pyrun_os.getcwd()

_pyrun_saved = set()
_pyrun_fig_count = [0]
_pyrun_img_count = [0]

def _pyrun_dest(name):
    return _pyrun_os.path.join(_PYRUN_ARTIFACT_DIR, name)

try:
    import matplotlib
    matplotlib.use("Agg")
    import matplotlib.pyplot as _pyrun_plt

    def _pyrun_show(*args, **kwargs):
        try:
            for _num in _pyrun_plt.get_fignums():
                _fig = _pyrun_plt.figure(_num)
                if id(_fig) in _pyrun_saved:
                    continue
                _pyrun_fig_count[0] += 1
                _fig.savefig(_pyrun_dest("figure_%%d.png" %% _pyrun_fig_count[0]))
        except Exception as _pyrun_e:
            print("warning: figure capture failed: %%s" %% _pyrun_e)
    _pyrun_plt.show = _pyrun_show

    _pyrun_orig_savefig = matplotlib.figure.Figure.savefig
    def _pyrun_savefig(self, fname, *args, **kwargs):
        try:
            if isinstance(fname, str) and not _pyrun_os.path.isabs(fname):
                fname = _pyrun_dest(fname)
            _pyrun_saved.add(id(self))
        except Exception as _pyrun_e:
            print("warning: savefig hook failed: %%s" %% _pyrun_e)
        return _pyrun_orig_savefig(self, fname, *args, **kwargs)
    matplotlib.figure.Figure.savefig = _pyrun_savefig
except Exception as _pyrun_e:
    print("warning: matplotlib capture unavailable: %%s" %% _pyrun_e)

try:
    from PIL import Image as _pyrun_pil

    _pyrun_orig_pil_save = _pyrun_pil.Image.save
    def _pyrun_pil_save(self, fp, *args, **kwargs):
        try:
            if isinstance(fp, str) and not _pyrun_os.path.isabs(fp):
                fp = _pyrun_dest(fp)
            _pyrun_saved.add(id(self))
        except Exception as _pyrun_e:
            print("warning: image save hook failed: %%s" %% _pyrun_e)
        return _pyrun_orig_pil_save(self, fp, *args, **kwargs)
    _pyrun_pil.Image.save = _pyrun_pil_save

    def _pyrun_pil_show(self, *args, **kwargs):
        try:
            _pyrun_img_count[0] += 1
            self.save(_pyrun_dest("image_%%d.png" %% _pyrun_img_count[0]))
        except Exception as _pyrun_e:
            print("warning: image capture failed: %%s" %% _pyrun_e)
    _pyrun_pil.Image.show = _pyrun_pil_show
except Exception as _pyrun_e:
    print("warning: PIL capture unavailable: %%s" %% _pyrun_e)`

// The epilogue persists figures that were created but never shown or
// explicitly saved. It runs only if the snippet completes.
const epilogue = `try:
    import matplotlib.pyplot as _pyrun_plt_sweep
    for _num in _pyrun_plt_sweep.get_fignums():
        _fig = _pyrun_plt_sweep.figure(_num)
        if id(_fig) in _pyrun_saved:
            continue
        _pyrun_fig_count[0] += 1
        _fig.savefig(_pyrun_dest("figure_%d.png" % _pyrun_fig_count[0]))
except Exception:
    pass`
