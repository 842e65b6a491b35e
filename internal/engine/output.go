package engine

import "bytes"

// capWriter records up to limit bytes and silently drops the rest, so a
// chatty child process truncates instead of hanging or ballooning the
// response. A limit of zero means unbounded.
type capWriter struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (w *capWriter) Write(p []byte) (int, error) {
	if w.limit > 0 {
		room := w.limit - w.buf.Len()
		if room <= 0 {
			w.truncated = true
			return len(p), nil
		}
		if len(p) > room {
			w.buf.Write(p[:room])
			w.truncated = true
			return len(p), nil
		}
	}
	w.buf.Write(p)
	return len(p), nil
}

func (w *capWriter) String() string {
	return w.buf.String()
}
