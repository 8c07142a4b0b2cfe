package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/jingkaihe/netmock/internal/errx"
)

// JSONLWriter writes events as JSON lines. It implements Sink and is safe
// for concurrent use.
type JSONLWriter struct {
	mu  sync.Mutex
	out io.WriteCloser
	enc *json.Encoder
}

// NewJSONLWriter appends to the file at path, creating it if needed.
// The parent directory must already exist.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errx.Wrap(ErrCreateLogFile, err)
	}
	return NewJSONLWriterTo(f), nil
}

// NewJSONLWriterTo writes to an arbitrary destination, such as a rotating
// lumberjack.Logger.
func NewJSONLWriterTo(out io.WriteCloser) *JSONLWriter {
	return &JSONLWriter{
		out: out,
		enc: json.NewEncoder(out),
	}
}

// Write serializes the event as a single JSON line.
func (w *JSONLWriter) Write(event *Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.enc.Encode(event); err != nil {
		return errx.Wrap(ErrWriteEvent, err)
	}
	return nil
}

// Close syncs (for files) and closes the destination.
func (w *JSONLWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if f, ok := w.out.(*os.File); ok {
		_ = f.Sync()
	}
	if err := w.out.Close(); err != nil {
		return errx.Wrap(ErrCloseWriter, err)
	}
	return nil
}
