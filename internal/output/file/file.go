package file

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/crimson-sun/authwatch/internal/model"
	"github.com/crimson-sun/authwatch/internal/output"
)

// DefaultPath is where the audit log lives unless configured otherwise.
const DefaultPath = "/var/log/security_alerts.log"

const maxRotated = 10

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize sets the file size (bytes) at which rotation triggers.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) Option {
	return func(o *Output) { o.maxSize = bytes }
}

// WithPerm sets the permission bits used when the file is created. Default: 0640.
func WithPerm(perm os.FileMode) Option {
	return func(o *Output) { o.perm = perm }
}

// Output appends one text line per alert to an append-only audit log.
// Every Write opens the file, appends, syncs and closes it, so external
// log rotation and tailing shippers always see complete lines.
type Output struct {
	mu      sync.Mutex
	path    string
	perm    os.FileMode
	maxSize int64 // 0 = no rotation
}

// New creates an audit file output for path. The file is not opened
// until the first Write.
func New(path string, opts ...Option) *Output {
	o := &Output{
		path: path,
		perm: 0640,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Write renders the alert and appends it as a line to the file.
func (o *Output) Write(_ context.Context, alert model.Alert) error {
	return o.Append(output.FormatAlert(alert))
}

// Append writes line plus a newline terminator. Writers are serialised so
// concurrent appends never interleave.
func (o *Output) Append(line string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	data := []byte(line + "\n")

	if o.maxSize > 0 {
		if info, err := os.Stat(o.path); err == nil && info.Size()+int64(len(data)) > o.maxSize && info.Size() > 0 {
			if err := o.rotate(); err != nil {
				return fmt.Errorf("file output: rotate: %w", err)
			}
		}
	}

	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, o.perm)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("file output: write: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("file output: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("file output: close: %w", err)
	}
	return nil
}

// Close is a no-op: no handle is held between writes.
func (o *Output) Close() error {
	return nil
}

// rotate renames the current file to {path}.1, shifting existing rotated
// files up by one. The oldest beyond maxRotated is overwritten.
func (o *Output) rotate() error {
	for i := maxRotated - 1; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d", o.path, i)
		to := fmt.Sprintf("%s.%d", o.path, i+1)
		os.Rename(from, to) // missing generations are fine
	}
	return os.Rename(o.path, o.path+".1")
}
