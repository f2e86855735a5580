// Package watch re-encodes a markup file whenever it changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ziadkadry99/umlgen/internal/logger"
	"github.com/ziadkadry99/umlgen/internal/plantuml"
)

// Extensions are the markup file extensions that can be watched.
var Extensions = []string{".puml", ".plantuml", ".pu", ".txt"}

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Editor receives new markup. *pipeline.Session implements it.
type Editor interface {
	Edit(markup string) plantuml.Encoded
}

// Update reports one applied change.
type Update struct {
	Path    string
	Markup  string
	Encoded plantuml.Encoded
}

// Watcher applies a file's content to an Editor on every change.
type Watcher struct {
	path     string
	editor   Editor
	log      *logger.Logger
	Debounce time.Duration

	last string
}

// New creates a watcher for path.
func New(path string, editor Editor, log *logger.Logger) (*Watcher, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(Extensions, ext) {
		return nil, fmt.Errorf("unsupported markup file %q: expected one of %s", path, strings.Join(Extensions, ", "))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	return &Watcher{path: abs, editor: editor, log: log, Debounce: DefaultDebounce}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Run applies the current content, then watches until ctx is done. The
// parent directory is watched so editors that save by renaming a temp
// file are still seen. onUpdate may be nil.
func (w *Watcher) Run(ctx context.Context, onUpdate func(Update)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}

	w.apply(onUpdate)

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			w.apply(onUpdate)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error(err, "file watcher")
		}
	}
}

// apply reads the file and hands changed content to the editor.
func (w *Watcher) apply(onUpdate func(Update)) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		// The file may be mid-replace; the next event retries.
		w.log.WithFields(map[string]any{"path": w.path}).Warn("markup file not readable: " + err.Error())
		return
	}
	markup := strings.TrimSpace(string(data))
	if markup == w.last {
		return
	}
	w.last = markup

	enc := w.editor.Edit(markup)
	w.log.WithFields(map[string]any{"path": w.path, "token": enc.Token}).Info("markup file changed")
	if onUpdate != nil {
		onUpdate(Update{Path: w.path, Markup: markup, Encoded: enc})
	}
}
