package validator

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/raido/internal/storage"
)

// debounceWindow batches rapid editor save bursts into one pass.
const debounceWindow = 300 * time.Millisecond

// Change is one document event that triggered a pass. Kind is one of
// "created", "updated", "deleted".
type Change struct {
	Kind string
	Path string
}

// PassCallback is called after each watcher-driven validation pass with
// the result and the document changes that triggered it.
type PassCallback func(res *Result, changes []Change)

// Watch starts an fsnotify watcher on the vault root and re-runs the
// full pass after every document change, debounced, until ctx is
// cancelled. It calls cb (if non-nil) with each pass result.
//
// New directories created at runtime are automatically added to the
// watch list. A pass that fails is logged and the watcher keeps going.
func (v *Validator) Watch(ctx context.Context, cb PassCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := v.store.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	v.logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time
	pending := make(map[string]string) // rel path -> kind

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounceWindow)
			fire = timer.C
		} else {
			timer.Reset(debounceWindow)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			v.logger.Info("watcher: stopped")
			return nil

		case <-fire:
			changes := make([]Change, 0, len(pending))
			for p, kind := range pending {
				changes = append(changes, Change{Kind: kind, Path: p})
			}
			pending = make(map[string]string)

			res, runErr := v.Run(ctx)
			if runErr != nil {
				v.logger.Error("watcher: pass failed", slog.String("error", runErr.Error()))
				continue
			}
			if cb != nil {
				cb(res, changes)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						v.logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}

			if !storage.IsDocument(ev.Name) {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&fsnotify.Create != 0:
				pending[rel] = "created"
			case ev.Op&fsnotify.Write != 0:
				if pending[rel] != "created" {
					pending[rel] = "updated"
				}
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// fsnotify fires Rename on the old path only; a rename
				// inside the vault shows up again as a Create.
				pending[rel] = "deleted"
			default:
				continue
			}
			v.logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			v.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() != "." && len(d.Name()) > 1 && d.Name()[0] == '.' && path != root {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}
