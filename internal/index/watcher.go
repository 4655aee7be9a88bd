package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/lore/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

const reconcileDelay = 200 * time.Millisecond

type vaultWatcher struct {
	db     NoteIndex
	store  storage.Provider
	ix     FileIndexer
	root   string
	logger *slog.Logger
	cb     EventCallback
}

func (v *vaultWatcher) notify(kind, path string) {
	if v.cb != nil {
		v.cb(kind, path)
	}
}

// ingest hands one file to the indexer and reports real changes.
func (v *vaultWatcher) ingest(rel, source string) {
	data, err := v.store.Read(rel)
	if err != nil {
		v.logger.Warn(source+": read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	change, err := v.ix.IndexFile(rel, data)
	if err != nil {
		v.logger.Warn(source+": index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if change == Unchanged {
		return
	}
	v.logger.Debug(source+": indexed", slog.String("path", rel), slog.String("change", change.String()))
	v.notify(change.String(), rel)
}

func (v *vaultWatcher) remove(rel, source string) {
	if err := v.ix.RemoveFile(rel); err != nil {
		v.logger.Warn(source+": delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	v.logger.Debug(source+": deleted", slog.String("path", rel))
	v.notify("deleted", rel)
}

// Watch starts an fsnotify watcher on the vault root and feeds file changes
// to ix until ctx is cancelled. Writes the indexer itself makes (such as
// redacting a file in place) come back as Unchanged and are not reported.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// index entries whose files no longer exist on disk.
func Watch(ctx context.Context, db NoteIndex, store storage.Provider, ix FileIndexer, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, vaultRoot); err != nil {
		return err
	}

	v := &vaultWatcher{db: db, store: store, ix: ix, root: vaultRoot, logger: logger, cb: cb}
	logger.Info("watcher: started", slog.String("root", vaultRoot))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(reconcileDelay)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(reconcileDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			v.reconcile()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					v.indexDir(absPath)
					continue
				}
			}

			if !strings.HasSuffix(absPath, ".md") {
				continue
			}

			rel, relErr := filepath.Rel(vaultRoot, absPath)
			if relErr != nil || hidden(rel) {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				v.ingest(rel, "watcher")

			case ev.Op&fsnotify.Remove != 0:
				v.remove(rel, "watcher")

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify reports Rename on the old path only; the new
				// path arrives as a Create if it stays inside the vault.
				v.remove(rel, "watcher")
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile removes index entries whose files are gone and ingests files
// the index has not seen at their current checksum.
func (v *vaultWatcher) reconcile() {
	checksums, err := v.db.AllChecksums()
	if err != nil {
		v.logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := v.store.List("")
	if err != nil {
		v.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			v.remove(p, "reconcile")
		}
	}

	for p, cs := range disk {
		if checksums[p] != cs {
			v.ingest(p, "reconcile")
		}
	}
}

// indexDir ingests any .md files already present in a new directory.
func (v *vaultWatcher) indexDir(dirPath string) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := filepath.Rel(v.root, path)
		if relErr != nil || hidden(rel) {
			return nil
		}
		v.ingest(rel, "watcher")
		return nil
	})
}

// hidden reports whether any element of a vault-relative path starts with a
// dot. Storage listings skip those trees, so the watcher does too.
func hidden(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
