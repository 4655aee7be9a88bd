package index

import (
	"log/slog"

	"github.com/starford/lore/internal/storage"
)

// Change reports what IndexFile did with a file.
type Change int

const (
	Unchanged Change = iota
	Created
	Updated
)

func (c Change) String() string {
	switch c {
	case Created:
		return "created"
	case Updated:
		return "updated"
	}
	return "unchanged"
}

// FileIndexer ingests vault files. The note service implements it so that
// files edited outside the API still go through redaction, flashcard
// generation and versioning.
type FileIndexer interface {
	IndexFile(path string, data []byte) (Change, error)
	RemoveFile(path string) error
}

// Sync walks the vault and brings the index up to date:
//   - new/changed files are handed to ix
//   - files removed from disk are removed through ix
func Sync(db NoteIndex, store storage.Provider, ix FileIndexer, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		change, err := ix.IndexFile(m.Path, data)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path), slog.String("change", change.String()))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := ix.RemoveFile(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}

	return nil
}
