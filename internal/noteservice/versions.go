package noteservice

import (
	"context"

	"github.com/starford/lore/internal/models"
)

// ListVersions returns a note's history newest first.
func (s *Service) ListVersions(_ context.Context, notePath string) ([]models.NoteVersion, error) {
	if _, err := s.db.GetNote(notePath); err != nil {
		return nil, err
	}
	return s.db.ListVersions(notePath)
}

// GetVersion returns one stored version with its content.
func (s *Service) GetVersion(_ context.Context, id string) (*models.NoteVersion, error) {
	return s.db.GetVersion(id)
}

// RestoreVersion writes an old version back as the note's current content.
// The restore is an ordinary update: it is redacted again and recorded as a
// new version. ifMatch is checked against the current content.
func (s *Service) RestoreVersion(_ context.Context, id, ifMatch string) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.db.GetVersion(id)
	if err != nil {
		return nil, err
	}
	return s.updateLocked(v.NotePath, []byte(v.Content), ifMatch, "restore")
}
