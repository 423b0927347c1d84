package app

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/evanschultz/checklist/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "checklist.snapshot.v1"

// Snapshot is the portable export document of both lists.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exported_at"`
	Categories []domain.Category `json:"categories"`
	Todos      []domain.Todo     `json:"todos"`
}

// ExportSnapshot copies the current lists into a snapshot.
func (s *Service) ExportSnapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Version:    SnapshotVersion,
		ExportedAt: s.clock().UTC(),
		Categories: slices.Clone(s.categories),
		Todos:      slices.Clone(s.todos),
	}
}

// ImportSnapshot replaces both lists with the snapshot contents, clears the
// selection and saves both lists.
func (s *Service) ImportSnapshot(snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = slices.Clone(snap.Categories)
	s.todos = slices.Clone(snap.Todos)
	if s.categories == nil {
		s.categories = []domain.Category{}
	}
	if s.todos == nil {
		s.todos = []domain.Todo{}
	}
	s.selection = domain.NoneSelected()
	s.saveCategories()
	s.saveTodos()
	s.logger.Info("snapshot imported", "categories", len(s.categories), "todos", len(s.todos))
	return nil
}

// Validate checks ids, names, colors and category references, normalizing
// colors and trimming names in place.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, s.Version)
	}

	categoryIDs := map[string]struct{}{}
	for i, c := range s.Categories {
		normalized, err := domain.NewCategory(c.ID, c.Name, c.Color)
		if err != nil {
			return fmt.Errorf("%w: categories[%d]: %w", ErrInvalidSnapshot, i, err)
		}
		if _, exists := categoryIDs[normalized.ID]; exists {
			return fmt.Errorf("%w: duplicate category id %q", ErrInvalidSnapshot, normalized.ID)
		}
		categoryIDs[normalized.ID] = struct{}{}
		s.Categories[i] = normalized
	}

	todoIDs := map[string]struct{}{}
	for i, t := range s.Todos {
		if strings.TrimSpace(t.ID) == "" {
			return fmt.Errorf("%w: todos[%d].id is required", ErrInvalidSnapshot, i)
		}
		if t.Text == "" {
			return fmt.Errorf("%w: todos[%d].text is required", ErrInvalidSnapshot, i)
		}
		if t.CategoryID != "" {
			if _, ok := categoryIDs[t.CategoryID]; !ok {
				return fmt.Errorf("%w: todos[%d]: %w %q", ErrInvalidSnapshot, i, domain.ErrInvalidCategory, t.CategoryID)
			}
		}
		if _, exists := todoIDs[t.ID]; exists {
			return fmt.Errorf("%w: duplicate todo id %q", ErrInvalidSnapshot, t.ID)
		}
		todoIDs[t.ID] = struct{}{}
	}
	return nil
}
