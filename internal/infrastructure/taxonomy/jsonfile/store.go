package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// Store keeps the taxonomy as one ordered JSON array on disk. Every call
// reads the file fully and rewrites it fully; there is deliberately no
// locking, so concurrent appends follow last-write-wins.
type Store struct {
	path string
	seed []domain.TypeEntry
}

func New(path string, seed []domain.TypeEntry) *Store {
	return &Store{path: path, seed: seed}
}

func (s *Store) List(ctx context.Context) ([]domain.TypeEntry, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s.initialize(ctx)
	}
	if err != nil {
		return nil, domain.WrapError(domain.ErrTaxonomyIO, "read taxonomy file", err)
	}

	var entries []domain.TypeEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, domain.WrapError(domain.ErrTaxonomyIO, "parse taxonomy file", err)
	}
	return entries, nil
}

func (s *Store) Append(ctx context.Context, entry domain.TypeEntry) ([]domain.TypeEntry, bool, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, false, err
	}

	// Dedup is exact by name; only classification matching elsewhere is
	// case-insensitive.
	exists := lo.ContainsBy(entries, func(e domain.TypeEntry) bool {
		return e.Name == entry.Name
	})
	if exists {
		return entries, false, nil
	}

	entries = append(entries, entry)
	if err := s.write(entries); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

func (s *Store) initialize(_ context.Context) ([]domain.TypeEntry, error) {
	seed := s.seed
	if len(seed) == 0 {
		seed = domain.DefaultTaxonomy()
	}
	if err := s.write(seed); err != nil {
		return nil, err
	}
	return seed, nil
}

func (s *Store) write(entries []domain.TypeEntry) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.WrapError(domain.ErrTaxonomyIO, "create taxonomy dir", err)
		}
	}
	raw, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return domain.WrapError(domain.ErrTaxonomyIO, "encode taxonomy", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return domain.WrapError(domain.ErrTaxonomyIO, "write taxonomy file", err)
	}
	return nil
}
