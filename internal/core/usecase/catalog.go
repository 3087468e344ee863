package usecase

import (
	"context"
	"fmt"

	"github.com/g-g-pletnev/docan/internal/core/domain"
	"github.com/g-g-pletnev/docan/internal/core/ports"
)

// CatalogUseCase confirms classifier-proposed types into the taxonomy.
type CatalogUseCase struct {
	taxonomy ports.TaxonomyStore
}

func NewCatalogUseCase(taxonomy ports.TaxonomyStore) *CatalogUseCase {
	return &CatalogUseCase{taxonomy: taxonomy}
}

// ConfirmType appends the proposed type unless an entry with exactly
// that name exists. Matching on this path is deliberately exact while
// classification reconciliation folds case.
func (uc *CatalogUseCase) ConfirmType(ctx context.Context, name, description string) ([]domain.TypeEntry, bool, error) {
	entries, appended, err := uc.taxonomy.Append(ctx, domain.TypeEntry{Name: name, Description: description})
	if err != nil {
		return nil, false, fmt.Errorf("append type: %w", err)
	}
	return entries, appended, nil
}
