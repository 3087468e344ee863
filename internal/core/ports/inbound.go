package ports

import (
	"context"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// DocumentIntake is the inbound contract for the upload pipeline: persist,
// extract, classify, reconcile.
type DocumentIntake interface {
	Intake(ctx context.Context, file domain.IncomingFile, model string) (domain.IntakeResponse, error)
}

// TypeCatalog is the inbound contract for taxonomy confirmation.
// The bool reports whether the type was appended or already present.
type TypeCatalog interface {
	ConfirmType(ctx context.Context, name, description string) ([]domain.TypeEntry, bool, error)
}

// ModelCatalog lists the models available on the local model server.
type ModelCatalog interface {
	ListModels(ctx context.Context) ([]string, error)
}
