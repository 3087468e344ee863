package ports

import (
	"context"

	"github.com/g-g-pletnev/docan/internal/core/domain"
)

// UploadStore persists uploaded originals and allocates OCR scratch space.
type UploadStore interface {
	// SaveUpload writes data under a generated timestamped name whose
	// extension follows originalName (".pdf" when absent) and returns the
	// stored path.
	SaveUpload(ctx context.Context, originalName string, data []byte) (string, error)
	// ScratchDir creates a fresh uniquely named directory for one OCR run.
	ScratchDir(ctx context.Context) (string, error)
}

// TextExtractor turns a stored file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}

// PageRasterizer renders every page of a PDF as one image file per page
// into dir. Page order is recovered from the lexicographic order of the
// produced file names.
type PageRasterizer interface {
	Rasterize(ctx context.Context, pdfPath, dir string) error
}

// TextRecognizer runs OCR over a single page image and returns its text.
type TextRecognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// DocumentClassifier asks the model for a structured classification of text
// against the given taxonomy.
type DocumentClassifier interface {
	Classify(ctx context.Context, model string, taxonomy []domain.TypeEntry, text string) (domain.ClassificationResult, error)
}

// TaxonomyStore reads and appends document type entries. List seeds the
// store on first use; Append dedupes by exact name and reports whether the
// entry was added.
type TaxonomyStore interface {
	List(ctx context.Context) ([]domain.TypeEntry, error)
	Append(ctx context.Context, entry domain.TypeEntry) ([]domain.TypeEntry, bool, error)
}

// ProgressPublisher emits one pipeline progress event. Publishing never
// blocks and never fails; events reach only observers that are ready.
type ProgressPublisher interface {
	Publish(step domain.ProgressStep, message string)
}

// ProgressStream hands out live event subscriptions for push transports.
type ProgressStream interface {
	Subscribe() (string, <-chan domain.ProgressEvent)
	Unsubscribe(id string)
}
