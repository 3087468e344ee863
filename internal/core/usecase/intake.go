package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/g-g-pletnev/docan/internal/core/domain"
	"github.com/g-g-pletnev/docan/internal/core/ports"
)

// classifierTextLimit bounds how much extracted text reaches the model.
const classifierTextLimit = 3000

// IntakeUseCase runs one upload through persist, extract, classify and
// reconcile, reporting each stage to progress observers. Any stage
// failure emits a terminal error event and surfaces to the caller;
// stages are strictly sequential and never retried.
type IntakeUseCase struct {
	store      ports.UploadStore
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	taxonomy   ports.TaxonomyStore
	progress   ports.ProgressPublisher
}

func NewIntakeUseCase(
	store ports.UploadStore,
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	taxonomy ports.TaxonomyStore,
	progress ports.ProgressPublisher,
) *IntakeUseCase {
	return &IntakeUseCase{
		store:      store,
		extractor:  extractor,
		classifier: classifier,
		taxonomy:   taxonomy,
		progress:   progress,
	}
}

func (uc *IntakeUseCase) Intake(ctx context.Context, file domain.IncomingFile, model string) (domain.IntakeResponse, error) {
	job, err := uc.persist(ctx, file)
	if err != nil {
		return domain.IntakeResponse{}, uc.fail(err)
	}
	uc.progress.Publish(domain.StepUpload, fmt.Sprintf("file received: %s", filepath.Base(job.StoredFilePath)))

	if err := uc.extract(ctx, job); err != nil {
		return domain.IntakeResponse{}, uc.fail(err)
	}

	uc.progress.Publish(domain.StepLLM, fmt.Sprintf("classifying with %s", model))
	entries, err := uc.listTaxonomy(ctx)
	if err != nil {
		return domain.IntakeResponse{}, uc.fail(err)
	}
	if err := uc.classify(ctx, job, model, entries); err != nil {
		return domain.IntakeResponse{}, uc.fail(err)
	}

	uc.progress.Publish(domain.StepProcess, "reconciling with taxonomy")
	response := uc.reconcile(job.Classification, entries)

	uc.progress.Publish(domain.StepDone, fmt.Sprintf("done: %s", response.Type))
	return response, nil
}

func (uc *IntakeUseCase) persist(ctx context.Context, file domain.IncomingFile) (*domain.UploadJob, error) {
	path, err := uc.store.SaveUpload(ctx, file.Filename, file.Data)
	if err != nil {
		return nil, fmt.Errorf("persist upload: %w", err)
	}
	return &domain.UploadJob{
		OriginalFileName: file.Filename,
		StoredFilePath:   path,
	}, nil
}

func (uc *IntakeUseCase) extract(ctx context.Context, job *domain.UploadJob) error {
	text, err := uc.extractor.Extract(ctx, job.StoredFilePath)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	// Empty text is legal: a degraded OCR run classifies an empty document.
	job.ExtractedText = truncateRunes(text, classifierTextLimit)
	return nil
}

func (uc *IntakeUseCase) listTaxonomy(ctx context.Context) ([]domain.TypeEntry, error) {
	entries, err := uc.taxonomy.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	return entries, nil
}

func (uc *IntakeUseCase) classify(ctx context.Context, job *domain.UploadJob, model string, taxonomy []domain.TypeEntry) error {
	classification, err := uc.classifier.Classify(ctx, model, taxonomy, job.ExtractedText)
	if err != nil {
		return fmt.Errorf("classify document: %w", err)
	}
	job.Classification = classification
	return nil
}

// reconcile looks the returned type up case-insensitively. The store is
// never updated here; new types persist only through explicit
// confirmation.
func (uc *IntakeUseCase) reconcile(classification domain.ClassificationResult, taxonomy []domain.TypeEntry) domain.IntakeResponse {
	response := domain.IntakeResponse{
		Type:      classification.Type,
		Summary:   classification.Summary,
		IsNewType: true,
	}

	match, found := lo.Find(taxonomy, func(entry domain.TypeEntry) bool {
		return strings.EqualFold(entry.Name, classification.Type)
	})
	if found {
		description := match.Description
		response.Description = &description
		response.IsNewType = false
	}
	return response
}

// fail reports a stage failure to observers before surfacing it.
func (uc *IntakeUseCase) fail(err error) error {
	uc.progress.Publish(domain.StepError, err.Error())
	return err
}

// truncateRunes bounds text to limit runes without splitting a character.
func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
