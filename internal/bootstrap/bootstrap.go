package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/g-g-pletnev/docan/internal/config"
	"github.com/g-g-pletnev/docan/internal/core/domain"
	"github.com/g-g-pletnev/docan/internal/core/ports"
	"github.com/g-g-pletnev/docan/internal/core/usecase"
	"github.com/g-g-pletnev/docan/internal/infrastructure/extractor/office"
	"github.com/g-g-pletnev/docan/internal/infrastructure/extractor/route"
	"github.com/g-g-pletnev/docan/internal/infrastructure/llm/ollama"
	"github.com/g-g-pletnev/docan/internal/infrastructure/ocr"
	"github.com/g-g-pletnev/docan/internal/infrastructure/ocr/poppler"
	"github.com/g-g-pletnev/docan/internal/infrastructure/ocr/tesseract"
	"github.com/g-g-pletnev/docan/internal/infrastructure/progress"
	"github.com/g-g-pletnev/docan/internal/infrastructure/progress/natsrelay"
	"github.com/g-g-pletnev/docan/internal/infrastructure/resilience"
	"github.com/g-g-pletnev/docan/internal/infrastructure/storage/localfs"
	"github.com/g-g-pletnev/docan/internal/infrastructure/taxonomy/jsonfile"
	"github.com/g-g-pletnev/docan/internal/observability/metrics"
)

const serviceName = "docan-api"

type App struct {
	Config config.Config

	IntakeUC  ports.DocumentIntake
	CatalogUC ports.TypeCatalog
	Models    ports.ModelCatalog
	Progress  ports.ProgressStream

	Janitor       *localfs.Janitor
	HTTPMetrics   *metrics.HTTPServerMetrics
	IntakeMetrics *metrics.IntakeMetrics
	WebDir        string

	closeFn func()
}

func New(_ context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	storage, err := localfs.New(cfg.UploadsPath)
	if err != nil {
		return nil, fmt.Errorf("init upload storage: %w", err)
	}
	janitor := localfs.NewJanitor(
		storage,
		time.Duration(cfg.RetentionMaxAgeHours)*time.Hour,
		cfg.RetentionSweepSchedule,
		logger,
	)

	taxonomy := jsonfile.New(cfg.TaxonomyPath, domain.DefaultTaxonomy())

	httpMetrics := metrics.NewHTTPServerMetrics(serviceName)
	intakeMetrics := metrics.NewIntakeMetrics(serviceName, httpMetrics.Registry())

	sinks := []progress.EventSink{progressMetricsSink{metrics: intakeMetrics}}
	var relay *natsrelay.Relay
	if cfg.ProgressNATSURL != "" {
		relay, err = natsrelay.New(cfg.ProgressNATSURL, cfg.ProgressNATSSubject, logger)
		if err != nil {
			return nil, fmt.Errorf("init progress relay: %w", err)
		}
		sinks = append(sinks, relay)
	}
	hub := progress.NewHub(logger, progress.Options{
		ObserverBuffer: cfg.ProgressObserverBuffer,
		Sinks:          sinks,
	})

	var executor *resilience.Executor
	if cfg.BreakerEnabled {
		executor = resilience.NewExecutor(resilience.Config{
			BreakerEnabled:          true,
			BreakerMinRequests:      uint32(cfg.BreakerMinRequests),
			BreakerFailureRatio:     cfg.BreakerFailureRatio,
			BreakerOpenTimeout:      time.Duration(cfg.BreakerOpenTimeoutSeconds) * time.Second,
			BreakerHalfOpenMaxCalls: uint32(cfg.BreakerHalfOpenMaxCalls),
		})
	}
	ollamaClient := ollama.New(cfg.OllamaURL, ollama.Options{
		Timeout:              time.Duration(cfg.OllamaTimeoutSeconds) * time.Second,
		MaxRequestsPerSecond: cfg.OllamaMaxRPS,
		Executor:             executor,
	})

	rasterizer := poppler.NewRasterizer(cfg.PdftoppmBinary, cfg.RasterDPI)
	recognizer := tesseract.NewRecognizer(cfg.TesseractBinary, cfg.OCRLanguages)
	scanned := ocr.NewExtractor(rasterizer, recognizer, storage, hub, logger)
	extractor := route.NewRouter(scanned, office.NewExtractor(), hub)

	intakeUC := usecase.NewIntakeUseCase(storage, extractor, ollamaClient, taxonomy, hub)
	catalogUC := usecase.NewCatalogUseCase(taxonomy)

	webDir := cfg.WebDir
	if webDir != "" {
		if info, err := os.Stat(webDir); err != nil || !info.IsDir() {
			logger.Warn("web dir not found, static hosting disabled", "web_dir", webDir)
			webDir = ""
		}
	}

	return &App{
		Config: cfg,

		IntakeUC:  intakeUC,
		CatalogUC: catalogUC,
		Models:    ollamaClient,
		Progress:  hub,

		Janitor:       janitor,
		HTTPMetrics:   httpMetrics,
		IntakeMetrics: intakeMetrics,
		WebDir:        webDir,

		closeFn: func() {
			janitor.Stop()
			hub.Close()
			if relay != nil {
				relay.Close()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// progressMetricsSink counts published events by step. It rides the hub's
// sink fan-out so the pipeline itself stays metrics-free.
type progressMetricsSink struct {
	metrics *metrics.IntakeMetrics
}

func (s progressMetricsSink) Publish(event domain.ProgressEvent) {
	s.metrics.RecordProgressEvent(serviceName, string(event.Step))
}
