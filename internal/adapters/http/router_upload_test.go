package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/g-g-pletnev/docan/internal/core/domain"
	"github.com/g-g-pletnev/docan/internal/core/ports"
	"github.com/g-g-pletnev/docan/internal/observability/metrics"
)

type intakeFake struct {
	response domain.IntakeResponse
	err      error

	calls int
	file  domain.IncomingFile
	model string
}

func (f *intakeFake) Intake(_ context.Context, file domain.IncomingFile, model string) (domain.IntakeResponse, error) {
	f.calls++
	f.file = file
	f.model = model
	if f.err != nil {
		return domain.IntakeResponse{}, f.err
	}
	return f.response, nil
}

type catalogFake struct {
	entries  []domain.TypeEntry
	appended bool
	err      error

	name        string
	description string
}

func (f *catalogFake) ConfirmType(_ context.Context, name, description string) ([]domain.TypeEntry, bool, error) {
	f.name = name
	f.description = description
	if f.err != nil {
		return nil, false, f.err
	}
	return f.entries, f.appended, nil
}

type modelsFake struct {
	models []string
	err    error
}

func (f *modelsFake) ListModels(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.models, nil
}

type streamFake struct {
	events       chan domain.ProgressEvent
	unsubscribed chan string
}

func (f *streamFake) Subscribe() (string, <-chan domain.ProgressEvent) {
	return "observer-1", f.events
}

func (f *streamFake) Unsubscribe(id string) {
	if f.unsubscribed != nil {
		f.unsubscribed <- id
	}
}

func newRouterForTests(t *testing.T, intake ports.DocumentIntake, catalog ports.TypeCatalog, models ports.ModelCatalog) *Router {
	t.Helper()

	httpMetrics := metrics.NewHTTPServerMetrics("docan-test")
	intakeMetrics := metrics.NewIntakeMetrics("docan-test", httpMetrics.Registry())
	stream := &streamFake{events: make(chan domain.ProgressEvent)}

	router, err := NewRouter(intake, catalog, models, stream, httpMetrics, intakeMetrics, RouterOptions{
		Service:      "docan-test",
		DefaultModel: "gemma3n:e4b-it-fp16",
	})
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return router
}

func postUpload(t *testing.T, router *Router, target string, build func(w *multipart.Writer)) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := buildMultipartBody(t, build)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeJSONBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestUploadReturnsReconciledClassification(t *testing.T) {
	description := "Счёт на оплату товаров или услуг"
	intake := &intakeFake{response: domain.IntakeResponse{
		Type:        "invoice",
		Summary:     "Invoice from Acme for July consulting services.",
		Description: &description,
		IsNewType:   false,
	}}
	router := newRouterForTests(t, intake, &catalogFake{}, &modelsFake{})

	rec := postUpload(t, router, "/upload?model=llama3:8b", func(w *multipart.Writer) {
		part, err := w.CreateFormFile("file", "scan.pdf")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.7 payload")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if intake.model != "llama3:8b" {
		t.Fatalf("expected the query model to reach the pipeline, got %q", intake.model)
	}
	if intake.file.Filename != "scan.pdf" || string(intake.file.Data) != "%PDF-1.7 payload" {
		t.Fatalf("file part mangled: %q %q", intake.file.Filename, intake.file.Data)
	}

	payload := decodeJSONBody(t, rec)
	if payload["type"] != "invoice" {
		t.Fatalf("unexpected type %v", payload["type"])
	}
	if payload["summary"] != "Invoice from Acme for July consulting services." {
		t.Fatalf("unexpected summary %v", payload["summary"])
	}
	if payload["description"] != description {
		t.Fatalf("unexpected description %v", payload["description"])
	}
	if payload["isNewType"] != false {
		t.Fatalf("unexpected isNewType %v", payload["isNewType"])
	}
}

func TestUploadFallsBackToDefaultModel(t *testing.T) {
	intake := &intakeFake{response: domain.IntakeResponse{Type: "report", Summary: "A quarterly report."}}
	router := newRouterForTests(t, intake, &catalogFake{}, &modelsFake{})

	rec := postUpload(t, router, "/upload", func(w *multipart.Writer) {
		part, err := w.CreateFormFile("file", "report.docx")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("docx bytes")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if intake.model != "gemma3n:e4b-it-fp16" {
		t.Fatalf("expected the default model, got %q", intake.model)
	}
}

func TestUploadSerializesUnknownTypeWithNullDescription(t *testing.T) {
	intake := &intakeFake{response: domain.IntakeResponse{
		Type:      "act",
		Summary:   "Acceptance act for completed work.",
		IsNewType: true,
	}}
	router := newRouterForTests(t, intake, &catalogFake{}, &modelsFake{})

	rec := postUpload(t, router, "/upload", func(w *multipart.Writer) {
		part, err := w.CreateFormFile("file", "act.pdf")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("%PDF")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decodeJSONBody(t, rec)
	value, present := payload["description"]
	if !present || value != nil {
		t.Fatalf("expected an explicit null description, got %v (present=%v)", value, present)
	}
	if payload["isNewType"] != true {
		t.Fatalf("unexpected isNewType %v", payload["isNewType"])
	}
}

func TestUploadRejectsBodyWithoutBoundary(t *testing.T) {
	intake := &intakeFake{}
	router := newRouterForTests(t, intake, &catalogFake{}, &modelsFake{})

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader([]byte("not multipart")))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if intake.calls != 0 {
		t.Fatal("pipeline must not start for an unparsable request")
	}

	payload := decodeJSONBody(t, rec)
	if message, _ := payload["error"].(string); message == "" {
		t.Fatal("expected an error message in the body")
	}
}

func TestUploadRejectsBodyWithoutFilePart(t *testing.T) {
	intake := &intakeFake{}
	router := newRouterForTests(t, intake, &catalogFake{}, &modelsFake{})

	rec := postUpload(t, router, "/upload", func(w *multipart.Writer) {
		if err := w.WriteField("comment", "text only"); err != nil {
			t.Fatalf("write field: %v", err)
		}
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if intake.calls != 0 {
		t.Fatal("pipeline must not start without a file part")
	}
}

func TestUploadReportsPipelineFailure(t *testing.T) {
	intake := &intakeFake{err: domain.WrapError(domain.ErrExternalService, "classify document", errors.New("model server offline"))}
	router := newRouterForTests(t, intake, &catalogFake{}, &modelsFake{})

	rec := postUpload(t, router, "/upload", func(w *multipart.Writer) {
		part, err := w.CreateFormFile("file", "scan.pdf")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write([]byte("%PDF")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	})

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decodeJSONBody(t, rec)
	if message, _ := payload["error"].(string); message == "" {
		t.Fatal("expected an error message in the body")
	}
}

func TestUploadRejectsNonPostMethod(t *testing.T) {
	router := newRouterForTests(t, &intakeFake{}, &catalogFake{}, &modelsFake{})

	req := httptest.NewRequest(http.MethodGet, "/upload", nil)
	rec := httptest.NewRecorder()
	router.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
