// Package httpadapter exposes the intake pipeline over HTTP: document
// upload, taxonomy confirmation, model discovery and the progress
// socket.
package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/g-g-pletnev/docan/internal/core/ports"
	"github.com/g-g-pletnev/docan/internal/observability/metrics"
)

type Router struct {
	intakeUC      ports.DocumentIntake
	catalogUC     ports.TypeCatalog
	models        ports.ModelCatalog
	progress      ports.ProgressStream
	httpMetrics   *metrics.HTTPServerMetrics
	intakeMetrics *metrics.IntakeMetrics
	validator     *contractValidator

	service      string
	defaultModel string
	webDir       string
}

// RouterOptions carries the request-independent knobs. WebDir is the
// static frontend root; empty disables static hosting.
type RouterOptions struct {
	Service      string
	DefaultModel string
	WebDir       string
}

func NewRouter(
	intakeUC ports.DocumentIntake,
	catalogUC ports.TypeCatalog,
	models ports.ModelCatalog,
	progress ports.ProgressStream,
	httpMetrics *metrics.HTTPServerMetrics,
	intakeMetrics *metrics.IntakeMetrics,
	opts RouterOptions,
) (*Router, error) {
	validator, err := newContractValidator()
	if err != nil {
		return nil, err
	}
	return &Router{
		intakeUC:      intakeUC,
		catalogUC:     catalogUC,
		models:        models,
		progress:      progress,
		httpMetrics:   httpMetrics,
		intakeMetrics: intakeMetrics,
		validator:     validator,
		service:       opts.Service,
		defaultModel:  opts.DefaultModel,
		webDir:        opts.WebDir,
	}, nil
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/upload", rt.uploadDocument)
	mux.HandleFunc("/models", rt.listModels)
	mux.HandleFunc("/confirm-type", rt.confirmType)
	mux.Handle("/ocr-progress", progressHandler(rt.progress))
	mux.Handle("/metrics", rt.httpMetrics.Handler())
	mux.HandleFunc("/openapi.json", rt.apiContract)
	if rt.webDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(rt.webDir)))
	}

	handler := rt.httpMetrics.Middleware(rt.service, mux)
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read request body"})
		return
	}

	file, err := extractUploadedFile(body, r.Header.Get("Content-Type"))
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	model := r.URL.Query().Get("model")
	if model == "" {
		model = rt.defaultModel
	}

	rt.intakeMetrics.StartIntake()
	start := time.Now()
	// The pipeline runs to completion once parsing succeeds; a client
	// disconnect must not abort a half-done classification.
	response, err := rt.intakeUC.Intake(context.WithoutCancel(r.Context()), file, model)
	rt.intakeMetrics.FinishIntake(rt.service, time.Since(start), err)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (rt *Router) listModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	models, err := rt.models.ListModels(r.Context())
	if err != nil {
		rt.intakeMetrics.RecordModelListingFailure(rt.service)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if models == nil {
		models = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"models": models})
}

func (rt *Router) confirmType(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := rt.validator.validateRequest(r.Context(), r); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var req struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	types, appended, err := rt.catalogUC.ConfirmType(r.Context(), req.Type, req.Description)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	rt.intakeMetrics.RecordTypeConfirmation(rt.service, appended)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"types":   types,
	})
}

func (rt *Router) apiContract(w http.ResponseWriter, _ *http.Request) {
	payload, err := rt.validator.contractJSON()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
