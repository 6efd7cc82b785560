package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"autoclass/app"
	"autoclass/domain/core"
	"autoclass/domain/dataset"
	"autoclass/domain/prep"
	apperrors "autoclass/internal/errors"
	"autoclass/internal/session"
	"autoclass/ports"
)

// maxUploadBytes caps dataset uploads at 100 MB.
const maxUploadBytes = 100 << 20

// Handler serves the classification pipeline over HTTP. Uploaded datasets
// and finished runs live in the in-memory session store.
type Handler struct {
	pipeline *app.Pipeline
	reader   ports.DatasetReaderPort
	store    *session.Store
}

// NewHandler wires the HTTP handler.
func NewHandler(pipeline *app.Pipeline, reader ports.DatasetReaderPort, store *session.Store) *Handler {
	return &Handler{pipeline: pipeline, reader: reader, store: store}
}

// Router builds the chi router with the standard middleware stack.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)
	r.Route("/datasets", func(r chi.Router) {
		r.Post("/", h.uploadDataset)
		r.Route("/{datasetID}", func(r chi.Router) {
			r.Get("/issues", h.datasetIssues)
			r.Get("/recommendations", h.datasetRecommendations)
			r.Post("/preprocess", h.preprocessDataset)
			r.Post("/train", h.trainDataset)
		})
	})
	r.Route("/runs", func(r chi.Router) {
		r.Get("/{runID}/report", h.runReport)
	})
	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// uploadDataset accepts a multipart CSV or XLSX upload under the "file"
// field and registers the parsed dataset.
func (h *Handler) uploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, apperrors.InvalidInput("upload must be multipart form data with a 'file' field"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperrors.InvalidInput("missing 'file' field"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	name := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	ds, err := h.reader.Read(r.Context(), name, file, ext)
	if err != nil {
		writeError(w, apperrors.DataError("failed to parse dataset", err))
		return
	}

	id := h.store.PutDataset(ds)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"dataset_id": id.String(),
		"name":       ds.Name,
		"rows":       ds.Rows(),
		"columns":    ds.ColumnNames(),
	})
}

// datasetIssues runs issue detection against the ?target= column.
func (h *Handler) datasetIssues(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.lookupDataset(w, r)
	if !ok {
		return
	}
	report, err := h.pipeline.Detect(ds, r.URL.Query().Get("target"))
	if err != nil {
		writeError(w, classifyErr(err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// datasetRecommendations returns the suggested preprocessing plan and model
// shortlist for the ?target= column.
func (h *Handler) datasetRecommendations(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.lookupDataset(w, r)
	if !ok {
		return
	}
	target := r.URL.Query().Get("target")
	report, err := h.pipeline.Detect(ds, target)
	if err != nil {
		writeError(w, classifyErr(err))
		return
	}
	writeJSON(w, http.StatusOK, h.pipeline.Recommend(ds, target, report))
}

// preprocessDataset applies a preprocessing config and registers the cleaned
// dataset under a new ID.
func (h *Handler) preprocessDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.lookupDataset(w, r)
	if !ok {
		return
	}
	var cfg prep.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, apperrors.InvalidInput("invalid preprocessing config"))
		return
	}

	clean, steps, err := h.pipeline.Preprocess(ds, cfg)
	if err != nil {
		writeError(w, classifyErr(err))
		return
	}
	id := h.store.PutDataset(clean)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"dataset_id": id.String(),
		"rows":       clean.Rows(),
		"columns":    clean.ColumnNames(),
		"steps":      steps,
	})
}

type trainRequest struct {
	Target    string       `json:"target"`
	Config    *prep.Config `json:"config,omitempty"`
	Models    []string     `json:"models,omitempty"`
	UseSearch bool         `json:"use_search"`
	CVFolds   int          `json:"cv_folds"`
}

// trainDataset runs the full pipeline and stores the outcome by run ID.
func (h *Handler) trainDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.lookupDataset(w, r)
	if !ok {
		return
	}
	var req trainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("invalid training request"))
		return
	}
	if req.Target == "" {
		writeError(w, apperrors.InvalidInput("target column is required"))
		return
	}

	outcome, err := h.pipeline.Run(r.Context(), app.RunRequest{
		Dataset:   ds,
		Target:    req.Target,
		Config:    req.Config,
		Models:    req.Models,
		UseSearch: req.UseSearch,
		CVFolds:   req.CVFolds,
		Progress: func(name string, index, total int) {
			log.Printf("[API] training %d/%d: %s", index, total, name)
		},
	})
	if err != nil {
		writeError(w, classifyErr(err))
		return
	}

	h.store.PutRun(outcome)
	writeJSON(w, http.StatusOK, outcome)
}

// runReport renders a stored run's report; ?format=html switches from
// markdown to HTML.
func (h *Handler) runReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseRunID(chi.URLParam(r, "runID"))
	if err != nil {
		writeError(w, apperrors.InvalidInput("invalid run ID"))
		return
	}
	outcome, ok := h.store.Run(id)
	if !ok {
		writeError(w, apperrors.NotFound("run"))
		return
	}

	if r.URL.Query().Get("format") == "html" {
		html, err := h.pipeline.RenderHTML(app.RunRequest{Dataset: outcome.Clean}, outcome)
		if err != nil {
			writeError(w, apperrors.ReportError("failed to render report", err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(html)
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(outcome.Report))
}

func (h *Handler) lookupDataset(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	id, err := core.ParseDatasetID(chi.URLParam(r, "datasetID"))
	if err != nil {
		writeError(w, apperrors.InvalidInput("invalid dataset ID"))
		return nil, false
	}
	found, ok := h.store.Dataset(id)
	if !ok {
		writeError(w, apperrors.NotFound("dataset"))
		return nil, false
	}
	return found, true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.CodeInvalidInput, apperrors.CodeDataError:
		status = http.StatusBadRequest
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeTrainingError, apperrors.CodeReportError:
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"code":  apperrors.GetCode(err),
	})
}

// classifyErr maps domain errors onto API error codes.
func classifyErr(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, core.ErrColumnNotFound), errors.Is(err, core.ErrTargetNotFound):
		return apperrors.NotFound("column")
	case errors.Is(err, core.ErrInvalidTestSize):
		return apperrors.InvalidInput(err.Error())
	case core.IsDataError(err):
		return apperrors.DataError(err.Error(), err)
	case errors.Is(err, core.ErrReportFailed):
		return apperrors.ReportError(err.Error(), err)
	default:
		return apperrors.InternalError(err.Error())
	}
}
