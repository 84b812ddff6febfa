package http

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/exporter"
	"reqcheck/internal/loader"
	"reqcheck/internal/middleware"
	"reqcheck/internal/reconcile"
	"reqcheck/internal/services"
	"reqcheck/internal/session"
	"reqcheck/pkg/contracts/domain"
)

// Multipart form field names for the two uploads.
const (
	formFieldHistorical = "historical"
	formFieldCurrent    = "current"
)

// ReconcileHandler exposes the reconciliation pipeline over HTTP.
type ReconcileHandler struct {
	service      *services.ReconcileService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
	maxFileSize  int64
	debug        bool
}

// NewReconcileHandler creates a reconcile handler.
func NewReconcileHandler(service *services.ReconcileService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxFileSize int64, debug bool) *ReconcileHandler {
	return &ReconcileHandler{
		service:      service,
		logger:       logger.With(slog.String("handler", "reconcile")),
		errorHandler: errorHandler,
		validate:     validator.New(),
		maxFileSize:  maxFileSize,
		debug:        debug,
	}
}

// Routes returns the reconciliation routes. All of them require an
// authenticated session upstream.
func (h *ReconcileHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Reconcile)
	r.Get("/summary", h.GetSummary)
	r.Get("/with-history", h.GetWithHistory)
	r.Get("/new", h.GetNewRequests)

	return r
}

// ExportRoutes returns the download routes, mounted separately so the
// content type is not forced to JSON.
func (h *ReconcileHandler) ExportRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/{report}", h.Export)
	return r
}

// Reconcile handles POST /api/reconcile: two multipart uploads in, summary
// out. The full result is stored on the caller's session for the view and
// export endpoints.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return
	}

	// Two files plus form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxFileSize+1024*1024)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUploadTooLarge)
		return
	}
	defer r.MultipartForm.RemoveAll()

	historical, err := h.formUpload(r, formFieldHistorical)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	current, err := h.formUpload(r, formFieldCurrent)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "reconciliation requested",
		slog.String("session_id", sess.ID),
		slog.String("historical_file", historical.Name),
		slog.String("current_file", current.Name))

	result, err := h.service.Reconcile(r.Context(), sess.ID, historical, current)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapDomainError(err))
		return
	}

	resp := map[string]interface{}{
		"status":   "success",
		"summary":  result.Summary,
		"warnings": result.Warnings,
	}
	if h.debug {
		resp["debug"] = map[string]interface{}{
			"historical_columns": result.Historical.Columns,
			"current_columns":    result.Current.Columns,
		}
	}

	render.JSON(w, r, resp)
}

// formUpload reads one named file out of the multipart form.
func (h *ReconcileHandler) formUpload(r *http.Request, field string) (services.Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return services.Upload{}, apierrors.NewWithDetails(http.StatusBadRequest, "MISSING_FILE",
			"Required upload file is missing", map[string]string{"field": field})
	}
	defer file.Close()

	data, err := readUpload(file, h.maxFileSize)
	if err != nil {
		return services.Upload{}, apierrors.ErrUploadTooLarge
	}

	return services.Upload{Name: header.Filename, Data: data}, nil
}

func readUpload(file multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errors.New("upload exceeds size limit")
	}
	return data, nil
}

// GetSummary handles GET /api/reconcile/summary
func (h *ReconcileHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	result, ok := h.sessionResult(w, r)
	if !ok {
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"summary":  result.Summary,
		"warnings": result.Warnings,
	})
}

// listRequest carries the filter and paging parameters of the view routes.
type listRequest struct {
	Search   string `validate:"max=128"`
	Issue    string `validate:"max=32"`
	Page     int    `validate:"min=1"`
	PageSize int    `validate:"min=1,max=500"`
}

func (h *ReconcileHandler) parseListRequest(r *http.Request) (listRequest, error) {
	req := listRequest{
		Search:   strings.TrimSpace(r.URL.Query().Get("search")),
		Issue:    strings.TrimSpace(r.URL.Query().Get("issue")),
		Page:     1,
		PageSize: 100,
	}
	if p := r.URL.Query().Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return req, apierrors.ErrValidation("page", "must be an integer")
		}
		req.Page = n
	}
	if p := r.URL.Query().Get("page_size"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return req, apierrors.ErrValidation("page_size", "must be an integer")
		}
		req.PageSize = n
	}
	if err := h.validate.Struct(&req); err != nil {
		return req, apierrors.InvalidRequestWithError(err)
	}
	return req, nil
}

// GetWithHistory handles GET /api/reconcile/with-history. Supports
// searching by name or identifier and filtering by the current issue type.
func (h *ReconcileHandler) GetWithHistory(w http.ResponseWriter, r *http.Request) {
	result, ok := h.sessionResult(w, r)
	if !ok {
		return
	}

	req, err := h.parseListRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filtered := filterJoined(result.Joined, req.Search, req.Issue)

	view := *result
	view.Joined = filtered
	report, buildErr := exporter.BuildReport(exporter.ReportWithHistory, &view)
	if buildErr != nil {
		h.errorHandler.HandleError(w, r, buildErr)
		return
	}

	page, total := paginate(report.Rows, req.Page, req.PageSize)

	render.JSON(w, r, map[string]interface{}{
		"status":            "success",
		"columns":           report.Headers,
		"rows":              page,
		"total_rows":        total,
		"page":              req.Page,
		"page_size":         req.PageSize,
		"distinct_students": len(reconcile.WithHistoryIdentifiers(filtered)),
	})
}

// GetNewRequests handles GET /api/reconcile/new
func (h *ReconcileHandler) GetNewRequests(w http.ResponseWriter, r *http.Request) {
	result, ok := h.sessionResult(w, r)
	if !ok {
		return
	}

	req, err := h.parseListRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view := *result
	view.NewRequests = filterDataset(result.NewRequests, req.Search, req.Issue)
	report, buildErr := exporter.BuildReport(exporter.ReportNew, &view)
	if buildErr != nil {
		h.errorHandler.HandleError(w, r, buildErr)
		return
	}

	page, total := paginate(report.Rows, req.Page, req.PageSize)

	render.JSON(w, r, map[string]interface{}{
		"status":            "success",
		"columns":           report.Headers,
		"rows":              page,
		"total_rows":        total,
		"page":              req.Page,
		"page_size":         req.PageSize,
		"distinct_students": len(view.NewRequests.DistinctIdentifiers()),
	})
}

// exportRequest validates the download parameters.
type exportRequest struct {
	Report string `validate:"required,oneof=with-history new"`
	Format string `validate:"required,oneof=csv xlsx"`
}

// Export handles GET /api/export/{report}?format=csv|xlsx
func (h *ReconcileHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return
	}

	req := exportRequest{
		Report: chi.URLParam(r, "report"),
		Format: r.URL.Query().Get("format"),
	}
	if req.Format == "" {
		req.Format = string(exporter.FormatCSV)
	}
	if err := h.validate.Struct(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	format := exporter.Format(req.Format)

	// The result lookup has to happen before headers are committed.
	if _, err := h.service.Result(r.Context(), sess.ID); err != nil {
		h.errorHandler.HandleError(w, r, mapDomainError(err))
		return
	}

	filename := exporter.FileName("relatorio_"+strings.ReplaceAll(req.Report, "-", "_"), format, time.Now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := h.service.Export(r.Context(), sess.ID, req.Report, format, w); err != nil {
		// Headers are already out; log and cut the stream.
		h.logger.ErrorContext(r.Context(), "export stream failed",
			slog.String("report", req.Report),
			slog.String("error", err.Error()))
	}
}

// sessionResult fetches the stored result for the request's session,
// handling the error responses.
func (h *ReconcileHandler) sessionResult(w http.ResponseWriter, r *http.Request) (*domain.Result, bool) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnauthorized)
		return nil, false
	}

	result, err := h.service.Result(r.Context(), sess.ID)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapDomainError(err))
		return nil, false
	}
	return result, true
}

// filterJoined narrows joined records by name/identifier search and current
// issue type.
func filterJoined(joined []domain.JoinedRecord, search, issue string) []domain.JoinedRecord {
	if search == "" && issue == "" {
		return joined
	}
	search = strings.ToLower(search)

	var out []domain.JoinedRecord
	for _, jr := range joined {
		if !matchesRecord(jr.Current, search, issue) {
			continue
		}
		out = append(out, jr)
	}
	return out
}

// filterDataset narrows a current-kind dataset the same way.
func filterDataset(ds domain.Dataset, search, issue string) domain.Dataset {
	if search == "" && issue == "" {
		return ds
	}
	search = strings.ToLower(search)

	out := ds
	out.Rows = nil
	for _, row := range ds.Rows {
		if matchesRecord(row, search, issue) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

func matchesRecord(row domain.Record, loweredSearch, issue string) bool {
	if loweredSearch != "" {
		name := strings.ToLower(row.Get(domain.FieldFullName))
		id := row.Get(domain.FieldIdentifier)
		if !strings.Contains(name, loweredSearch) && !strings.Contains(id, loweredSearch) {
			return false
		}
	}
	if issue != "" && !strings.EqualFold(row.Get(domain.FieldIssueType), issue) {
		return false
	}
	return true
}

// paginate slices rows for one page, returning the page and the total count.
func paginate(rows [][]string, page, pageSize int) ([][]string, int) {
	total := len(rows)
	start := (page - 1) * pageSize
	if start >= total {
		return [][]string{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return rows[start:end], total
}

// mapDomainError translates typed pipeline and session errors into API
// errors; anything unrecognized passes through to the generic handler.
func mapDomainError(err error) error {
	var loadErr *loader.FileLoadError
	if errors.As(err, &loadErr) {
		return apierrors.FileLoadAPIError(loadErr.File, err)
	}

	var rowsErr *loader.TooManyRowsError
	if errors.As(err, &rowsErr) {
		return apierrors.NewWithDetails(http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE",
			err.Error(), map[string]interface{}{"file": rowsErr.File, "rows": rowsErr.Rows, "max_rows": rowsErr.MaxRows})
	}

	var missingID *reconcile.MissingIdentifierColumnError
	if errors.As(err, &missingID) {
		return apierrors.MissingIdentifierAPIError(missingID.File, missingID.Columns)
	}

	var dupCol *reconcile.DuplicateColumnError
	if errors.As(err, &dupCol) {
		return apierrors.DuplicateColumnAPIError(dupCol.File, dupCol.Canonical, dupCol.RawColumns)
	}

	var schemaErr *reconcile.SchemaValidationError
	if errors.As(err, &schemaErr) {
		missing := make(map[string][]string, len(schemaErr.Missing))
		for kind, fields := range schemaErr.Missing {
			missing[string(kind)] = fields
		}
		return apierrors.SchemaValidationAPIError(missing)
	}

	if errors.Is(err, session.ErrNotFound) {
		return apierrors.ErrSessionExpired
	}
	if errors.Is(err, services.ErrNoResult) {
		return apierrors.ErrNoResult
	}
	if errors.Is(err, exporter.ErrUnknownReport) {
		return apierrors.ErrReportNotFound
	}

	return err
}
