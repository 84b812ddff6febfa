package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	apierrors "reqcheck/internal/errors"
	"reqcheck/internal/exporter"
	"reqcheck/internal/infrastructure"
	"reqcheck/internal/loader"
	"reqcheck/internal/reconcile"
	"reqcheck/internal/session"
	"reqcheck/pkg/contracts/domain"
)

// ErrNoResult is returned when a session asks for reconciliation output
// before any run has completed.
var ErrNoResult = errors.New("no reconciliation result for this session")

// Upload is one file handed to the service by the transport layer.
type Upload struct {
	Name string
	Data []byte
}

// ReconcileService runs the pipeline for a session and serves its stored
// output. All state lives in the session store, never on the service.
type ReconcileService struct {
	loader   *loader.Loader
	pipeline *reconcile.Pipeline
	sessions *session.Store
	metrics  *infrastructure.Metrics
	logger   *slog.Logger
}

// NewReconcileService creates the reconciliation service.
func NewReconcileService(ld *loader.Loader, pipeline *reconcile.Pipeline, sessions *session.Store, metrics *infrastructure.Metrics, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		loader:   ld,
		pipeline: pipeline,
		sessions: sessions,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "reconcile_service")),
	}
}

// Reconcile loads both uploads, runs the pipeline and stores the result on
// the caller's session. The previous result, if any, is replaced.
func (s *ReconcileService) Reconcile(ctx context.Context, sessionID string, historical, current Upload) (*domain.Result, error) {
	start := time.Now()

	historicalDS, err := s.loader.Load(historical.Name, historical.Data)
	if err != nil {
		s.metrics.ReconciliationsTotal.WithLabelValues("load_error").Inc()
		return nil, wrapLoadError(historical.Name, err)
	}
	currentDS, err := s.loader.Load(current.Name, current.Data)
	if err != nil {
		s.metrics.ReconciliationsTotal.WithLabelValues("load_error").Inc()
		return nil, wrapLoadError(current.Name, err)
	}

	result, err := s.pipeline.Run(ctx, historicalDS, currentDS)
	if err != nil {
		s.metrics.ReconciliationsTotal.WithLabelValues("validation_error").Inc()
		return nil, apierrors.NewSchemaError("uploaded datasets failed validation", err)
	}

	if err := s.sessions.SetResult(sessionID, result); err != nil {
		return nil, err
	}

	s.metrics.ReconciliationsTotal.WithLabelValues("success").Inc()
	s.metrics.RowsProcessedTotal.WithLabelValues(string(domain.KindHistorical)).Add(float64(result.Historical.Len()))
	s.metrics.RowsProcessedTotal.WithLabelValues(string(domain.KindCurrent)).Add(float64(result.Current.Len()))
	for _, w := range result.Warnings {
		s.metrics.RowsDroppedTotal.Add(float64(w.Dropped))
	}
	s.metrics.ReconcileDuration.Observe(time.Since(start).Seconds())

	s.logger.InfoContext(ctx, "reconciliation stored",
		slog.String("session_id", sessionID),
		slog.Duration("elapsed", time.Since(start)))

	return result, nil
}

// Result returns the session's stored reconciliation output.
func (s *ReconcileService) Result(ctx context.Context, sessionID string) (*domain.Result, error) {
	result, err := s.sessions.Result(sessionID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrNoResult
	}
	return result, nil
}

// Export streams the named report in the requested format. The caller must
// have set response headers first; the returned error only reports encoding
// failures after the result lookup succeeded.
func (s *ReconcileService) Export(ctx context.Context, sessionID, reportName string, format exporter.Format, w io.Writer) error {
	result, err := s.Result(ctx, sessionID)
	if err != nil {
		return err
	}

	report, err := exporter.BuildReport(reportName, result)
	if err != nil {
		return err
	}

	s.metrics.ExportsTotal.WithLabelValues(string(format)).Inc()

	if format == exporter.FormatExcel {
		if err := exporter.NewExcelWriter().Write(w, report); err != nil {
			return apierrors.NewExportError("excel encoding failed", err)
		}
		return nil
	}
	if err := exporter.NewCSVWriter().Write(w, report); err != nil {
		return apierrors.NewExportError("csv encoding failed", err)
	}
	return nil
}

// wrapLoadError tags a loader failure with its taxonomy type. The original
// typed error stays reachable through Unwrap.
func wrapLoadError(name string, err error) error {
	var limitErr *loader.TooManyRowsError
	if errors.As(err, &limitErr) {
		return apierrors.NewAppError(apierrors.ErrTypeValidation,
			"upload "+name+" exceeds the row limit", err)
	}
	return apierrors.NewFileLoadError("could not load "+name, err)
}
