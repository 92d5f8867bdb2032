// internal/server/server.go
package server

import (
	"context"
	"net/http"

	"hiring-pipeline/internal/common/auth"
	apperrors "hiring-pipeline/internal/common/errors"
	"hiring-pipeline/internal/common/logger"
	"hiring-pipeline/internal/common/observability"
	"hiring-pipeline/internal/forms"
	"hiring-pipeline/internal/pipeline"
	"hiring-pipeline/internal/webhook"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pipeline is the engine surface the HTTP layer depends on.
type Pipeline interface {
	SubmitApplication(ctx context.Context, env *forms.Envelope, meta pipeline.RequestMeta) (*pipeline.SubmitResult, error)
	ProcessGCResult(ctx context.Context, env *forms.Envelope, meta pipeline.RequestMeta) (*pipeline.AssessmentResult, error)
	ProcessSCResult(ctx context.Context, env *forms.Envelope, meta pipeline.RequestMeta) (*pipeline.AssessmentResult, error)
	ProcessAgreement(ctx context.Context, env *forms.Envelope, meta pipeline.RequestMeta) (*pipeline.AgreementResult, error)
	ReviewAssessment(ctx context.Context, assessmentID string, passed bool, meta pipeline.RequestMeta) (*pipeline.ReviewResult, error)
	ScheduleInterview(ctx context.Context, applicationID string, in pipeline.ScheduleInterviewInput, meta pipeline.RequestMeta) (*pipeline.InterviewResult, error)
	CompleteInterview(ctx context.Context, interviewID string, notes string, meta pipeline.RequestMeta) (*pipeline.InterviewResult, error)
	RescheduleInterview(ctx context.Context, interviewID string, in pipeline.ScheduleInterviewInput, meta pipeline.RequestMeta) (*pipeline.InterviewResult, error)
	RecordDecision(ctx context.Context, applicationID, decision, reason string, meta pipeline.RequestMeta) (*pipeline.DecisionResult, error)
	WithdrawApplication(ctx context.Context, applicationID string, meta pipeline.RequestMeta) error
}

// Options wires the server's collaborators.
type Options struct {
	Pipeline          Pipeline
	Verifier          *webhook.Verifier
	Limiter           *webhook.Limiter
	Sessions          auth.SessionVerifier
	Logger            logger.Logger
	Observability     *observability.Observability
	TrustProxyHeaders bool
	MaxBodyBytes      int64
}

// Server is the HTTP surface: four webhook routes, the staff API, health
// and metrics.
type Server struct {
	pipeline     Pipeline
	verifier     *webhook.Verifier
	limiter      *webhook.Limiter
	sessions     auth.SessionVerifier
	logger       logger.Logger
	obs          *observability.Observability
	errors       *apperrors.ErrorHandler
	trustProxy   bool
	maxBodyBytes int64
	mux          *http.ServeMux
}

const defaultMaxBodyBytes = 1 << 20

func New(opts Options) *Server {
	s := &Server{
		pipeline:     opts.Pipeline,
		verifier:     opts.Verifier,
		limiter:      opts.Limiter,
		sessions:     opts.Sessions,
		logger:       opts.Logger,
		obs:          opts.Observability,
		errors:       apperrors.NewErrorHandler(opts.Logger),
		trustProxy:   opts.TrustProxyHeaders,
		maxBodyBytes: opts.MaxBodyBytes,
		mux:          http.NewServeMux(),
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = defaultMaxBodyBytes
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /webhooks/application", s.webhookRoute("application", s.handleApplicationWebhook))
	s.mux.HandleFunc("POST /webhooks/general-competencies", s.webhookRoute("general-competencies", s.handleGCWebhook))
	s.mux.HandleFunc("POST /webhooks/specialized-competencies", s.webhookRoute("specialized-competencies", s.handleSCWebhook))
	s.mux.HandleFunc("POST /webhooks/agreement", s.webhookRoute("agreement", s.handleAgreementWebhook))

	s.mux.HandleFunc("POST /api/assessments/{id}/review", s.staffRoute("review", s.handleReviewAssessment))
	s.mux.HandleFunc("POST /api/applications/{id}/interviews", s.staffRoute("schedule-interview", s.handleScheduleInterview))
	s.mux.HandleFunc("POST /api/interviews/{id}/complete", s.staffRoute("complete-interview", s.handleCompleteInterview))
	s.mux.HandleFunc("POST /api/interviews/{id}/reschedule", s.staffRoute("reschedule-interview", s.handleRescheduleInterview))
	s.mux.HandleFunc("POST /api/applications/{id}/decision", s.staffRoute("decision", s.handleRecordDecision))
	s.mux.HandleFunc("DELETE /api/applications/{id}", s.staffRoute("withdraw", s.handleWithdrawApplication))

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.withRecovery(s.withRequestMetrics(s.mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}
