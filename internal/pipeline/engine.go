// internal/pipeline/engine.go
package pipeline

import (
	"context"
	"time"

	"hiring-pipeline/internal/common/logger"
	"hiring-pipeline/internal/common/metrics"
	"hiring-pipeline/internal/forms"
	"hiring-pipeline/internal/models"

	"github.com/google/uuid"
)

// Notification templates understood by the dispatcher.
const (
	TemplateGCInvite        = "gc_invite"
	TemplateSCInvite        = "sc_invite"
	TemplateInterviewInvite = "interview_invite"
	TemplateRejection       = "rejection"
	TemplateAgreement       = "agreement"
)

// Notification is one candidate-facing message request. Data carries the
// template's variables (candidate name, position, links).
type Notification struct {
	Template string
	To       string
	Phone    string
	Data     map[string]string
}

// Notifier delivers candidate notifications. Delivery is best-effort; the
// engine never treats a send failure as a transition failure.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// Indexer keeps the application search index current. Best-effort as well.
type Indexer interface {
	IndexApplication(ctx context.Context, app *models.Application, person *models.Person) error
}

// RequestMeta is request provenance recorded on audit entries. UserID is
// empty for webhook-originated transitions.
type RequestMeta struct {
	UserID    string
	IP        string
	UserAgent string
}

// Routing outcomes reported to webhook callers.
const (
	NextStepSendGCAssessment     = "send_gc_assessment"
	NextStepAdvanceToSpecialized = "advance_to_specialized"
	NextStepAdvanceToInterview   = "advance_to_interview"
	NextStepPendingReview        = "pending_review"
	NextStepRejected             = "rejected"
)

// Config carries the pipeline's tunable pass thresholds (0..100, inclusive
// lower bounds).
type Config struct {
	GeneralThreshold     float64
	SpecializedThreshold float64
}

// Engine drives applications through the hiring pipeline. Every operation
// follows the same shape: pre-checks and extraction first, then mutations
// plus their audit entry in a single transaction, then best-effort
// notifications and search indexing after commit.
type Engine struct {
	store    Store
	extract  *forms.Extractor
	notifier Notifier
	indexer  Indexer
	cfg      Config
	logger   logger.Logger

	now   func() time.Time
	newID func() string
}

func NewEngine(store Store, extract *forms.Extractor, notifier Notifier, indexer Indexer, cfg Config, log logger.Logger) *Engine {
	return &Engine{
		store:    store,
		extract:  extract,
		notifier: notifier,
		indexer:  indexer,
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// notify sends a candidate notification and swallows the error. Failures are
// logged and counted by the dispatcher; committed state never unwinds.
func (e *Engine) notify(ctx context.Context, n Notification) bool {
	if e.notifier == nil {
		return false
	}
	if err := e.notifier.Send(ctx, n); err != nil {
		e.logger.WithError(err).Warn("notification send failed", map[string]interface{}{
			"template": n.Template,
		})
		return false
	}
	return true
}

// index refreshes the search document for an application, best-effort.
func (e *Engine) index(ctx context.Context, app *models.Application, person *models.Person) {
	if e.indexer == nil || app == nil {
		return
	}
	if err := e.indexer.IndexApplication(ctx, app, person); err != nil {
		e.logger.WithError(err).Warn("search index update failed", map[string]interface{}{
			"application_id": app.ID,
		})
	}
}

func (e *Engine) recordTransition(action string, to string) {
	metrics.PipelineTransitions.WithLabelValues(action, to).Inc()
}

// auditEntry builds the single audit row a transition writes.
func (e *Engine) auditEntry(meta RequestMeta, actionType models.AuditActionType, action string, personID, applicationID *string, details map[string]interface{}) *models.AuditEntry {
	var userID *string
	if meta.UserID != "" {
		u := meta.UserID
		userID = &u
	}
	return &models.AuditEntry{
		PersonID:      personID,
		ApplicationID: applicationID,
		UserID:        userID,
		Action:        action,
		ActionType:    actionType,
		Details:       details,
		IP:            meta.IP,
		UserAgent:     meta.UserAgent,
		CreatedAt:     e.now(),
	}
}

// candidateData collects the template variables every candidate-facing
// message needs. The dispatcher adds environment-level values (portal URL,
// sender identity) itself.
func (e *Engine) candidateData(p *models.Person, app *models.Application) map[string]string {
	data := map[string]string{
		"firstName": p.FirstName,
		"lastName":  p.LastName,
		"fullName":  p.FullName(),
	}
	if app != nil {
		data["position"] = app.Position
		data["applicationId"] = app.ID
	}
	return data
}

func strPtr(s string) *string { return &s }
