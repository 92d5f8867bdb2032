// internal/pipeline/staff.go
package pipeline

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	apperrors "hiring-pipeline/internal/common/errors"
	"hiring-pipeline/internal/models"
)

// Decision values accepted by RecordDecision.
const (
	DecisionAccepted = "ACCEPTED"
	DecisionRejected = "REJECTED"
)

// ReviewResult is the outcome of a manual assessment review.
type ReviewResult struct {
	AssessmentID  string        `json:"assessmentId"`
	ApplicationID string        `json:"applicationId"`
	Passed        bool          `json:"passed"`
	Stage         models.Stage  `json:"stage"`
	Status        models.Status `json:"status"`
}

// InterviewResult is the outcome of an interview scheduling operation.
type InterviewResult struct {
	InterviewID   string       `json:"interviewId"`
	ApplicationID string       `json:"applicationId"`
	Stage         models.Stage `json:"stage"`
	EmailSent     bool         `json:"emailSent"`
}

// DecisionResult is the outcome of a hiring decision.
type DecisionResult struct {
	ApplicationID string        `json:"applicationId"`
	Stage         models.Stage  `json:"stage"`
	Status        models.Status `json:"status"`
}

// ScheduleInterviewInput carries the staff scheduling request.
type ScheduleInterviewInput struct {
	InterviewerID  string     `json:"interviewerId"`
	SchedulingLink string     `json:"schedulingLink"`
	ScheduledAt    *time.Time `json:"scheduledAt,omitempty"`
}

// ReviewAssessment records the one-shot pass/fail outcome of an unreviewed
// assessment and moves the owning application accordingly.
func (e *Engine) ReviewAssessment(ctx context.Context, assessmentID string, passed bool, meta RequestMeta) (*ReviewResult, error) {
	assessment, err := e.store.Assessments().GetByID(ctx, assessmentID)
	if err != nil {
		return nil, wrapStoreErr("lookup assessment", err)
	}
	if assessment == nil {
		return nil, apperrors.NewNotFoundError("assessment", assessmentID)
	}
	if assessment.Reviewed() {
		return nil, apperrors.NewAlreadyReviewedError(assessmentID)
	}

	app, err := e.store.Applications().GetByID(ctx, assessment.ApplicationID)
	if err != nil {
		return nil, wrapStoreErr("lookup application", err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("application", assessment.ApplicationID)
	}
	if !app.Open() {
		return nil, apperrors.NewStageMismatchError("application is no longer active")
	}

	var person *models.Person
	now := e.now()
	err = e.store.WithTx(ctx, func(tx Store) error {
		if txErr := tx.Assessments().SetReview(ctx, assessment.ID, passed, meta.UserID, now); txErr != nil {
			return txErr
		}

		actionType := models.AuditStatusChange
		if passed {
			actionType = models.AuditStageChange
			if app.CurrentStage.Before(models.StageInterview) {
				app.CurrentStage = models.StageInterview
				if txErr := tx.Applications().SetStage(ctx, app.ID, app.CurrentStage); txErr != nil {
					return txErr
				}
			}
		} else {
			app.Status = models.StatusRejected
			reason := "assessment failed on manual review"
			app.RejectionReason = &reason
			if txErr := tx.Applications().SetStatus(ctx, app.ID, app.Status, app.RejectionReason); txErr != nil {
				return txErr
			}
		}

		var txErr error
		person, txErr = tx.Persons().GetByID(ctx, app.PersonID)
		if txErr != nil {
			return txErr
		}

		return tx.Audit().Append(ctx, e.auditEntry(meta, actionType, "assessment.reviewed", &app.PersonID, &app.ID, map[string]interface{}{
			"assessmentId":   assessment.ID,
			"assessmentType": assessment.Type,
			"passed":         passed,
			"toStage":        app.CurrentStage,
			"toStatus":       app.Status,
		}))
	})
	if err != nil {
		return nil, wrapStoreErr("review assessment", err)
	}

	if passed {
		e.recordTransition("review", string(app.CurrentStage))
	} else {
		e.recordTransition("review", string(app.Status))
		if person != nil {
			e.notify(ctx, Notification{
				Template: TemplateRejection,
				To:       person.Email,
				Data:     e.candidateData(person, app),
			})
		}
	}
	e.index(ctx, app, person)

	return &ReviewResult{
		AssessmentID:  assessment.ID,
		ApplicationID: app.ID,
		Passed:        passed,
		Stage:         app.CurrentStage,
		Status:        app.Status,
	}, nil
}

// ScheduleInterview creates the application's single open interview and
// sends the candidate the scheduling link.
func (e *Engine) ScheduleInterview(ctx context.Context, applicationID string, in ScheduleInterviewInput, meta RequestMeta) (*InterviewResult, error) {
	if in.InterviewerID == "" {
		return nil, apperrors.NewFieldMissingError("interviewerId")
	}
	if !validHTTPURL(in.SchedulingLink) {
		return nil, apperrors.NewFieldInvalidError("schedulingLink", "must be a valid http(s) URL")
	}

	app, err := e.store.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return nil, wrapStoreErr("lookup application", err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("application", applicationID)
	}
	if !app.Open() {
		return nil, apperrors.NewStageMismatchError("application is no longer active")
	}
	if models.StageInterview.Before(app.CurrentStage) {
		return nil, apperrors.NewStageMismatchError("application is past the interview stage")
	}

	now := e.now()
	interview := &models.Interview{
		ID:             e.newID(),
		ApplicationID:  app.ID,
		InterviewerID:  in.InterviewerID,
		SchedulingLink: in.SchedulingLink,
		ScheduledAt:    in.ScheduledAt,
		Outcome:        models.InterviewPending,
		CreatedAt:      now,
	}

	err = e.store.WithTx(ctx, func(tx Store) error {
		if app.CurrentStage.Before(models.StageInterview) {
			app.CurrentStage = models.StageInterview
			if txErr := tx.Applications().SetStage(ctx, app.ID, app.CurrentStage); txErr != nil {
				return txErr
			}
		}
		if txErr := tx.Interviews().Create(ctx, interview); txErr != nil {
			return txErr
		}
		return tx.Audit().Append(ctx, e.auditEntry(meta, models.AuditCreate, "interview.scheduled", &app.PersonID, &app.ID, map[string]interface{}{
			"interviewId":   interview.ID,
			"interviewerId": interview.InterviewerID,
			"toStage":       app.CurrentStage,
		}))
	})
	if errors.Is(err, ErrOpenInterviewExists) {
		return nil, apperrors.NewInterviewConflictError("an open interview already exists for this application")
	}
	if err != nil {
		return nil, wrapStoreErr("schedule interview", err)
	}

	e.recordTransition("schedule_interview", string(app.CurrentStage))
	emailSent := e.sendInterviewInvite(ctx, app, interview, meta)

	return &InterviewResult{
		InterviewID:   interview.ID,
		ApplicationID: app.ID,
		Stage:         app.CurrentStage,
		EmailSent:     emailSent,
	}, nil
}

// CompleteInterview records the outcome of the application's open interview.
func (e *Engine) CompleteInterview(ctx context.Context, interviewID string, notes string, meta RequestMeta) (*InterviewResult, error) {
	interview, err := e.store.Interviews().GetByID(ctx, interviewID)
	if err != nil {
		return nil, wrapStoreErr("lookup interview", err)
	}
	if interview == nil {
		return nil, apperrors.NewNotFoundError("interview", interviewID)
	}
	if !interview.Open() {
		return nil, apperrors.NewInterviewConflictError("interview is already completed")
	}

	app, err := e.store.Applications().GetByID(ctx, interview.ApplicationID)
	if err != nil {
		return nil, wrapStoreErr("lookup application", err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("application", interview.ApplicationID)
	}

	now := e.now()
	err = e.store.WithTx(ctx, func(tx Store) error {
		if txErr := tx.Interviews().Complete(ctx, interview.ID, notes, now); txErr != nil {
			return txErr
		}
		return tx.Audit().Append(ctx, e.auditEntry(meta, models.AuditUpdate, "interview.completed", &app.PersonID, &app.ID, map[string]interface{}{
			"interviewId": interview.ID,
			"notes":       notes != "",
		}))
	})
	if err != nil {
		return nil, wrapStoreErr("complete interview", err)
	}

	return &InterviewResult{
		InterviewID:   interview.ID,
		ApplicationID: app.ID,
		Stage:         app.CurrentStage,
	}, nil
}

// RescheduleInterview updates the open interview's scheduling details and
// re-sends the invitation.
func (e *Engine) RescheduleInterview(ctx context.Context, interviewID string, in ScheduleInterviewInput, meta RequestMeta) (*InterviewResult, error) {
	if !validHTTPURL(in.SchedulingLink) {
		return nil, apperrors.NewFieldInvalidError("schedulingLink", "must be a valid http(s) URL")
	}

	interview, err := e.store.Interviews().GetByID(ctx, interviewID)
	if err != nil {
		return nil, wrapStoreErr("lookup interview", err)
	}
	if interview == nil {
		return nil, apperrors.NewNotFoundError("interview", interviewID)
	}
	if !interview.Open() {
		return nil, apperrors.NewInterviewConflictError("interview is already completed")
	}

	app, err := e.store.Applications().GetByID(ctx, interview.ApplicationID)
	if err != nil {
		return nil, wrapStoreErr("lookup application", err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("application", interview.ApplicationID)
	}

	err = e.store.WithTx(ctx, func(tx Store) error {
		if txErr := tx.Interviews().Reschedule(ctx, interview.ID, in.SchedulingLink, in.ScheduledAt); txErr != nil {
			return txErr
		}
		return tx.Audit().Append(ctx, e.auditEntry(meta, models.AuditUpdate, "interview.rescheduled", &app.PersonID, &app.ID, map[string]interface{}{
			"interviewId": interview.ID,
		}))
	})
	if err != nil {
		return nil, wrapStoreErr("reschedule interview", err)
	}

	interview.SchedulingLink = in.SchedulingLink
	interview.ScheduledAt = in.ScheduledAt
	emailSent := e.sendInterviewInvite(ctx, app, interview, meta)

	return &InterviewResult{
		InterviewID:   interview.ID,
		ApplicationID: app.ID,
		Stage:         app.CurrentStage,
		EmailSent:     emailSent,
	}, nil
}

// RecordDecision records the hiring decision. Acceptance moves the
// application to the agreement stage; rejection requires a reason and leaves
// the stage untouched.
func (e *Engine) RecordDecision(ctx context.Context, applicationID, decision, reason string, meta RequestMeta) (*DecisionResult, error) {
	decision = strings.ToUpper(strings.TrimSpace(decision))
	if decision != DecisionAccepted && decision != DecisionRejected {
		return nil, apperrors.NewFieldInvalidError("decision", "must be ACCEPTED or REJECTED")
	}
	if decision == DecisionRejected && strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewDecisionIncompleteError()
	}

	app, err := e.store.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return nil, wrapStoreErr("lookup application", err)
	}
	if app == nil {
		return nil, apperrors.NewNotFoundError("application", applicationID)
	}
	if !app.Open() {
		return nil, apperrors.NewStageMismatchError("application is no longer active")
	}

	var person *models.Person
	err = e.store.WithTx(ctx, func(tx Store) error {
		if decision == DecisionAccepted {
			app.Status = models.StatusAccepted
			app.CurrentStage = models.StageAgreement
			if txErr := tx.Applications().SetStageStatus(ctx, app.ID, app.CurrentStage, app.Status); txErr != nil {
				return txErr
			}
		} else {
			app.Status = models.StatusRejected
			app.RejectionReason = &reason
			if txErr := tx.Applications().SetStatus(ctx, app.ID, app.Status, app.RejectionReason); txErr != nil {
				return txErr
			}
		}

		var txErr error
		person, txErr = tx.Persons().GetByID(ctx, app.PersonID)
		if txErr != nil {
			return txErr
		}

		details := map[string]interface{}{
			"decision": decision,
			"toStage":  app.CurrentStage,
			"toStatus": app.Status,
		}
		if decision == DecisionRejected {
			details["reason"] = reason
		}
		return tx.Audit().Append(ctx, e.auditEntry(meta, models.AuditStatusChange, "application.decision", &app.PersonID, &app.ID, details))
	})
	if err != nil {
		return nil, wrapStoreErr("record decision", err)
	}

	e.recordTransition("decision", string(app.Status))
	if person != nil {
		template := TemplateRejection
		if decision == DecisionAccepted {
			template = TemplateAgreement
		}
		e.notify(ctx, Notification{
			Template: template,
			To:       person.Email,
			Phone:    person.Phone,
			Data:     e.candidateData(person, app),
		})
	}
	e.index(ctx, app, person)

	return &DecisionResult{
		ApplicationID: app.ID,
		Stage:         app.CurrentStage,
		Status:        app.Status,
	}, nil
}

// WithdrawApplication hard-deletes an application and everything hanging off
// it. The audit trail records the deletion and survives it.
func (e *Engine) WithdrawApplication(ctx context.Context, applicationID string, meta RequestMeta) error {
	app, err := e.store.Applications().GetByID(ctx, applicationID)
	if err != nil {
		return wrapStoreErr("lookup application", err)
	}
	if app == nil {
		return apperrors.NewNotFoundError("application", applicationID)
	}

	err = e.store.WithTx(ctx, func(tx Store) error {
		if txErr := tx.Applications().Delete(ctx, app.ID); txErr != nil {
			return txErr
		}
		return tx.Audit().Append(ctx, e.auditEntry(meta, models.AuditDelete, "application.withdrawn", &app.PersonID, &app.ID, map[string]interface{}{
			"position":  app.Position,
			"fromStage": app.CurrentStage,
		}))
	})
	if err != nil {
		return wrapStoreErr("withdraw application", err)
	}

	e.recordTransition("withdraw", string(models.StatusWithdrawn))
	return nil
}

// sendInterviewInvite delivers the scheduling email and, on success, stamps
// the interview and appends the email audit entry. All best-effort.
func (e *Engine) sendInterviewInvite(ctx context.Context, app *models.Application, interview *models.Interview, meta RequestMeta) bool {
	person, err := e.store.Persons().GetByID(ctx, app.PersonID)
	if err != nil || person == nil {
		return false
	}

	data := e.candidateData(person, app)
	data["schedulingLink"] = interview.SchedulingLink
	if !e.notify(ctx, Notification{
		Template: TemplateInterviewInvite,
		To:       person.Email,
		Phone:    person.Phone,
		Data:     data,
	}) {
		return false
	}

	now := e.now()
	if err := e.store.Interviews().SetEmailSent(ctx, interview.ID, now); err != nil {
		e.logger.WithError(err).Warn("failed to stamp interview email", map[string]interface{}{
			"interview_id": interview.ID,
		})
	}
	if err := e.store.Audit().Append(ctx, e.auditEntry(meta, models.AuditEmailSent, "interview.invite_sent", &app.PersonID, &app.ID, map[string]interface{}{
		"interviewId": interview.ID,
	})); err != nil {
		e.logger.WithError(err).Warn("failed to record email audit entry", map[string]interface{}{
			"interview_id": interview.ID,
		})
	}
	return true
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
