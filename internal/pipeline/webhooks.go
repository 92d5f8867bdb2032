// internal/pipeline/webhooks.go
package pipeline

import (
	"context"
	"errors"
	"fmt"

	apperrors "hiring-pipeline/internal/common/errors"
	"hiring-pipeline/internal/forms"
	"hiring-pipeline/internal/models"
)

// SubmitResult is the outcome of an application webhook.
type SubmitResult struct {
	ApplicationID string        `json:"applicationId"`
	PersonID      string        `json:"personId"`
	Stage         models.Stage  `json:"stage"`
	Status        models.Status `json:"status"`
	NextStep      string        `json:"nextStep,omitempty"`
	Duplicate     bool          `json:"duplicate,omitempty"`
}

// AssessmentResult is the outcome of a competency-result webhook.
type AssessmentResult struct {
	AssessmentID  string        `json:"assessmentId"`
	ApplicationID string        `json:"applicationId"`
	Stage         models.Stage  `json:"stage"`
	Status        models.Status `json:"status"`
	Passed        *bool         `json:"passed,omitempty"`
	NextStep      string        `json:"nextStep,omitempty"`
	Duplicate     bool          `json:"duplicate,omitempty"`
}

// AgreementResult is the outcome of a signed-agreement webhook.
type AgreementResult struct {
	ApplicationID string        `json:"applicationId"`
	Stage         models.Stage  `json:"stage"`
	Status        models.Status `json:"status"`
	Duplicate     bool          `json:"duplicate,omitempty"`
}

// wrapStoreErr passes through domain errors and converts raw storage
// failures into the database error code.
func wrapStoreErr(op string, err error) error {
	if std := apperrors.AsStandard(err); std != nil {
		return std
	}
	return apperrors.NewDatabaseError(op, err)
}

// SubmitApplication processes a new-application webhook: create or reuse the
// person, create the application, and route it by the person's
// general-competencies history.
func (e *Engine) SubmitApplication(ctx context.Context, env *forms.Envelope, meta RequestMeta) (*SubmitResult, error) {
	existing, err := e.store.Applications().GetBySubmissionID(ctx, env.SubmissionID)
	if err != nil {
		return nil, wrapStoreErr("lookup submission", err)
	}
	if existing != nil {
		return replaySubmit(existing), nil
	}

	personData, err := e.extract.ExtractPerson(env)
	if err != nil {
		return nil, err
	}
	appData, err := e.extract.ExtractApplication(env)
	if err != nil {
		return nil, err
	}

	now := e.now()
	var (
		person     *models.Person
		app        *models.Application
		nextStep   string
		sendInvite bool
	)
	err = e.store.WithTx(ctx, func(tx Store) error {
		var txErr error
		person, txErr = tx.Persons().GetByEmail(ctx, personData.Email)
		if txErr != nil {
			return txErr
		}
		if person == nil {
			person = &models.Person{
				ID:        e.newID(),
				Email:     personData.Email,
				FirstName: personData.FirstName,
				LastName:  personData.LastName,
				Phone:     personData.Phone,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if txErr := tx.Persons().Create(ctx, person); txErr != nil {
				return txErr
			}
		}

		stage := models.StageApplication
		status := models.StatusActive
		var reason *string
		switch {
		case !person.GeneralCompetenciesCompleted:
			stage = models.StageGeneralCompetencies
			nextStep = NextStepSendGCAssessment
		case person.GeneralCompetenciesPassed != nil && *person.GeneralCompetenciesPassed:
			stage = models.StageSpecializedCompetencies
			nextStep = NextStepAdvanceToSpecialized
		default:
			status = models.StatusRejected
			reason = strPtr("general competencies previously failed")
			nextStep = NextStepRejected
		}

		app = &models.Application{
			ID:              e.newID(),
			PersonID:        person.ID,
			Position:        appData.Position,
			CurrentStage:    stage,
			Status:          status,
			SubmissionID:    env.SubmissionID,
			ResumeURL:       appData.ResumeURL,
			PortfolioURL:    appData.PortfolioURL,
			ConsentGiven:    appData.ConsentGiven,
			RejectionReason: reason,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if txErr := tx.Applications().Create(ctx, app); txErr != nil {
			return txErr
		}

		// One outstanding invite per person: skip the email when another
		// active application already sits at the assessment stage.
		if stage == models.StageGeneralCompetencies {
			others, txErr := tx.Applications().CountOtherActiveAtStage(ctx, person.ID, app.ID, models.StageGeneralCompetencies)
			if txErr != nil {
				return txErr
			}
			sendInvite = others == 0
		}

		return tx.Audit().Append(ctx, e.auditEntry(meta, models.AuditCreate, "application.submitted", &person.ID, &app.ID, map[string]interface{}{
			"position": app.Position,
			"stage":    app.CurrentStage,
			"status":   app.Status,
			"nextStep": nextStep,
		}))
	})
	if errors.Is(err, ErrDuplicateSubmission) {
		return e.replaySubmitLookup(ctx, env.SubmissionID)
	}
	if err != nil {
		return nil, wrapStoreErr("submit application", err)
	}

	e.recordTransition("submit", string(app.CurrentStage))
	switch nextStep {
	case NextStepSendGCAssessment:
		if sendInvite {
			e.notify(ctx, Notification{
				Template: TemplateGCInvite,
				To:       person.Email,
				Phone:    person.Phone,
				Data:     e.candidateData(person, app),
			})
		}
	case NextStepRejected:
		e.notify(ctx, Notification{
			Template: TemplateRejection,
			To:       person.Email,
			Data:     e.candidateData(person, app),
		})
	}
	e.index(ctx, app, person)

	return &SubmitResult{
		ApplicationID: app.ID,
		PersonID:      app.PersonID,
		Stage:         app.CurrentStage,
		Status:        app.Status,
		NextStep:      nextStep,
	}, nil
}

// ProcessGCResult processes a general-competencies test result. The score is
// compared against the inclusive pass threshold; passing advances the
// application, failing rejects it in place.
func (e *Engine) ProcessGCResult(ctx context.Context, env *forms.Envelope, meta RequestMeta) (*AssessmentResult, error) {
	if replay, err := e.replayAssessment(ctx, env.SubmissionID); replay != nil || err != nil {
		return replay, err
	}

	data, err := e.extract.ExtractGCAssessment(env)
	if err != nil {
		return nil, err
	}

	person, app, err := e.openApplicationByEmail(ctx, data.Email, models.StageGeneralCompetencies)
	if err != nil {
		return nil, err
	}

	now := e.now()
	passed := data.Score >= e.cfg.GeneralThreshold
	completedAt := env.SubmittedAt
	assessment := &models.Assessment{
		ID:            e.newID(),
		ApplicationID: app.ID,
		Type:          models.AssessmentGeneral,
		Score:         &data.Score,
		Threshold:     e.cfg.GeneralThreshold,
		Passed:        &passed,
		CompletedAt:   &completedAt,
		SubmissionID:  env.SubmissionID,
		RawPayload:    env.Raw(),
		CreatedAt:     now,
	}

	nextStep := NextStepRejected
	err = e.store.WithTx(ctx, func(tx Store) error {
		if txErr := tx.Assessments().Create(ctx, assessment); txErr != nil {
			return txErr
		}
		if txErr := tx.Persons().SetGeneralCompetencies(ctx, person.ID, true, passed); txErr != nil {
			return txErr
		}

		actionType := models.AuditStatusChange
		if passed {
			actionType = models.AuditStageChange
			nextStep = NextStepAdvanceToSpecialized
			app.CurrentStage = models.StageSpecializedCompetencies
			if txErr := tx.Applications().SetStage(ctx, app.ID, app.CurrentStage); txErr != nil {
				return txErr
			}
		} else {
			app.Status = models.StatusRejected
			reason := "general competencies score below threshold"
			app.RejectionReason = &reason
			if txErr := tx.Applications().SetStatus(ctx, app.ID, app.Status, app.RejectionReason); txErr != nil {
				return txErr
			}
		}

		return tx.Audit().Append(ctx, e.auditEntry(meta, actionType, "assessment.general.completed", &person.ID, &app.ID, map[string]interface{}{
			"assessmentType": assessment.Type,
			"score":          data.Score,
			"threshold":      assessment.Threshold,
			"passed":         passed,
			"toStage":        app.CurrentStage,
			"toStatus":       app.Status,
		}))
	})
	if errors.Is(err, ErrDuplicateSubmission) {
		if replay, rerr := e.replayAssessment(ctx, env.SubmissionID); replay != nil || rerr != nil {
			return replay, rerr
		}
	}
	if err != nil {
		return nil, wrapStoreErr("record general assessment", err)
	}

	if passed {
		e.recordTransition("gc_result", string(app.CurrentStage))
		e.notify(ctx, Notification{
			Template: TemplateSCInvite,
			To:       person.Email,
			Phone:    person.Phone,
			Data:     e.candidateData(person, app),
		})
	} else {
		e.recordTransition("gc_result", string(app.Status))
		e.notify(ctx, Notification{
			Template: TemplateRejection,
			To:       person.Email,
			Data:     e.candidateData(person, app),
		})
	}
	e.index(ctx, app, person)

	return &AssessmentResult{
		AssessmentID:  assessment.ID,
		ApplicationID: app.ID,
		Stage:         app.CurrentStage,
		Status:        app.Status,
		Passed:        &passed,
		NextStep:      nextStep,
	}, nil
}

// ProcessSCResult processes a specialized-competencies result. A submission
// without a numeric score is stored unreviewed and leaves the application
// untouched until staff review it.
func (e *Engine) ProcessSCResult(ctx context.Context, env *forms.Envelope, meta RequestMeta) (*AssessmentResult, error) {
	if replay, err := e.replayAssessment(ctx, env.SubmissionID); replay != nil || err != nil {
		return replay, err
	}

	data, err := e.extract.ExtractSCAssessment(env)
	if err != nil {
		return nil, err
	}

	person, app, err := e.openApplicationByEmail(ctx, data.Email,
		models.StageGeneralCompetencies, models.StageSpecializedCompetencies)
	if err != nil {
		return nil, err
	}

	now := e.now()
	completedAt := env.SubmittedAt
	var passed *bool
	if data.Score != nil {
		p := *data.Score >= e.cfg.SpecializedThreshold
		passed = &p
	}
	assessment := &models.Assessment{
		ID:            e.newID(),
		ApplicationID: app.ID,
		Type:          models.AssessmentSpecialized,
		Score:         data.Score,
		Threshold:     e.cfg.SpecializedThreshold,
		Passed:        passed,
		CompletedAt:   &completedAt,
		SubmissionID:  env.SubmissionID,
		RawPayload:    env.Raw(),
		CreatedAt:     now,
	}

	nextStep := NextStepPendingReview
	err = e.store.WithTx(ctx, func(tx Store) error {
		if txErr := tx.Assessments().Create(ctx, assessment); txErr != nil {
			return txErr
		}

		actionType := models.AuditUpdate
		switch {
		case passed == nil:
			// Ungraded submission: stored for manual review, no transition.
		case *passed:
			actionType = models.AuditStageChange
			nextStep = NextStepAdvanceToInterview
			app.CurrentStage = models.StageInterview
			if txErr := tx.Applications().SetStage(ctx, app.ID, app.CurrentStage); txErr != nil {
				return txErr
			}
		default:
			actionType = models.AuditStatusChange
			nextStep = NextStepRejected
			app.Status = models.StatusRejected
			reason := "specialized competencies score below threshold"
			app.RejectionReason = &reason
			if txErr := tx.Applications().SetStatus(ctx, app.ID, app.Status, app.RejectionReason); txErr != nil {
				return txErr
			}
		}

		details := map[string]interface{}{
			"assessmentType": assessment.Type,
			"threshold":      assessment.Threshold,
			"toStage":        app.CurrentStage,
			"toStatus":       app.Status,
		}
		if data.Score != nil {
			details["score"] = *data.Score
			details["passed"] = *passed
		} else {
			details["pendingReview"] = true
		}
		return tx.Audit().Append(ctx, e.auditEntry(meta, actionType, "assessment.specialized.completed", &person.ID, &app.ID, details))
	})
	if errors.Is(err, ErrDuplicateSubmission) {
		if replay, rerr := e.replayAssessment(ctx, env.SubmissionID); replay != nil || rerr != nil {
			return replay, rerr
		}
	}
	if err != nil {
		return nil, wrapStoreErr("record specialized assessment", err)
	}

	switch nextStep {
	case NextStepAdvanceToInterview:
		e.recordTransition("sc_result", string(app.CurrentStage))
	case NextStepRejected:
		e.recordTransition("sc_result", string(app.Status))
		e.notify(ctx, Notification{
			Template: TemplateRejection,
			To:       person.Email,
			Data:     e.candidateData(person, app),
		})
	}
	e.index(ctx, app, person)

	return &AssessmentResult{
		AssessmentID:  assessment.ID,
		ApplicationID: app.ID,
		Stage:         app.CurrentStage,
		Status:        app.Status,
		Passed:        passed,
		NextStep:      nextStep,
	}, nil
}

// ProcessAgreement marks an accepted application's agreement as signed, the
// terminal happy-path transition.
func (e *Engine) ProcessAgreement(ctx context.Context, env *forms.Envelope, meta RequestMeta) (*AgreementResult, error) {
	data, err := e.extract.ExtractAgreement(env)
	if err != nil {
		return nil, err
	}

	person, app, err := e.openApplicationByEmail(ctx, data.Email,
		models.StageAgreement, models.StageSigned)
	if err != nil {
		return nil, err
	}
	// Redelivered agreement webhooks find the application already signed.
	if app.CurrentStage == models.StageSigned {
		return &AgreementResult{
			ApplicationID: app.ID,
			Stage:         app.CurrentStage,
			Status:        app.Status,
			Duplicate:     true,
		}, nil
	}

	err = e.store.WithTx(ctx, func(tx Store) error {
		app.CurrentStage = models.StageSigned
		if txErr := tx.Applications().SetStage(ctx, app.ID, app.CurrentStage); txErr != nil {
			return txErr
		}
		details := map[string]interface{}{
			"toStage":  app.CurrentStage,
			"signedAt": data.SignedAt,
		}
		if data.DocumentURL != nil {
			details["documentUrl"] = *data.DocumentURL
		}
		return tx.Audit().Append(ctx, e.auditEntry(meta, models.AuditStageChange, "agreement.signed", &person.ID, &app.ID, details))
	})
	if err != nil {
		return nil, wrapStoreErr("record agreement", err)
	}

	e.recordTransition("agreement", string(app.CurrentStage))
	e.index(ctx, app, person)

	return &AgreementResult{
		ApplicationID: app.ID,
		Stage:         app.CurrentStage,
		Status:        app.Status,
	}, nil
}

// openApplicationByEmail resolves the candidate by email and their most
// recent open application at one of the given stages.
func (e *Engine) openApplicationByEmail(ctx context.Context, email string, stages ...models.Stage) (*models.Person, *models.Application, error) {
	person, err := e.store.Persons().GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, wrapStoreErr("lookup person", err)
	}
	if person == nil {
		return nil, nil, apperrors.NewNotFoundError("person", email)
	}

	apps, err := e.store.Applications().OpenAtStage(ctx, person.ID, stages...)
	if err != nil {
		return nil, nil, wrapStoreErr("lookup application", err)
	}
	if len(apps) == 0 {
		return nil, nil, apperrors.NewStageMismatchError(
			fmt.Sprintf("no open application at stage %v for this candidate", stages))
	}
	return person, apps[0], nil
}

// replayAssessment returns the idempotent-replay response when the
// submission id already has an assessment, or (nil, nil).
func (e *Engine) replayAssessment(ctx context.Context, submissionID string) (*AssessmentResult, error) {
	existing, err := e.store.Assessments().GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, wrapStoreErr("lookup submission", err)
	}
	if existing == nil {
		return nil, nil
	}
	app, err := e.store.Applications().GetByID(ctx, existing.ApplicationID)
	if err != nil {
		return nil, wrapStoreErr("lookup application", err)
	}

	res := &AssessmentResult{
		AssessmentID:  existing.ID,
		ApplicationID: existing.ApplicationID,
		Passed:        existing.Passed,
		Duplicate:     true,
	}
	if app != nil {
		res.Stage = app.CurrentStage
		res.Status = app.Status
	}
	return res, nil
}

func (e *Engine) replaySubmitLookup(ctx context.Context, submissionID string) (*SubmitResult, error) {
	existing, err := e.store.Applications().GetBySubmissionID(ctx, submissionID)
	if err != nil {
		return nil, wrapStoreErr("replay lookup", err)
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("application", submissionID)
	}
	return replaySubmit(existing), nil
}

func replaySubmit(app *models.Application) *SubmitResult {
	return &SubmitResult{
		ApplicationID: app.ID,
		PersonID:      app.PersonID,
		Stage:         app.CurrentStage,
		Status:        app.Status,
		Duplicate:     true,
	}
}
