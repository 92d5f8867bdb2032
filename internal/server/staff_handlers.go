// internal/server/staff_handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"hiring-pipeline/internal/common/auth"
	apperrors "hiring-pipeline/internal/common/errors"
	"hiring-pipeline/internal/pipeline"
	"hiring-pipeline/internal/webhook"

	"github.com/google/uuid"
)

type staffHandler func(w http.ResponseWriter, r *http.Request, user *auth.StaffUser, meta pipeline.RequestMeta)

// staffRoute is the shared front half of every staff endpoint: rate limit,
// bearer session resolution and the baseline role check.
func (s *Server) staffRoute(route string, handle staffHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := webhook.SourceIP(r, s.trustProxy)
		if decision := s.rateLimit(w, r, "api:"+route+":"+ip); !decision.Allowed {
			s.errors.WriteError(w, r, apperrors.NewRateLimitExceededError(ip))
			return
		}

		user, err := s.sessions.Verify(r.Context(), bearerToken(r))
		if err != nil {
			s.errors.WriteError(w, r, err)
			return
		}
		if !user.CanManageApplications() {
			s.errors.WriteError(w, r, apperrors.NewForbiddenError("role not permitted"))
			return
		}

		meta := pipeline.RequestMeta{UserID: user.ID, IP: ip, UserAgent: r.UserAgent()}
		handle(w, r, user, meta)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// pathID validates the {id} path segment as a UUID.
func pathID(r *http.Request) (string, error) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewInvalidIdentifierError("id", id)
	}
	return id, nil
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewPayloadInvalidError("malformed JSON body")
	}
	return nil
}

func (s *Server) handleReviewAssessment(w http.ResponseWriter, r *http.Request, user *auth.StaffUser, meta pipeline.RequestMeta) {
	if !user.CanReviewAssessments() {
		s.errors.WriteError(w, r, apperrors.NewForbiddenError("assessment review requires the admin role"))
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	var body struct {
		Passed *bool `json:"passed"`
	}
	if err := s.decodeBody(w, r, &body); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	if body.Passed == nil {
		s.errors.WriteError(w, r, apperrors.NewFieldMissingError("passed"))
		return
	}

	res, err := s.pipeline.ReviewAssessment(r.Context(), id, *body.Passed, meta)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (s *Server) handleScheduleInterview(w http.ResponseWriter, r *http.Request, _ *auth.StaffUser, meta pipeline.RequestMeta) {
	id, err := pathID(r)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	var in pipeline.ScheduleInterviewInput
	if err := s.decodeBody(w, r, &in); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	res, err := s.pipeline.ScheduleInterview(r.Context(), id, in, meta)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (s *Server) handleCompleteInterview(w http.ResponseWriter, r *http.Request, _ *auth.StaffUser, meta pipeline.RequestMeta) {
	id, err := pathID(r)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if err := s.decodeBody(w, r, &body); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	res, err := s.pipeline.CompleteInterview(r.Context(), id, body.Notes, meta)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (s *Server) handleRescheduleInterview(w http.ResponseWriter, r *http.Request, _ *auth.StaffUser, meta pipeline.RequestMeta) {
	id, err := pathID(r)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	var in pipeline.ScheduleInterviewInput
	if err := s.decodeBody(w, r, &in); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	res, err := s.pipeline.RescheduleInterview(r.Context(), id, in, meta)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (s *Server) handleRecordDecision(w http.ResponseWriter, r *http.Request, _ *auth.StaffUser, meta pipeline.RequestMeta) {
	id, err := pathID(r)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	var body struct {
		Decision string `json:"decision"`
		Reason   string `json:"reason"`
	}
	if err := s.decodeBody(w, r, &body); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	res, err := s.pipeline.RecordDecision(r.Context(), id, body.Decision, body.Reason, meta)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, res)
}

func (s *Server) handleWithdrawApplication(w http.ResponseWriter, r *http.Request, _ *auth.StaffUser, meta pipeline.RequestMeta) {
	id, err := pathID(r)
	if err != nil {
		s.errors.WriteError(w, r, err)
		return
	}

	if err := s.pipeline.WithdrawApplication(r.Context(), id, meta); err != nil {
		s.errors.WriteError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"deleted": true, "applicationId": id})
}
