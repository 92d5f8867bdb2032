// internal/server/webhook_handlers.go
package server

import (
	"context"
	"io"
	"net/http"
	"strings"

	apperrors "hiring-pipeline/internal/common/errors"
	"hiring-pipeline/internal/common/metrics"
	"hiring-pipeline/internal/forms"
	"hiring-pipeline/internal/pipeline"
	"hiring-pipeline/internal/webhook"
)

type webhookHandler func(ctx context.Context, env *forms.Envelope, meta pipeline.RequestMeta) (interface{}, bool, error)

// webhookRoute is the shared front half of every webhook endpoint: rate
// limit, signature and source verification, payload parsing. Requests
// rejected here never reach the engine and leave no audit trace.
func (s *Server) webhookRoute(route string, handle webhookHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.WebhooksReceived.WithLabelValues(route).Inc()
		ip := webhook.SourceIP(r, s.trustProxy)

		if decision := s.rateLimit(w, r, "webhook:"+route+":"+ip); !decision.Allowed {
			metrics.WebhooksRejected.WithLabelValues(route, "rate_limit").Inc()
			s.errors.WriteError(w, r, apperrors.NewRateLimitExceededError(ip))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
		if err != nil {
			metrics.WebhooksRejected.WithLabelValues(route, "body").Inc()
			s.errors.WriteError(w, r, apperrors.NewPayloadInvalidError("unreadable or oversized body"))
			return
		}

		if res := s.verifier.Verify(r, body); !res.OK {
			if strings.Contains(res.Reason, "signature") {
				metrics.WebhooksRejected.WithLabelValues(route, "signature").Inc()
				s.errors.WriteError(w, r, apperrors.NewSignatureInvalidError(res.Reason))
			} else {
				metrics.WebhooksRejected.WithLabelValues(route, "source").Inc()
				s.errors.WriteError(w, r, apperrors.NewSourceNotAllowedError(ip))
			}
			return
		}

		env, err := forms.ParseEnvelope(body)
		if err != nil {
			metrics.WebhooksRejected.WithLabelValues(route, "payload").Inc()
			s.errors.WriteError(w, r, err)
			return
		}

		meta := pipeline.RequestMeta{IP: ip, UserAgent: r.UserAgent()}
		result, duplicate, err := handle(r.Context(), env, meta)
		if err != nil {
			s.errors.WriteError(w, r, err)
			return
		}
		if duplicate {
			metrics.DuplicateSubmissions.WithLabelValues(route).Inc()
		}
		writeSuccess(w, http.StatusOK, result)
	}
}

func (s *Server) handleApplicationWebhook(ctx context.Context, env *forms.Envelope, meta pipeline.RequestMeta) (interface{}, bool, error) {
	res, err := s.pipeline.SubmitApplication(ctx, env, meta)
	if err != nil {
		return nil, false, err
	}
	return res, res.Duplicate, nil
}

func (s *Server) handleGCWebhook(ctx context.Context, env *forms.Envelope, meta pipeline.RequestMeta) (interface{}, bool, error) {
	res, err := s.pipeline.ProcessGCResult(ctx, env, meta)
	if err != nil {
		return nil, false, err
	}
	return res, res.Duplicate, nil
}

func (s *Server) handleSCWebhook(ctx context.Context, env *forms.Envelope, meta pipeline.RequestMeta) (interface{}, bool, error) {
	res, err := s.pipeline.ProcessSCResult(ctx, env, meta)
	if err != nil {
		return nil, false, err
	}
	return res, res.Duplicate, nil
}

func (s *Server) handleAgreementWebhook(ctx context.Context, env *forms.Envelope, meta pipeline.RequestMeta) (interface{}, bool, error) {
	res, err := s.pipeline.ProcessAgreement(ctx, env, meta)
	if err != nil {
		return nil, false, err
	}
	return res, res.Duplicate, nil
}
