// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"hiring-pipeline/internal/common/config"
	"hiring-pipeline/internal/common/logger"
	"hiring-pipeline/internal/common/metrics"
	"hiring-pipeline/internal/pipeline"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// EmailSender is the SES surface the dispatcher needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSSender is the SNS surface the dispatcher needs.
type SMSSender interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Dispatcher renders notification templates and delivers them over SES and,
// when enabled and a phone number is present, SNS. Delivery failures are
// logged and counted; callers never see them as transition failures.
type Dispatcher struct {
	email  EmailSender
	sms    SMSSender
	cfg    config.NotificationConfig
	logger logger.Logger
}

func NewDispatcher(email EmailSender, sms SMSSender, cfg config.NotificationConfig, log logger.Logger) *Dispatcher {
	return &Dispatcher{email: email, sms: sms, cfg: cfg, logger: log}
}

func (d *Dispatcher) Send(ctx context.Context, n pipeline.Notification) error {
	tmpl, ok := templates[n.Template]
	if !ok {
		return fmt.Errorf("unknown notification template %q", n.Template)
	}

	data := map[string]string{"portalURL": strings.TrimRight(d.cfg.Email.PortalURL, "/")}
	for k, v := range n.Data {
		data[k] = v
	}

	var firstErr error
	if d.cfg.Email.Enabled && d.email != nil && n.To != "" {
		if err := d.sendEmail(ctx, tmpl, n, data); err != nil {
			firstErr = err
		}
	}
	if d.cfg.SMS.Enabled && d.sms != nil && n.Phone != "" && tmpl.sms != nil {
		if err := d.sendSMS(ctx, tmpl, n, data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (d *Dispatcher) sendEmail(ctx context.Context, tmpl messageTemplate, n pipeline.Notification, data map[string]string) error {
	subject, err := render(tmpl.subject, data)
	if err != nil {
		return err
	}
	body, err := render(tmpl.body, data)
	if err != nil {
		return err
	}

	_, err = d.email.SendEmail(ctx, &ses.SendEmailInput{
		Source:      awssdk.String(d.cfg.Email.FromEmail),
		Destination: &sestypes.Destination{ToAddresses: []string{n.To}},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: awssdk.String(strings.TrimSpace(subject))},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: awssdk.String(body)},
			},
		},
	})
	if err != nil {
		metrics.NotificationsFailed.WithLabelValues(n.Template).Inc()
		d.logger.WithError(err).Error("email send failed", map[string]interface{}{
			"template": n.Template,
		})
		return fmt.Errorf("send email %s: %w", n.Template, err)
	}

	metrics.NotificationsSent.WithLabelValues(n.Template).Inc()
	d.logger.Debug("email sent", map[string]interface{}{"template": n.Template})
	return nil
}

func (d *Dispatcher) sendSMS(ctx context.Context, tmpl messageTemplate, n pipeline.Notification, data map[string]string) error {
	text, err := render(tmpl.sms, data)
	if err != nil {
		return err
	}

	input := &sns.PublishInput{
		PhoneNumber: awssdk.String(n.Phone),
		Message:     awssdk.String(strings.TrimSpace(text)),
	}
	if d.cfg.SMS.SenderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(d.cfg.SMS.SenderID),
			},
		}
	}

	if _, err := d.sms.Publish(ctx, input); err != nil {
		metrics.NotificationsFailed.WithLabelValues(n.Template + "_sms").Inc()
		d.logger.WithError(err).Error("sms send failed", map[string]interface{}{
			"template": n.Template,
		})
		return fmt.Errorf("send sms %s: %w", n.Template, err)
	}

	metrics.NotificationsSent.WithLabelValues(n.Template + "_sms").Inc()
	return nil
}

func render(t *template.Template, data map[string]string) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render template %s: %w", t.Name(), err)
	}
	return sb.String(), nil
}

var _ pipeline.Notifier = (*Dispatcher)(nil)
