// internal/notify/notifier_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"hiring-pipeline/internal/common/config"
	"hiring-pipeline/internal/common/logger"
	"hiring-pipeline/internal/pipeline"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmailSender struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (f *fakeEmailSender) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.inputs = append(f.inputs, input)
	return &ses.SendEmailOutput{}, f.err
}

type fakeSMSSender struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSMSSender) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, input)
	return &sns.PublishOutput{}, f.err
}

func testConfig(email, sms bool) config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = email
	cfg.Email.FromEmail = "recruiting@example.com"
	cfg.Email.PortalURL = "https://portal.example.com/"
	cfg.SMS.Enabled = sms
	cfg.SMS.SenderID = "Recruiting"
	return cfg
}

func TestDispatcherSendsEmail(t *testing.T) {
	email := &fakeEmailSender{}
	d := NewDispatcher(email, nil, testConfig(true, false), logger.NewNoOpLogger())

	err := d.Send(context.Background(), pipeline.Notification{
		Template: pipeline.TemplateGCInvite,
		To:       "ada@example.com",
		Data:     map[string]string{"firstName": "Ada", "position": "Backend Engineer"},
	})
	require.NoError(t, err)
	require.Len(t, email.inputs, 1)

	in := email.inputs[0]
	assert.Equal(t, "recruiting@example.com", *in.Source)
	assert.Equal(t, []string{"ada@example.com"}, in.Destination.ToAddresses)
	assert.Contains(t, *in.Message.Body.Text.Data, "Ada")
	assert.Contains(t, *in.Message.Body.Text.Data, "https://portal.example.com",
		"portal link rendered without trailing slash doubling")
}

func TestDispatcherUnknownTemplate(t *testing.T) {
	d := NewDispatcher(&fakeEmailSender{}, nil, testConfig(true, false), logger.NewNoOpLogger())
	err := d.Send(context.Background(), pipeline.Notification{Template: "no-such-template", To: "a@b.c"})
	assert.Error(t, err)
}

func TestDispatcherEmailDisabled(t *testing.T) {
	email := &fakeEmailSender{}
	d := NewDispatcher(email, nil, testConfig(false, false), logger.NewNoOpLogger())

	err := d.Send(context.Background(), pipeline.Notification{
		Template: pipeline.TemplateRejection,
		To:       "ada@example.com",
		Data:     map[string]string{"firstName": "Ada"},
	})
	require.NoError(t, err)
	assert.Empty(t, email.inputs, "disabled channel must not deliver")
}

func TestDispatcherSendsSMSWhenPhonePresent(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	d := NewDispatcher(email, sms, testConfig(true, true), logger.NewNoOpLogger())

	err := d.Send(context.Background(), pipeline.Notification{
		Template: pipeline.TemplateInterviewInvite,
		To:       "ada@example.com",
		Phone:    "+15550100",
		Data: map[string]string{
			"firstName":      "Ada",
			"position":       "Backend Engineer",
			"schedulingLink": "https://cal.example.com/slot",
		},
	})
	require.NoError(t, err)
	require.Len(t, email.inputs, 1)
	require.Len(t, sms.inputs, 1)

	in := sms.inputs[0]
	assert.Equal(t, "+15550100", *in.PhoneNumber)
	assert.Contains(t, *in.Message, "https://cal.example.com/slot")
	require.Contains(t, in.MessageAttributes, "AWS.SNS.SMS.SenderID")
	assert.Equal(t, "Recruiting", *in.MessageAttributes["AWS.SNS.SMS.SenderID"].StringValue)
}

func TestDispatcherNoSMSWithoutPhone(t *testing.T) {
	sms := &fakeSMSSender{}
	d := NewDispatcher(&fakeEmailSender{}, sms, testConfig(true, true), logger.NewNoOpLogger())

	err := d.Send(context.Background(), pipeline.Notification{
		Template: pipeline.TemplateInterviewInvite,
		To:       "ada@example.com",
		Data:     map[string]string{"firstName": "Ada", "schedulingLink": "x"},
	})
	require.NoError(t, err)
	assert.Empty(t, sms.inputs)
}

func TestDispatcherReportsDeliveryFailure(t *testing.T) {
	email := &fakeEmailSender{err: errors.New("throttled")}
	d := NewDispatcher(email, nil, testConfig(true, false), logger.NewNoOpLogger())

	err := d.Send(context.Background(), pipeline.Notification{
		Template: pipeline.TemplateAgreement,
		To:       "ada@example.com",
		Data:     map[string]string{"firstName": "Ada", "position": "Backend Engineer"},
	})
	assert.ErrorContains(t, err, "throttled")
}
