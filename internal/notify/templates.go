// internal/notify/templates.go
package notify

import (
	"strings"
	"text/template"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
	sms     *template.Template
}

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Parse(strings.TrimSpace(text) + "\n"))
}

// Candidate-facing message bodies. Plain text; the portal renders anything
// richer. Template data comes from the engine (candidate, position, links)
// plus portalURL injected by the dispatcher.
var templates = map[string]messageTemplate{
	"gc_invite": {
		subject: mustTemplate("gc_invite_subject", `Next step for your application: general competencies assessment`),
		body: mustTemplate("gc_invite_body", `
Hi {{.firstName}},

Thank you for applying for the {{.position}} position. The next step is a
short general competencies assessment.

Start it here: {{.portalURL}}/assessments/general

Good luck!
The recruitment team`),
		sms: mustTemplate("gc_invite_sms", `Hi {{.firstName}}, your general competencies assessment is ready: {{.portalURL}}/assessments/general`),
	},
	"sc_invite": {
		subject: mustTemplate("sc_invite_subject", `You passed! Next: specialized competencies assessment`),
		body: mustTemplate("sc_invite_body", `
Hi {{.firstName}},

Great news: you passed the general competencies assessment. The next step
for the {{.position}} position is the specialized assessment.

Start it here: {{.portalURL}}/assessments/specialized

The recruitment team`),
		sms: mustTemplate("sc_invite_sms", `Hi {{.firstName}}, you passed! Your specialized assessment is ready: {{.portalURL}}/assessments/specialized`),
	},
	"interview_invite": {
		subject: mustTemplate("interview_invite_subject", `Interview invitation: {{.position}}`),
		body: mustTemplate("interview_invite_body", `
Hi {{.firstName}},

We would like to invite you to an interview for the {{.position}} position.

Pick a time that suits you: {{.schedulingLink}}

See you soon,
The recruitment team`),
		sms: mustTemplate("interview_invite_sms", `Hi {{.firstName}}, pick an interview slot for {{.position}}: {{.schedulingLink}}`),
	},
	"rejection": {
		subject: mustTemplate("rejection_subject", `Update on your application`),
		body: mustTemplate("rejection_body", `
Hi {{.firstName}},

Thank you for the time you invested in your application for the
{{.position}} position. After careful consideration we have decided not to
move forward at this time.

We wish you all the best in your search.

The recruitment team`),
	},
	"agreement": {
		subject: mustTemplate("agreement_subject", `Congratulations! Your agreement is ready`),
		body: mustTemplate("agreement_body", `
Hi {{.firstName}},

Congratulations! We are delighted to offer you the {{.position}} position.
Your agreement is ready for review and signature:

{{.portalURL}}/agreement

Welcome aboard,
The recruitment team`),
		sms: mustTemplate("agreement_sms", `Congratulations {{.firstName}}! Your agreement for {{.position}} is ready: {{.portalURL}}/agreement`),
	},
}
