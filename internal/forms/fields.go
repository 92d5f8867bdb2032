// internal/forms/fields.go
package forms

// FieldSpec binds a domain field to the form fields it can come from.
// Labels are matched first; keys are the stable fallback for payloads from
// older form versions where a label was reworded.
type FieldSpec struct {
	Labels []string
	Keys   []string
}

// Table is the immutable lookup configuration injected into an Extractor.
// One table corresponds to one generation of the external forms; tests and
// form migrations supply their own.
type Table struct {
	specs map[string]FieldSpec
	// checkboxTrue maps a domain field to the option ids whose selection
	// means "true" for that field.
	checkboxTrue map[string][]string
}

func NewTable(specs map[string]FieldSpec, checkboxTrue map[string][]string) *Table {
	return &Table{specs: specs, checkboxTrue: checkboxTrue}
}

func (t *Table) spec(name string) (FieldSpec, bool) {
	s, ok := t.specs[name]
	return s, ok
}

func (t *Table) trueOptions(name string) []string {
	return t.checkboxTrue[name]
}

// Domain field names resolved by the extractor.
const (
	fieldFirstName = "firstName"
	fieldLastName  = "lastName"
	fieldEmail     = "email"
	fieldPhone     = "phone"
	fieldPosition  = "position"
	fieldResume    = "resume"
	fieldPortfolio = "portfolio"
	fieldConsent   = "consent"
	fieldScore     = "score"
	fieldSignedAt  = "signedAt"
	fieldDocument  = "document"
)

// DefaultTable matches the current production forms.
func DefaultTable() *Table {
	return NewTable(
		map[string]FieldSpec{
			fieldFirstName: {
				Labels: []string{"First name"},
				Keys:   []string{"question_first_name", "q_fname"},
			},
			fieldLastName: {
				Labels: []string{"Last name"},
				Keys:   []string{"question_last_name", "q_lname"},
			},
			fieldEmail: {
				Labels: []string{"Email", "Email address"},
				Keys:   []string{"question_email", "q_email"},
			},
			fieldPhone: {
				Labels: []string{"Phone number"},
				Keys:   []string{"question_phone", "q_phone"},
			},
			fieldPosition: {
				Labels: []string{"Position", "Which position are you applying for?"},
				Keys:   []string{"question_position", "q_position"},
			},
			fieldResume: {
				Labels: []string{"Resume", "Upload your CV"},
				Keys:   []string{"question_resume", "q_resume"},
			},
			fieldPortfolio: {
				Labels: []string{"Portfolio"},
				Keys:   []string{"question_portfolio", "q_portfolio"},
			},
			fieldConsent: {
				Labels: []string{"Data processing consent"},
				Keys:   []string{"question_consent", "q_consent"},
			},
			fieldScore: {
				Labels: []string{"Score", "Total score"},
				Keys:   []string{"question_score", "calc_score"},
			},
			fieldSignedAt: {
				Labels: []string{"Signature date"},
				Keys:   []string{"question_signed_at", "q_signed_at"},
			},
			fieldDocument: {
				Labels: []string{"Signed agreement"},
				Keys:   []string{"question_agreement_file", "q_agreement"},
			},
		},
		map[string][]string{
			fieldConsent: {"opt_consent_yes", "consent_agree"},
		},
	)
}
