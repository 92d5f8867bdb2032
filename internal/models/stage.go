// internal/models/stage.go
package models

// Stage is the position of an application in the hiring pipeline.
// Stages only ever advance forward along the fixed order below.
type Stage string

const (
	StageApplication             Stage = "APPLICATION"
	StageGeneralCompetencies     Stage = "GENERAL_COMPETENCIES"
	StageSpecializedCompetencies Stage = "SPECIALIZED_COMPETENCIES"
	StageInterview               Stage = "INTERVIEW"
	StageAgreement               Stage = "AGREEMENT"
	StageSigned                  Stage = "SIGNED"
)

var stageOrder = map[Stage]int{
	StageApplication:             0,
	StageGeneralCompetencies:     1,
	StageSpecializedCompetencies: 2,
	StageInterview:               3,
	StageAgreement:               4,
	StageSigned:                  5,
}

// Valid reports whether s is a known pipeline stage.
func (s Stage) Valid() bool {
	_, ok := stageOrder[s]
	return ok
}

// Before reports whether s comes strictly before other in the pipeline order.
func (s Stage) Before(other Stage) bool {
	return stageOrder[s] < stageOrder[other]
}

// Status is the lifecycle state of an application, orthogonal to its stage.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusWithdrawn Status = "WITHDRAWN"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusWithdrawn
}
