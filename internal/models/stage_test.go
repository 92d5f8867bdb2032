// internal/models/stage_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageOrdering(t *testing.T) {
	ordered := []Stage{
		StageApplication,
		StageGeneralCompetencies,
		StageSpecializedCompetencies,
		StageInterview,
		StageAgreement,
		StageSigned,
	}
	for i := 0; i < len(ordered)-1; i++ {
		assert.True(t, ordered[i].Before(ordered[i+1]), "%s before %s", ordered[i], ordered[i+1])
		assert.False(t, ordered[i+1].Before(ordered[i]))
	}
	assert.False(t, StageInterview.Before(StageInterview), "Before is strict")
}

func TestStageValid(t *testing.T) {
	for _, s := range []Stage{StageApplication, StageSigned} {
		assert.True(t, s.Valid())
	}
	assert.False(t, Stage("ONBOARDING").Valid())
	assert.False(t, Stage("").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusActive.Terminal())
	assert.False(t, StatusAccepted.Terminal(), "accepted applications still move to SIGNED")
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusWithdrawn.Terminal())
}

func TestApplicationOpen(t *testing.T) {
	app := &Application{Status: StatusActive}
	assert.True(t, app.Open())

	for _, st := range []Status{StatusAccepted, StatusRejected, StatusWithdrawn} {
		app.Status = st
		assert.False(t, app.Open(), "only ACTIVE applications accept mutations, got %s", st)
	}
}
