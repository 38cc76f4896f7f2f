package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEligibleUsersUnionsCreatorAndParticipants(t *testing.T) {
	p := &Pool{
		ID:      1,
		Creator: User{ID: 10, Name: "Ana"},
		Participants: []User{
			{ID: 20, Name: "Bruno"},
			{ID: 10, Name: "Ana"},
			{ID: 30, Name: "Carla"},
		},
	}

	got := p.EligibleUsers()

	assert.Equal(t, []User{
		{ID: 10, Name: "Ana"},
		{ID: 20, Name: "Bruno"},
		{ID: 30, Name: "Carla"},
	}, got)
}

func TestEligibleUsersWithoutParticipants(t *testing.T) {
	p := &Pool{Creator: User{ID: 5}}
	assert.Len(t, p.EligibleUsers(), 1)

	empty := &Pool{}
	assert.Empty(t, empty.EligibleUsers())
}

func TestUpstreamKeepsBothErrors(t *testing.T) {
	driver := errors.New("dial tcp: connection refused")
	err := Upstream("load pool 3", driver)

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, driver)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "load pool 3: upstream unavailable: dial tcp: connection refused", err.Error())
}

func TestOutcomeValid(t *testing.T) {
	assert.True(t, OutcomeDraw.Valid())
	assert.False(t, Outcome("HOME").Valid())
}
