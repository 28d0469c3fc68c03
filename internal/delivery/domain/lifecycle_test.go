package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckTransitionPermissive(t *testing.T) {
	assert.NoError(t, CheckTransition(StatusDelivered, StatusPending, false))
	assert.NoError(t, CheckTransition(StatusReturned, StatusInTransit, false))
	assert.ErrorIs(t, CheckTransition(StatusPending, Status("lost"), false), ErrInvalidStatus)
}

func TestCheckTransitionStrict(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusInTransit, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusDelivered, false},
		{StatusInTransit, StatusDelivered, true},
		{StatusInTransit, StatusReturned, true},
		{StatusInTransit, StatusPending, false},
		{StatusFailed, StatusInTransit, true},
		{StatusFailed, StatusReturned, true},
		{StatusDelivered, StatusReturned, false},
		{StatusReturned, StatusInTransit, false},
		{StatusDelivered, StatusDelivered, true},
	}
	for _, tc := range cases {
		err := CheckTransition(tc.from, tc.to, true)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
			continue
		}
		var te *TransitionError
		if assert.ErrorAs(t, err, &te, "%s -> %s", tc.from, tc.to) {
			assert.Equal(t, tc.from, te.From)
			assert.Equal(t, tc.to, te.To)
		}
		assert.ErrorIs(t, err, ErrInvalidTransition)
	}
}
