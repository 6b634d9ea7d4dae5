package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"CREATED", "AWAITING_PAYMENT", "COMPLETE", "CANCELLED"} {
		got, ok := ParseOrderStatus(s)
		assert.True(t, ok, s)
		assert.Equal(t, OrderStatus(s), got)
	}
	for _, s := range []string{"", "created", "PENDING", "DONE"} {
		_, ok := ParseOrderStatus(s)
		assert.False(t, ok, s)
	}
}

// TestTransitionTableClosure walks every status pair and checks that
// exactly the four documented moves are allowed.
func TestTransitionTableClosure(t *testing.T) {
	all := []OrderStatus{StatusCreated, StatusAwaitingPayment, StatusComplete, StatusCancelled}
	allowed := map[[2]OrderStatus]bool{
		{StatusCreated, StatusAwaitingPayment}:   true,
		{StatusCreated, StatusCancelled}:         true,
		{StatusAwaitingPayment, StatusComplete}:  true,
		{StatusAwaitingPayment, StatusCancelled}: true,
	}
	for _, from := range all {
		for _, to := range all {
			o := Order{ID: "o1", Status: from}
			err := o.Transition(to)
			if allowed[[2]OrderStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, o.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
				// A rejected transition leaves the order unchanged.
				assert.Equal(t, from, o.Status)
			}
		}
	}
}

func TestBlocking(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		status  OrderStatus
		expires time.Time
		want    bool
	}{
		{"created, expiry in the future", StatusCreated, now.Add(time.Hour), true},
		{"created, already expired", StatusCreated, now.Add(-time.Minute), false},
		{"created, expiry exactly now", StatusCreated, now, false},
		{"awaiting payment", StatusAwaitingPayment, now.Add(-time.Hour), true},
		{"complete", StatusComplete, now.Add(-time.Hour), true},
		{"cancelled", StatusCancelled, now.Add(time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := Order{Status: tc.status, ExpiresAt: tc.expires}
			assert.Equal(t, tc.want, o.Blocking(now))
		})
	}
}
