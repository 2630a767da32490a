package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to PostStatus
		want     bool
	}{
		{PostStatusPending, PostStatusApproved, true},
		{PostStatusPending, PostStatusRejected, true},
		{PostStatusPending, PostStatusPending, false},
		{PostStatusApproved, PostStatusRejected, false},
		{PostStatusApproved, PostStatusPending, false},
		{PostStatusRejected, PostStatusApproved, false},
		{PostStatusRejected, PostStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}

	assert.False(t, PostStatus("archived").IsValid())
}

func TestDisplayName(t *testing.T) {
	name := "Maria Popescu"
	blank := "   "

	assert.Equal(t, "Anonim", DisplayName(&UserProfile{FullName: &name}, true))
	assert.Equal(t, "Maria Popescu", DisplayName(&UserProfile{FullName: &name}, false))
	assert.Equal(t, "Utilizator", DisplayName(&UserProfile{}, false))
	assert.Equal(t, "Utilizator", DisplayName(&UserProfile{FullName: &blank}, false))
	assert.Equal(t, "Utilizator", DisplayName(nil, false))
	assert.Equal(t, "Anonim", DisplayName(nil, true))
}

func TestSessionDefaults(t *testing.T) {
	var signedOut *Session
	assert.Equal(t, "", signedOut.UserID())
	assert.False(t, signedOut.IsAdmin())
	assert.True(t, signedOut.DefaultAnonymous())

	s := &Session{User: &User{ID: "u1"}, Profile: &UserProfile{ID: "u1", ShowRealName: true, IsAdmin: true}}
	assert.Equal(t, "u1", s.UserID())
	assert.True(t, s.IsAdmin())
	assert.False(t, s.DefaultAnonymous())
}

func TestCounties(t *testing.T) {
	assert.Len(t, Counties, 42)
	assert.True(t, IsCounty("Cluj"))
	assert.True(t, IsCounty("București"))
	assert.False(t, IsCounty("cluj"))
	assert.False(t, IsCounty(""))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "9 martie 2025", FormatDate(time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "31 decembrie 2024", FormatDate(time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)))

	date := "2024-05-01"
	bad := "mai 2024"
	assert.Equal(t, "1 mai 2024", FormatIncidentDate(&date))
	assert.Equal(t, "mai 2024", FormatIncidentDate(&bad))
	assert.Equal(t, "", FormatIncidentDate(nil))
}
