package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkMutableBy(t *testing.T) {
	owner := "11111111-1111-1111-1111-111111111111"
	other := "22222222-2222-2222-2222-222222222222"

	tests := []struct {
		name     string
		ownerID  *string
		userID   string
		expected bool
	}{
		{name: "owner may mutate", ownerID: &owner, userID: owner, expected: true},
		{name: "other user denied", ownerID: &owner, userID: other, expected: false},
		{name: "anonymous requester denied", ownerID: &owner, userID: "", expected: false},
		{name: "anonymous link never mutable", ownerID: nil, userID: owner, expected: false},
		{name: "anonymous link, anonymous requester", ownerID: nil, userID: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := Link{UserID: tt.ownerID}
			assert.Equal(t, tt.expected, link.MutableBy(tt.userID))
		})
	}
}
