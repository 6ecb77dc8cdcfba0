package organization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to VerificationStatus }{
		{StatusUnverified, StatusPendingReview},
		{StatusPendingReview, StatusVerified},
		{StatusPendingReview, StatusRejected},
		{StatusVerified, StatusUnverified},
		{StatusRejected, StatusPendingReview},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	denied := []struct{ from, to VerificationStatus }{
		{StatusUnverified, StatusVerified},
		{StatusUnverified, StatusRejected},
		{StatusVerified, StatusPendingReview},
		{StatusVerified, StatusRejected},
		{StatusRejected, StatusVerified},
		{StatusRejected, StatusUnverified},
		{StatusPendingReview, StatusUnverified},
		{StatusVerified, StatusVerified},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}
