package organization

import "errors"

// ErrInvalidTransition is returned for any verification-status change not
// present in the transition table.
var ErrInvalidTransition = errors.New("organization: invalid verification transition")

// verificationTransitions enumerates every legal verification-status change.
// Rejected organizations may resubmit; verified ones may be revoked by an
// administrator.
var verificationTransitions = map[VerificationStatus][]VerificationStatus{
	StatusUnverified:    {StatusPendingReview},
	StatusPendingReview: {StatusVerified, StatusRejected},
	StatusVerified:      {StatusUnverified},
	StatusRejected:      {StatusPendingReview},
}

// CanTransition checks whether a verification-status change is allowed.
func CanTransition(from, to VerificationStatus) bool {
	for _, allowed := range verificationTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the legal next statuses for a given status.
func AllowedTransitions(from VerificationStatus) []VerificationStatus {
	return verificationTransitions[from]
}
