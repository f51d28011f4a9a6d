package booking

import "fmt"

// ApprovalPolicy decides how approval treats windows that overlap an already
// approved booking of the same item.
type ApprovalPolicy string

const (
	// PolicyPermissive approves regardless of overlap; keeping approved windows
	// disjoint is left to the owner.
	PolicyPermissive ApprovalPolicy = "permissive"
	// PolicyRejectOverlap fails approval with a conflict when an approved
	// booking of the same item overlaps. Overlapping WAITING bookings are untouched.
	PolicyRejectOverlap ApprovalPolicy = "reject_overlap"
)

// ParseApprovalPolicy converts a configuration value to an ApprovalPolicy.
func ParseApprovalPolicy(s string) (ApprovalPolicy, error) {
	switch p := ApprovalPolicy(s); p {
	case PolicyPermissive, PolicyRejectOverlap:
		return p, nil
	case "":
		return PolicyPermissive, nil
	default:
		return "", fmt.Errorf("invalid approval policy: %s", s)
	}
}

// ChecksOverlap reports whether approvals must consult existing approved bookings.
func (p ApprovalPolicy) ChecksOverlap() bool {
	return p == PolicyRejectOverlap
}
