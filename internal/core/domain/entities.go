package domain

// Role represents user role in the system
type Role string

const (
	// RoleBrother is the default role for every authenticated member.
	// Nothing in the system elevates it.
	RoleBrother Role = "Brother"
)

// PNM status values
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusAccepted   = "Accepted"
	StatusRejected   = "Rejected"

	// StatusAll is the filter value that matches every status
	StatusAll = "all"
)

// ValidStatus reports whether s is one of the recognized PNM statuses
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusAccepted, StatusRejected:
		return true
	}
	return false
}
