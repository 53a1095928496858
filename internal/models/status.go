package models

// ShootStatus is a position in the shoot workflow
type ShootStatus string

const (
	StatusAssigned   ShootStatus = "Assigned"
	StatusAccepted   ShootStatus = "Accepted"
	StatusReached    ShootStatus = "Reached"
	StatusStarted    ShootStatus = "Started"
	StatusCompleted  ShootStatus = "Completed"
	StatusQCUploaded ShootStatus = "QC_Uploaded"
	StatusApproved   ShootStatus = "Approved"
)

// AllStatuses returns the workflow in order
func AllStatuses() []ShootStatus {
	return []ShootStatus{
		StatusAssigned,
		StatusAccepted,
		StatusReached,
		StatusStarted,
		StatusCompleted,
		StatusQCUploaded,
		StatusApproved,
	}
}

// Index returns the position of s in the workflow, or -1 if unknown
func (s ShootStatus) Index() int {
	switch s {
	case StatusAssigned:
		return 0
	case StatusAccepted:
		return 1
	case StatusReached:
		return 2
	case StatusStarted:
		return 3
	case StatusCompleted:
		return 4
	case StatusQCUploaded:
		return 5
	case StatusApproved:
		return 6
	}
	return -1
}

// Valid reports whether s is one of the seven workflow states
func (s ShootStatus) Valid() bool {
	return s.Index() >= 0
}

// Next returns the state following s. Approved and unknown states have no successor.
func (s ShootStatus) Next() (ShootStatus, bool) {
	switch s {
	case StatusAssigned:
		return StatusAccepted, true
	case StatusAccepted:
		return StatusReached, true
	case StatusReached:
		return StatusStarted, true
	case StatusStarted:
		return StatusCompleted, true
	case StatusCompleted:
		return StatusQCUploaded, true
	case StatusQCUploaded:
		return StatusApproved, true
	case StatusApproved:
		return "", false
	}
	return "", false
}

// Label returns the display name
func (s ShootStatus) Label() string {
	switch s {
	case StatusAssigned:
		return "Assigned"
	case StatusAccepted:
		return "Accepted"
	case StatusReached:
		return "Reached"
	case StatusStarted:
		return "Started"
	case StatusCompleted:
		return "Completed"
	case StatusQCUploaded:
		return "QC Uploaded"
	case StatusApproved:
		return "Approved"
	}
	return string(s)
}

// ActionLabel names the photographer action that moves a shoot into s
func (s ShootStatus) ActionLabel() string {
	switch s {
	case StatusAssigned:
		return ""
	case StatusAccepted:
		return "Accept Shoot"
	case StatusReached:
		return "Reached Location"
	case StatusStarted:
		return "Shoot Started"
	case StatusCompleted:
		return "Shoot Completed"
	case StatusQCUploaded:
		return "Submit Deliverables"
	case StatusApproved:
		return "Approve"
	}
	return ""
}

// IsPending reports whether the shoot is still in the field (Assigned through Started)
func (s ShootStatus) IsPending() bool {
	switch s {
	case StatusAssigned, StatusAccepted, StatusReached, StatusStarted:
		return true
	case StatusCompleted, StatusQCUploaded, StatusApproved:
		return false
	}
	return false
}

// IsDone reports whether the shoot counts as completed for stats and invoicing
func (s ShootStatus) IsDone() bool {
	switch s {
	case StatusCompleted, StatusQCUploaded, StatusApproved:
		return true
	case StatusAssigned, StatusAccepted, StatusReached, StatusStarted:
		return false
	}
	return false
}

// DoneStatuses are the states that count towards invoices
func DoneStatuses() []ShootStatus {
	return []ShootStatus{StatusCompleted, StatusQCUploaded, StatusApproved}
}
