package domain

import dErrors "mutuelle/pkg/domain-errors"

// RequestStatus is the lifecycle position of a benefit request. Requests are
// never deleted, only transitioned; rejected and validated are terminal.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusRejected  RequestStatus = "rejected"
	StatusValidated RequestStatus = "validated"
)

var validStatuses = map[RequestStatus]bool{
	StatusPending:   true,
	StatusAccepted:  true,
	StatusRejected:  true,
	StatusValidated: true,
}

// ParseRequestStatus constructs a RequestStatus from external input.
func ParseRequestStatus(s string) (RequestStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "status cannot be empty")
	}
	st := RequestStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "invalid status")
	}
	return st, nil
}

// IsValid checks if the status is one of the supported enum values.
func (s RequestStatus) IsValid() bool {
	return validStatuses[s]
}

// Terminal reports whether no further transition is possible.
func (s RequestStatus) Terminal() bool {
	return s == StatusRejected || s == StatusValidated
}

func (s RequestStatus) String() string {
	return string(s)
}
