package request

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusFulfilled Status = "FULFILLED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusFulfilled, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether automatic matching must skip the request.
func (s Status) IsTerminal() bool {
	return s != StatusActive
}

func NewStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", ErrInvalidStatus
	}
	return st, nil
}

func Statuses() []Status {
	return []Status{StatusActive, StatusFulfilled, StatusCancelled, StatusExpired}
}
