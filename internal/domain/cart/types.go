package cart

type Status string

const (
	StatusActive    Status = "active"
	StatusMerged    Status = "merged"
	StatusConverted Status = "converted"
	StatusExpired   Status = "expired"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusMerged, StatusConverted, StatusExpired:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusMerged || s == StatusConverted || s == StatusExpired
}

// CanTransitionTo allows only Active -> terminal. Terminal states are final.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusActive && next.IsTerminal()
}
