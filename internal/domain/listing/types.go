package listing

type Status string

const (
	StatusAvailable Status = "available"
	StatusHeld      Status = "held"
	StatusSold      Status = "sold"
	StatusWithdrawn Status = "withdrawn"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusHeld, StatusSold, StatusWithdrawn:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the listing can never return to Available.
func (s Status) IsTerminal() bool {
	return s == StatusSold || s == StatusWithdrawn
}
