package order

type Status string

const (
	StatusDraft          Status = "draft"
	StatusCheckingOut    Status = "checking_out"
	StatusPaymentPending Status = "payment_pending"
	StatusConfirmed      Status = "confirmed"
	StatusShipped        Status = "shipped"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusCheckingOut, StatusPaymentPending, StatusConfirmed,
		StatusShipped, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanCancel reports whether cancellation is still legal from s. Shipped and
// later states are past the point of no return.
func (s Status) CanCancel() bool {
	switch s {
	case StatusShipped, StatusCompleted, StatusCancelled:
		return false
	default:
		return true
	}
}

type ItemStatus string

const (
	ItemStatusPending  ItemStatus = "pending"
	ItemStatusHeld     ItemStatus = "held"
	ItemStatusSold     ItemStatus = "sold"
	ItemStatusReleased ItemStatus = "released"
)

func (s ItemStatus) String() string {
	return string(s)
}

func (s ItemStatus) IsValid() bool {
	switch s {
	case ItemStatusPending, ItemStatusHeld, ItemStatusSold, ItemStatusReleased:
		return true
	default:
		return false
	}
}
