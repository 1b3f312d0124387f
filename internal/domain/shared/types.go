package shared

// Role identifies what an account may do.
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleEnrollee      Role = "enrollee"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleEnrollee:
		return true
	default:
		return false
	}
}

// PaymentStatus tracks whether an enrollment has been paid for.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid:
		return true
	default:
		return false
	}
}

// EntryKind classifies a ledger movement.
type EntryKind string

const (
	EntryKindIncome EntryKind = "Income"
	EntryKindPayout EntryKind = "Payout"
	EntryKindRefund EntryKind = "Refund"
)

func (k EntryKind) Valid() bool {
	switch k {
	case EntryKindIncome, EntryKindPayout, EntryKindRefund:
		return true
	default:
		return false
	}
}

// EntryStatus is the settlement state of a ledger entry.
type EntryStatus string

const (
	EntryStatusCompleted EntryStatus = "Completed"
	EntryStatusPending   EntryStatus = "Pending"
	EntryStatusFailed    EntryStatus = "Failed"
)

func (s EntryStatus) Valid() bool {
	switch s {
	case EntryStatusCompleted, EntryStatusPending, EntryStatusFailed:
		return true
	default:
		return false
	}
}

// OutboxStatus defines message publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

func (s OutboxStatus) Valid() bool {
	switch s {
	case OutboxStatusPending, OutboxStatusProcessed, OutboxStatusFailedToPublish:
		return true
	default:
		return false
	}
}

// EventType names a registration lifecycle event published to the message bus.
type EventType string

const (
	EventTypeRegistrationCompleted EventType = "registration.completed"
)
