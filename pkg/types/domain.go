package types

type Role string

const (
	RoleAdult Role = "adult"
	RoleChild Role = "child"
)

func (r Role) Valid() bool {
	return r == RoleAdult || r == RoleChild
}

type MembershipStatus string

const (
	MembershipStatusActive   MembershipStatus = "active"
	MembershipStatusPaused   MembershipStatus = "paused"
	MembershipStatusCanceled MembershipStatus = "canceled"
)

type MembershipChangeReason string

const (
	MembershipChangeReasonWebhook MembershipChangeReason = "webhook"
	MembershipChangeReasonPause   MembershipChangeReason = "pause"
	MembershipChangeReasonStaff   MembershipChangeReason = "staff"
)

type PaymentStatus string

const (
	PaymentStatusOpen PaymentStatus = "open"
	PaymentStatusPaid PaymentStatus = "paid"
)

type PaymentProvider string

const (
	PaymentProviderSquare PaymentProvider = "square"
)

// CheckinSourceQR is the default source tag for scanned check-ins.
const CheckinSourceQR = "qr"
