package types

import "fmt"

type OwnerKind string

const (
	OwnerKindHousehold OwnerKind = "household"
	OwnerKindPerson    OwnerKind = "person"
)

// MembershipOwner is either a household or a single person, never both.
type MembershipOwner struct {
	Kind OwnerKind `json:"kind"`
	ID   string    `json:"id"`
}

func OwnedByHousehold(householdID string) MembershipOwner {
	return MembershipOwner{Kind: OwnerKindHousehold, ID: householdID}
}

func OwnedByPerson(personID string) MembershipOwner {
	return MembershipOwner{Kind: OwnerKindPerson, ID: personID}
}

func (o MembershipOwner) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("membership owner id is empty")
	}
	switch o.Kind {
	case OwnerKindHousehold, OwnerKindPerson:
		return nil
	default:
		return fmt.Errorf("unknown membership owner kind: %q", o.Kind)
	}
}

func (o MembershipOwner) String() string {
	return string(o.Kind) + ":" + o.ID
}
