package models

import "fmt"

// EntityKind identifies one of the synchronised entity subtypes. The set is
// closed; every kind has exactly one translation variant and one target route.
type EntityKind string

const (
	KindContact                    EntityKind = "contact"
	KindContactAddress             EntityKind = "contact-address"
	KindContactPhone               EntityKind = "contact-phone"
	KindContactAddressPhone        EntityKind = "contact-address-phone"
	KindContactEmail               EntityKind = "contact-email"
	KindContactIdentity            EntityKind = "contact-identity"
	KindContactEmployment          EntityKind = "contact-employment"
	KindContactRestriction         EntityKind = "contact-restriction"
	KindPrisonerContact            EntityKind = "prisoner-contact"
	KindPrisonerContactRestriction EntityKind = "prisoner-contact-restriction"
	KindPrisonerAddress            EntityKind = "prisoner-address"
	KindPrisonerAddressPhone       EntityKind = "prisoner-address-phone"
	KindPrisonerPhone              EntityKind = "prisoner-phone"
	KindPrisonerRestriction        EntityKind = "prisoner-restriction"
)

// AllKinds lists every kind in a stable order.
var AllKinds = []EntityKind{
	KindContact,
	KindContactAddress,
	KindContactPhone,
	KindContactAddressPhone,
	KindContactEmail,
	KindContactIdentity,
	KindContactEmployment,
	KindContactRestriction,
	KindPrisonerContact,
	KindPrisonerContactRestriction,
	KindPrisonerAddress,
	KindPrisonerAddressPhone,
	KindPrisonerPhone,
	KindPrisonerRestriction,
}

// OwnerScope describes what the owner key of a kind refers to.
type OwnerScope string

const (
	OwnerPerson   OwnerScope = "person"
	OwnerPrisoner OwnerScope = "prisoner"
)

// IsValid reports whether k belongs to the closed set.
func (k EntityKind) IsValid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Scope returns whose aggregate owns records of this kind.
func (k EntityKind) Scope() OwnerScope {
	switch k {
	case KindPrisonerContact, KindPrisonerContactRestriction,
		KindPrisonerAddress, KindPrisonerAddressPhone,
		KindPrisonerPhone, KindPrisonerRestriction:
		return OwnerPrisoner
	default:
		return OwnerPerson
	}
}

func (k EntityKind) String() string {
	return string(k)
}

// ParseEntityKind validates a raw kind name.
func ParseEntityKind(raw string) (EntityKind, error) {
	k := EntityKind(raw)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown entity kind %q", raw)
	}
	return k, nil
}
