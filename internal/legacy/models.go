package legacy

import (
	"strconv"

	"contactsync/pkg/domain"
)

// Record is any legacy row that can be mapped. LegacyID is the stable,
// system-assigned identifier used as the mapping key.
type Record interface {
	LegacyID() int64
}

// Code is a legacy reference-data value. Only the code crosses to the target;
// descriptions are display text owned by the legacy system.
type Code struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// CodeValue returns the code or nil when the reference is absent.
func CodeValue(c *Code) *string {
	if c == nil || c.Code == "" {
		return nil
	}
	v := c.Code
	return &v
}

// Audit is the creator and modifier metadata carried by every legacy row.
type Audit struct {
	CreateUsername string                `json:"createUsername"`
	CreateDatetime domain.LocalDateTime  `json:"createDatetime"`
	ModifyUserID   *string               `json:"modifyUserId,omitempty"`
	ModifyDatetime *domain.LocalDateTime `json:"modifyDatetime,omitempty"`
	AuditModule    string                `json:"auditModuleName,omitempty"`
}

// Person is the contact aggregate root.
type Person struct {
	PersonID            int64             `json:"personId"`
	FirstName           string            `json:"firstName"`
	LastName            string            `json:"lastName"`
	MiddleName          *string           `json:"middleName,omitempty"`
	DateOfBirth         *domain.LocalDate `json:"dateOfBirth,omitempty"`
	Gender              *Code             `json:"gender,omitempty"`
	Title               *Code             `json:"title,omitempty"`
	Language            *Code             `json:"language,omitempty"`
	InterpreterRequired bool              `json:"interpreterRequired"`
	DomesticStatus      *Code             `json:"domesticStatus,omitempty"`
	DeceasedDate        *domain.LocalDate `json:"deceasedDate,omitempty"`
	IsStaff             *bool             `json:"isStaff,omitempty"`
	IsRemitter          *bool             `json:"isRemitter,omitempty"`
	KeepBiometrics      bool              `json:"keepBiometrics"`
	Audit               Audit             `json:"audit"`
}

func (p Person) LegacyID() int64 { return p.PersonID }

// Address is shared by person and prisoner addresses.
type Address struct {
	AddressID      int64             `json:"addressId"`
	PersonID       int64             `json:"personId,omitempty"`
	OffenderNo     string            `json:"offenderNo,omitempty"`
	Type           *Code             `json:"type,omitempty"`
	Flat           *string           `json:"flat,omitempty"`
	Premise        *string           `json:"premise,omitempty"`
	Street         *string           `json:"street,omitempty"`
	Locality       *string           `json:"locality,omitempty"`
	PostCode       *string           `json:"postcode,omitempty"`
	City           *Code             `json:"city,omitempty"`
	County         *Code             `json:"county,omitempty"`
	Country        *Code             `json:"country,omitempty"`
	NoFixedAddress *bool             `json:"noFixedAddress,omitempty"`
	Primary        bool              `json:"primaryAddress"`
	Mail           bool              `json:"mailAddress"`
	Comment        *string           `json:"comment,omitempty"`
	StartDate      *domain.LocalDate `json:"startDate,omitempty"`
	EndDate        *domain.LocalDate `json:"endDate,omitempty"`
	Audit          Audit             `json:"audit"`
}

func (a Address) LegacyID() int64 { return a.AddressID }

// Phone is shared by person, prisoner and address phones. AddressID is set
// only for address phones.
type Phone struct {
	PhoneID    int64   `json:"phoneId"`
	PersonID   int64   `json:"personId,omitempty"`
	OffenderNo string  `json:"offenderNo,omitempty"`
	AddressID  int64   `json:"addressId,omitempty"`
	Number     string  `json:"number"`
	Extension  *string `json:"extension,omitempty"`
	Type       Code    `json:"type"`
	Audit      Audit   `json:"audit"`
}

func (p Phone) LegacyID() int64 { return p.PhoneID }

type Email struct {
	EmailAddressID int64  `json:"emailAddressId"`
	PersonID       int64  `json:"personId"`
	Email          string `json:"email"`
	Audit          Audit  `json:"audit"`
}

func (e Email) LegacyID() int64 { return e.EmailAddressID }

// Identifier is a person's identity document. The legacy key is the pair
// (personId, sequence); the sequence alone is only unique per person, so
// LegacyID combines both.
type Identifier struct {
	PersonID   int64   `json:"personId"`
	Sequence   int64   `json:"sequence"`
	Type       Code    `json:"type"`
	Identifier string  `json:"identifier"`
	IssuedAuth *string `json:"issuedAuthority,omitempty"`
	Audit      Audit   `json:"audit"`
}

// identifierSequenceSpan bounds the per-person identifier sequence so the
// composite id stays unique.
const identifierSequenceSpan = 10_000

func (i Identifier) LegacyID() int64 { return i.PersonID*identifierSequenceSpan + i.Sequence }

// Employment links a person to an employing organisation.
type Employment struct {
	PersonID       int64 `json:"personId"`
	Sequence       int64 `json:"sequence"`
	OrganisationID int64 `json:"corporateId"`
	Active         bool  `json:"active"`
	Audit          Audit `json:"audit"`
}

func (e Employment) LegacyID() int64 { return e.PersonID*identifierSequenceSpan + e.Sequence }

// Restriction is shared by person, prisoner-contact and prisoner restrictions.
// Only the owning reference relevant to the kind is populated.
type Restriction struct {
	RestrictionID        int64             `json:"restrictionId"`
	PersonID             int64             `json:"personId,omitempty"`
	ContactID            int64             `json:"contactId,omitempty"`
	OffenderNo           string            `json:"offenderNo,omitempty"`
	Type                 Code              `json:"type"`
	Comment              *string           `json:"comment,omitempty"`
	EffectiveDate        domain.LocalDate  `json:"effectiveDate"`
	ExpiryDate           *domain.LocalDate `json:"expiryDate,omitempty"`
	EnteredStaffUsername string            `json:"enteredStaffUsername"`
	AuthorisedUsername   *string           `json:"authorisedStaffUsername,omitempty"`
	Audit                Audit             `json:"audit"`
}

func (r Restriction) LegacyID() int64 { return r.RestrictionID }

// PrisonerContact is the relationship between a prisoner and a person.
type PrisonerContact struct {
	ContactID        int64   `json:"contactId"`
	PersonID         int64   `json:"personId"`
	OffenderNo       string  `json:"offenderNo"`
	BookingID        int64   `json:"bookingId"`
	ContactType      Code    `json:"contactType"`
	RelationshipType Code    `json:"relationshipType"`
	NextOfKin        bool    `json:"nextOfKin"`
	EmergencyContact bool    `json:"emergencyContact"`
	Active           bool    `json:"active"`
	ApprovedVisitor  bool    `json:"approvedVisitor"`
	CurrentTerm      bool    `json:"currentTerm"`
	Comment          *string `json:"comment,omitempty"`
	Audit            Audit   `json:"audit"`
}

func (c PrisonerContact) LegacyID() int64 { return c.ContactID }

// PersonKey formats a person id as an owner key.
func PersonKey(personID int64) string {
	return strconv.FormatInt(personID, 10)
}
