package target

import (
	"contactsync/internal/sync/models"
	"contactsync/pkg/domain"
)

// Request is a target write payload for one entity kind.
type Request interface {
	EntityKind() models.EntityKind
}

// Audit carries who wrote the record and when, as recorded by the legacy
// system. Creates fill Created*, updates fill Updated*, bulk writes fill both.
type Audit struct {
	CreatedBy   string                `json:"createdBy,omitempty"`
	CreatedTime *domain.LocalDateTime `json:"createdTime,omitempty"`
	UpdatedBy   *string               `json:"updatedBy,omitempty"`
	UpdatedTime *domain.LocalDateTime `json:"updatedTime,omitempty"`
}

type ContactRequest struct {
	LegacyPersonID      int64             `json:"personId"`
	Title               *string           `json:"titleCode,omitempty"`
	FirstName           string            `json:"firstName"`
	MiddleNames         *string           `json:"middleNames,omitempty"`
	LastName            string            `json:"lastName"`
	DateOfBirth         *domain.LocalDate `json:"dateOfBirth,omitempty"`
	Gender              *string           `json:"genderCode,omitempty"`
	Language            *string           `json:"languageCode,omitempty"`
	InterpreterRequired bool              `json:"interpreterRequired"`
	DomesticStatus      *string           `json:"domesticStatusCode,omitempty"`
	DeceasedDate        *domain.LocalDate `json:"deceasedDate,omitempty"`
	IsStaff             bool              `json:"isStaff"`
	IsRemitter          bool              `json:"remitter"`
	Audit
}

// AddressDetails is the body shared by contact and prisoner addresses.
type AddressDetails struct {
	AddressType    *string           `json:"addressType,omitempty"`
	Primary        bool              `json:"primaryAddress"`
	Flat           *string           `json:"flat,omitempty"`
	Property       *string           `json:"property,omitempty"`
	Street         *string           `json:"street,omitempty"`
	Area           *string           `json:"area,omitempty"`
	CityCode       *string           `json:"cityCode,omitempty"`
	CountyCode     *string           `json:"countyCode,omitempty"`
	PostCode       *string           `json:"postcode,omitempty"`
	CountryCode    *string           `json:"countryCode,omitempty"`
	NoFixedAddress bool              `json:"noFixedAddress"`
	MailFlag       bool              `json:"mailFlag"`
	Comments       *string           `json:"comments,omitempty"`
	StartDate      *domain.LocalDate `json:"startDate,omitempty"`
	EndDate        *domain.LocalDate `json:"endDate,omitempty"`
}

type ContactAddressRequest struct {
	ContactID string `json:"contactId"`
	AddressDetails
	Audit
}

type PrisonerAddressRequest struct {
	PrisonerNumber string `json:"prisonerNumber"`
	AddressDetails
	Audit
}

// PhoneDetails is the body shared by every phone kind.
type PhoneDetails struct {
	PhoneType   string  `json:"phoneType"`
	PhoneNumber string  `json:"phoneNumber"`
	ExtNumber   *string `json:"extNumber,omitempty"`
}

type ContactPhoneRequest struct {
	ContactID string `json:"contactId"`
	PhoneDetails
	Audit
}

type ContactAddressPhoneRequest struct {
	ContactAddressID string `json:"contactAddressId"`
	PhoneDetails
	Audit
}

type PrisonerPhoneRequest struct {
	PrisonerNumber string `json:"prisonerNumber"`
	PhoneDetails
	Audit
}

type PrisonerAddressPhoneRequest struct {
	PrisonerAddressID string `json:"prisonerAddressId"`
	PhoneDetails
	Audit
}

type ContactEmailRequest struct {
	ContactID    string `json:"contactId"`
	EmailAddress string `json:"emailAddress"`
	Audit
}

type ContactIdentityRequest struct {
	ContactID        string  `json:"contactId"`
	IdentityType     string  `json:"identityType"`
	IdentityValue    string  `json:"identityValue"`
	IssuingAuthority *string `json:"issuingAuthority,omitempty"`
	Audit
}

type ContactEmploymentRequest struct {
	ContactID      string `json:"contactId"`
	OrganisationID int64  `json:"organisationId"`
	IsActive       bool   `json:"isActive"`
	Audit
}

// RestrictionDetails is the body shared by every restriction kind.
type RestrictionDetails struct {
	RestrictionType string            `json:"restrictionType"`
	StartDate       domain.LocalDate  `json:"startDate"`
	ExpiryDate      *domain.LocalDate `json:"expiryDate,omitempty"`
	Comments        *string           `json:"comments,omitempty"`
	EnteredBy       string            `json:"enteredByUsername"`
}

type ContactRestrictionRequest struct {
	ContactID string `json:"contactId"`
	RestrictionDetails
	Audit
}

type PrisonerContactRestrictionRequest struct {
	PrisonerContactID string `json:"prisonerContactId"`
	RestrictionDetails
	Audit
}

type PrisonerRestrictionRequest struct {
	PrisonerNumber     string  `json:"prisonerNumber"`
	AuthorisedUsername *string `json:"authorisedUsername,omitempty"`
	RestrictionDetails
	Audit
}

type PrisonerContactRequest struct {
	ContactID        string  `json:"contactId"`
	PrisonerNumber   string  `json:"prisonerNumber"`
	ContactType      string  `json:"contactType"`
	RelationshipType string  `json:"relationshipType"`
	NextOfKin        bool    `json:"nextOfKin"`
	EmergencyContact bool    `json:"emergencyContact"`
	Active           bool    `json:"active"`
	ApprovedVisitor  bool    `json:"approvedVisitor"`
	CurrentTerm      bool    `json:"currentTerm"`
	Comments         *string `json:"comments,omitempty"`
	Audit
}

func (ContactRequest) EntityKind() models.EntityKind        { return models.KindContact }
func (ContactAddressRequest) EntityKind() models.EntityKind { return models.KindContactAddress }
func (ContactPhoneRequest) EntityKind() models.EntityKind   { return models.KindContactPhone }
func (ContactAddressPhoneRequest) EntityKind() models.EntityKind {
	return models.KindContactAddressPhone
}
func (ContactEmailRequest) EntityKind() models.EntityKind      { return models.KindContactEmail }
func (ContactIdentityRequest) EntityKind() models.EntityKind   { return models.KindContactIdentity }
func (ContactEmploymentRequest) EntityKind() models.EntityKind { return models.KindContactEmployment }
func (ContactRestrictionRequest) EntityKind() models.EntityKind {
	return models.KindContactRestriction
}
func (PrisonerContactRequest) EntityKind() models.EntityKind { return models.KindPrisonerContact }
func (PrisonerContactRestrictionRequest) EntityKind() models.EntityKind {
	return models.KindPrisonerContactRestriction
}
func (PrisonerAddressRequest) EntityKind() models.EntityKind { return models.KindPrisonerAddress }
func (PrisonerAddressPhoneRequest) EntityKind() models.EntityKind {
	return models.KindPrisonerAddressPhone
}
func (PrisonerPhoneRequest) EntityKind() models.EntityKind { return models.KindPrisonerPhone }
func (PrisonerRestrictionRequest) EntityKind() models.EntityKind {
	return models.KindPrisonerRestriction
}
