package translate

import (
	"contactsync/internal/legacy"
	"contactsync/internal/sync/models"
	"contactsync/internal/target"
)

// variants registers one translation per entity kind. Fields not listed in a
// builder are dropped on purpose: reference-data descriptions, the legacy
// audit module name, booking ids and biometrics flags have no target home.
func variants() []variant {
	return []variant{
		define(models.KindContact, personOwner, nil, buildContact),
		define(models.KindContactAddress, addressPersonOwner, parentContactOfAddress, buildContactAddress),
		define(models.KindContactPhone, phonePersonOwner, parentContactOfPhone, buildContactPhone),
		define(models.KindContactAddressPhone, phonePersonOwner, parentAddressOf(models.KindContactAddress), buildContactAddressPhone),
		define(models.KindContactEmail,
			func(e legacy.Email) string { return legacy.PersonKey(e.PersonID) },
			func(e legacy.Email) *ParentRef { return contactRef(e.PersonID) },
			buildContactEmail),
		define(models.KindContactIdentity,
			func(i legacy.Identifier) string { return legacy.PersonKey(i.PersonID) },
			func(i legacy.Identifier) *ParentRef { return contactRef(i.PersonID) },
			buildContactIdentity),
		define(models.KindContactEmployment,
			func(e legacy.Employment) string { return legacy.PersonKey(e.PersonID) },
			func(e legacy.Employment) *ParentRef { return contactRef(e.PersonID) },
			buildContactEmployment),
		define(models.KindContactRestriction,
			func(r legacy.Restriction) string { return legacy.PersonKey(r.PersonID) },
			func(r legacy.Restriction) *ParentRef { return contactRef(r.PersonID) },
			buildContactRestriction),
		define(models.KindPrisonerContact,
			func(c legacy.PrisonerContact) string { return c.OffenderNo },
			func(c legacy.PrisonerContact) *ParentRef { return contactRef(c.PersonID) },
			buildPrisonerContact),
		define(models.KindPrisonerContactRestriction,
			func(r legacy.Restriction) string { return r.OffenderNo },
			func(r legacy.Restriction) *ParentRef {
				return &ParentRef{Kind: models.KindPrisonerContact, LegacyID: r.ContactID}
			},
			buildPrisonerContactRestriction),
		define(models.KindPrisonerAddress, func(a legacy.Address) string { return a.OffenderNo }, nil, buildPrisonerAddress),
		define(models.KindPrisonerAddressPhone,
			func(p legacy.Phone) string { return p.OffenderNo },
			parentAddressOf(models.KindPrisonerAddress),
			buildPrisonerAddressPhone),
		define(models.KindPrisonerPhone, func(p legacy.Phone) string { return p.OffenderNo }, nil, buildPrisonerPhone),
		define(models.KindPrisonerRestriction, func(r legacy.Restriction) string { return r.OffenderNo }, nil, buildPrisonerRestriction),
	}
}

func personOwner(p legacy.Person) string         { return legacy.PersonKey(p.PersonID) }
func addressPersonOwner(a legacy.Address) string { return legacy.PersonKey(a.PersonID) }
func phonePersonOwner(p legacy.Phone) string     { return legacy.PersonKey(p.PersonID) }

func contactRef(personID int64) *ParentRef {
	return &ParentRef{Kind: models.KindContact, LegacyID: personID}
}

func parentContactOfAddress(a legacy.Address) *ParentRef { return contactRef(a.PersonID) }
func parentContactOfPhone(p legacy.Phone) *ParentRef     { return contactRef(p.PersonID) }

func parentAddressOf(kind models.EntityKind) func(legacy.Phone) *ParentRef {
	return func(p legacy.Phone) *ParentRef {
		return &ParentRef{Kind: kind, LegacyID: p.AddressID}
	}
}

func buildContact(p legacy.Person, c Context) target.Request {
	return target.ContactRequest{
		LegacyPersonID:      p.PersonID,
		Title:               legacy.CodeValue(p.Title),
		FirstName:           p.FirstName,
		MiddleNames:         p.MiddleName,
		LastName:            p.LastName,
		DateOfBirth:         p.DateOfBirth,
		Gender:              legacy.CodeValue(p.Gender),
		Language:            legacy.CodeValue(p.Language),
		InterpreterRequired: p.InterpreterRequired,
		DomesticStatus:      legacy.CodeValue(p.DomesticStatus),
		DeceasedDate:        p.DeceasedDate,
		IsStaff:             flag(p.IsStaff),
		IsRemitter:          flag(p.IsRemitter),
		Audit:               audit(p.Audit, c.Op),
	}
}

func buildContactAddress(a legacy.Address, c Context) target.Request {
	return target.ContactAddressRequest{
		ContactID:      c.ParentTargetID,
		AddressDetails: addressDetails(a),
		Audit:          audit(a.Audit, c.Op),
	}
}

func buildPrisonerAddress(a legacy.Address, c Context) target.Request {
	return target.PrisonerAddressRequest{
		PrisonerNumber: a.OffenderNo,
		AddressDetails: addressDetails(a),
		Audit:          audit(a.Audit, c.Op),
	}
}

func buildContactPhone(p legacy.Phone, c Context) target.Request {
	return target.ContactPhoneRequest{
		ContactID:    c.ParentTargetID,
		PhoneDetails: phoneDetails(p),
		Audit:        audit(p.Audit, c.Op),
	}
}

func buildContactAddressPhone(p legacy.Phone, c Context) target.Request {
	return target.ContactAddressPhoneRequest{
		ContactAddressID: c.ParentTargetID,
		PhoneDetails:     phoneDetails(p),
		Audit:            audit(p.Audit, c.Op),
	}
}

func buildPrisonerPhone(p legacy.Phone, c Context) target.Request {
	return target.PrisonerPhoneRequest{
		PrisonerNumber: p.OffenderNo,
		PhoneDetails:   phoneDetails(p),
		Audit:          audit(p.Audit, c.Op),
	}
}

func buildPrisonerAddressPhone(p legacy.Phone, c Context) target.Request {
	return target.PrisonerAddressPhoneRequest{
		PrisonerAddressID: c.ParentTargetID,
		PhoneDetails:      phoneDetails(p),
		Audit:             audit(p.Audit, c.Op),
	}
}

func buildContactEmail(e legacy.Email, c Context) target.Request {
	return target.ContactEmailRequest{
		ContactID:    c.ParentTargetID,
		EmailAddress: e.Email,
		Audit:        audit(e.Audit, c.Op),
	}
}

func buildContactIdentity(i legacy.Identifier, c Context) target.Request {
	return target.ContactIdentityRequest{
		ContactID:        c.ParentTargetID,
		IdentityType:     i.Type.Code,
		IdentityValue:    i.Identifier,
		IssuingAuthority: i.IssuedAuth,
		Audit:            audit(i.Audit, c.Op),
	}
}

func buildContactEmployment(e legacy.Employment, c Context) target.Request {
	return target.ContactEmploymentRequest{
		ContactID:      c.ParentTargetID,
		OrganisationID: e.OrganisationID,
		IsActive:       e.Active,
		Audit:          audit(e.Audit, c.Op),
	}
}

func buildContactRestriction(r legacy.Restriction, c Context) target.Request {
	return target.ContactRestrictionRequest{
		ContactID:          c.ParentTargetID,
		RestrictionDetails: restrictionDetails(r),
		Audit:              audit(r.Audit, c.Op),
	}
}

func buildPrisonerContactRestriction(r legacy.Restriction, c Context) target.Request {
	return target.PrisonerContactRestrictionRequest{
		PrisonerContactID:  c.ParentTargetID,
		RestrictionDetails: restrictionDetails(r),
		Audit:              audit(r.Audit, c.Op),
	}
}

func buildPrisonerRestriction(r legacy.Restriction, c Context) target.Request {
	return target.PrisonerRestrictionRequest{
		PrisonerNumber:     r.OffenderNo,
		AuthorisedUsername: r.AuthorisedUsername,
		RestrictionDetails: restrictionDetails(r),
		Audit:              audit(r.Audit, c.Op),
	}
}

func buildPrisonerContact(pc legacy.PrisonerContact, c Context) target.Request {
	return target.PrisonerContactRequest{
		ContactID:        c.ParentTargetID,
		PrisonerNumber:   pc.OffenderNo,
		ContactType:      pc.ContactType.Code,
		RelationshipType: pc.RelationshipType.Code,
		NextOfKin:        pc.NextOfKin,
		EmergencyContact: pc.EmergencyContact,
		Active:           pc.Active,
		ApprovedVisitor:  pc.ApprovedVisitor,
		CurrentTerm:      pc.CurrentTerm,
		Comments:         pc.Comment,
		Audit:            audit(pc.Audit, c.Op),
	}
}
