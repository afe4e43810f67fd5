package translate

import (
	"contactsync/internal/legacy"
	"contactsync/internal/target"
)

// audit copies legacy audit fields without any time zone conversion. Updates
// fall back to the creation pair when the legacy row was never modified.
func audit(a legacy.Audit, op Operation) target.Audit {
	created := a.CreateDatetime
	switch op {
	case OpCreate:
		return target.Audit{CreatedBy: a.CreateUsername, CreatedTime: &created}
	case OpUpdate:
		by := a.CreateUsername
		if a.ModifyUserID != nil {
			by = *a.ModifyUserID
		}
		when := created
		if a.ModifyDatetime != nil {
			when = *a.ModifyDatetime
		}
		return target.Audit{UpdatedBy: &by, UpdatedTime: &when}
	default:
		out := target.Audit{CreatedBy: a.CreateUsername, CreatedTime: &created}
		if a.ModifyUserID != nil {
			by := *a.ModifyUserID
			out.UpdatedBy = &by
		}
		if a.ModifyDatetime != nil {
			when := *a.ModifyDatetime
			out.UpdatedTime = &when
		}
		return out
	}
}

func flag(b *bool) bool {
	return b != nil && *b
}

func addressDetails(a legacy.Address) target.AddressDetails {
	return target.AddressDetails{
		AddressType:    legacy.CodeValue(a.Type),
		Primary:        a.Primary,
		Flat:           a.Flat,
		Property:       a.Premise,
		Street:         a.Street,
		Area:           a.Locality,
		CityCode:       legacy.CodeValue(a.City),
		CountyCode:     legacy.CodeValue(a.County),
		PostCode:       a.PostCode,
		CountryCode:    legacy.CodeValue(a.Country),
		NoFixedAddress: flag(a.NoFixedAddress),
		MailFlag:       a.Mail,
		Comments:       a.Comment,
		StartDate:      a.StartDate,
		EndDate:        a.EndDate,
	}
}

func phoneDetails(p legacy.Phone) target.PhoneDetails {
	return target.PhoneDetails{
		PhoneType:   p.Type.Code,
		PhoneNumber: p.Number,
		ExtNumber:   p.Extension,
	}
}

func restrictionDetails(r legacy.Restriction) target.RestrictionDetails {
	return target.RestrictionDetails{
		RestrictionType: r.Type.Code,
		StartDate:       r.EffectiveDate,
		ExpiryDate:      r.ExpiryDate,
		Comments:        r.Comment,
		EnteredBy:       r.EnteredStaffUsername,
	}
}
