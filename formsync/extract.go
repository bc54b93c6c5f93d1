package formsync

import (
	"strings"

	"nailbar/models"
	"nailbar/utils"
)

// Known header spellings per extracted field. Form revisions renamed
// columns over time; all variants stay matchable.
var (
	nameHeaders     = []string{"name", "full name", "your name", "client name"}
	emailHeaders    = []string{"email", "email address", "e-mail"}
	phoneHeaders    = []string{"phone", "phone number", "contact number", "mobile"}
	socialHeaders   = []string{"instagram", "instagram handle", "social", "social handle", "ig"}
	referralHeaders = []string{"referral", "referral source", "referred by", "how did you hear about us"}
	codeHeaders     = []string{"booking id", "booking code", "booking reference", "reference"}
)

// ExtractField returns the first non-empty value whose header matches one
// of the variants, case-insensitively. Exact matches win over substring
// matches so "email" never grabs "backup email" when both exist.
func ExtractField(fields map[string]string, variants []string) string {
	norm := make(map[string]string, len(fields))
	for k, v := range fields {
		norm[utils.NormalizeHeader(k)] = strings.TrimSpace(v)
	}

	for _, variant := range variants {
		if v, ok := norm[variant]; ok && v != "" {
			return v
		}
	}
	for _, variant := range variants {
		for k, v := range norm {
			if v != "" && strings.Contains(k, variant) {
				return v
			}
		}
	}
	return ""
}

// ExtractCustomer pulls the contact details a form row carries. Absent
// fields stay empty; the resolver copes.
func ExtractCustomer(fields map[string]string) models.Customer {
	return models.Customer{
		Name:     ExtractField(fields, nameHeaders),
		Email:    ExtractField(fields, emailHeaders),
		Phone:    ExtractField(fields, phoneHeaders),
		Social:   ExtractField(fields, socialHeaders),
		Referral: ExtractField(fields, referralHeaders),
	}
}

// ExtractBookingCode finds the booking correlation code in a raw row.
func ExtractBookingCode(fields map[string]string) string {
	return ExtractField(fields, codeHeaders)
}
