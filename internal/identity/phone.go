package identity

import (
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"

	"github.com/spec-kit/dashboard-session/internal/domain"
)

// E164Phone renders the identity phone in E.164 form. The country code may be
// a dialing prefix ("+44", "44") or a region code ("GB"). It returns "" when
// the number cannot be parsed.
func E164Phone(id domain.Identity) string {
	phone := strings.TrimSpace(id.Phone)
	if phone == "" {
		return ""
	}

	cc := strings.TrimPrefix(strings.TrimSpace(id.CountryCode), "+")
	region := ""
	switch {
	case strings.HasPrefix(phone, "+"):
	case cc == "":
		return ""
	case isDigits(cc):
		phone = "+" + cc + phone
	default:
		region = strings.ToUpper(cc)
	}

	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
