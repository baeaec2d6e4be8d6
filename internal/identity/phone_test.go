package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/dashboard-session/internal/domain"
)

func TestE164Phone(t *testing.T) {
	tests := []struct {
		name string
		id   domain.Identity
		want string
	}{
		{name: "dialing prefix", id: domain.Identity{CountryCode: "+44", Phone: "20 7031 3000"}, want: "+442070313000"},
		{name: "bare digits prefix", id: domain.Identity{CountryCode: "44", Phone: "2070313000"}, want: "+442070313000"},
		{name: "region code", id: domain.Identity{CountryCode: "gb", Phone: "020 7031 3000"}, want: "+442070313000"},
		{name: "already international", id: domain.Identity{Phone: "+442070313000"}, want: "+442070313000"},
		{name: "no country code", id: domain.Identity{Phone: "2070313000"}, want: ""},
		{name: "empty phone", id: domain.Identity{CountryCode: "+44"}, want: ""},
		{name: "no digits", id: domain.Identity{CountryCode: "+44", Phone: "()"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, E164Phone(tt.id))
		})
	}
}
