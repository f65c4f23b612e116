package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gasbot/pkg/models"
)

func TestResolve(t *testing.T) {
	user := &models.User{ID: "u-1"}

	tests := []struct {
		name    string
		session *models.Session
		want    Route
	}{
		{
			name:    "nil session",
			session: nil,
			want:    RoutePublic,
		},
		{
			name:    "loading wins over everything",
			session: &models.Session{IsLoading: true, AccessToken: "a", User: user, TempUser: &models.TempUser{ID: "t"}},
			want:    RouteSplash,
		},
		{
			name:    "pending otp wins over authenticated",
			session: &models.Session{TempUser: &models.TempUser{ID: "t"}, AccessToken: "a", User: user},
			want:    RouteVerifyOTP,
		},
		{
			name:    "authenticated without setup",
			session: &models.Session{AccessToken: "a", User: user},
			want:    RouteOnboarding,
		},
		{
			name:    "authenticated with setup",
			session: &models.Session{AccessToken: "a", User: user, SetupComplete: true},
			want:    RouteMain,
		},
		{
			name:    "token without user is not authenticated",
			session: &models.Session{AccessToken: "a"},
			want:    RoutePublic,
		},
		{
			name:    "user without token is not authenticated",
			session: &models.Session{User: user, SetupComplete: true},
			want:    RoutePublic,
		},
		{
			name:    "empty session",
			session: &models.Session{},
			want:    RoutePublic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.session))
		})
	}
}
