// Package gate derives which screen graph to mount from session state.
// It is a pure function of the session snapshot, re-evaluated on every
// change; there is no transition history.
package gate

import "gasbot/pkg/models"

type Route string

const (
	RouteSplash     Route = "splash"
	RouteVerifyOTP  Route = "verify_otp"
	RouteOnboarding Route = "onboarding"
	RouteMain       Route = "main"
	RoutePublic     Route = "public"
)

// Resolve picks the route for a session snapshot. First match wins:
// loading, pending OTP, authenticated-but-unboarded, authenticated,
// then the public graph.
func Resolve(s *models.Session) Route {
	switch {
	case s == nil:
		return RoutePublic
	case s.IsLoading:
		return RouteSplash
	case s.TempUser != nil:
		return RouteVerifyOTP
	case s.IsAuthenticated() && !s.SetupComplete:
		return RouteOnboarding
	case s.IsAuthenticated():
		return RouteMain
	default:
		return RoutePublic
	}
}
