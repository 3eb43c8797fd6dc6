package routeguard

import (
	"slices"

	"github.com/mcoot/tourcompanion/internal/model"
)

// Action is the navigation instruction produced by the guard
type Action string

const (
	ActionNone            Action = "none"
	ActionRedirectToLogin Action = "redirect_to_login"
	ActionRedirectToHome  Action = "redirect_to_home"
)

// Rules configures which screens form the auth group and where redirects go
type Rules struct {
	// AuthGroups are the first path segments reachable without a session
	AuthGroups []string
	// LoginTarget is where unauthenticated users are sent
	LoginTarget model.Location
	// HomeTarget is the default landing screen of the main app
	HomeTarget model.Location
}

// DefaultRules returns the rules used by the app
func DefaultRules() Rules {
	return Rules{
		AuthGroups:  []string{"login", "signup"},
		LoginTarget: model.Location{"login"},
		HomeTarget:  model.Location{"tabs", "map"},
	}
}

// Decide maps a session status and location to an action using DefaultRules
func Decide(status model.SessionStatus, location model.Location) Action {
	return DefaultRules().Decide(status, location)
}

// Decide maps a session status and location to an action. It is pure: it
// never navigates and holds no state.
func (r Rules) Decide(status model.SessionStatus, location model.Location) Action {
	// Nothing to decide until persisted credentials have been checked
	if status == model.StatusLoading {
		return ActionNone
	}

	inAuthGroup := r.isAuthGroup(location.First())
	signedIn := status.HasToken()

	switch {
	case !signedIn && !inAuthGroup:
		return ActionRedirectToLogin
	case signedIn && inAuthGroup:
		return ActionRedirectToHome
	default:
		return ActionNone
	}
}

// Target returns the destination of a redirect action, or nil for ActionNone
func (r Rules) Target(action Action) model.Location {
	switch action {
	case ActionRedirectToLogin:
		return slices.Clone(r.LoginTarget)
	case ActionRedirectToHome:
		return slices.Clone(r.HomeTarget)
	default:
		return nil
	}
}

func (r Rules) isAuthGroup(segment string) bool {
	return slices.Contains(r.AuthGroups, segment)
}
