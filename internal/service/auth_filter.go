package service

import "busline/internal/auth"

// AuthAction is what a session store does in response to an auth-state event.
type AuthAction int

const (
	ActionIgnore AuthAction = iota
	ActionLoadProfile
	ActionClear
)

func (a AuthAction) String() string {
	switch a {
	case ActionLoadProfile:
		return "load_profile"
	case ActionClear:
		return "clear"
	default:
		return "ignore"
	}
}

// DecideAuthAction maps an auth-state event to an action. SIGNED_IN and
// TOKEN_REFRESHED are ignored because the explicit sign-in path already
// loads the profile.
func DecideAuthAction(event auth.Event, hasSession bool) AuthAction {
	if !hasSession {
		return ActionClear
	}
	switch event {
	case auth.EventSignedIn, auth.EventTokenRefreshed:
		return ActionIgnore
	default:
		return ActionLoadProfile
	}
}
