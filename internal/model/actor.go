package model

import "github.com/google/uuid"

// Actor is the resolved identity of a request: an admin account, a custom
// user, or neither. At most one of the two fields is non-nil; the zero value
// means unauthenticated. Handlers thread it explicitly instead of relying on
// ambient request state.
type Actor struct {
	Admin  *AdminUser
	Custom *CustomUser
}

func (a Actor) IsAdmin() bool     { return a.Admin != nil }
func (a Actor) IsCustom() bool    { return a.Admin == nil && a.Custom != nil }
func (a Actor) IsAnonymous() bool { return a.Admin == nil && a.Custom == nil }

// UserType returns the discriminator value matching the identity class.
func (a Actor) UserType() string {
	switch {
	case a.IsAdmin():
		return "admin"
	case a.IsCustom():
		return "user"
	default:
		return ""
	}
}

// DisplayName returns a human readable name for audit descriptions.
func (a Actor) DisplayName() string {
	switch {
	case a.IsAdmin():
		return a.Admin.Username
	case a.IsCustom():
		return a.Custom.FullName
	default:
		return "Anonymous"
	}
}

// AdminID returns the admin account id, or nil for non-admin actors.
func (a Actor) AdminID() *uuid.UUID {
	if a.Admin == nil {
		return nil
	}
	id := a.Admin.ID
	return &id
}

// CustomID returns the custom user id, or nil for non-custom actors.
func (a Actor) CustomID() *uuid.UUID {
	if !a.IsCustom() {
		return nil
	}
	id := a.Custom.ID
	return &id
}
