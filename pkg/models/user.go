package models

import "strconv"

// User carries the acting user's attributes as seen by the wizard core.
// Group membership and subscription state are queried from the host, not
// stored here.
type User struct {
	ID           string            `json:"id"             validate:"required"`
	Name         string            `json:"name"`
	Username     string            `json:"username"       validate:"required"`
	Email        string            `json:"email"`
	TrustLevel   int               `json:"trust_level"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
}

// Attributes returns the flat attribute map used for interpolation and
// condition evaluation. Custom profile fields are merged in but never
// shadow the built-in attributes.
func (u *User) Attributes() map[string]string {
	attrs := make(map[string]string, len(u.CustomFields)+5)

	for k, v := range u.CustomFields {
		attrs[k] = v
	}

	attrs["id"] = u.ID
	attrs["name"] = u.Name
	attrs["username"] = u.Username
	attrs["email"] = u.Email
	attrs["trust_level"] = strconv.Itoa(u.TrustLevel)

	return attrs
}
