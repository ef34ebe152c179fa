package domain

import "strings"

// Account represents a registered user as stored in the account directory.
type Account struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name,omitempty"`
	UID      string  `json:"uid"`
}

// Session is the signed-in projection of an Account. It never carries the password.
type Session struct {
	UID   string  `json:"uid"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

// Session projects the account into its session form.
func (a Account) Session() Session {
	return Session{
		UID:   a.UID,
		Email: a.Email,
		Name:  a.Name,
	}
}

// NormalizeEmail returns the directory key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(email)
}
