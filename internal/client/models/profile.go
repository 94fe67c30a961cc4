// Package models defines the console's identity data model: the user
// profile, the session pairing it with a credential, the record cached in
// the session store, and the error taxonomy shared by the identity client
// and the session controller.
package models

import "strings"

// UserProfile is the minimal user data returned by the identity service.
type UserProfile struct {
	Email       string  `json:"email"`
	FullName    string  `json:"full_name"`
	DateOfBirth *string `json:"date_of_birth"`
}

// WithFallback fills every field that is absent in p from fb. A field is
// absent when it is empty (or nil for DateOfBirth).
func (p UserProfile) WithFallback(fb UserProfile) UserProfile {
	out := p
	if out.Email == "" {
		out.Email = fb.Email
	}
	if out.FullName == "" {
		out.FullName = fb.FullName
	}
	if out.DateOfBirth == nil || *out.DateOfBirth == "" {
		out.DateOfBirth = fb.DateOfBirth
	}
	return out
}

// Clone returns a deep copy of p.
func (p UserProfile) Clone() UserProfile {
	out := p
	if p.DateOfBirth != nil {
		dob := *p.DateOfBirth
		out.DateOfBirth = &dob
	}
	return out
}

// LocalPart returns the part of email before the first "@".
func LocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// FallbackProfile is used when a login succeeded but the profile could not
// be fetched.
func FallbackProfile(email string) UserProfile {
	return UserProfile{Email: email, FullName: LocalPart(email)}
}
