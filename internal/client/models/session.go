package models

// Session pairs a credential with the profile of the user it identifies.
// Both parts are always present together.
type Session struct {
	Credential string
	Profile    UserProfile
}

// Record converts s into its persisted form.
func (s Session) Record() PersistedRecord {
	return PersistedRecord{Credential: s.Credential, ProfileSnapshot: s.Profile.Clone()}
}

// PersistedRecord is the session cache kept in the session store. It is
// never the source of truth after a successful validation.
type PersistedRecord struct {
	Credential      string
	ProfileSnapshot UserProfile
}

// Valid reports whether the record carries a credential.
func (r PersistedRecord) Valid() bool {
	return r.Credential != ""
}

// InvalidateResult captures the outcome of a server-side logout. It is
// logged and otherwise ignored.
type InvalidateResult struct {
	StatusCode int
	Err        error
}

// OK reports whether the server acknowledged the logout.
func (r InvalidateResult) OK() bool {
	return r.Err == nil && r.StatusCode >= 200 && r.StatusCode < 300
}
