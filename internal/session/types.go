package session

// Data is everything the storefront keeps per browser session: the
// stable session id, the upstream bearer token once logged in, and the
// analytics consent flags.
type Data struct {
	ID               string
	Token            string
	UserName         string
	UserEmail        string
	IsAdmin          bool
	AnalyticsConsent bool
}

// Authenticated reports whether the session carries a bearer token.
func (d *Data) Authenticated() bool {
	return d != nil && d.Token != ""
}
