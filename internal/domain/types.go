package domain

// RequestContext carries the authenticated identity when available.
type RequestContext struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	TokenID string `json:"-"`
}

// Authenticated reports whether the request carried a verified token.
func (rc RequestContext) Authenticated() bool {
	return rc.UID != ""
}
