package domain

// Claims is the identity payload embedded in a signed session token.
// There is no server-side session record: validity is purely cryptographic,
// so claims are immutable once issued and re-derived on every request.
type Claims struct {
	UserID  string `json:"user_id"`
	OrgID   string `json:"org_id"`
	OrgRole string `json:"org_role"`
}
