package auth

// Claims es la identidad extraída del token. UserID es el dueño o
// delegado que los handlers comparan contra farms y grants.
type Claims struct {
	UserID   string
	Email    string
	TenantID string
}
