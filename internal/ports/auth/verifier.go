package auth

import "context"

// AuthVerifier verifica un token y devuelve claims o error.
// La implementación real vive en adapters/auth/odin; en dev el
// middleware acepta X-Debug-User-ID sin verifier.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
