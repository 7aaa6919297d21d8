package ports

import "context"

// OAuthProfile datos del usuario devueltos por el proveedor externo.
type OAuthProfile struct {
	Email      string
	FirstName  string
	LastName   string
	PictureURL string
}

// OAuthProvider canjea un código de autorización por el perfil del usuario.
type OAuthProvider interface {
	Exchange(ctx context.Context, code, redirectURI string) (*OAuthProfile, error)
}
