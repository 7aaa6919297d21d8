package dto

// SignupRequest entrada para registro de clientes.
type SignupRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

// SigninRequest entrada para login con email y contraseña.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// GoogleSigninRequest código de autorización devuelto por Google al frontend.
type GoogleSigninRequest struct {
	GrantCode   string `json:"grant_code"`
	RedirectURI string `json:"redirect_uri"`
}

// AuthResponse token emitido tras un login o registro exitoso.
type AuthResponse struct {
	Token string           `json:"token"`
	User  UserInfoResponse `json:"user"`
}

// UserInfoResponse datos públicos del usuario autenticado.
type UserInfoResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Role       string `json:"role"`
	PictureURL string `json:"picture_url,omitempty"`
}
