package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/crochet-api/internal/application/dto"
	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/internal/domain"
	"github.com/jhoicas/crochet-api/internal/domain/entity"
	"github.com/jhoicas/crochet-api/internal/domain/repository"
	"github.com/jhoicas/crochet-api/pkg/jwt"
	"github.com/jhoicas/crochet-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro, login con contraseña y login con Google.
type AuthUseCase struct {
	txRunner ports.TxRunner
	repos    repository.Repos
	google   ports.OAuthProvider
	jwtCfg   JWTConfig
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth. google puede ser nil si el login con Google está deshabilitado.
func NewAuthUseCase(txRunner ports.TxRunner, repos repository.Repos, google ports.OAuthProvider, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{txRunner: txRunner, repos: repos, google: google, jwtCfg: jwtCfg, log: log.Component("auth")}
}

// Signup crea un cliente con rol USER junto con su carrito y devuelve un token.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") || strings.TrimSpace(in.FirstName) == "" || len(in.Password) < 8 {
		return nil, domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := uc.createWithCart(ctx, &entity.User{
		Email:        email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PasswordHash: string(hash),
		Role:         entity.RoleUser,
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Msg("usuario registrado")
	return uc.issue(user)
}

// Signin verifica email/password y emite un JWT.
func (uc *AuthUseCase) Signin(ctx context.Context, in dto.SigninRequest) (*dto.AuthResponse, error) {
	user, err := uc.repos.Users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	// cuentas creadas con Google no tienen contraseña
	if user.PasswordHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return uc.issue(user)
}

// SigninGoogle canjea el código de autorización y crea el usuario (con carrito) en el primer ingreso.
func (uc *AuthUseCase) SigninGoogle(ctx context.Context, in dto.GoogleSigninRequest) (*dto.AuthResponse, error) {
	if uc.google == nil {
		return nil, domain.ErrForbidden
	}
	if in.GrantCode == "" {
		return nil, domain.ErrInvalidInput
	}
	profile, err := uc.google.Exchange(ctx, in.GrantCode, in.RedirectURI)
	if err != nil {
		uc.log.Warn().Err(err).Msg("canje de código de Google falló")
		return nil, domain.ErrUnauthorized
	}
	email := normalizeEmail(profile.Email)
	if email == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := uc.repos.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound):
		user, err = uc.createWithCart(ctx, &entity.User{
			Email:      email,
			FirstName:  profile.FirstName,
			LastName:   profile.LastName,
			PictureURL: profile.PictureURL,
			Role:       entity.RoleUser,
		})
		if err != nil {
			return nil, err
		}
		uc.log.Info().Str("user_id", user.ID).Msg("usuario registrado con Google")
	default:
		return nil, err
	}
	return uc.issue(user)
}

// UserInfo datos del usuario autenticado.
func (uc *AuthUseCase) UserInfo(ctx context.Context, userID string) (*dto.UserInfoResponse, error) {
	user, err := uc.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := dto.FromUser(user)
	return &info, nil
}

// CreateUser crea un usuario con el rol indicado y su carrito (lo usa cmd/seed).
func (uc *AuthUseCase) CreateUser(ctx context.Context, email, password, firstName, lastName, role string) (*entity.User, error) {
	if role != entity.RoleUser && role != entity.RoleAdmin {
		return nil, domain.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return uc.createWithCart(ctx, &entity.User{
		Email:        normalizeEmail(email),
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		Role:         role,
	})
}

func (uc *AuthUseCase) createWithCart(ctx context.Context, user *entity.User) (*entity.User, error) {
	now := time.Now()
	user.ID = uuid.New().String()
	user.CreatedAt, user.UpdatedAt = now, now
	err := uc.txRunner.Run(ctx, func(r repository.Repos) error {
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		return r.Carts.Create(ctx, &entity.Cart{ID: uuid.New().String(), UserID: user.ID, CreatedAt: now})
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *AuthUseCase) issue(user *entity.User) (*dto.AuthResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret,
		jwt.Identity{UserID: user.ID, Email: user.Email, Role: user.Role},
		uc.jwtCfg.Issuer, time.Duration(uc.jwtCfg.ExpMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: dto.FromUser(user)}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
