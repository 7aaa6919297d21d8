package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/jhoicas/crochet-api/internal/application/ports"
	"github.com/jhoicas/crochet-api/pkg/config"
)

var _ ports.OAuthProvider = (*GoogleProvider)(nil)

// GoogleProvider canjea el código de autorización de Google y lee el perfil del usuario.
type GoogleProvider struct {
	conf        oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewGoogleProvider devuelve nil si no hay client id configurado (login con Google deshabilitado).
func NewGoogleProvider(cfg config.GoogleConfig) *GoogleProvider {
	if cfg.ClientID == "" {
		return nil
	}
	return &GoogleProvider{
		conf: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type googleUserInfo struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange canjea code por un token y consulta el endpoint userinfo.
func (p *GoogleProvider) Exchange(ctx context.Context, code, redirectURI string) (*ports.OAuthProfile, error) {
	conf := p.conf
	conf.RedirectURL = redirectURI
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google: canjear código: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("google: crear request: %w", err)
	}
	resp, err := conf.Client(ctx, tok).Do(req)
	if err != nil {
		return nil, fmt.Errorf("google: userinfo: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("google: leer userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google: userinfo HTTP %d: %s", resp.StatusCode, string(raw))
	}

	var info googleUserInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, fmt.Errorf("google: parsear userinfo: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("google: el perfil no incluye email")
	}
	if !info.EmailVerified {
		return nil, fmt.Errorf("google: email %s sin verificar", info.Email)
	}

	first, last := info.GivenName, info.FamilyName
	if first == "" && info.Name != "" {
		first, last, _ = strings.Cut(info.Name, " ")
	}
	return &ports.OAuthProfile{
		Email:      info.Email,
		FirstName:  first,
		LastName:   last,
		PictureURL: info.Picture,
	}, nil
}
