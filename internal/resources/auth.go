package resources

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"stealthcompany.com/wardconsole/internal/session"
)

// ErrMissingTokens is returned when login succeeds without a token pair.
var ErrMissingTokens = errors.New("login response did not include tokens")

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates and persists the token pair in the client's session holder.
func (s *Service) Login(ctx context.Context, username, password string) (Response[LoginResult], error) {
	resp, err := post[LoginResult](ctx, s.client, "/auth/login", "/auth/login", nil, loginBody{
		Username: username,
		Password: password,
	})
	if err != nil {
		return resp, err
	}

	creds := session.Credentials{
		AccessToken:  resp.Data.AccessToken,
		RefreshToken: resp.Data.RefreshToken,
	}
	if !creds.Valid() {
		return resp, ErrMissingTokens
	}

	holder := s.client.Session()
	if holder == nil {
		return resp, fmt.Errorf("no session holder configured")
	}
	if err := holder.Set(creds); err != nil {
		return resp, err
	}

	log.Info().Str("username", username).Msg("Logged in")
	return resp, nil
}

// Logout tells the server and always clears the local session, even if the server call fails.
func (s *Service) Logout(ctx context.Context) error {
	if _, err := post[struct{}](ctx, s.client, "/auth/logout", "/auth/logout", nil, nil); err != nil {
		log.Warn().Err(err).Msg("Server logout failed, clearing local session anyway")
	}

	holder := s.client.Session()
	if holder == nil {
		return nil
	}
	return holder.Clear()
}

// Me returns the profile of the logged-in user
func (s *Service) Me(ctx context.Context) (Response[UserProfile], error) {
	return get[UserProfile](ctx, s.client, "/auth/me", "/auth/me", nil)
}
