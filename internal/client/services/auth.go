package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/dmitrijs2005/mcpanel/internal/client/credentials"
	"github.com/dmitrijs2005/mcpanel/internal/client/models"
	"github.com/dmitrijs2005/mcpanel/internal/client/router"
	"github.com/dmitrijs2005/mcpanel/internal/logging"
)

// ErrEmptyToken is returned by Login when the backend answers without a token.
var ErrEmptyToken = errors.New("login response carries no token")

// AuthService is the session manager.
//
// States: anonymous, token only (after a restart, before FetchUser) and
// signed in (token and user). Login and FetchUser move towards signed in;
// Logout, DeleteAccount and any 401 from the pipeline move back to anonymous.
//
// UpdateUser, ChangePassword and DeleteAccount do nothing while no user is
// loaded.
type AuthService interface {
	FetchUser(ctx context.Context)
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, username, email, password string) error
	Logout(ctx context.Context)
	UpdateUser(ctx context.Context, upd models.UserUpdate) error
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context) error

	User() *models.User
	HasCredential(ctx context.Context) bool
	IsAuthenticated(ctx context.Context) bool

	// SetNavigator wires the router once it exists; the router itself needs
	// the session for its guard.
	SetNavigator(nav Navigator)
}

type authService struct {
	api   API
	creds credentials.Store
	log   logging.Logger

	mu   sync.RWMutex
	user *models.User
	nav  Navigator
}

func NewAuthService(api API, creds credentials.Store, log logging.Logger) AuthService {
	return &authService{
		api:   api,
		creds: creds,
		log:   orDiscard(log).With("component", "session"),
	}
}

func (a *authService) SetNavigator(nav Navigator) {
	a.mu.Lock()
	a.nav = nav
	a.mu.Unlock()
}

func (a *authService) User() *models.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return nil
	}
	u := *a.user
	return &u
}

func (a *authService) HasCredential(ctx context.Context) bool {
	c, err := a.creds.Get(ctx)
	if err != nil {
		a.log.Warn(ctx, "credential read failed", "error", err)
		return false
	}
	return c != nil
}

func (a *authService) IsAuthenticated(ctx context.Context) bool {
	return a.User() != nil && a.HasCredential(ctx)
}

func (a *authService) FetchUser(ctx context.Context) {
	if a.User() != nil || !a.HasCredential(ctx) {
		return
	}

	var u *models.User
	if err := a.api.JSON(ctx, http.MethodGet, "/users/me", nil, &u); err != nil || u == nil {
		a.log.Info(ctx, "stored credential rejected, signing out", "error", err)
		a.Logout(ctx)
		return
	}

	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
}

func (a *authService) Login(ctx context.Context, email, password string) error {
	var resp models.LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.api.JSON(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("login: %w", ErrEmptyToken)
	}

	if err := a.creds.Set(ctx, credentials.Credential{Token: resp.Token}); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	a.mu.Lock()
	a.user = resp.User
	a.mu.Unlock()

	a.log.Info(ctx, "signed in", "email", email)
	return nil
}

func (a *authService) Register(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := a.api.JSON(ctx, http.MethodPost, "/register", body, nil); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout is idempotent and holds no lock while the credential store or the
// navigator run, so the pipeline can call it from inside a request.
func (a *authService) Logout(ctx context.Context) {
	if err := a.creds.Clear(ctx); err != nil {
		a.log.Error(ctx, "credential clear failed", "error", err)
	}

	a.mu.Lock()
	a.user = nil
	nav := a.nav
	a.mu.Unlock()

	if nav != nil {
		nav.Redirect(ctx, router.Login)
	}
}

func (a *authService) UpdateUser(ctx context.Context, upd models.UserUpdate) error {
	u := a.User()
	if u == nil {
		return nil
	}

	var raw json.RawMessage
	if err := a.api.JSON(ctx, http.MethodPut, "/users/"+seg(u.ID), upd, &raw); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil || a.user.ID != u.ID {
		return nil
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	merged := *a.user
	if err := json.Unmarshal(raw, &merged); err != nil {
		return fmt.Errorf("update user: decode response: %w", err)
	}
	merged.ID = u.ID
	a.user = &merged
	return nil
}

func (a *authService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	u := a.User()
	if u == nil {
		return nil
	}

	body := models.PasswordChange{CurrentPassword: currentPassword, NewPassword: newPassword}
	if err := a.api.JSON(ctx, http.MethodPost, "/users/"+seg(u.ID)+"/change-password", body, nil); err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

func (a *authService) DeleteAccount(ctx context.Context) error {
	u := a.User()
	if u == nil {
		return nil
	}

	if err := a.api.JSON(ctx, http.MethodDelete, "/users/"+seg(u.ID), nil, nil); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	a.Logout(ctx)
	return nil
}
