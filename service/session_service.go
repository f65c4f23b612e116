package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gasbot/pkg/api"
	"gasbot/pkg/logger"
	"gasbot/pkg/models"
	"gasbot/storage"
)

// ErrMissingTokens is returned when a nominally successful auth response
// does not carry both halves of the token pair. ErrMissingUser is its
// sibling for a reply with tokens but no profile; neither half-adopts
// the response.
var (
	ErrMissingTokens = errors.New("auth response missing access or refresh token")
	ErrMissingUser   = errors.New("auth response missing user profile")
)

type SessionService interface {
	Snapshot() models.Session
	Restore(ctx context.Context) error
	Login(ctx context.Context, identifier, password string) (*models.User, error)
	Register(ctx context.Context, payload api.RegisterPayload) (*api.AuthResponse, error)
	VerifyOTP(ctx context.Context, tempUserID, code string) (*models.User, error)
	Logout(ctx context.Context) error
	MarkSetupComplete() error
	UpdateProfile(updates *models.User) error
	DeleteAccount(ctx context.Context, password string) error
	RequestPasswordReset(ctx context.Context, identifier string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
}

// sessionService is the single source of truth for "who is signed in and
// with what credentials". It also implements api.TokenSource, so the
// HTTP client always reads tokens from here and writes refreshed access
// tokens back through here.
type sessionService struct {
	client *api.Client
	stg    storage.ISessionStorage
	log    logger.ILogger

	mu      sync.RWMutex
	session models.Session
}

func newSessionService(stg storage.IStorage, log logger.ILogger) *sessionService {
	return &sessionService{
		stg:     stg.Session(),
		log:     log,
		session: models.Session{IsLoading: true},
	}
}

// --- api.TokenSource ---

func (s *sessionService) AccessToken() string {
	s.mu.RLock()
	tok := s.session.AccessToken
	s.mu.RUnlock()
	if tok != "" {
		return tok
	}
	// Cold start: a request raced ahead of Restore. Fall back to the
	// persisted token rather than sending an unauthenticated call.
	access, _, err := s.stg.Tokens()
	if err != nil {
		s.log.Warning("failed to read persisted access token", logger.Error(err))
		return ""
	}
	return access
}

func (s *sessionService) RefreshToken() string {
	s.mu.RLock()
	tok := s.session.RefreshToken
	s.mu.RUnlock()
	if tok != "" {
		return tok
	}
	_, refresh, err := s.stg.Tokens()
	if err != nil {
		s.log.Warning("failed to read persisted refresh token", logger.Error(err))
		return ""
	}
	return refresh
}

func (s *sessionService) StoreAccessToken(access string) error {
	s.mu.Lock()
	s.session.AccessToken = access
	s.mu.Unlock()
	return s.stg.SetAccessToken(access)
}

// --- session lifecycle ---

func (s *sessionService) Snapshot() models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Restore rebuilds the session from persisted state. The stored access
// token is validated against the profile endpoint; a pure network
// failure keeps the cached profile (availability over freshness), while
// an auth rejection that survives the interceptor's refresh clears
// everything. Always terminates with IsLoading false.
func (s *sessionService) Restore(ctx context.Context) error {
	defer func() {
		s.mu.Lock()
		s.session.IsLoading = false
		s.mu.Unlock()
	}()

	access, refresh, err := s.stg.Tokens()
	if err != nil {
		return fmt.Errorf("restore: read tokens: %w", err)
	}
	cachedUser, err := s.stg.User()
	if err != nil {
		s.log.Warning("restore: cached user unreadable, dropping it", logger.Error(err))
		_ = s.stg.SetUser(nil)
	}
	if access == "" && cachedUser != nil {
		// A profile without tokens cannot be a signed-in session.
		s.log.Warning("restore: cached user has no tokens, dropping it")
		cachedUser = nil
		_ = s.stg.SetUser(nil)
	}
	tempUser, _ := s.stg.TempUser()
	setupDone, _ := s.stg.SetupComplete()

	s.mu.Lock()
	s.session.AccessToken = access
	s.session.RefreshToken = refresh
	s.session.User = cachedUser
	s.session.TempUser = tempUser
	s.session.SetupComplete = setupDone
	s.mu.Unlock()

	if access == "" {
		return nil
	}

	if refresh != "" && api.TokenExpiringSoon(access, 30*time.Second) {
		if err := s.client.ForceRefresh(ctx); err != nil {
			s.log.Warning("proactive refresh failed", logger.Error(err))
		}
	}

	freshUser, err := s.client.Profile(ctx)
	switch {
	case err == nil:
		merged := models.MergeUser(cachedUser, freshUser)
		s.mu.Lock()
		s.session.User = merged
		s.mu.Unlock()
		if err := s.stg.SetUser(merged); err != nil {
			s.log.Warning("restore: persist merged profile failed", logger.Error(err))
		}
		s.log.Info("session restored", logger.String("user", merged.ID))
		return nil

	case api.IsNetworkError(err):
		// Offline: do not log the user out for lack of connectivity.
		s.log.Warning("restore: offline, keeping cached session", logger.Error(err))
		return nil

	default:
		apiErr, _ := api.AsError(err)
		if apiErr != nil && apiErr.IsAuth() {
			// The interceptor already spent its one refresh attempt.
			s.log.Warning("restore: session invalid, clearing", logger.Error(err))
			return s.clearLocal()
		}
		s.log.Warning("restore: profile fetch failed, keeping cached session", logger.Error(err))
		return nil
	}
}

func (s *sessionService) Login(ctx context.Context, identifier, password string) (*models.User, error) {
	resp, err := s.client.Login(ctx, identifier, password)
	if err != nil {
		return nil, err
	}
	user, err := s.adoptAuthResponse(resp)
	if err != nil {
		return nil, err
	}
	s.log.Info("login succeeded", logger.String("user", user.ID))
	return user, nil
}

// Register has two legitimate outcomes: immediate token issuance, or a
// temp-user record that must go through OTP verification first.
func (s *sessionService) Register(ctx context.Context, payload api.RegisterPayload) (*api.AuthResponse, error) {
	resp, err := s.client.Register(ctx, payload)
	if err != nil {
		return nil, err
	}

	if resp.AccessTokenValue() != "" && resp.RefreshTokenValue() != "" && resp.User != nil {
		if _, err := s.adoptAuthResponse(resp); err != nil {
			return nil, err
		}
		return resp, nil
	}

	if resp.TempUser != nil {
		if err := s.stg.SetTempUser(resp.TempUser); err != nil {
			return nil, fmt.Errorf("persist temp user: %w", err)
		}
		s.mu.Lock()
		s.session.TempUser = resp.TempUser
		s.mu.Unlock()
	}
	return resp, nil
}

func (s *sessionService) VerifyOTP(ctx context.Context, tempUserID, code string) (*models.User, error) {
	resp, err := s.client.VerifyOTP(ctx, tempUserID, code)
	if err != nil {
		return nil, err
	}
	user, err := s.adoptAuthResponse(resp)
	if err != nil {
		return nil, err
	}
	if err := s.stg.SetTempUser(nil); err != nil {
		s.log.Warning("clear temp user failed", logger.Error(err))
	}
	s.mu.Lock()
	s.session.TempUser = nil
	s.mu.Unlock()
	return user, nil
}

// Logout calls the backend best-effort and then wipes local state
// unconditionally. Sign-out must never be blocked by connectivity.
func (s *sessionService) Logout(ctx context.Context) error {
	if err := s.client.Logout(ctx); err != nil {
		s.log.Warning("server logout failed, clearing locally anyway", logger.Error(err))
	}
	return s.clearLocal()
}

func (s *sessionService) MarkSetupComplete() error {
	s.mu.Lock()
	if !s.session.IsAuthenticated() {
		s.mu.Unlock()
		return nil
	}
	s.session.SetupComplete = true
	if s.session.User != nil {
		user := *s.session.User
		user.SetupComplete = true
		s.session.User = &user
	}
	s.mu.Unlock()
	return s.stg.SetSetupComplete(true)
}

// UpdateProfile overlays local edits onto the cached profile. This is a
// client-side cache update; the backend profile endpoints own the truth.
func (s *sessionService) UpdateProfile(updates *models.User) error {
	s.mu.Lock()
	if s.session.User == nil {
		s.mu.Unlock()
		return nil
	}
	merged := models.MergeUser(s.session.User, updates)
	s.session.User = merged
	s.mu.Unlock()
	return s.stg.SetUser(merged)
}

func (s *sessionService) DeleteAccount(ctx context.Context, password string) error {
	if err := s.client.DeleteAccount(ctx, password); err != nil {
		return err
	}
	return s.clearLocal()
}

func (s *sessionService) RequestPasswordReset(ctx context.Context, identifier string) error {
	return s.client.ForgotPassword(ctx, identifier)
}

func (s *sessionService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return s.client.ResetPassword(ctx, token, newPassword)
}

// adoptAuthResponse is the shared tail of login/verify/immediate-register:
// demand both tokens, persist everything, then flip the in-memory state.
func (s *sessionService) adoptAuthResponse(resp *api.AuthResponse) (*models.User, error) {
	access := resp.AccessTokenValue()
	refresh := resp.RefreshTokenValue()
	if access == "" || refresh == "" {
		return nil, ErrMissingTokens
	}
	if resp.User == nil {
		return nil, ErrMissingUser
	}

	if err := s.stg.SetTokens(access, refresh); err != nil {
		return nil, fmt.Errorf("persist tokens: %w", err)
	}
	if err := s.stg.SetUser(resp.User); err != nil {
		return nil, fmt.Errorf("persist user: %w", err)
	}

	s.mu.Lock()
	s.session.AccessToken = access
	s.session.RefreshToken = refresh
	s.session.User = resp.User
	s.mu.Unlock()
	return resp.User, nil
}

func (s *sessionService) clearLocal() error {
	s.mu.Lock()
	s.session = models.Session{}
	s.mu.Unlock()
	return s.stg.Clear()
}
