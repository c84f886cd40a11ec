package authclient

import (
	"context"
	"strconv"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SessionStateMachine owns the session lifecycle. All mutation goes through
// named transitions behind a single mutex; the machine is the only writer of
// both the in-memory AuthState and the TokenStore, so the two cannot diverge.
//
// Gateway calls run outside the lock. Each call is tagged with a per-attempt
// id; a response whose attempt was superseded (navigation away, logout,
// another login) is discarded as a no-op instead of clobbering newer state.
type SessionStateMachine struct {
	mu           sync.Mutex
	state        AuthState
	store        TokenStore
	gateway      Gateway
	tokenTTL     time.Duration
	transitions  map[Status]map[Status]struct{}
	now          func() time.Time
	logger       Logger
	activitySink ActivitySink
	attempt      uuid.UUID
}

// StateMachineOption customizes state machine construction.
type StateMachineOption func(*SessionStateMachine)

// WithStateMachineClock injects a custom clock (useful for tests).
func WithStateMachineClock(clock func() time.Time) StateMachineOption {
	return func(m *SessionStateMachine) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithStateMachineLogger overrides the default logger.
func WithStateMachineLogger(logger Logger) StateMachineOption {
	return func(m *SessionStateMachine) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithStateMachineActivitySink sets the ActivitySink used to publish session events.
func WithStateMachineActivitySink(sink ActivitySink) StateMachineOption {
	return func(m *SessionStateMachine) {
		m.activitySink = normalizeActivitySink(sink)
	}
}

// WithStateMachineTokenTTL overrides the persisted token expiry (default one day).
func WithStateMachineTokenTTL(ttl time.Duration) StateMachineOption {
	return func(m *SessionStateMachine) {
		if ttl > 0 {
			m.tokenTTL = ttl
		}
	}
}

// NewSessionStateMachine returns a machine in the Bootstrapping state.
// Callers run Bootstrap once at startup to resurrect a persisted session.
func NewSessionStateMachine(store TokenStore, gateway Gateway, opts ...StateMachineOption) *SessionStateMachine {
	m := &SessionStateMachine{
		store:    store,
		gateway:  gateway,
		tokenTTL: DefaultTokenTTL,
		state: AuthState{
			Status:  StatusBootstrapping,
			Loading: true,
		},
		transitions: map[Status]map[Status]struct{}{
			StatusBootstrapping: {
				StatusAnonymous:     {},
				StatusAuthenticated: {},
			},
			StatusAnonymous: {
				StatusLoggingIn: {},
			},
			StatusLoggingIn: {
				StatusAnonymous:         {},
				StatusAwaitingTwoFactor: {},
				StatusAuthenticated:     {},
			},
			StatusAwaitingTwoFactor: {
				StatusVerifyingTwoFactor: {},
				StatusAnonymous:          {},
			},
			StatusVerifyingTwoFactor: {
				StatusAuthenticated:     {},
				StatusAwaitingTwoFactor: {},
			},
			StatusAuthenticated: {
				StatusAnonymous: {},
			},
		},
		now:          time.Now,
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Snapshot returns a copy of the current state. The returned value does not
// alias machine internals and stays valid after further transitions.
func (m *SessionStateMachine) Snapshot() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state
	snapshot.User = m.state.User.Clone()
	return snapshot
}

// CurrentStatus returns the session's lifecycle status.
func (m *SessionStateMachine) CurrentStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Status
}

// AuthHeader returns the Authorization header value for the active session.
func (m *SessionStateMachine) AuthHeader() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsAuthenticated || m.state.Token == "" {
		return "", false
	}
	return "Bearer " + m.state.Token, true
}

// Bootstrap resurrects a persisted session: read the stored token, decode it,
// and fetch the current user when it is structurally valid and unexpired.
// Token problems are resolved silently to Anonymous; a stale or malformed
// token is indistinguishable from "not logged in yet" and is never surfaced
// as a user-facing error.
func (m *SessionStateMachine) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	if m.state.Status != StatusBootstrapping {
		from := m.state.Status
		m.mu.Unlock()
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": string(from),
			"to":   string(StatusBootstrapping),
		})
	}

	token, err := m.store.Read()
	if err != nil {
		m.becomeAnonymousLocked()
		m.mu.Unlock()
		m.recordActivity(ctx, ActivityEvent{
			EventType:  ActivityEventBootstrapAnonymous,
			FromStatus: StatusBootstrapping,
			ToStatus:   StatusAnonymous,
			Metadata:   map[string]any{"reason": "no stored token"},
		})
		return nil
	}

	claims, err := DecodeClaims(token)
	if err != nil || claims.ExpiredAt(m.now()) {
		m.clearTokenLocked()
		m.becomeAnonymousLocked()
		m.mu.Unlock()

		reason := "stored token expired"
		if err != nil {
			reason = "stored token malformed"
			m.logger.Debug("Bootstrap discarding stored token: %v", err)
		}
		m.recordActivity(ctx, ActivityEvent{
			EventType:  ActivityEventBootstrapAnonymous,
			FromStatus: StatusBootstrapping,
			ToStatus:   StatusAnonymous,
			Metadata:   map[string]any{"reason": reason},
		})
		return nil
	}

	attempt := m.beginAttemptLocked()
	m.mu.Unlock()

	user, err := m.gateway.CurrentUser(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attempt != attempt {
		return ErrStaleAttempt
	}

	if err != nil {
		m.logger.Info("Bootstrap user fetch failed, clearing session: %s", UserMessage(err))
		m.clearTokenLocked()
		m.becomeAnonymousLocked()
		m.recordActivity(ctx, ActivityEvent{
			EventType:  ActivityEventBootstrapAnonymous,
			FromStatus: StatusBootstrapping,
			ToStatus:   StatusAnonymous,
			Metadata:   map[string]any{"reason": "user fetch rejected"},
		})
		return nil
	}

	m.becomeAuthenticatedLocked(token, user)
	m.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventBootstrapRestored,
		UserID:     claims.UserID(),
		FromStatus: StatusBootstrapping,
		ToStatus:   StatusAuthenticated,
	})
	return nil
}

// Login runs the credentials flow. Three outcomes: an authenticated session
// (token persisted in the same transition), a pending two-factor challenge
// (LoginResult.RequiresTwoFactor), or an error with the machine back in
// Anonymous. Calling Login while a login is already in flight is rejected
// with ErrInvalidTransition.
func (m *SessionStateMachine) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload")
	}

	m.mu.Lock()
	if err := m.transitionLocked(StatusLoggingIn); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.state.Loading = true
	attempt := m.beginAttemptLocked()
	m.mu.Unlock()

	resp, err := m.gateway.Login(ctx, creds)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attempt != attempt {
		return nil, ErrStaleAttempt
	}

	if err != nil {
		m.state.Status = StatusAnonymous
		m.state.Loading = false
		m.recordActivity(ctx, ActivityEvent{
			EventType:  ActivityEventLoginFailure,
			FromStatus: StatusLoggingIn,
			ToStatus:   StatusAnonymous,
			Metadata:   map[string]any{"identifier": creds.Email, "error": UserMessage(err)},
		})
		return nil, err
	}

	if resp.RequiresTwoFactor {
		m.state.Status = StatusAwaitingTwoFactor
		m.state.Loading = false
		m.state.TwoFactorRequired = true
		m.recordActivity(ctx, ActivityEvent{
			EventType:  ActivityEventTwoFactorChallenge,
			FromStatus: StatusLoggingIn,
			ToStatus:   StatusAwaitingTwoFactor,
			Metadata:   map[string]any{"identifier": creds.Email},
		})
		return &LoginResult{RequiresTwoFactor: true}, nil
	}

	return m.completeLoginLocked(ctx, resp, creds.Email, StatusLoggingIn, ActivityEventLoginSuccess)
}

// SubmitTwoFactor replays the credentials with the second-factor code. On a
// gateway rejection the machine returns to AwaitingTwoFactor so the user can
// retry; Cancel remains available throughout.
func (m *SessionStateMachine) SubmitTwoFactor(ctx context.Context, creds Credentials, code string) (*LoginResult, error) {
	if err := ValidateTwoFactorCode(code); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid two-factor code")
	}

	m.mu.Lock()
	if err := m.transitionLocked(StatusVerifyingTwoFactor); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.state.Loading = true
	attempt := m.beginAttemptLocked()
	m.mu.Unlock()

	creds.TwoFactorCode = code
	resp, err := m.gateway.Login(ctx, creds)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attempt != attempt {
		return nil, ErrStaleAttempt
	}

	if err != nil {
		m.state.Status = StatusAwaitingTwoFactor
		m.state.Loading = false
		m.recordActivity(ctx, ActivityEvent{
			EventType:  ActivityEventTwoFactorFailure,
			FromStatus: StatusVerifyingTwoFactor,
			ToStatus:   StatusAwaitingTwoFactor,
			Metadata:   map[string]any{"identifier": creds.Email, "error": UserMessage(err)},
		})
		return nil, err
	}

	m.state.TwoFactorRequired = false
	return m.completeLoginLocked(ctx, resp, creds.Email, StatusVerifyingTwoFactor, ActivityEventTwoFactorSuccess)
}

// CancelTwoFactor abandons a pending challenge and returns to Anonymous.
func (m *SessionStateMachine) CancelTwoFactor() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Status != StatusAwaitingTwoFactor {
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": string(m.state.Status),
			"to":   string(StatusAnonymous),
		})
	}

	m.beginAttemptLocked()
	m.becomeAnonymousLocked()
	return nil
}

// Logout clears the persisted token and drops to Anonymous in one step.
func (m *SessionStateMachine) Logout(ctx context.Context) error {
	m.mu.Lock()
	from := m.state.Status
	if err := m.transitionLocked(StatusAnonymous); err != nil {
		m.mu.Unlock()
		return err
	}

	userID := ""
	if m.state.User != nil {
		userID = strconv.FormatInt(m.state.User.ID, 10)
	}

	m.beginAttemptLocked()
	m.clearTokenLocked()
	m.becomeAnonymousLocked()
	m.mu.Unlock()

	m.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventLogout,
		UserID:     userID,
		FromStatus: from,
		ToStatus:   StatusAnonymous,
	})
	return nil
}

// RefreshUser re-fetches the profile and replaces it wholesale. The session
// stays Authenticated; a gateway error leaves the previous profile in place.
func (m *SessionStateMachine) RefreshUser(ctx context.Context) error {
	m.mu.Lock()
	if !m.state.IsAuthenticated {
		from := m.state.Status
		m.mu.Unlock()
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": string(from),
			"to":   string(StatusAuthenticated),
		})
	}
	token := m.state.Token
	attempt := m.beginAttemptLocked()
	m.mu.Unlock()

	user, err := m.gateway.CurrentUser(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attempt != attempt {
		return ErrStaleAttempt
	}

	if err != nil {
		return err
	}

	m.state.User = user
	return nil
}

// SetupTwoFactor asks the backend for enrollment material. Requires an
// authenticated session; no state changes.
func (m *SessionStateMachine) SetupTwoFactor(ctx context.Context) (*TwoFactorSetup, error) {
	token, err := m.authenticatedTokenLocked()
	if err != nil {
		return nil, err
	}
	return m.gateway.SetupTwoFactor(ctx, token)
}

// VerifyTwoFactor confirms enrollment with a code from the authenticator and
// flips the profile's TwoFactorEnabled flag in place on success.
func (m *SessionStateMachine) VerifyTwoFactor(ctx context.Context, code string) error {
	if err := ValidateTwoFactorCode(code); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid two-factor code")
	}

	token, err := m.authenticatedTokenLocked()
	if err != nil {
		return err
	}

	if err := m.gateway.VerifyTwoFactor(ctx, token, code); err != nil {
		return err
	}

	m.setTwoFactorEnabled(true)
	return nil
}

// DisableTwoFactor turns 2FA off for the account, keeping the session alive.
func (m *SessionStateMachine) DisableTwoFactor(ctx context.Context, code string) error {
	if err := ValidateTwoFactorCode(code); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid two-factor code")
	}

	token, err := m.authenticatedTokenLocked()
	if err != nil {
		return err
	}

	if err := m.gateway.DisableTwoFactor(ctx, token, code); err != nil {
		return err
	}

	m.setTwoFactorEnabled(false)
	return nil
}

// AdoptToken installs an externally issued token (the OAuth callback leg).
// The token is validated structurally, persisted, and the profile fetched,
// following the same path as Bootstrap.
func (m *SessionStateMachine) AdoptToken(ctx context.Context, token string) error {
	claims, err := DecodeClaims(token)
	if err != nil {
		return err
	}
	if claims.ExpiredAt(m.now()) {
		return ErrTokenExpired
	}

	m.mu.Lock()
	if m.state.Status != StatusAnonymous && m.state.Status != StatusBootstrapping {
		from := m.state.Status
		m.mu.Unlock()
		return ErrInvalidTransition.WithMetadata(map[string]any{
			"from": string(from),
			"to":   string(StatusAuthenticated),
		})
	}
	attempt := m.beginAttemptLocked()
	m.mu.Unlock()

	user, err := m.gateway.CurrentUser(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.attempt != attempt {
		return ErrStaleAttempt
	}

	if err != nil {
		return err
	}

	if err := m.store.Save(token, m.tokenTTL); err != nil {
		return err
	}

	m.becomeAuthenticatedLocked(token, user)
	m.recordActivity(ctx, ActivityEvent{
		EventType:  ActivityEventOAuthLogin,
		UserID:     claims.UserID(),
		ToStatus:   StatusAuthenticated,
	})
	return nil
}

// completeLoginLocked persists the token and enters Authenticated. Called
// with the lock held from the success legs of Login and SubmitTwoFactor.
func (m *SessionStateMachine) completeLoginLocked(ctx context.Context, resp *LoginResponse, identifier string, from Status, event ActivityEventType) (*LoginResult, error) {
	if resp.Token == "" || resp.User == nil {
		m.failLoginLocked(from)
		return nil, NewGatewayError(502, "login response missing token or profile")
	}

	if err := m.store.Save(resp.Token, m.tokenTTL); err != nil {
		m.failLoginLocked(from)
		return nil, err
	}

	m.becomeAuthenticatedLocked(resp.Token, resp.User)
	m.recordActivity(ctx, ActivityEvent{
		EventType:  event,
		UserID:     identifier,
		FromStatus: from,
		ToStatus:   StatusAuthenticated,
	})

	return &LoginResult{Token: resp.Token, User: resp.User.Clone()}, nil
}

// failLoginLocked returns the machine to the state a gateway rejection would
// have left it in: the 2FA leg keeps its pending challenge so the user can
// retry, the credentials leg falls back to Anonymous.
func (m *SessionStateMachine) failLoginLocked(from Status) {
	if from == StatusVerifyingTwoFactor {
		m.state.Status = StatusAwaitingTwoFactor
		m.state.TwoFactorRequired = true
	} else {
		m.state.Status = StatusAnonymous
	}
	m.state.Loading = false
}

// transitionLocked validates the move and applies the target status, so an
// in-flight gateway call is observable as LoggingIn or VerifyingTwoFactor
// and a competing operation fails the transition check instead of racing.
func (m *SessionStateMachine) transitionLocked(to Status) error {
	from := m.state.Status
	if allowed, ok := m.transitions[from]; ok {
		if _, exists := allowed[to]; exists {
			m.state.Status = to
			return nil
		}
	}
	return ErrInvalidTransition.WithMetadata(map[string]any{
		"from": string(from),
		"to":   string(to),
	})
}

// beginAttemptLocked rotates the attempt id. Any transition that changes the
// session invalidates responses still in flight from the previous attempt.
func (m *SessionStateMachine) beginAttemptLocked() uuid.UUID {
	m.attempt = uuid.New()
	return m.attempt
}

func (m *SessionStateMachine) becomeAnonymousLocked() {
	m.state = AuthState{Status: StatusAnonymous}
}

func (m *SessionStateMachine) becomeAuthenticatedLocked(token string, user *UserProfile) {
	m.state = AuthState{
		Status:          StatusAuthenticated,
		IsAuthenticated: true,
		User:            user,
		Token:           token,
	}
}

// clearTokenLocked is the single place a transition drops the persisted token.
func (m *SessionStateMachine) clearTokenLocked() {
	if err := m.store.Clear(); err != nil {
		m.logger.Error("token store clear failed: %v", err)
	}
}

func (m *SessionStateMachine) authenticatedTokenLocked() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.IsAuthenticated || m.state.Token == "" {
		return "", ErrInvalidTransition.WithMetadata(map[string]any{
			"from": string(m.state.Status),
			"to":   string(StatusAuthenticated),
		})
	}
	return m.state.Token, nil
}

func (m *SessionStateMachine) setTwoFactorEnabled(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.User != nil {
		m.state.User.TwoFactorEnabled = enabled
	}
}

func (m *SessionStateMachine) recordActivity(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = m.now()
	}

	sink := normalizeActivitySink(m.activitySink)
	if err := sink.Record(ctx, event); err != nil {
		m.logger.Error("activity sink record error: %v", err)
	}
}
