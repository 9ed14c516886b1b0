package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"github.com/mkarlsen/kontor/internal/domain"
	"github.com/mkarlsen/kontor/internal/logging"
	"github.com/mkarlsen/kontor/internal/metrics"
	"github.com/mkarlsen/kontor/internal/redis"
	"github.com/mkarlsen/kontor/internal/token"
)

const tokenCleanupInterval = time.Hour

// dummyHash keeps the bcrypt comparison on the unknown-email path so login
// timing does not reveal whether an address exists.
var dummyHash = []byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService implements the credential lifecycle: login, refresh-token
// rotation, and logout.
type AuthService struct {
	users         domain.UserRepository
	refreshTokens domain.RefreshTokenRepository
	audit         domain.AuditRepository
	tokens        *token.Service
	limiter       *redis.LoginLimiter
	reuseGuard    *redis.ReuseGuard
	refreshTTL    time.Duration
	clock         clockwork.Clock

	cleanupStopCh chan struct{}
	stopOnce      sync.Once
	cleanupWg     sync.WaitGroup
}

// NewAuthService creates the auth service and starts the background cleanup
// of expired refresh tokens. limiter and reuseGuard may be nil when Redis is
// not configured.
func NewAuthService(
	users domain.UserRepository,
	refreshTokens domain.RefreshTokenRepository,
	audit domain.AuditRepository,
	tokens *token.Service,
	limiter *redis.LoginLimiter,
	reuseGuard *redis.ReuseGuard,
	refreshTTL time.Duration,
	clock clockwork.Clock,
) *AuthService {
	s := &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		audit:         audit,
		tokens:        tokens,
		limiter:       limiter,
		reuseGuard:    reuseGuard,
		refreshTTL:    refreshTTL,
		clock:         clock,
		cleanupStopCh: make(chan struct{}),
	}
	s.startCleanupTimer()
	return s
}

// Login verifies the password and mints a token pair. Attempts are throttled
// per email when Redis is available.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, *domain.User, error) {
	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		// Throttle failures must not lock users out.
		slog.Warn("Login throttle unavailable", "error", err)
	} else if !allowed {
		metrics.LoginAttemptsTotal.WithLabelValues("throttled").Inc()
		return nil, nil, domain.ErrLoginThrottled
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			metrics.LoginAttemptsTotal.WithLabelValues("bad_credentials").Inc()
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("bad_credentials").Inc()
		return nil, nil, domain.ErrInvalidCredentials
	}

	if !user.Active {
		metrics.LoginAttemptsTotal.WithLabelValues("inactive").Inc()
		return nil, nil, domain.ErrUserInactive
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		slog.Warn("Failed to reset login throttle", "error", err)
	}

	pair, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.recordAudit(ctx, user, domain.AuditActionLogin, "user", &user.ID, "login")
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	logging.WithUser(user.ID.String()).Info("User logged in")
	return pair, user, nil
}

// Refresh rotates a refresh token: the presented token is revoked and
// replaced, and a fresh access token is minted. Presenting a token that was
// already rotated out revokes the user's whole chain.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*TokenPair, *domain.User, error) {
	hash := s.tokens.HashToken(rawToken)

	record, err := s.refreshTokens.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenNotFound) {
			metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	seen, err := s.reuseGuard.SeenRotated(ctx, hash)
	if err != nil {
		slog.Warn("Reuse guard unavailable", "error", err)
	}
	if record.Revoked || seen {
		// Replay of a rotated-out token: someone else holds the live end of
		// this chain, so the whole chain dies.
		if err := s.refreshTokens.RevokeChain(ctx, record.UserID); err != nil {
			slog.Error("Failed to revoke token chain after reuse", "user_id", record.UserID.String(), "error", err)
		}
		metrics.TokenRefreshTotal.WithLabelValues("reuse_detected").Inc()
		return nil, nil, domain.ErrTokenRevoked
	}

	if s.clock.Now().After(record.ExpiresAt) {
		metrics.TokenRefreshTotal.WithLabelValues("invalid").Inc()
		return nil, nil, domain.ErrTokenExpired
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.Active {
		return nil, nil, domain.ErrUserInactive
	}

	rawReplacement, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, nil, err
	}
	replacement := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: s.tokens.HashToken(rawReplacement),
		ExpiresAt: s.clock.Now().Add(s.refreshTTL),
	}
	if err := s.refreshTokens.Rotate(ctx, record.ID, replacement); err != nil {
		return nil, nil, err
	}
	if err := s.reuseGuard.MarkRotated(ctx, hash); err != nil {
		slog.Warn("Failed to flag rotated token", "error", err)
	}

	access, err := s.tokens.SignAccessToken(identityOf(user))
	if err != nil {
		return nil, nil, err
	}

	metrics.TokenRefreshTotal.WithLabelValues("success").Inc()
	return &TokenPair{AccessToken: access, RefreshToken: rawReplacement}, user, nil
}

// Logout revokes every live refresh token of the user. Outstanding access
// tokens stay valid until their short expiry.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.refreshTokens.RevokeChain(ctx, userID)
}

func (s *AuthService) issueTokenPair(ctx context.Context, user *domain.User) (*TokenPair, error) {
	access, err := s.tokens.SignAccessToken(identityOf(user))
	if err != nil {
		return nil, err
	}

	rawRefresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	record := &domain.RefreshToken{
		UserID:    user.ID,
		TokenHash: s.tokens.HashToken(rawRefresh),
		ExpiresAt: s.clock.Now().Add(s.refreshTTL),
	}
	if err := s.refreshTokens.Create(ctx, record); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: rawRefresh}, nil
}

func identityOf(user *domain.User) token.Identity {
	return token.Identity{
		UserID: user.ID,
		Email:  user.Email,
		Roles:  user.Roles,
	}
}

func (s *AuthService) recordAudit(ctx context.Context, actor *domain.User, action, entity string, entityID *uuid.UUID, detail string) {
	entry := &domain.AuditEntry{
		OrganizationID: actor.OrganizationID,
		ActorID:        actor.ID,
		Action:         action,
		Entity:         entity,
		EntityID:       entityID,
		Detail:         detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		slog.Error("Failed to record audit entry", "action", action, "entity", entity, "error", err)
	}
}

func (s *AuthService) startCleanupTimer() {
	s.cleanupWg.Add(1)
	go func() {
		defer s.cleanupWg.Done()
		ticker := s.clock.NewTicker(tokenCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.cleanupStopCh:
				return
			case <-ticker.Chan():
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				deleted, err := s.refreshTokens.DeleteExpired(ctx, s.clock.Now())
				cancel()
				if err != nil {
					slog.Error("Failed to delete expired refresh tokens", "error", err)
					continue
				}
				if deleted > 0 {
					slog.Info("Deleted expired refresh tokens", "count", deleted)
				}
			}
		}
	}()
}

// Stop terminates the background cleanup. Safe to call more than once.
func (s *AuthService) Stop() {
	s.stopOnce.Do(func() {
		close(s.cleanupStopCh)
	})
	s.cleanupWg.Wait()
}

// HashPassword produces the bcrypt digest stored for a user.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
