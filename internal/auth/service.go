package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/frahmantamala/smartsupply/internal"
	"github.com/frahmantamala/smartsupply/internal/core/events"
	"github.com/frahmantamala/smartsupply/internal/user"
	"github.com/frahmantamala/smartsupply/pkg/logger"
)

// dummyPassword is hashed once at startup so that lookups for unknown emails
// still pay for one argon2 verification.
const dummyPassword = "smartsupply-timing-equalizer"

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(encoded, plaintext string) (bool, error)
	NeedsRehash(encoded string) bool
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	User        user.PublicUser `json:"user"`
}

// Service is the main auth service with dependencies
type Service struct {
	users          user.Directory
	hasher         PasswordHasher
	tokenGenerator TokenGenerator
	events         EventPublisher
	metrics        *Metrics
	dummyHash      string
}

// NewService creates a new auth service. publisher and metrics may be nil.
func NewService(users user.Directory, hasher PasswordHasher, tokenGen TokenGenerator, publisher EventPublisher, metrics *Metrics) *Service {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		logger.LoggerWrapper().Warn("auth: could not prepare dummy hash", "error", err)
	}
	return &Service{
		users:          users,
		hasher:         hasher,
		tokenGenerator: tokenGen,
		events:         publisher,
		metrics:        metrics,
		dummyHash:      dummyHash,
	}
}

// Register creates an account. Nothing is persisted when any step fails.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*user.User, error) {
	dto.Email = user.NormalizeEmail(dto.Email)
	if appErr := dto.Validate(); appErr != nil {
		s.metrics.registration(outcomeValidationFailed)
		return nil, appErr
	}

	existing, err := s.users.FindByEmail(ctx, dto.Email)
	if err != nil {
		s.metrics.registration(outcomeError)
		return nil, internal.NewInternalError("failed to register user", err)
	}
	if existing != nil {
		s.metrics.registration(outcomeConflict)
		return nil, internal.ErrEmailAlreadyRegistered
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		s.metrics.registration(outcomeError)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	created, err := s.users.Create(ctx, user.NewUser{
		Email:        dto.Email,
		PasswordHash: hash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Role:         dto.Role,
	})
	if err != nil {
		// the unique index is the authoritative guard against concurrent registrations
		if errors.Is(err, user.ErrEmailTaken) {
			s.metrics.registration(outcomeConflict)
			return nil, internal.ErrEmailAlreadyRegistered.WithCause(err)
		}
		s.metrics.registration(outcomeError)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	s.metrics.registration(outcomeSuccess)
	s.publish(ctx, events.NewUserRegisteredEvent(created.ID.String(), created.Role))
	logger.From(ctx).Info("user registered", "user_id", created.ID, "role", created.Role)

	return created.WithoutHash(), nil
}

// ValidateCredentials returns the user, hash stripped, when email and password match and
// nil, nil otherwise. Only infrastructure failures produce an error.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.users.FindByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if u == nil {
		_, _ = s.hasher.Verify(s.dummyHash, password)
		s.publish(ctx, events.NewLoginFailedEvent(events.LoginFailureUnknownEmail))
		return nil, nil
	}

	ok, err := s.hasher.Verify(u.PasswordHash, password)
	if err != nil {
		logger.From(ctx).Error("stored password hash is unreadable", "user_id", u.ID, "error", err)
		s.publish(ctx, events.NewLoginFailedEvent(events.LoginFailureMalformedHash))
		return nil, nil
	}
	if !ok {
		s.publish(ctx, events.NewLoginFailedEvent(events.LoginFailureWrongPassword))
		return nil, nil
	}

	if s.hasher.NeedsRehash(u.PasswordHash) {
		logger.From(ctx).Info("password hash uses outdated parameters", "user_id", u.ID)
	}

	return u.WithoutHash(), nil
}

// Login issues a token for a user that already passed ValidateCredentials.
func (s *Service) Login(ctx context.Context, u *user.User) (*LoginResponse, error) {
	token, err := s.tokenGenerator.Issue(u.ID.String(), u.Email, u.Role)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}

	s.publish(ctx, events.NewLoginSucceededEvent(u.ID.String(), u.Role))

	return &LoginResponse{
		AccessToken: token,
		User:        u.Public(),
	}, nil
}

// Authenticate is the login boundary: every credential failure becomes ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*LoginResponse, error) {
	if appErr := dto.Validate(); appErr != nil {
		s.metrics.login(outcomeValidationFailed)
		return nil, appErr
	}

	u, err := s.ValidateCredentials(ctx, dto.Email, dto.Password)
	if err != nil {
		s.metrics.login(outcomeError)
		return nil, internal.NewInternalError("failed to authenticate", err)
	}
	if u == nil {
		s.metrics.login(outcomeInvalidCredential)
		return nil, internal.ErrInvalidCredentials
	}

	resp, err := s.Login(ctx, u)
	if err != nil {
		s.metrics.login(outcomeError)
		return nil, err
	}

	s.metrics.login(outcomeSuccess)
	return resp, nil
}

// ResolveToken verifies a bearer token and re-reads its subject so that role changes
// and deletions apply to tokens issued earlier. The returned user carries no hash.
func (s *Service) ResolveToken(ctx context.Context, token string) (*user.User, error) {
	claims, err := s.tokenGenerator.Verify(token)
	if err != nil {
		if errors.Is(err, internal.ErrTokenExpired) {
			s.metrics.tokenRejected("expired")
		} else {
			s.metrics.tokenRejected("invalid")
		}
		return nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		s.metrics.tokenRejected("invalid_subject")
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		s.metrics.tokenRejected("user_not_found")
		return nil, internal.ErrUserNotFound
	}

	return u.WithoutHash(), nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.From(ctx).Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

// Compile-time check
var _ ServiceAPI = (*Service)(nil)
