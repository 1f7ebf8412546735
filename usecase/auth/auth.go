package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

// Claims is the JWT payload issued at login and checked by the auth middleware.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	Secret string
	Issuer string
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   TokenConfig
	logger   *zap.Logger
	now      func() time.Time
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens TokenConfig, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
		now:      time.Now,
	}
}

// Login opens a session for an existing user and signs a bearer token bound to it.
func (uc *UseCase) Login(ctx context.Context, userID string, ttl time.Duration) (*domain.Credentials, error) {
	session, err := uc.CreateSession(ctx, userID, ttl)
	if err != nil {
		return nil, err
	}
	return uc.credentials(session)
}

func (uc *UseCase) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*domain.Session, error) {
	if _, err := uc.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	uc.logger.Info("session created", zap.String("user_id", userID), zap.String("session_id", session.ID))
	return session, nil
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Refresh extends a live session and re-signs its token.
func (uc *UseCase) Refresh(ctx context.Context, sessionID string, ttl time.Duration) (*domain.Credentials, error) {
	session, err := uc.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = uc.now().UTC().Add(ttl)
	return uc.credentials(session)
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// ParseToken validates a bearer token and returns its claims.
func (uc *UseCase) ParseToken(token string) (*Claims, error) {
	return ParseToken(uc.tokens.Secret, token)
}

func (uc *UseCase) credentials(session *domain.Session) (*domain.Credentials, error) {
	claims := Claims{
		UserID:    session.UserID,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    uc.tokens.Issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(uc.now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.tokens.Secret))
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "sign token", err)
	}
	return &domain.Credentials{Session: session, Token: signed, TokenType: "Bearer"}, nil
}

// ParseToken checks an HS256 token signed with secret.
func ParseToken(secret, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.NewError(domain.ErrCodeUnauthorized, "unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}
	return claims, nil
}
