package profile

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/tracker/domain"
	"github.com/fastygo/tracker/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

// Register creates an active member account. Emails are unique.
func (uc *UseCase) Register(ctx context.Context, name, email string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:     uuid.NewString(),
		Name:   strings.TrimSpace(name),
		Email:  email,
		Role:   "member",
		Status: "active",
	}
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

func (uc *UseCase) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	return uc.users.List(ctx, limit, offset)
}

type UpdateProfileInput struct {
	Name     *string
	Email    *string
	Metadata map[string]string
}

// UpdateProfile merges the provided fields into the stored user.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email, err := normalizeEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	if in.Metadata != nil {
		user.Metadata = in.Metadata
	}
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func normalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInvalid, "invalid email", err)
	}
	return strings.ToLower(addr.Address), nil
}
