package services

import (
	"context"
	"errors"
	"strings"

	"bank-backend/internal/database"
	"bank-backend/internal/models"
	"bank-backend/internal/repositories"
	"bank-backend/internal/utils"
	"bank-backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	NationalID string
	Phone      string
	Address    string
}

// RegisterUser creates a client user and issues a token for it.
func RegisterUser(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	users := repositories.NewUserRepository(database.DB.WithContext(ctx))
	email := normalizeEmail(in.Email)

	if taken, err := users.ExistsBy("email", email, 0); err != nil {
		return nil, "", utils.NewInternalError("failed to check email", err)
	} else if taken {
		return nil, "", ErrEmailTaken
	}
	if taken, err := users.ExistsBy("national_id", in.NationalID, 0); err != nil {
		return nil, "", utils.NewInternalError("failed to check national id", err)
	} else if taken {
		return nil, "", ErrNationalIDTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", utils.NewInternalError("failed to hash password", err)
	}

	user := &models.User{
		Name:       strings.TrimSpace(in.Name),
		Email:      email,
		Password:   string(hashedPassword),
		NationalID: in.NationalID,
		Phone:      in.Phone,
		Address:    in.Address,
		Role:       models.RoleClient,
		Version:    1,
	}
	if err := users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", utils.NewInternalError("failed to create user", err)
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", utils.NewInternalError("failed to generate token", err)
	}

	logger.Log.Info("User registered", zap.Uint("user_id", user.ID))
	return user, token, nil
}

func LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	users := repositories.NewUserRepository(database.DB.WithContext(ctx))

	user, err := users.FindByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, utils.NewInternalError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, utils.NewInternalError("failed to generate token", err)
	}

	return token, user, nil
}

// LogoutUser revokes tokenString for the rest of its lifetime.
func LogoutUser(ctx context.Context, tokenString string) error {
	claims, err := utils.ValidateToken(tokenString)
	if err != nil {
		return utils.NewUnauthorizedError("invalid or expired token")
	}
	if err := AddToDenylist(ctx, tokenString, utils.TokenTTL(claims)); err != nil {
		return utils.NewInternalError("failed to revoke token", err)
	}
	return nil
}

// EnsureAdmin creates the bootstrap administrator when no user has that email.
func EnsureAdmin(ctx context.Context, name, email, password, nationalID string) error {
	if email == "" || password == "" {
		return nil
	}
	users := repositories.NewUserRepository(database.DB.WithContext(ctx))

	if _, err := users.FindByEmail(normalizeEmail(email)); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:       name,
		Email:      normalizeEmail(email),
		Password:   string(hashedPassword),
		NationalID: nationalID,
		Role:       models.RoleAdmin,
		Version:    1,
	}
	if err := users.Create(admin); err != nil {
		return err
	}

	logger.Log.Info("Bootstrap admin created", zap.String("email", admin.Email))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
