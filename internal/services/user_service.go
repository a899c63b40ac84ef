package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bank-backend/internal/database"
	"bank-backend/internal/models"
	"bank-backend/internal/repositories"
	"bank-backend/internal/utils"
	"bank-backend/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const userCacheTTL = time.Hour

func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// FindUserByID loads a user, reading through the Redis cache when available.
func FindUserByID(ctx context.Context, userID uint) (*models.User, error) {
	cacheKey := userCacheKey(userID)
	if database.RedisClient != nil {
		val, err := database.RedisClient.Get(ctx, cacheKey).Result()
		if err == nil {
			var user models.User
			if err := json.Unmarshal([]byte(val), &user); err == nil {
				return &user, nil
			}
		}
	}

	user, err := repositories.NewUserRepository(database.DB.WithContext(ctx)).FindByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, utils.NewInternalError("failed to load user", err)
	}

	if database.RedisClient != nil {
		if data, err := json.Marshal(user); err == nil {
			database.RedisClient.Set(ctx, cacheKey, data, userCacheTTL)
		}
	}

	return user, nil
}

func invalidateUserCache(ctx context.Context, userID uint) {
	if database.RedisClient != nil {
		database.RedisClient.Del(ctx, userCacheKey(userID))
	}
}

// FindUsers retrieves a paginated list of users.
func FindUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	users, total, err := repositories.NewUserRepository(database.DB.WithContext(ctx)).
		FindAll(repositories.Page{Page: page, Limit: limit})
	if err != nil {
		return nil, 0, utils.NewInternalError("failed to list users", err)
	}
	return users, total, nil
}

// UpdateUserInput lists the mutable profile fields. Nil means unchanged.
type UpdateUserInput struct {
	Name       *string
	Email      *string
	Password   *string
	NationalID *string
	Phone      *string
	Address    *string
	Role       *string
}

// UpdateUser updates a user with optimistic locking and selective fields.
func UpdateUser(ctx context.Context, id uint, in UpdateUserInput, actor *models.User) (*models.User, error) {
	users := repositories.NewUserRepository(database.DB.WithContext(ctx))

	user, err := users.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, utils.NewInternalError("failed to load user", err)
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if taken, err := users.ExistsBy("email", email, id); err != nil {
			return nil, utils.NewInternalError("failed to check email", err)
		} else if taken {
			return nil, ErrEmailTaken
		}
		updates["email"] = email
	}
	if in.NationalID != nil {
		if taken, err := users.ExistsBy("national_id", *in.NationalID, id); err != nil {
			return nil, utils.NewInternalError("failed to check national id", err)
		} else if taken {
			return nil, ErrNationalIDTaken
		}
		updates["national_id"] = *in.NationalID
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.Role != nil && *in.Role != user.Role {
		if actor == nil || !actor.IsAdmin() {
			return nil, ErrRoleChangeForbidden
		}
		updates["role"] = *in.Role
	}
	if in.Password != nil && *in.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, utils.NewInternalError("failed to hash password", err)
		}
		updates["password"] = string(hashedPassword)
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := users.UpdateWithVersion(user, updates); err != nil {
		switch {
		case errors.Is(err, repositories.ErrVersionConflict):
			return nil, ErrOptimisticLock
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, ErrEmailTaken
		}
		return nil, utils.NewInternalError("failed to update user", err)
	}

	invalidateUserCache(ctx, id)

	fields := make([]string, 0, len(updates))
	for k := range updates {
		if k != "password" {
			fields = append(fields, k)
		}
	}
	var actorID uint
	if actor != nil {
		actorID = actor.ID
	}
	logger.Log.Info("User updated", zap.Uint("user_id", id), zap.Uint("actor_id", actorID), zap.Strings("fields", fields))

	updated, err := users.FindByID(id)
	if err != nil {
		return nil, utils.NewInternalError("failed to reload user", err)
	}
	return updated, nil
}

// DeleteUser removes a user that no longer owns accounts.
func DeleteUser(ctx context.Context, id uint) error {
	db := database.DB.WithContext(ctx)

	if _, err := repositories.NewUserRepository(db).FindByID(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return utils.NewInternalError("failed to load user", err)
	}

	count, err := repositories.NewAccountRepository(db).CountByUserID(id)
	if err != nil {
		return utils.NewInternalError("failed to count accounts", err)
	}
	if count > 0 {
		return ErrUserOwnsAccounts
	}

	if err := repositories.NewUserRepository(db).Delete(id); err != nil {
		return utils.NewInternalError("failed to delete user", err)
	}
	invalidateUserCache(ctx, id)
	return nil
}
