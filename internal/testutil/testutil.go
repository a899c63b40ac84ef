// Package testutil wires in-memory storage for package tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"bank-backend/internal/database"
	"bank-backend/internal/models"
	"bank-backend/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// SetupTestDB opens a private in-memory SQLite database, migrates it and
// assigns it to database.DB.
func SetupTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	database.DB = db
	return db
}

// SetupTestRedis starts miniredis and assigns a client to database.RedisClient.
// The previous client is restored on cleanup.
func SetupTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	previous := database.RedisClient
	database.RedisClient = client

	t.Cleanup(func() {
		database.RedisClient = previous
		client.Close()
		mr.Close()
	})
	return mr, client
}

// CreateUser inserts a user with a unique email and national id.
func CreateUser(t testing.TB, db *gorm.DB, role string) *models.User {
	t.Helper()

	n := seq.Add(1)
	user := &models.User{
		Name:       fmt.Sprintf("User %d", n),
		Email:      fmt.Sprintf("user%d@example.com", n),
		Password:   "$2a$10$invalidhashforfixtures000000000000000000000000000000",
		NationalID: fmt.Sprintf("%011d", n),
		Role:       role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

// CreateAccount inserts an active checking account with the given balance.
func CreateAccount(t testing.TB, db *gorm.DB, userID uint, balance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		AccountNumber: fmt.Sprintf("%010d", seq.Add(1)),
		Type:          models.AccountTypeChecking,
		Balance:       decimal.NewFromInt(balance),
		UserID:        userID,
		IsActive:      true,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create account: %v", err)
	}
	return account
}

// Balance reloads the stored balance of an account.
func Balance(t testing.TB, db *gorm.DB, accountID uint) decimal.Decimal {
	t.Helper()

	var account models.Account
	if err := db.First(&account, accountID).Error; err != nil {
		t.Fatalf("failed to load account %d: %v", accountID, err)
	}
	return account.Balance
}

// BearerToken issues a token for user suitable for an Authorization header.
func BearerToken(t testing.TB, user *models.User) string {
	t.Helper()

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// PerformRequest sends body as JSON to h. An empty token sends no Authorization header.
func PerformRequest(h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
