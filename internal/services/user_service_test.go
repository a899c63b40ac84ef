package services

import (
	"context"
	"testing"

	"bank-backend/internal/models"
	"bank-backend/internal/testutil"
	"bank-backend/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerInput(email, nationalID string) RegisterInput {
	return RegisterInput{
		Name:       "Maria Silva",
		Email:      email,
		Password:   "secret123",
		NationalID: nationalID,
		Phone:      "11987654321",
	}
}

func TestRegisterUser(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	user, token, err := RegisterUser(ctx, registerInput("  Maria@Example.com ", "12345678901"))
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", user.Email)
	assert.Equal(t, models.RoleClient, user.Role)
	assert.NotEqual(t, "secret123", user.Password)
	assert.NotEmpty(t, token)

	claims, err := utils.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, float64(user.ID), claims["user_id"])

	tests := []struct {
		name    string
		in      RegisterInput
		wantErr error
	}{
		{name: "Duplicate Email", in: registerInput("maria@example.com", "10987654321"), wantErr: ErrEmailTaken},
		{name: "Duplicate National ID", in: registerInput("other@example.com", "12345678901"), wantErr: ErrNationalIDTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := RegisterUser(ctx, tt.in)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoginUser(t *testing.T) {
	testutil.SetupTestDB(t)
	ctx := context.Background()

	registered, _, err := RegisterUser(ctx, registerInput("login@example.com", "12345678901"))
	require.NoError(t, err)

	token, user, err := LoginUser(ctx, "LOGIN@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)

	_, _, err = LoginUser(ctx, "login@example.com", "wrong-password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = LoginUser(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutUserDenylistsToken(t *testing.T) {
	testutil.SetupTestDB(t)
	mr, _ := testutil.SetupTestRedis(t)
	ctx := context.Background()

	token, err := utils.GenerateToken(1, models.RoleClient)
	require.NoError(t, err)

	denied, err := IsDenylisted(ctx, token)
	require.NoError(t, err)
	assert.False(t, denied)

	require.NoError(t, LogoutUser(ctx, token))

	denied, err = IsDenylisted(ctx, token)
	require.NoError(t, err)
	assert.True(t, denied)
	assert.Greater(t, mr.TTL(denylistPrefix+token).Seconds(), 0.0)

	err = LogoutUser(ctx, "not-a-token")
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 401, appErr.Status)
}

func TestDenylistWithoutRedis(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, AddToDenylist(ctx, "token", 0))

	denied, err := IsDenylisted(ctx, "token")
	require.NoError(t, err)
	assert.False(t, denied)
}

func TestFindUserByIDUsesCache(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mr, _ := testutil.SetupTestRedis(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, models.RoleClient)

	found, err := FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)
	assert.True(t, mr.Exists(userCacheKey(user.ID)))

	// A direct write bypasses the service, so the cached copy is still served.
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("name", "Changed").Error)
	cached, err := FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Name, cached.Name)

	name := "Through Service"
	_, err = UpdateUser(ctx, user.ID, UpdateUserInput{Name: &name}, user)
	require.NoError(t, err)
	assert.False(t, mr.Exists(userCacheKey(user.ID)))

	fresh, err := FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, name, fresh.Name)

	_, err = FindUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	client := testutil.CreateUser(t, db, models.RoleClient)
	other := testutil.CreateUser(t, db, models.RoleClient)
	admin := testutil.CreateUser(t, db, models.RoleAdmin)

	t.Run("Selective Fields", func(t *testing.T) {
		phone := "11912345678"
		updated, err := UpdateUser(ctx, client.ID, UpdateUserInput{Phone: &phone}, client)
		require.NoError(t, err)
		assert.Equal(t, phone, updated.Phone)
		assert.Equal(t, client.Email, updated.Email)
		assert.Equal(t, client.Version+1, updated.Version)
	})

	t.Run("Email Conflict", func(t *testing.T) {
		_, err := UpdateUser(ctx, client.ID, UpdateUserInput{Email: &other.Email}, client)
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("National ID Conflict", func(t *testing.T) {
		_, err := UpdateUser(ctx, client.ID, UpdateUserInput{NationalID: &other.NationalID}, client)
		assert.ErrorIs(t, err, ErrNationalIDTaken)
	})

	t.Run("Role Change Needs Admin", func(t *testing.T) {
		role := models.RoleAdmin
		_, err := UpdateUser(ctx, client.ID, UpdateUserInput{Role: &role}, client)
		assert.ErrorIs(t, err, ErrRoleChangeForbidden)

		updated, err := UpdateUser(ctx, client.ID, UpdateUserInput{Role: &role}, admin)
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, updated.Role)
	})

	t.Run("Password Is Rehashed", func(t *testing.T) {
		password := "newsecret1"
		_, err := UpdateUser(ctx, other.ID, UpdateUserInput{Password: &password}, other)
		require.NoError(t, err)

		_, _, err = LoginUser(ctx, other.Email, password)
		assert.NoError(t, err)
	})

	t.Run("Unknown User", func(t *testing.T) {
		name := "x"
		_, err := UpdateUser(ctx, 9999, UpdateUserInput{Name: &name}, admin)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	owner := testutil.CreateUser(t, db, models.RoleClient)
	account := testutil.CreateAccount(t, db, owner.ID, 0)

	assert.ErrorIs(t, DeleteUser(ctx, owner.ID), ErrUserOwnsAccounts)

	require.NoError(t, DeleteAccount(ctx, account.ID))
	require.NoError(t, DeleteUser(ctx, owner.ID))

	_, err := FindUserByID(ctx, owner.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, DeleteUser(ctx, owner.ID), ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	require.NoError(t, EnsureAdmin(ctx, "Admin", "Admin@Bank.com", "admin1234", "00000000001"))
	require.NoError(t, EnsureAdmin(ctx, "Admin", "admin@bank.com", "admin1234", "00000000001"))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@bank.com", admins[0].Email)

	_, user, err := LoginUser(ctx, "admin@bank.com", "admin1234")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	assert.NoError(t, EnsureAdmin(ctx, "", "", "", ""))
}
