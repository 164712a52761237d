package service

import (
	"context"
	"testing"

	"hushwall/internal/authz"
	"hushwall/internal/database"
	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newAccountService(t *testing.T) (*AccountService, *gorm.DB) {
	t.Helper()
	db := newServiceDB(t)
	guard := authz.NewEngine(repository.NewBlocklistRepository(db))
	svc := NewAccountService(
		repository.NewAccountRepository(db),
		repository.NewSessionRepository(db),
		guard,
	)
	return svc, db
}

func guestIdentity(t *testing.T, db *gorm.DB, ip string) identity.Identity {
	t.Helper()
	session := &models.Session{IPAddress: ip}
	require.NoError(t, db.Create(session).Error)
	return identity.Identity{Session: session}
}

func TestProvisionAnonymous(t *testing.T) {
	svc, db := newAccountService(t)
	ctx := context.Background()
	id := guestIdentity(t, db, "203.0.113.1")

	provisioned, err := svc.ProvisionAnonymous(ctx, id.SessionID())
	require.NoError(t, err)

	assert.Len(t, provisioned.Account.Handle, 8)
	assert.Len(t, provisioned.Password, 8)
	assert.False(t, provisioned.Account.PasswordCustom)
	require.NotNil(t, provisioned.Account.LastLogin)

	// The session is bound so the poster keeps acting as the new account.
	var session models.Session
	require.NoError(t, db.First(&session, id.SessionID()).Error)
	require.NotNil(t, session.AccountID)
	assert.Equal(t, provisioned.Account.ID, *session.AccountID)

	// The returned plaintext password authenticates from another address.
	other := guestIdentity(t, db, "203.0.113.2")
	account, err := svc.Authenticate(ctx, other, CredentialsInput{
		Handle:   provisioned.Account.Handle,
		Password: provisioned.Password,
	})
	require.NoError(t, err)
	assert.Equal(t, provisioned.Account.ID, account.ID)
}

func TestAuthenticate(t *testing.T) {
	svc, db := newAccountService(t)
	ctx := context.Background()

	generated := &models.Account{Handle: "GENACCNT", Password: "ABCD1234"}
	require.NoError(t, db.Create(generated).Error)

	hashed, err := bcrypt.GenerateFromPassword([]byte("custom-secret-9"), bcrypt.DefaultCost)
	require.NoError(t, err)
	custom := &models.Account{Handle: "CUSTOMPW", Password: string(hashed), PasswordCustom: true}
	require.NoError(t, db.Create(custom).Error)

	t.Run("generated password compares as plaintext", func(t *testing.T) {
		id := guestIdentity(t, db, "203.0.113.10")
		account, err := svc.Authenticate(ctx, id, CredentialsInput{Handle: "GENACCNT", Password: "ABCD1234"})
		require.NoError(t, err)
		assert.NotNil(t, account.LastLogin)
	})

	t.Run("custom password compares as bcrypt", func(t *testing.T) {
		id := guestIdentity(t, db, "203.0.113.11")
		_, err := svc.Authenticate(ctx, id, CredentialsInput{Handle: "CUSTOMPW", Password: "custom-secret-9"})
		assert.NoError(t, err)
	})

	t.Run("the stored hash is not a usable password", func(t *testing.T) {
		id := guestIdentity(t, db, "203.0.113.12")
		_, err := svc.Authenticate(ctx, id, CredentialsInput{Handle: "CUSTOMPW", Password: string(hashed)})
		assert.Error(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		id := guestIdentity(t, db, "203.0.113.13")
		_, err := svc.Authenticate(ctx, id, CredentialsInput{Handle: "GENACCNT", Password: "WRONG999"})
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})

	t.Run("unknown handle reads like a bad password", func(t *testing.T) {
		id := guestIdentity(t, db, "203.0.113.14")
		_, err := svc.Authenticate(ctx, id, CredentialsInput{Handle: "NOBODYXX", Password: "ABCD1234"})
		require.Error(t, err)
		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})

	t.Run("already logged in", func(t *testing.T) {
		id := guestIdentity(t, db, "203.0.113.15")
		id.Account = generated
		_, err := svc.Authenticate(ctx, id, CredentialsInput{Handle: "GENACCNT", Password: "ABCD1234"})
		assert.Error(t, err)
	})
}

func TestUpdateConvertsToCustomPassword(t *testing.T) {
	svc, db := newAccountService(t)
	ctx := context.Background()

	account := &models.Account{Handle: "UPGRADEE", Password: "ABCD1234"}
	require.NoError(t, db.Create(account).Error)
	id := guestIdentity(t, db, "203.0.113.20")
	id.Account = account

	newPassword := "chosen-by-hand-7"
	updated, err := svc.Update(ctx, id, account.ID, UpdateAccountInput{Password: &newPassword})
	require.NoError(t, err)

	assert.True(t, updated.PasswordCustom)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte(newPassword)))

	t.Run("short password rejected", func(t *testing.T) {
		short := "short"
		_, err := svc.Update(ctx, id, account.ID, UpdateAccountInput{Password: &short})
		assert.Error(t, err)
	})

	t.Run("cannot update someone else", func(t *testing.T) {
		other := &models.Account{Handle: "OTHERACC", Password: "ABCD1234"}
		require.NoError(t, db.Create(other).Error)
		pw := "irrelevant-pass-1"
		_, err := svc.Update(ctx, id, other.ID, UpdateAccountInput{Password: &pw})
		assert.Error(t, err)
	})
}
