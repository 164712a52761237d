package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"hushwall/internal/authz"
	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/repository"
	"hushwall/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AccountService struct {
	accounts repository.AccountRepository
	sessions repository.SessionRepository
	guard    *authz.Engine
}

func NewAccountService(
	accounts repository.AccountRepository,
	sessions repository.SessionRepository,
	guard *authz.Engine,
) *AccountService {
	return &AccountService{accounts: accounts, sessions: sessions, guard: guard}
}

type CredentialsInput struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

// UpdateAccountInput carries the owner-writable account fields. Setting a
// password converts the account to custom credentials.
type UpdateAccountInput struct {
	Handle   *string `json:"handle"`
	Password *string `json:"password"`
}

type ListAccountsInput struct {
	Role        string
	OldestFirst bool
	Limit       int
	Offset      int
}

// ProvisionAnonymous creates an account with generated credentials and binds
// it to the session, so the anonymous poster can return later. The plaintext
// password is returned exactly once.
func (s *AccountService) ProvisionAnonymous(ctx context.Context, sessionID uint) (*ProvisionedAccount, error) {
	password := models.GeneratePassword()
	account := &models.Account{
		Handle:   models.GenerateHandle(),
		Password: password,
	}

	// Handles are 8 random letters out of 26^8; a collision is possible but
	// one retry covers it in practice.
	err := s.accounts.Create(ctx, account)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		account.Handle = models.GenerateHandle()
		err = s.accounts.Create(ctx, account)
	}
	if err != nil {
		return nil, err
	}

	if err := s.sessions.SetAccount(ctx, sessionID, &account.ID); err != nil {
		return nil, err
	}
	now := time.Now()
	account.LastLogin = &now
	if err := s.accounts.TouchLastLogin(ctx, account.ID, now); err != nil {
		return nil, err
	}

	return &ProvisionedAccount{Account: account, Password: password}, nil
}

// Authenticate checks credentials and binds the account to the caller's
// session. Generated passwords are stored and compared as plaintext until
// the owner customizes them; custom passwords are bcrypt hashes. A caller who
// is already logged in must log out first.
func (s *AccountService) Authenticate(ctx context.Context, id identity.Identity, in CredentialsInput) (*models.Account, error) {
	if id.Authenticated() {
		return nil, models.NewValidationError("Already logged in")
	}

	fields := validation.Errors{}
	fields.CheckRequired("handle", in.Handle)
	fields.CheckRequired("password", in.Password)
	if !fields.Empty() {
		return nil, models.NewFieldValidationError(fields)
	}

	account, err := s.accounts.GetByHandle(ctx, in.Handle)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewValidationError("Invalid credentials")
		}
		return nil, err
	}

	if account.PasswordCustom {
		if bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(in.Password)) != nil {
			return nil, models.NewValidationError("Invalid credentials")
		}
	} else if subtle.ConstantTimeCompare([]byte(account.Password), []byte(in.Password)) != 1 {
		return nil, models.NewValidationError("Invalid credentials")
	}

	if err := s.sessions.SetAccount(ctx, id.SessionID(), &account.ID); err != nil {
		return nil, err
	}
	now := time.Now()
	if err := s.accounts.TouchLastLogin(ctx, account.ID, now); err != nil {
		return nil, err
	}
	account.LastLogin = &now
	return account, nil
}

// Logout unbinds the account from the caller's session.
func (s *AccountService) Logout(ctx context.Context, id identity.Identity) error {
	if !id.Authenticated() {
		return models.NewUnauthorizedError("Not logged in")
	}
	return s.sessions.SetAccount(ctx, id.SessionID(), nil)
}

// Get returns an account readable by the caller: owners read themselves,
// admins read anyone.
func (s *AccountService) Get(ctx context.Context, id identity.Identity, accountID uint) (*models.Account, error) {
	obj := authz.Object{Owned: id.OwnsAccount(&accountID)}
	if err := s.guard.Authorize(ctx, id, authz.ResourceAccount, authz.ActionRead, obj); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account", accountID)
		}
		return nil, err
	}
	return account, nil
}

// List returns accounts, optionally filtered by role. Admin only.
func (s *AccountService) List(ctx context.Context, id identity.Identity, in ListAccountsInput) ([]*models.Account, error) {
	if id.Role() != identity.RoleAdmin {
		return nil, models.NewForbiddenError()
	}
	return s.accounts.List(ctx, in.Role, in.OldestFirst, in.Limit, in.Offset)
}

// Update changes the caller's own handle or password. A new password is
// stored as a bcrypt hash and marks the credentials as customized, ending
// the plaintext-comparison phase for good.
func (s *AccountService) Update(ctx context.Context, id identity.Identity, accountID uint, in UpdateAccountInput) (*models.Account, error) {
	obj := authz.Object{Owned: id.OwnsAccount(&accountID)}
	if err := s.guard.Authorize(ctx, id, authz.ResourceAccount, authz.ActionUpdate, obj); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account", accountID)
		}
		return nil, err
	}

	fields := validation.Errors{}
	if in.Handle != nil {
		fields.CheckLength("handle", *in.Handle, validation.HandleMinLen, validation.HandleMaxLen)
	}
	if in.Password != nil {
		fields.CheckLength("password", *in.Password, validation.PasswordMinLen, validation.PasswordMaxLen)
	}
	if !fields.Empty() {
		return nil, models.NewFieldValidationError(fields)
	}

	if in.Handle != nil && *in.Handle != account.Handle {
		if _, err := s.accounts.GetByHandle(ctx, *in.Handle); err == nil {
			return nil, models.NewValidationError("Handle already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		account.Handle = *in.Handle
	}

	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		account.Password = string(hashed)
		account.PasswordCustom = true
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// SetRole promotes or demotes an account. Admin only; used by the admin CLI
// and the admin API.
func (s *AccountService) SetRole(ctx context.Context, id identity.Identity, accountID uint, role string) (*models.Account, error) {
	if id.Role() != identity.RoleAdmin {
		return nil, models.NewForbiddenError()
	}
	if role != "" && role != models.RoleAdmin && role != models.RoleModerator {
		return nil, models.NewValidationError("Unknown role")
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Account", accountID)
		}
		return nil, err
	}

	account.Role = role
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}
