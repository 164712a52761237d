// Package models contains data structures for the application's domain models.
package models

import (
	"crypto/rand"
	"math/big"
	"time"
)

// Account roles. An empty role is an ordinary member.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// Account is a durable identity. Most accounts are provisioned implicitly on a
// first anonymous confession with a generated handle and a generated
// plaintext-comparable password; PasswordCustom flips once the owner sets a
// real password, after which Password holds a bcrypt hash.
type Account struct {
	ID             uint       `gorm:"primaryKey" json:"id,omitempty"`
	Handle         string     `gorm:"size:20;uniqueIndex;not null" json:"handle"`
	Password       string     `gorm:"size:128;not null" json:"password,omitempty"`
	PasswordCustom bool       `gorm:"not null;default:false" json:"-"`
	Role           string     `gorm:"size:9" json:"role,omitempty"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `json:"created"`
}

// IsStaff reports whether the account holds any elevated role.
func (a *Account) IsStaff() bool {
	return a != nil && (a.Role == RoleAdmin || a.Role == RoleModerator)
}

// IsAdmin reports whether the account holds the admin role.
func (a *Account) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

const (
	handleAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordDigits     = "0123456789"
	generatedHandleLen = 8
)

func randomFrom(alphabet string, n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// there is no sensible recovery for credential generation.
			panic(err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}

// GenerateHandle returns a random 8-letter uppercase handle.
func GenerateHandle() string {
	return randomFrom(handleAlphabet, generatedHandleLen)
}

// GeneratePassword returns a shuffled mix of 4 uppercase letters and 4 digits.
// Generated passwords are stored as-is and compared in plaintext until the
// account owner customizes them.
func GeneratePassword() string {
	chars := []byte(randomFrom(handleAlphabet, 4) + randomFrom(passwordDigits, 4))
	for i := len(chars) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			panic(err)
		}
		chars[i], chars[j.Int64()] = chars[j.Int64()], chars[i]
	}
	return string(chars)
}
