package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Admin is a backoffice user. Only super admins may create or delete admins.
type Admin struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Username string `json:"username" gorm:"uniqueIndex;not null"`
	// Bcrypt hash, never serialized.
	Password     string `json:"-" gorm:"not null"`
	IsSuperAdmin bool   `json:"is_super_admin" gorm:"default:false"`
}

func (Admin) TableName() string {
	return "admins"
}

// SetPassword hashes and stores the plaintext password.
func (a *Admin) SetPassword(plain string, cost int) error {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return err
	}
	a.Password = string(hash)
	return nil
}

// ComparePassword reports whether the candidate matches the stored hash.
func (a *Admin) ComparePassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(candidate)) == nil
}
