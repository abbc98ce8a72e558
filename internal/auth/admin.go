package auth

import (
	"github.com/aTrapDeer/portfolio-backend/internal/store"

	"golang.org/x/crypto/bcrypt"
)

// Admin is a login for the admin panel. Admins are provisioned by the seed
// command, never through the API.
type Admin struct {
	store.Base
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Name         string `json:"name"`
}

func (Admin) TableName() string {
	return "admins"
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (a *Admin) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}
