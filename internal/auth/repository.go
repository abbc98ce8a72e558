package auth

import (
	"context"
	"errors"

	"github.com/aTrapDeer/portfolio-backend/internal/store"

	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*Admin, error) {
	admin := new(Admin)
	err := r.db.WithContext(ctx).Where("email = ?", email).First(admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return admin, nil
}

// Provision creates the admin with this email or resets its password and
// name when it already exists.
func (r *Repository) Provision(ctx context.Context, email, password, name string) (*Admin, error) {
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin, err := r.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		admin = &Admin{Email: email, PasswordHash: hashed, Name: name}
		if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
			return nil, err
		}
		return admin, nil
	case err != nil:
		return nil, err
	}

	admin.PasswordHash = hashed
	admin.Name = name
	if err := r.db.WithContext(ctx).Save(admin).Error; err != nil {
		return nil, err
	}
	return admin, nil
}

func (r *Repository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Admin{}).Error
}
