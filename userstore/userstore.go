// Package userstore persists user accounts in Postgres.
package userstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
)

// ErrUserNotFound is returned for lookups that match no account.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailTaken is returned by Create when the email already has an account.
var ErrEmailTaken = errors.New("email already registered")

// Store is the user account repository.
type Store interface {
	Create(ctx context.Context, user *types.User) error
	FindByEmail(ctx context.Context, email string) (*types.User, error)
	FindByID(ctx context.Context, id string) (*types.User, error)
	Update(ctx context.Context, user *types.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) error
}

// GormStore is the Postgres-backed Store.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// OpenPostgres connects to Postgres and migrates the users table.
func OpenPostgres(cfg types.PostgresConfig) (*GormStore, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.DBName, cfg.Port, sslMode,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&types.User{}); err != nil {
		return nil, fmt.Errorf("user table migration failed: %w", err)
	}
	tool.DefaultLogger.Infof("[UserStore] Connected to Postgres at %s:%s", cfg.Host, cfg.Port)
	return &GormStore{db: db}, nil
}

func (s *GormStore) Create(ctx context.Context, user *types.User) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&types.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *GormStore) FindByEmail(ctx context.Context, email string) (*types.User, error) {
	var user types.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (s *GormStore) FindByID(ctx context.Context, id string) (*types.User, error) {
	var user types.User
	err := s.db.WithContext(ctx).Where("user_id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

func (s *GormStore) Update(ctx context.Context, user *types.User) error {
	result := s.db.WithContext(ctx).Model(&types.User{}).Where("user_id = ?", user.ID).
		Updates(map[string]any{"name": user.Name, "email": user.Email, "plan": user.Plan})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *GormStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result := s.db.WithContext(ctx).Model(&types.User{}).Where("user_id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", id).Delete(&types.User{}).Error; err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
