package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"property-service/internal/models"
)

const (
	maxLoginAttempts = 5
	lockoutDuration  = 30 * time.Minute
)

// ErrCredentialLocked is returned while a credential is locked out
// after repeated failed logins.
var ErrCredentialLocked = errors.New("credential is locked")

type CredentialRepository interface {
	GetByUsername(ctx context.Context, username string) (*models.Credential, error)
	ValidateSecret(ctx context.Context, username, secret string) (*models.Credential, bool, error)
	RecordLoginAttempt(ctx context.Context, credential *models.Credential, success bool) error
}

type credentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new credential repository
func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetByUsername(ctx context.Context, username string) (*models.Credential, error) {
	var credential models.Credential
	if err := r.db.WithContext(ctx).First(&credential, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &credential, nil
}

// ValidateSecret compares the submitted secret against the stored hash.
// A locked credential fails fast without touching the hash.
func (r *credentialRepository) ValidateSecret(ctx context.Context, username, secret string) (*models.Credential, bool, error) {
	credential, err := r.GetByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}

	if credential.LockedUntil != nil && credential.LockedUntil.After(time.Now()) {
		return credential, false, ErrCredentialLocked
	}

	err = bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(secret))
	return credential, err == nil, nil
}

// RecordLoginAttempt resets the counter on success and increments it on
// failure, locking the credential once the attempt limit is hit.
func (r *credentialRepository) RecordLoginAttempt(ctx context.Context, credential *models.Credential, success bool) error {
	now := time.Now()
	updates := map[string]interface{}{
		"updated_at": now,
	}

	if success {
		updates["login_attempts"] = 0
		updates["locked_until"] = nil
	} else {
		attempts := credential.LoginAttempts + 1
		updates["login_attempts"] = attempts
		if attempts >= maxLoginAttempts {
			updates["locked_until"] = now.Add(lockoutDuration)
		}
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Credential{}).
		Where("id = ?", credential.ID).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}
	return nil
}
