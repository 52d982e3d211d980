package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"property-service/internal/models"
	"property-service/internal/repository"
)

var (
	// ErrInvalidCredentials is returned for a bad username or secret.
	// The two cases are deliberately indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrCredentialLocked is returned while the credential is locked out.
	ErrCredentialLocked = errors.New("account temporarily locked")

	// ErrPortalAccessRevoked is returned when the credential is disabled
	// or the tenant no longer holds a current lease.
	ErrPortalAccessRevoked = errors.New("portal access revoked")
)

// TenantClaims are the JWT claims of a tenant portal session.
type TenantClaims struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Username string    `json:"username"`
	jwt.RegisteredClaims
}

// AuthService handles tenant portal authentication
type AuthService struct {
	credentialRepo repository.CredentialRepository
	contractRepo   repository.ContractRepository
	jwtSecret      string
	tokenExpiry    time.Duration
	logger         *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(credentialRepo repository.CredentialRepository, contractRepo repository.ContractRepository, jwtSecret string, tokenExpiryHours int, logger *logrus.Logger) *AuthService {
	return &AuthService{
		credentialRepo: credentialRepo,
		contractRepo:   contractRepo,
		jwtSecret:      jwtSecret,
		tokenExpiry:    time.Duration(tokenExpiryHours) * time.Hour,
		logger:         logger,
	}
}

// Login authenticates a tenant against their portal credential and
// issues a session token. Tenants without a current lease are refused
// even with a valid secret.
func (s *AuthService) Login(ctx context.Context, req *models.TenantLoginRequest) (*models.TenantLoginResult, error) {
	credential, ok, err := s.credentialRepo.ValidateSecret(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrInvalidCredentials
		case errors.Is(err, repository.ErrCredentialLocked):
			return nil, ErrCredentialLocked
		default:
			s.logger.WithError(err).Error("Failed to validate credential")
			return nil, fmt.Errorf("failed to validate credential: %w", err)
		}
	}

	if recordErr := s.credentialRepo.RecordLoginAttempt(ctx, credential, ok); recordErr != nil {
		s.logger.WithError(recordErr).Warn("Failed to record login attempt")
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}
	if !credential.IsActive {
		return nil, ErrPortalAccessRevoked
	}

	current, err := s.contractRepo.GetCurrentByTenant(ctx, credential.TenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPortalAccessRevoked
		}
		s.logger.WithError(err).Error("Failed to load current contract")
		return nil, fmt.Errorf("failed to load current contract: %w", err)
	}

	contract, err := s.contractRepo.GetByID(ctx, current.ID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load contract details")
		return nil, fmt.Errorf("failed to load contract details: %w", err)
	}

	token, err := s.generateToken(credential)
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate token")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"tenant_id": credential.TenantID,
		"username":  credential.Username,
	}).Info("Tenant logged in")

	result := &models.TenantLoginResult{
		Token:    token,
		TenantID: credential.TenantID,
	}
	if contract.Tenant != nil {
		result.FullName = contract.Tenant.FullName
	}
	return result, nil
}

// ValidateToken validates and parses a portal session token.
func (s *AuthService) ValidateToken(tokenString string) (*TenantClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TenantClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*TenantClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func (s *AuthService) generateToken(credential *models.Credential) (string, error) {
	now := time.Now()
	claims := &TenantClaims{
		TenantID: credential.TenantID,
		Username: credential.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "property-service",
			Subject:   credential.TenantID.String(),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
