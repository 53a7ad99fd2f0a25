package firebase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"educycle_backend/internal/config"
	"educycle_backend/internal/shared"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// FirebaseService wraps the Firebase Admin SDK: ID token verification, account management and
// the default storage bucket.
type FirebaseService struct {
	app        *firebase.App
	authClient *auth.Client
	bucketName string
	logger     *zap.Logger
}

var _ shared.IdentityProvider = (*FirebaseService)(nil)

// NewFirebaseService initializes the Firebase Admin SDK. It returns nil without error when no
// service account is configured, so callers can fall back to another identity provider.
func NewFirebaseService(cfg *config.Config, logger *zap.Logger) (*FirebaseService, error) {
	if !cfg.FirebaseEnabled() {
		logger.Info("Firebase service account not configured; Firebase features disabled.")
		return nil, nil
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	conf := &firebase.Config{}
	if cfg.FirebaseProjectID != "" {
		conf.ProjectID = cfg.FirebaseProjectID
	}
	if cfg.FirebaseStorageBucket != "" {
		conf.StorageBucket = cfg.FirebaseStorageBucket
	}

	app, err := firebase.NewApp(context.Background(), conf, opt)
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	authClient, err := app.Auth(context.Background())
	if err != nil {
		logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &FirebaseService{
		app:        app,
		authClient: authClient,
		bucketName: cfg.FirebaseStorageBucket,
		logger:     logger.Named("firebase"),
	}, nil
}

// VerifyIDToken verifies a Firebase ID token.
func (s *FirebaseService) VerifyIDToken(ctx context.Context, idToken string) (*shared.IdentityToken, error) {
	if idToken == "" {
		return nil, fmt.Errorf("ID token must not be empty")
	}

	token, err := s.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.logger.Warn("Firebase ID token verification failed", zap.Error(err))
		return nil, fmt.Errorf("failed to verify Firebase ID token: %w", err)
	}

	email, _ := token.Claims["email"].(string)
	s.logger.Debug("Firebase ID token verified successfully", zap.String("uid", token.UID))
	return &shared.IdentityToken{UID: token.UID, Email: email}, nil
}

// CustomToken mints a token the client exchanges for a Firebase session.
func (s *FirebaseService) CustomToken(ctx context.Context, uid string) (string, error) {
	token, err := s.authClient.CustomToken(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("failed to mint custom token: %w", err)
	}
	return token, nil
}

func (s *FirebaseService) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(strings.ToLower(strings.TrimSpace(email))).
		Password(password).
		EmailVerified(true)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	rec, err := s.authClient.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", shared.ErrIdentityExists
		}
		s.logger.Error("Failed to create Firebase user", zap.Error(err))
		return "", fmt.Errorf("failed to create identity: %w", err)
	}
	return rec.UID, nil
}

func (s *FirebaseService) GetUserByEmail(ctx context.Context, email string) (string, error) {
	rec, err := s.authClient.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", shared.ErrIdentityNotFound
		}
		return "", fmt.Errorf("failed to look up identity: %w", err)
	}
	return rec.UID, nil
}

// RevokeRefreshTokens revokes all refresh tokens for a given user.
func (s *FirebaseService) RevokeRefreshTokens(ctx context.Context, uid string) error {
	if err := s.authClient.RevokeRefreshTokens(ctx, uid); err != nil {
		s.logger.Error("Failed to revoke refresh tokens", zap.Error(err), zap.String("uid", uid))
		return fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return nil
}

// Bucket returns the configured default storage bucket.
func (s *FirebaseService) Bucket(ctx context.Context) (*gcs.BucketHandle, string, error) {
	if s.bucketName == "" {
		return nil, "", errors.New("FIREBASE_STORAGE_BUCKET is not configured")
	}
	client, err := s.app.Storage(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("error getting Firebase Storage client: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, "", fmt.Errorf("error opening bucket %s: %w", s.bucketName, err)
	}
	return bucket, s.bucketName, nil
}
