package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/monocle-dev/taskdeck/internal/auth"
	"github.com/monocle-dev/taskdeck/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	MinHandleLength   = 3
	MaxHandleLength   = 80
	MinPasswordLength = 6
	// bcrypt ignores input past this many bytes and refuses to hash it.
	MaxPasswordBytes = 72
)

type SessionConfig struct {
	// TTL applies to logins without "remember me".
	TTL          time.Duration
	RememberTTL  time.Duration
	PasswordCost int
}

type RegisterParams struct {
	Handle       string
	Email        string
	Password     string
	Confirmation string
}

type LoginParams struct {
	Handle   string
	Password string
	Remember bool
}

type LoginResult struct {
	User      *models.User
	SessionID string
	Token     string
	ExpiresAt time.Time
	Remember  bool
}

type ChangePasswordParams struct {
	Current      string
	New          string
	Confirmation string
	// KeepSessionID survives the change; every other session of the
	// user is ended.
	KeepSessionID string
}

type IdentityService struct {
	db       *gorm.DB
	logger   zerolog.Logger
	tokens   *auth.TokenIssuer
	validate *validator.Validate
	cfg      SessionConfig
	now      func() time.Time
}

func NewIdentityService(db *gorm.DB, logger zerolog.Logger, tokens *auth.TokenIssuer, cfg SessionConfig) *IdentityService {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = 30 * 24 * time.Hour
	}

	return &IdentityService{
		db:       db,
		logger:   logger.With().Str("service", "identity").Logger(),
		tokens:   tokens,
		validate: validator.New(),
		cfg:      cfg,
		now:      utcNow,
	}
}

// Register creates a user. Nothing is written when validation fails.
func (s *IdentityService) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	handle := strings.TrimSpace(params.Handle)
	email := strings.ToLower(strings.TrimSpace(params.Email))

	if n := utf8.RuneCountInString(handle); n < MinHandleLength || n > MaxHandleLength {
		return nil, validationError("Handle must be between %d and %d characters", MinHandleLength, MaxHandleLength)
	}

	if err := validatePassword(params.Password, params.Confirmation); err != nil {
		return nil, err
	}

	if email != "" {
		if err := s.validate.Var(email, "email"); err != nil {
			return nil, validationError("Invalid email address")
		}
	}

	db := s.db.WithContext(ctx)

	var count int64

	if err := db.Model(&models.User{}).Where("handle = ?", handle).Count(&count).Error; err != nil {
		s.logger.Error().Err(err).Str("handle", handle).Msg("failed to check handle")
		return nil, err
	}

	if count > 0 {
		return nil, validationError("Handle already taken")
	}

	if email != "" {
		if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			s.logger.Error().Err(err).Msg("failed to check email")
			return nil, err
		}

		if count > 0 {
			return nil, validationError("Email already registered")
		}
	}

	hash, err := auth.HashPassword(params.Password, s.cfg.PasswordCost)

	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, err
	}

	user := models.User{
		Handle:       handle,
		PasswordHash: hash,
	}

	if email != "" {
		user.Email = &email
	}

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, validationError("Handle or email already taken")
		}
		s.logger.Error().Err(err).Str("handle", handle).Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().
		Uint("user_id", user.ID).
		Str("handle", user.Handle).
		Msg("registered user")

	return &user, nil
}

// Authenticate checks the credentials and opens a new session.
func (s *IdentityService) Authenticate(ctx context.Context, params LoginParams) (*LoginResult, error) {
	db := s.db.WithContext(ctx)

	var user models.User

	err := db.Where("handle = ?", strings.TrimSpace(params.Handle)).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn().Str("handle", params.Handle).Msg("login for unknown handle")
			return nil, authError("Invalid handle or password")
		}
		s.logger.Error().Err(err).Msg("failed to fetch user")
		return nil, err
	}

	match, err := auth.CheckPassword(user.PasswordHash, params.Password)

	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to compare password")
		return nil, err
	}

	if !match {
		s.logger.Warn().Uint("user_id", user.ID).Msg("password mismatch")
		return nil, authError("Invalid handle or password")
	}

	sessionID, err := uuid.NewV7()

	if err != nil {
		return nil, err
	}

	ttl := s.cfg.TTL
	if params.Remember {
		ttl = s.cfg.RememberTTL
	}

	now := s.now()
	session := models.Session{
		ID:        sessionID.String(),
		UserID:    user.ID,
		Remember:  params.Remember,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	var token string

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		var err error
		token, err = s.tokens.Generate(session.ID, user.ID, session.ExpiresAt)
		return err
	})

	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to open session")
		return nil, err
	}

	s.logger.Info().
		Uint("user_id", user.ID).
		Str("session_id", session.ID).
		Bool("remember", session.Remember).
		Msg("logged in")

	return &LoginResult{
		User:      &user,
		SessionID: session.ID,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Remember:  session.Remember,
	}, nil
}

// EndSession deletes the session named by token. Unknown, expired or
// malformed tokens are ignored, so calling it twice is harmless.
func (s *IdentityService) EndSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := s.tokens.Inspect(token)

	if err != nil {
		s.logger.Debug().Err(err).Msg("ignoring logout with unreadable token")
		return nil
	}

	result := s.db.WithContext(ctx).
		Where("id = ?", claims.SessionID()).
		Delete(&models.Session{})

	if result.Error != nil {
		s.logger.Error().Err(result.Error).Str("session_id", claims.SessionID()).Msg("failed to delete session")
		return result.Error
	}

	s.logger.Info().
		Str("session_id", claims.SessionID()).
		Int64("affected", result.RowsAffected).
		Msg("ended session")

	return nil
}

// ResolveSession maps a token to its live session and user.
func (s *IdentityService) ResolveSession(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, authError("Authorization token is required")
	}

	claims, err := s.tokens.Verify(token)

	if err != nil {
		return nil, nil, authError("Invalid or expired token")
	}

	db := s.db.WithContext(ctx)

	var session models.Session

	if err := db.Where("id = ?", claims.SessionID()).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, authError("Session has ended")
		}
		return nil, nil, err
	}

	if session.Expired(s.now()) || session.UserID != claims.UserID {
		return nil, nil, authError("Invalid or expired token")
	}

	var user models.User

	if err := db.First(&user, session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, authError("User not found")
		}
		return nil, nil, err
	}

	return &user, &session, nil
}

func (s *IdentityService) ChangePassword(ctx context.Context, userID uint, params ChangePasswordParams) error {
	user, err := s.GetUser(ctx, userID)

	if err != nil {
		return err
	}

	match, err := auth.CheckPassword(user.PasswordHash, params.Current)

	if err != nil {
		return err
	}

	if !match {
		return authError("Current password is incorrect")
	}

	if err := validatePassword(params.New, params.Confirmation); err != nil {
		return err
	}

	hash, err := auth.HashPassword(params.New, s.cfg.PasswordCost)

	if err != nil {
		return err
	}

	var revoked int64

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("password_hash", hash).Error; err != nil {
			return err
		}

		result := tx.Where("user_id = ? AND id <> ?", user.ID, params.KeepSessionID).
			Delete(&models.Session{})
		revoked = result.RowsAffected

		return result.Error
	})

	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", user.ID).Msg("failed to change password")
		return err
	}

	s.logger.Info().
		Uint("user_id", user.ID).
		Int64("revoked_sessions", revoked).
		Msg("changed password")

	return nil
}

func (s *IdentityService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User

	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}

	return &user, nil
}

func (s *IdentityService) FindUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).Where("handle = ?", strings.TrimSpace(handle)).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("User not found")
		}
		return nil, err
	}

	return &user, nil
}

// PurgeExpiredSessions removes session rows past their expiry and
// returns how many went.
func (s *IdentityService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&models.Session{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}

func validatePassword(password, confirmation string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return validationError("Password must be at least %d characters", MinPasswordLength)
	}

	if len(password) > MaxPasswordBytes {
		return validationError("Password must be at most %d bytes", MaxPasswordBytes)
	}

	if password != confirmation {
		return validationError("Passwords do not match")
	}

	return nil
}
