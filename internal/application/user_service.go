package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
	"github.com/oksasatya/go-commerce-api/pkg/mailer"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	// ErrInvalidResetToken covers both a wrong secret and an expired one.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	ErrMailDelivery      = errors.New("email could not be sent")
)

// UserService owns identity: credentials, bearer tokens and the password
// reset handshake.
type UserService struct {
	Repo        repository.UserRepository
	JWT         *helpers.JWTManager
	Mail        mailer.Sender
	Logger      *logrus.Logger
	ResetURL    string
	ResetTTL    time.Duration
	MailEnabled bool
}

func NewUserService(repo repository.UserRepository, jwt *helpers.JWTManager, mail mailer.Sender, logger *logrus.Logger, resetURL string, resetTTL time.Duration, mailEnabled bool) *UserService {
	return &UserService{
		Repo:        repo,
		JWT:         jwt,
		Mail:        mail,
		Logger:      logger,
		ResetURL:    resetURL,
		ResetTTL:    resetTTL,
		MailEnabled: mailEnabled,
	}
}

// Register creates a new identity with a freshly hashed password and mints a
// bearer token for it. New accounts are never admins.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*entity.User, string, error) {
	if existing, err := s.Repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, "", ErrEmailTaken
	}

	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, "", err
	}
	u := &entity.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      false,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		// the unique index catches races the pre-check missed
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Authenticate verifies email/password and mints a bearer token. Unknown
// email and wrong password return the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*entity.User, string, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil, "", ErrInvalidCredentials
	}
	if !helpers.CheckPassword(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// UpdateProfileInput carries optional changes; empty fields are left as-is.
type UpdateProfileInput struct {
	Name     string
	Email    string
	Password string
}

// UpdateProfile applies only the supplied fields. The password hash is
// regenerated if and only if a new plaintext password was supplied, and a
// fresh token is issued reflecting the update.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, string, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, "", ErrUserNotFound
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Email != "" {
		u.Email = in.Email
	}
	if in.Password != "" {
		hash, err := helpers.HashPassword(in.Password)
		if err != nil {
			return nil, "", err
		}
		u.PasswordHash = hash
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, _, err := s.JWT.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// ForgotPassword starts the reset handshake. Unknown emails are a silent
// no-op so the endpoint cannot be used to enumerate accounts. For a known
// email the secret is generated, its digest and expiry persisted, and the
// secret mailed out; if delivery fails the pending state is rolled back and
// ErrMailDelivery returned.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil || u == nil {
		return nil
	}

	secret, digest, err := helpers.NewResetToken()
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.ResetTTL)
	// a second request simply overwrites any pending token
	u.ResetTokenHash = &digest
	u.ResetTokenExpiry = &expiry
	if err := s.Repo.Update(ctx, u); err != nil {
		return err
	}

	if err := s.deliverResetMail(ctx, u, secret); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("reset email delivery failed")
		u.ResetTokenHash = nil
		u.ResetTokenExpiry = nil
		if rbErr := s.Repo.Update(ctx, u); rbErr != nil {
			s.Logger.WithError(rbErr).WithField("user_id", u.ID).Error("reset state rollback failed")
		}
		return ErrMailDelivery
	}
	return nil
}

func (s *UserService) deliverResetMail(ctx context.Context, u *entity.User, secret string) error {
	resetLink := s.ResetURL + "/" + secret
	if !s.MailEnabled {
		s.Logger.WithField("reset_link", resetLink).Debug("mail sending disabled, skipping delivery")
		return nil
	}
	text := fmt.Sprintf(
		"You are receiving this email because a password reset was requested for your account.\n\n"+
			"Open the following link to reset your password:\n%s\n\n"+
			"This link is valid for %d minutes. If you did not request this, ignore this email and your password will remain unchanged.",
		resetLink, int(s.ResetTTL.Minutes()))
	html := fmt.Sprintf(
		"<p>You are receiving this email because a password reset was requested for your account.</p>"+
			"<p>Please click on the following link to reset your password:</p>"+
			"<p><a href=%q>%s</a></p>"+
			"<p>This link is valid for %d minutes.</p>"+
			"<p>If you did not request this, please ignore this email and your password will remain unchanged.</p>",
		resetLink, resetLink, int(s.ResetTTL.Minutes()))
	return s.Mail.Send(ctx, u.Email, "Password Reset Token", text, html)
}

// ResetPassword trades a reset secret for a password change. The lookup goes
// through the deterministic digest; a miss and an expired token are
// indistinguishable. On success the new hash is stored and the reset fields
// cleared, which makes every secret single-use.
func (s *UserService) ResetPassword(ctx context.Context, secret, newPassword string) (*entity.User, error) {
	digest := helpers.HashResetToken(secret)
	u, err := s.Repo.GetByResetToken(ctx, digest, time.Now())
	if err != nil || u == nil {
		return nil, ErrInvalidResetToken
	}

	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
