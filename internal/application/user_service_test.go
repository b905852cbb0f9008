package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-commerce-api/internal/domain/entity"
	"github.com/oksasatya/go-commerce-api/internal/domain/repository"
	"github.com/oksasatya/go-commerce-api/pkg/helpers"
)

// fakeUserRepo is an in-memory UserRepository keyed by ID with a unique email
// constraint, mirroring the postgres implementation's error contract.
type fakeUserRepo struct {
	users  map[string]*entity.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	r.nextID++
	u.ID = fmt.Sprintf("u-%d", r.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByResetToken(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	for _, u := range r.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == hash &&
			u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for id, existing := range r.users {
		if id != u.ID && existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

// fakeMailer records sends and can be told to fail.
type fakeMailer struct {
	sent []string // recipients
	fail bool
}

func (m *fakeMailer) Send(_ context.Context, to, _, _, _ string) error {
	if m.fail {
		return errors.New("mailgun unavailable")
	}
	m.sent = append(m.sent, to)
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(repo repository.UserRepository, mail *fakeMailer) *UserService {
	return NewUserService(
		repo,
		helpers.NewJWTManager("test-secret", time.Hour),
		mail,
		quietLogger(),
		"http://localhost:3000/resetpassword",
		10*time.Minute,
		true,
	)
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string, admin bool) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	require.NoError(t, err)
	u := &entity.User{Name: "Alice", Email: email, PasswordHash: hash, IsAdmin: admin}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestRegister(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMailer{})

	u, token, err := svc.Register(context.Background(), "Alice", "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.IsAdmin, "new accounts must not be admins")
	assert.NotEqual(t, "hunter2", u.PasswordHash)
	assert.True(t, helpers.CheckPassword(u.PasswordHash, "hunter2"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMailer{})
	seedUser(t, repo, "alice@example.com", "hunter2", false)

	_, _, err := svc.Register(context.Background(), "Alice Again", "alice@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMailer{})
	seeded := seedUser(t, repo, "alice@example.com", "hunter2", false)

	u, token, err := svc.Authenticate(context.Background(), "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, u.ID)

	claims, err := svc.JWT.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, claims.UserID)
}

func TestAuthenticateFailureIndistinguishable(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMailer{})
	seedUser(t, repo, "alice@example.com", "hunter2", false)

	_, _, wrongPass := svc.Authenticate(context.Background(), "alice@example.com", "hunter3")
	_, _, unknownEmail := svc.Authenticate(context.Background(), "nobody@example.com", "hunter2")

	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknownEmail.Error())
}

func TestUpdateProfilePartial(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMailer{})
	seeded := seedUser(t, repo, "alice@example.com", "hunter2", false)

	u, token, err := svc.UpdateProfile(context.Background(), seeded.ID, UpdateProfileInput{Name: "Alice B."})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Alice B.", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	// hash untouched when no password supplied
	assert.Equal(t, seeded.PasswordHash, u.PasswordHash)
	assert.True(t, helpers.CheckPassword(u.PasswordHash, "hunter2"))
}

func TestUpdateProfilePasswordChange(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMailer{})
	seeded := seedUser(t, repo, "alice@example.com", "hunter2", false)

	u, _, err := svc.UpdateProfile(context.Background(), seeded.ID, UpdateProfileInput{Password: "hunter3"})
	require.NoError(t, err)
	assert.NotEqual(t, seeded.PasswordHash, u.PasswordHash)
	assert.True(t, helpers.CheckPassword(u.PasswordHash, "hunter3"))
	assert.False(t, helpers.CheckPassword(u.PasswordHash, "hunter2"))
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMailer{})

	_, _, err := svc.UpdateProfile(context.Background(), "u-404", UpdateProfileInput{Name: "Ghost"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestForgotPasswordStoresDigestAndSendsMail(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestService(repo, mail)
	seeded := seedUser(t, repo, "alice@example.com", "hunter2", false)

	require.NoError(t, svc.ForgotPassword(context.Background(), "alice@example.com"))

	stored, err := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetTokenHash)
	require.NotNil(t, stored.ResetTokenExpiry)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), *stored.ResetTokenExpiry, 5*time.Second)
	assert.Equal(t, []string{"alice@example.com"}, mail.sent)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{}
	svc := newTestService(repo, mail)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	assert.NoError(t, err)
	assert.Empty(t, mail.sent)
}

func TestForgotPasswordMailFailureRollsBack(t *testing.T) {
	repo := newFakeUserRepo()
	mail := &fakeMailer{fail: true}
	svc := newTestService(repo, mail)
	seeded := seedUser(t, repo, "alice@example.com", "hunter2", false)

	err := svc.ForgotPassword(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrMailDelivery)

	// no dangling reset state after a failed delivery
	stored, gerr := repo.GetByID(context.Background(), seeded.ID)
	require.NoError(t, gerr)
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiry)
}

func TestResetPasswordFlow(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMailer{})
	seeded := seedUser(t, repo, "alice@example.com", "hunter2", false)

	// plant a known pending token, as ForgotPassword would
	secret, digest, err := helpers.NewResetToken()
	require.NoError(t, err)
	expiry := time.Now().Add(10 * time.Minute)
	stored := repo.users[seeded.ID]
	stored.ResetTokenHash = &digest
	stored.ResetTokenExpiry = &expiry

	u, err := svc.ResetPassword(context.Background(), secret, "hunter3")
	require.NoError(t, err)
	assert.True(t, helpers.CheckPassword(u.PasswordHash, "hunter3"))
	assert.Nil(t, u.ResetTokenHash)
	assert.Nil(t, u.ResetTokenExpiry)

	// the secret is single-use
	_, err = svc.ResetPassword(context.Background(), secret, "hunter4")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	// old password no longer works, new one does
	_, _, err = svc.Authenticate(context.Background(), "alice@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Authenticate(context.Background(), "alice@example.com", "hunter3")
	assert.NoError(t, err)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMailer{})
	seeded := seedUser(t, repo, "alice@example.com", "hunter2", false)

	secret, digest, err := helpers.NewResetToken()
	require.NoError(t, err)
	expiry := time.Now().Add(-time.Minute)
	stored := repo.users[seeded.ID]
	stored.ResetTokenHash = &digest
	stored.ResetTokenExpiry = &expiry

	_, err = svc.ResetPassword(context.Background(), secret, "hunter3")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestResetPasswordWrongSecret(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(repo, &fakeMailer{})
	seedUser(t, repo, "alice@example.com", "hunter2", false)

	_, err := svc.ResetPassword(context.Background(), "deadbeef", "hunter3")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}
