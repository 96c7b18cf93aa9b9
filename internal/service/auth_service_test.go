package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/report-service/internal/auth"
	"github.com/spec-kit/report-service/internal/config"
	"github.com/spec-kit/report-service/internal/domain"
	apperrors "github.com/spec-kit/report-service/pkg/util"
)

type fakeUserRepo struct {
	byEmail    map[string]*domain.User
	byUsername map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail:    make(map[string]*domain.User),
		byUsername: make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return apperrors.NewEmailTaken()
	}
	if _, ok := f.byUsername[user.Username]; ok {
		return apperrors.NewUsernameTaken()
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.byEmail[user.Email] = user
	f.byUsername[user.Username] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if user, ok := f.byUsername[username]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(f.byEmail))
	for _, user := range f.byEmail {
		users = append(users, user)
	}
	return users, nil
}

func (f *fakeUserRepo) delete(email string) {
	if user, ok := f.byEmail[email]; ok {
		delete(f.byUsername, user.Username)
		delete(f.byEmail, email)
	}
}

type fakeRefreshRepo struct {
	rows map[string]domain.RefreshToken
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{rows: make(map[string]domain.RefreshToken)}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	f.rows[token] = domain.RefreshToken{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeRefreshRepo) FindLive(ctx context.Context, token string) (string, error) {
	row, ok := f.rows[token]
	if !ok || !row.ExpiresAt.After(time.Now()) {
		return "", pgx.ErrNoRows
	}
	return row.UserID, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	delete(f.rows, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var removed int64
	for token, row := range f.rows {
		if !row.ExpiresAt.After(time.Now()) {
			delete(f.rows, token)
			removed++
		}
	}
	return removed, nil
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 30,
		RefreshTokenTTLDays:   7,
		BcryptCost:            bcrypt.MinCost,
	}
}

func newTestAuthService() (*AuthService, *fakeUserRepo, *fakeRefreshRepo) {
	users := newFakeUserRepo()
	tokens := newFakeRefreshRepo()
	svc := NewAuthService(testAuthConfig(), AuthDependencies{
		UserRepo:         users,
		RefreshTokenRepo: tokens,
	}, zap.NewNop())
	return svc, users, tokens
}

func TestRegister_Defaults(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "Alice A")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, user.Role)
	require.True(t, user.IsActive)
	require.False(t, user.IsVerified)
	require.NotEqual(t, "pw123", user.PasswordHash)
	require.NoError(t, auth.ComparePassword(user.PasswordHash, "pw123"))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "other-username", "pw456", "")
	require.Error(t, err)
	require.Equal(t, apperrors.CodeEmailTaken, apperrors.CodeOf(err))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "other@example.com", "alice", "pw456", "")
	require.Error(t, err)
	require.Equal(t, apperrors.CodeUsernameTaken, apperrors.CodeOf(err))
}

func TestLogin_IssuesPairAndPersistsRefreshOnly(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	// Only the refresh token has a durable row.
	require.Len(t, tokens.rows, 1)
	row, ok := tokens.rows[pair.RefreshToken]
	require.True(t, ok)
	require.Equal(t, user.ID, row.UserID)

	claims, err := svc.TokenManager().ParseToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Subject)
}

func TestLogin_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)

	_, errUnknown := svc.Login(ctx, "nobody@example.com", "pw123")
	_, errWrongPw := svc.Login(ctx, "alice@example.com", "wrong")

	require.Equal(t, apperrors.CodeInvalidCredentials, apperrors.CodeOf(errUnknown))
	require.Equal(t, apperrors.CodeInvalidCredentials, apperrors.CodeOf(errWrongPw))
}

func TestLogin_InactiveAccount(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)
	user.IsActive = false

	_, err = svc.Login(ctx, "alice@example.com", "pw123")
	require.Error(t, err)
	require.Equal(t, apperrors.CodeInactiveAccount, apperrors.CodeOf(err))
}

func TestRefresh_IssuesNewAccessWithoutRotation(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)

	access, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.TokenManager().ParseToken(access)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Subject)

	// The refresh row is untouched.
	require.Len(t, tokens.rows, 1)
	_, ok := tokens.rows[pair.RefreshToken]
	require.True(t, ok)
}

func TestRefresh_AfterLogoutFailsDespiteValidSignature(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	// The token still verifies cryptographically; only the row is gone.
	_, err = svc.TokenManager().ParseToken(pair.RefreshToken)
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	require.Equal(t, apperrors.CodeExpiredOrRevoked, apperrors.CodeOf(err))
}

func TestRefresh_ExpiredRowIsRevoked(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)

	row := tokens.rows[pair.RefreshToken]
	row.ExpiresAt = time.Now().Add(-time.Second)
	tokens.rows[pair.RefreshToken] = row

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	require.Equal(t, apperrors.CodeExpiredOrRevoked, apperrors.CodeOf(err))
}

func TestRefresh_ExpiredSignatureBeatsLiveRow(t *testing.T) {
	svc, users, tokens := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)

	// Same secret, already-expired embedded expiry.
	expiredIssuer := auth.NewTokenManager("test-secret", -time.Second, -time.Second)
	staleToken, _, err := expiredIssuer.GenerateRefreshToken("alice@example.com")
	require.NoError(t, err)

	user := users.byEmail["alice@example.com"]
	require.NoError(t, tokens.Create(ctx, user.ID, staleToken, time.Now().Add(time.Hour)))

	_, err = svc.Refresh(ctx, staleToken)
	require.Error(t, err)
	require.Equal(t, apperrors.CodeInvalidToken, apperrors.CodeOf(err))
}

func TestRefresh_SubjectDeleted(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)
	pair, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)

	users.delete("alice@example.com")

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Error(t, err)
	require.Equal(t, apperrors.CodeUserNotFound, apperrors.CodeOf(err))
}

func TestLogout_Idempotent(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, "never-issued"))
	require.NoError(t, svc.Logout(ctx, "never-issued"))
}

func TestSweepExpiredTokens(t *testing.T) {
	svc, _, tokens := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, tokens.Create(ctx, "u1", "dead", time.Now().Add(-time.Hour)))
	require.NoError(t, tokens.Create(ctx, "u1", "live", time.Now().Add(time.Hour)))

	svc.SweepExpiredTokens(ctx)

	require.Len(t, tokens.rows, 1)
	_, ok := tokens.rows["live"]
	require.True(t, ok)
}

// Full lifecycle: register, login, resolve the principal, fail an admin
// check, logout, and watch the refresh token die.
func TestSessionLifecycle(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice@example.com", "alice", "pw123", "")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "alice@example.com", "pw123")
	require.NoError(t, err)

	gate := auth.NewAuthMiddleware(svc.TokenManager(), users)
	principal, err := gate.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", principal.Email)
	require.Equal(t, domain.RoleUser, principal.Role)

	err = auth.Authorize(principal, domain.RoleAdmin)
	require.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	require.NoError(t, svc.Logout(ctx, pair.RefreshToken))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	require.Equal(t, apperrors.CodeExpiredOrRevoked, apperrors.CodeOf(err))
}
