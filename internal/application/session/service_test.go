package session

import (
	"context"
	"testing"
	"time"

	"github.com/payssd/payssd-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}
func (m *mockSessionStore) Update(ctx context.Context, sessionID string, updates map[string]interface{}) error {
	return m.Called(ctx, sessionID, updates).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func merchantWithPassword(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	require.NoError(t, err)
	return &domain.User{
		UserID:       "u1",
		Email:        "owner@shop.test",
		PasswordHash: string(hash),
		Role:         domain.RoleMerchant,
		Enable:       true,
	}
}

// --- Login tests ---

func TestLogin_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	ss := &mockSessionStore{}
	jwt := &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "owner@shop.test").Return(merchantWithPassword(t, "password123"), nil)
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt.On("Sign", "u1", domain.RoleMerchant, mock.Anything).Return("bearer-token", nil)

	svc := NewService(ss, us, jwt)
	res, err := svc.Login(context.Background(), LoginRequest{Email: "owner@shop.test", Password: "password123"})

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", res.Bearer)
	assert.NotEmpty(t, res.RefreshToken)
	require.NotNil(t, res.Session.User)
	assert.Equal(t, "u1", res.Session.UserID)
}

func TestLogin_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "nobody@shop.test").Return(nil, domain.ErrNotFound)

	svc := NewService(&mockSessionStore{}, us, &mockJWTSigner{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@shop.test", Password: "x"})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.ErrorContains(t, err, "invalid credentials")
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "owner@shop.test").Return(merchantWithPassword(t, "password123"), nil)

	svc := NewService(&mockSessionStore{}, us, &mockJWTSigner{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "owner@shop.test", Password: "wrong"})

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.ErrorContains(t, err, "invalid credentials")
}

func TestLogin_DisabledAccount(t *testing.T) {
	us := &mockUserStore{}
	u := merchantWithPassword(t, "password123")
	u.Enable = false
	us.On("GetByEmail", mock.Anything, "owner@shop.test").Return(u, nil)

	svc := NewService(&mockSessionStore{}, us, &mockJWTSigner{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "owner@shop.test", Password: "password123"})

	require.ErrorIs(t, err, domain.ErrForbidden)
	require.ErrorContains(t, err, "account disabled")
}

// --- GetCurrent tests ---

func TestGetCurrent_DisabledSession(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", Enable: false}, nil)

	svc := NewService(ss, &mockUserStore{}, &mockJWTSigner{})
	_, err := svc.GetCurrent(context.Background(), "s1")

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.ErrorContains(t, err, "session expired")
}

func TestGetCurrent_AttachesUser(t *testing.T) {
	ss := &mockSessionStore{}
	us := &mockUserStore{}
	ss.On("Get", mock.Anything, "s1").Return(&domain.Session{SessionID: "s1", UserID: "u1", Enable: true}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Email: "owner@shop.test"}, nil)

	svc := NewService(ss, us, &mockJWTSigner{})
	sess, err := svc.GetCurrent(context.Background(), "s1")

	require.NoError(t, err)
	require.NotNil(t, sess.User)
	assert.Equal(t, "owner@shop.test", sess.User.Email)
}

// --- Refresh tests ---

func TestRefresh_ExpiredToken(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("GetByRefreshToken", mock.Anything, "old-token").Return(&domain.Session{
		SessionID:        "s1",
		UserID:           "u1",
		RefreshExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}, nil)

	svc := NewService(ss, &mockUserStore{}, &mockJWTSigner{})
	_, _, err := svc.Refresh(context.Background(), "old-token")

	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.ErrorContains(t, err, "refresh token expired")
}

func TestRefresh_RotatesToken(t *testing.T) {
	ss := &mockSessionStore{}
	us := &mockUserStore{}
	jwt := &mockJWTSigner{}

	ss.On("GetByRefreshToken", mock.Anything, "old-token").Return(&domain.Session{
		SessionID:        "s1",
		UserID:           "u1",
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)
	ss.On("RotateRefreshToken", mock.Anything, "s1", mock.Anything, mock.Anything).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: domain.RoleMerchant}, nil)
	jwt.On("Sign", "u1", domain.RoleMerchant, "s1").Return("new-bearer", nil)

	svc := NewService(ss, us, jwt)
	bearer, newToken, err := svc.Refresh(context.Background(), "old-token")

	require.NoError(t, err)
	assert.Equal(t, "new-bearer", bearer)
	assert.NotEqual(t, "old-token", newToken)
	ss.AssertExpectations(t)
}

// --- Logout tests ---

func TestLogout_DisablesSession(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("Update", mock.Anything, "s1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		return updates["enable"] == false
	})).Return(nil)

	svc := NewService(ss, &mockUserStore{}, &mockJWTSigner{})
	err := svc.Logout(context.Background(), "s1")

	require.NoError(t, err)
	ss.AssertExpectations(t)
}
