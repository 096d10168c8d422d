package user

import (
	"context"
	"errors"
	"testing"

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
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.User), args.String(1), args.Error(2)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) SoftDelete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) SoftDeleteByUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) NotifyAdmin(ctx context.Context, eventType string, data map[string]interface{}, channels ...domain.Channel) *domain.SendResult {
	args := m.Called(ctx, eventType, data)
	if r, _ := args.Get(0).(*domain.SendResult); r != nil {
		return r
	}
	return &domain.SendResult{}
}

// --- helpers ---

func newService(us *mockUserStore, ss *mockSessionStore, jwt *mockJWTSigner, n *mockNotifier) Service {
	deps := ServiceDeps{
		UserRepo:    us,
		SessionRepo: ss,
		JWTProvider: jwt,
	}
	if n != nil {
		deps.Notifier = n
	}
	return NewService(deps)
}

func baseReq() domain.CreateUserRequest {
	return domain.CreateUserRequest{
		Email:        "owner@shop.test",
		Password:     "password123",
		BusinessName: "Ada's Shop",
		ContactName:  "Ada Obi",
		Country:      "NG",
	}
}

// --- Register tests ---

func TestRegister_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "owner@shop.test").Return(&domain.User{}, nil)

	svc := newService(us, nil, nil, nil)
	_, err := svc.Register(context.Background(), baseReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	us.AssertExpectations(t)
}

func TestRegister_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	n := &mockNotifier{}
	us.On("GetByEmail", mock.Anything, "owner@shop.test").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	n.On("NotifyAdmin", mock.Anything, domain.EventMerchantSignup, mock.MatchedBy(func(d map[string]interface{}) bool {
		return d["business_name"] == "Ada's Shop" && d["email"] == "owner@shop.test"
	})).Return(&domain.SendResult{Success: true})

	svc := newService(us, nil, nil, n)
	u, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
	assert.Equal(t, "owner@shop.test", u.Email)
	assert.Equal(t, domain.RoleMerchant, u.Role)
	assert.True(t, u.Enable)
	assert.False(t, u.Verified)
	us.AssertExpectations(t)
	n.AssertExpectations(t)
}

func TestRegister_NotificationFailureDoesNotFailSignup(t *testing.T) {
	us := &mockUserStore{}
	n := &mockNotifier{}
	us.On("GetByEmail", mock.Anything, "owner@shop.test").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	n.On("NotifyAdmin", mock.Anything, domain.EventMerchantSignup, mock.Anything).
		Return(&domain.SendResult{Success: false, Error: "No active email provider configured"})

	svc := newService(us, nil, nil, n)
	_, err := svc.Register(context.Background(), baseReq())

	require.NoError(t, err)
}

func TestRegisterWithSession_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	ss := &mockSessionStore{}
	jwt := &mockJWTSigner{}
	n := &mockNotifier{}
	us.On("GetByEmail", mock.Anything, "owner@shop.test").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	ss.On("Put", mock.Anything, mock.AnythingOfType("*domain.Session")).Return(nil)
	jwt.On("Sign", mock.Anything, domain.RoleMerchant, mock.Anything).Return("bearer-token", nil)
	n.On("NotifyAdmin", mock.Anything, domain.EventMerchantSignup, mock.MatchedBy(func(d map[string]interface{}) bool {
		return d["business_name"] == "Ada's Shop" && d["email"] == "owner@shop.test"
	})).Return(&domain.SendResult{Success: true})

	svc := newService(us, ss, jwt, n)
	sess, bearer, refresh, err := svc.RegisterWithSession(context.Background(), baseReq())

	require.NoError(t, err)
	assert.Equal(t, "bearer-token", bearer)
	assert.NotEmpty(t, refresh)
	require.NotNil(t, sess.User)
	assert.Equal(t, "owner@shop.test", sess.User.Email)
}

// --- Update tests ---

func ptr[T any](v T) *T { return &v }

func TestUpdate_EmptyRequest_ReturnsExistingUser(t *testing.T) {
	us := &mockUserStore{}
	existing := &domain.User{UserID: "u1", BusinessName: "Ada's Shop"}
	us.On("Get", mock.Anything, "u1").Return(existing, nil)

	svc := newService(us, nil, nil, nil)
	u, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{})

	require.NoError(t, err)
	assert.Equal(t, existing, u)
	us.AssertExpectations(t)
}

func TestUpdate_EmailConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "taken@shop.test").Return(&domain.User{UserID: "other"}, nil)

	svc := newService(us, nil, nil, nil)
	_, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{
		Email: ptr("taken@shop.test"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUpdate_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	updated := &domain.User{UserID: "u1", BusinessName: "New Name"}
	us.On("Update", mock.Anything, "u1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		return updates[fieldBusinessName] == "New Name"
	})).Return(nil)
	us.On("Get", mock.Anything, "u1").Return(updated, nil)

	svc := newService(us, nil, nil, nil)
	u, err := svc.Update(context.Background(), "u1", domain.UpdateUserRequest{
		BusinessName: ptr("New Name"),
	})

	require.NoError(t, err)
	assert.Equal(t, "New Name", u.BusinessName)
	us.AssertExpectations(t)
}

// --- Delete tests ---

func TestDelete_PropagatesStoreError(t *testing.T) {
	us := &mockUserStore{}
	storeErr := errors.New("dynamo error")
	us.On("SoftDelete", mock.Anything, "u1").Return(storeErr)

	svc := newService(us, &mockSessionStore{}, nil, nil)
	err := svc.Delete(context.Background(), "u1")

	require.Error(t, err)
	assert.Equal(t, storeErr, err)
	us.AssertExpectations(t)
}

func TestDelete_AlsoDeletesSessions(t *testing.T) {
	us := &mockUserStore{}
	ss := &mockSessionStore{}
	us.On("SoftDelete", mock.Anything, "u1").Return(nil)
	ss.On("SoftDeleteByUser", mock.Anything, "u1").Return(nil)

	svc := newService(us, ss, nil, nil)
	err := svc.Delete(context.Background(), "u1")

	require.NoError(t, err)
	us.AssertExpectations(t)
	ss.AssertExpectations(t)
}

// --- ChangePassword tests ---

func TestChangePassword_WrongCurrent(t *testing.T) {
	us := &mockUserStore{}
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)

	svc := newService(us, nil, nil, nil)
	err := svc.ChangePassword(context.Background(), "u1", "wrong-password", "new-password")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestChangePassword_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.DefaultCost)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", PasswordHash: string(hash)}, nil)
	us.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)

	svc := newService(us, nil, nil, nil)
	err := svc.ChangePassword(context.Background(), "u1", "correct-password", "new-password")

	require.NoError(t, err)
	us.AssertExpectations(t)
}
