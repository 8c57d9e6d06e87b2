package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/JakubMikolajczyk/Library/internal/user"
	"github.com/JakubMikolajczyk/Library/internal/utils"
)

const (
	testAccessSecret  = "access-secret"
	testRefreshSecret = "refresh-secret"
	testAccessTTL     = 15 * time.Minute
	testRefreshTTL    = 24 * time.Hour
)

// =====================
// Mock: user.UserRepository
// =====================

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) ReadByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) ReadByID(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) ReadAll(ctx context.Context) ([]user.User, error) {
	args := m.Called(ctx)
	us, _ := args.Get(0).([]user.User)
	return us, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// =====================
// Mock: TokenRepository
// =====================

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Create(ctx context.Context, token *Token) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTokenRepository) DeleteAllByUserID(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// =====================
// Helpers
// =====================

func mustHash(t *testing.T, plain string) string {
	t.Helper()
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	return string(b)
}

func newService(users user.UserRepository, tokens TokenRepository) SessionService {
	return NewSessionService(
		users, tokens, zap.NewNop(),
		testAccessSecret, testAccessTTL,
		testRefreshSecret, testRefreshTTL,
	)
}

func testUser(t *testing.T, id uint, username, password string) *user.User {
	t.Helper()
	u := user.NewUser(username, mustHash(t, password))
	u.ID = id
	return u
}

// =====================
// Login
// =====================

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	alice := testUser(t, 42, "alice", "sekret-pw1")
	users.On("ReadByUsername", ctx, "alice").Return(alice, nil)

	var row *Token
	tokens.On("Create", ctx, mock.AnythingOfType("*auth.Token")).
		Run(func(args mock.Arguments) { row = args.Get(1).(*Token) }).
		Return(nil).Once()

	pair, err := newService(users, tokens).Login(ctx, "alice", "sekret-pw1")
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// Both tokens carry the ledger row's id.
	refreshClaims, err := utils.ParseRefreshToken(pair.RefreshToken, testRefreshSecret)
	assert.NoError(t, err)
	accessClaims, err := utils.ParseAccessToken(pair.AccessToken, testAccessSecret)
	assert.NoError(t, err)

	assert.NotNil(t, row)
	assert.Equal(t, row.ID, refreshClaims.ID)
	assert.Equal(t, row.ID, accessClaims.ID)
	assert.Equal(t, uint(42), row.UserID)
	assert.Equal(t, "42", refreshClaims.Subject)
	assert.WithinDuration(t, time.Now().Add(testRefreshTTL), row.ExpiresAt, time.Minute)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	alice := testUser(t, 42, "alice", "sekret-pw1")
	users.On("ReadByUsername", ctx, "alice").Return(alice, nil)

	_, err := newService(users, tokens).Login(ctx, "alice", "wrong-pw99")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_UnknownUserLooksLikeWrongPassword(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	users.On("ReadByUsername", ctx, "nobody").Return(nil, user.ErrUserNotFound)

	_, err := newService(users, tokens).Login(ctx, "nobody", "whatever1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin_TokenIDCollisionRetriedOnce(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	alice := testUser(t, 42, "alice", "sekret-pw1")
	users.On("ReadByUsername", ctx, "alice").Return(alice, nil)

	var ids []string
	tokens.On("Create", ctx, mock.AnythingOfType("*auth.Token")).
		Run(func(args mock.Arguments) { ids = append(ids, args.Get(1).(*Token).ID) }).
		Return(ErrTokenIDConflict).Once()
	tokens.On("Create", ctx, mock.AnythingOfType("*auth.Token")).
		Run(func(args mock.Arguments) { ids = append(ids, args.Get(1).(*Token).ID) }).
		Return(nil).Once()

	pair, err := newService(users, tokens).Login(ctx, "alice", "sekret-pw1")
	assert.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	tokens.AssertNumberOfCalls(t, "Create", 2)
}

func TestLogin_PersistentCollisionFailsLoudly(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	alice := testUser(t, 42, "alice", "sekret-pw1")
	users.On("ReadByUsername", ctx, "alice").Return(alice, nil)
	tokens.On("Create", ctx, mock.Anything).Return(ErrTokenIDConflict)

	_, err := newService(users, tokens).Login(ctx, "alice", "sekret-pw1")
	assert.ErrorIs(t, err, ErrTokenIDConflict)
	tokens.AssertNumberOfCalls(t, "Create", 2)
}

// =====================
// Register
// =====================

func TestRegister_AutoLogin(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	var created *user.User
	users.On("Create", ctx, mock.AnythingOfType("*user.User")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*user.User)
			created.ID = 7
		}).
		Return(nil)
	tokens.On("Create", ctx, mock.Anything).Return(nil)

	pair, err := newService(users, tokens).Register(ctx, Registration{
		Username: "bob",
		Password: "sekret-pw1",
		Email:    "bob@example.com",
		Name:     "Bob",
		Surname:  "Books",
		Address:  "Main 1",
		City:     "Warsaw",
	})
	assert.NoError(t, err)

	// The stored password is a hash, never the plaintext.
	assert.NotNil(t, created)
	assert.NotEqual(t, "sekret-pw1", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("sekret-pw1")))
	assert.Equal(t, user.RoleUser, created.Role)
	assert.Equal(t, "bob@example.com", created.Email)

	claims, err := utils.ParseRefreshToken(pair.RefreshToken, testRefreshSecret)
	assert.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	users.On("Create", ctx, mock.Anything).Return(user.ErrUsernameAlreadyExists)

	_, err := newService(users, tokens).Register(ctx, Registration{
		Username: "alice",
		Password: "sekret-pw1",
	})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_WeakPasswordRejected(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	_, err := newService(users, tokens).Register(ctx, Registration{
		Username: "carol",
		Password: "short1",
	})
	assert.ErrorIs(t, err, user.ErrPasswordTooShort)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// =====================
// Refresh
// =====================

func issueTestRefresh(t *testing.T, subject, tokenID string, ttl time.Duration) string {
	t.Helper()
	signed, err := utils.IssueRefreshToken(subject, tokenID, testRefreshSecret, ttl)
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}
	return signed
}

func TestRefresh_Success(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	alice := testUser(t, 42, "alice", "sekret-pw1")
	users.On("ReadByID", ctx, uint(42)).Return(alice, nil)
	tokens.On("ExistsByID", ctx, "token-id-1").Return(true, nil)

	refreshJWT := issueTestRefresh(t, "42", "token-id-1", testRefreshTTL)
	accessJWT, err := newService(users, tokens).Refresh(ctx, refreshJWT)
	assert.NoError(t, err)

	claims, err := utils.ParseAccessToken(accessJWT, testAccessSecret)
	assert.NoError(t, err)
	assert.Equal(t, "token-id-1", claims.ID)
	assert.Equal(t, "42", claims.Subject)

	// Rotation reuses the ledger row, it never writes a new one.
	tokens.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRefresh_ExpiredEvictsRow(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	tokens.On("ExistsByID", ctx, "token-id-1").Return(true, nil)
	tokens.On("DeleteByID", ctx, "token-id-1").Return(nil)

	refreshJWT := issueTestRefresh(t, "42", "token-id-1", -time.Minute)
	_, err := newService(users, tokens).Refresh(ctx, refreshJWT)
	assert.ErrorIs(t, err, ErrSessionExpired)
	tokens.AssertCalled(t, "DeleteByID", ctx, "token-id-1")
}

func TestRefresh_ExpiredTwiceBecomesRevoked(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	// The row is already gone, the earlier eviction took it.
	tokens.On("ExistsByID", ctx, "token-id-1").Return(false, nil)

	refreshJWT := issueTestRefresh(t, "42", "token-id-1", -time.Minute)
	_, err := newService(users, tokens).Refresh(ctx, refreshJWT)
	assert.ErrorIs(t, err, ErrSessionRevoked)
	tokens.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestRefresh_RevokedSession(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	tokens.On("ExistsByID", ctx, "never-issued").Return(false, nil)

	refreshJWT := issueTestRefresh(t, "42", "never-issued", testRefreshTTL)
	_, err := newService(users, tokens).Refresh(ctx, refreshJWT)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestRefresh_MalformedToken(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	_, err := newService(users, tokens).Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, utils.ErrMalformedToken)
	tokens.AssertNotCalled(t, "ExistsByID", mock.Anything, mock.Anything)
}

// =====================
// ChangePassword / LogoutAll
// =====================

func TestChangePassword_WrongOldPassword(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	alice := testUser(t, 42, "alice", "sekret-pw1")
	users.On("ReadByID", ctx, uint(42)).Return(alice, nil)

	err := newService(users, tokens).ChangePassword(ctx, 42, "wrong-pw99", "next-pw2x")
	assert.ErrorIs(t, err, ErrWrongPassword)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	tokens.AssertNotCalled(t, "DeleteAllByUserID", mock.Anything, mock.Anything)
}

func TestChangePassword_RevokesEverySession(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	alice := testUser(t, 42, "alice", "sekret-pw1")
	users.On("ReadByID", ctx, uint(42)).Return(alice, nil)

	var updated *user.User
	users.On("Update", ctx, mock.AnythingOfType("*user.User")).
		Run(func(args mock.Arguments) { updated = args.Get(1).(*user.User) }).
		Return(nil)
	tokens.On("DeleteAllByUserID", ctx, uint(42)).Return(nil)

	err := newService(users, tokens).ChangePassword(ctx, 42, "sekret-pw1", "next-pw2x")
	assert.NoError(t, err)

	assert.NotNil(t, updated)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.Password), []byte("next-pw2x")))
	tokens.AssertCalled(t, "DeleteAllByUserID", ctx, uint(42))
}

func TestLogoutAll_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)

	// Zero deleted rows is still success.
	tokens.On("DeleteAllByUserID", ctx, uint(42)).Return(nil)

	svc := newService(users, tokens)
	assert.NoError(t, svc.LogoutAll(ctx, 42))
	assert.NoError(t, svc.LogoutAll(ctx, 42))
}

// =====================
// Stateful fakes for end-to-end session scenarios
// =====================

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint
	byName map[string]*user.User
	byID   map[uint]*user.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{nextID: 1, byName: map[string]*user.User{}, byID: map[uint]*user.User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[u.Username]; ok {
		return user.ErrUsernameAlreadyExists
	}
	u.ID = f.nextID
	f.nextID++
	f.byName[u.Username] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) ReadByUsername(_ context.Context, username string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byName[username]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) ReadByID(_ context.Context, id uint) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) ReadAll(_ context.Context) ([]user.User, error) { return nil, nil }

func (f *fakeUsers) Update(_ context.Context, u *user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byName[u.Username] = u
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint) error { return nil }

type fakeLedger struct {
	mu   sync.Mutex
	rows map[string]*Token
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: map[string]*Token{}}
}

func (f *fakeLedger) Create(_ context.Context, token *Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[token.ID]; ok {
		return ErrTokenIDConflict
	}
	f.rows[token.ID] = token
	return nil
}

func (f *fakeLedger) ExistsByID(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[id]
	return ok, nil
}

func (f *fakeLedger) DeleteByID(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, id)
	return nil
}

func (f *fakeLedger) DeleteAllByUserID(_ context.Context, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, row := range f.rows {
		if row.UserID == userID {
			delete(f.rows, id)
		}
	}
	return nil
}

func (f *fakeLedger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func TestScenario_PasswordChangeRevokesOldSession(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	ledger := newFakeLedger()
	svc := newService(users, ledger)

	pair, err := svc.Register(ctx, Registration{Username: "alice", Password: "sekret-pw1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, ledger.count())

	alice, err := users.ReadByUsername(ctx, "alice")
	assert.NoError(t, err)

	err = svc.ChangePassword(ctx, alice.ID, "sekret-pw1", "sekret-pw2")
	assert.NoError(t, err)
	assert.Equal(t, 0, ledger.count())

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	// The old password is gone, the new one works and opens a fresh session.
	_, err = svc.Login(ctx, "alice", "sekret-pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice", "sekret-pw2")
	assert.NoError(t, err)
	assert.Equal(t, 1, ledger.count())
}

func TestScenario_ConcurrentLoginsGetDistinctRows(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	ledger := newFakeLedger()
	svc := newService(users, ledger)

	_, err := svc.Register(ctx, Registration{Username: "bob", Password: "sekret-pw1"})
	assert.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	pairs := make([]TokenPair, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pairs[i], errs[i] = svc.Login(ctx, "bob", "sekret-pw1")
		}(i)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	// Registration row plus two independent login rows.
	assert.Equal(t, 3, ledger.count())

	c0, err := utils.ParseRefreshToken(pairs[0].RefreshToken, testRefreshSecret)
	assert.NoError(t, err)
	c1, err := utils.ParseRefreshToken(pairs[1].RefreshToken, testRefreshSecret)
	assert.NoError(t, err)
	assert.NotEqual(t, c0.ID, c1.ID)
}

func TestScenario_ExpiredRefreshThenRevoked(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	ledger := newFakeLedger()

	// Short-lived refresh tokens so the issued token is already expired.
	svc := NewSessionService(
		users, ledger, zap.NewNop(),
		testAccessSecret, testAccessTTL,
		testRefreshSecret, -time.Minute,
	)

	pair, err := svc.Register(ctx, Registration{Username: "carol", Password: "sekret-pw1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, ledger.count())

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, 0, ledger.count())

	// Second attempt with the same token: the row is gone.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}
