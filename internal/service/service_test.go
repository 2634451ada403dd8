package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"authcore/internal/entity"
	"authcore/internal/repository"
	"authcore/internal/service"
	"authcore/internal/utils"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	testIP        = "203.0.113.7"
)

type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	store    *repository.MemoryStore
	clock    *fakeClock
	auth     *service.AuthService
	sessions *service.SessionService
	users    *service.UserService
	logs     *test.Hook
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	auth         service.AuthConfig
	sessionStore func(repository.SessionRepository) repository.SessionRepository
	securityLogs func(repository.SecurityLogRepository) repository.SecurityLogRepository
	userStore    func(repository.UserRepository) repository.UserRepository
}

func withRegisterToken() harnessOption {
	return func(c *harnessConfig) { c.auth.RegisterIssuesToken = true }
}

func withSessionStore(wrap func(repository.SessionRepository) repository.SessionRepository) harnessOption {
	return func(c *harnessConfig) { c.sessionStore = wrap }
}

func withSecurityLogs(wrap func(repository.SecurityLogRepository) repository.SecurityLogRepository) harnessOption {
	return func(c *harnessConfig) { c.securityLogs = wrap }
}

func withUserStore(wrap func(repository.UserRepository) repository.UserRepository) harnessOption {
	return func(c *harnessConfig) { c.userStore = wrap }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{auth: service.AuthConfig{SessionTTL: 7 * 24 * time.Hour}}
	for _, opt := range opts {
		opt(&cfg)
	}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	store := repository.NewMemoryStore()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	sessionRepo := store.Sessions()
	if cfg.sessionStore != nil {
		sessionRepo = cfg.sessionStore(sessionRepo)
	}
	securityLogs := store.SecurityLogs()
	if cfg.securityLogs != nil {
		securityLogs = cfg.securityLogs(securityLogs)
	}
	userRepo := store.Users()
	if cfg.userStore != nil {
		userRepo = cfg.userStore(userRepo)
	}
	manager := &utils.JWTManager{
		Secret:   []byte("test-secret"),
		Issuer:   "authcore-test",
		TokenTTL: 7 * 24 * time.Hour,
		Now:      clock.Now,
	}

	auth, err := service.NewAuthService(
		userRepo,
		sessionRepo,
		securityLogs,
		service.BcryptPasswordHasher{Cost: bcrypt.MinCost},
		service.JWTAccessIssuer{Manager: manager},
		clock,
		cfg.auth,
		logger,
	)
	require.NoError(t, err)
	sessions := service.NewSessionService(sessionRepo, securityLogs, clock, logger)

	return &harness{
		store:    store,
		clock:    clock,
		auth:     auth,
		sessions: sessions,
		users:    service.NewUserService(userRepo, sessions, securityLogs, logger),
		logs:     hook,
	}
}

func meta() service.RequestMeta {
	return service.RequestMeta{IPAddress: testIP, UserAgent: testUserAgent, LoginMethod: entity.LoginMethodEmail}
}

func registerInput(name string) service.RegisterInput {
	return service.RegisterInput{
		FirstName: strings.ToUpper(name[:1]) + name[1:],
		LastName:  "Tester",
		UserName:  name,
		Email:     name + "@example.com",
		Phone:     "+15550000000",
		Password:  "secret1",
		Gender:    entity.GenderOther,
	}
}

func (h *harness) register(t *testing.T, name string) *entity.User {
	t.Helper()
	result, err := h.auth.Register(context.Background(), registerInput(name), meta())
	require.NoError(t, err)
	return result.User
}

func (h *harness) login(t *testing.T, name string) *service.LoginResult {
	t.Helper()
	result, err := h.auth.Login(context.Background(), name+"@example.com", "secret1", meta())
	require.NoError(t, err)
	return result
}

func TestRegister_StoresOnlyPasswordHash(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	result, err := h.auth.Register(ctx, registerInput("alice"), meta())
	require.NoError(t, err)
	assert.Nil(t, result.Token)
	assert.Equal(t, entity.UserRoleUser, result.User.Role)
	assert.True(t, result.User.IsActive)

	stored, err := h.store.Users().FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret1")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret2")))

	sessions, total, err := h.store.Sessions().ListAll(ctx, repository.SessionFilter{UserID: &stored.ID}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Zero(t, total)
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice")

	sameEmail := registerInput("alice2")
	sameEmail.Email = "  ALICE@example.com "
	_, err := h.auth.Register(ctx, sameEmail, meta())
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)

	sameName := registerInput("alice")
	sameName.Email = "other@example.com"
	_, err = h.auth.Register(ctx, sameName, meta())
	assert.ErrorIs(t, err, service.ErrDuplicateUsername)

	assert.Equal(t, service.KindValidation, service.KindOf(err))
}

func TestRegister_RejectsPasswordBeyondBcryptLimit(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	input := registerInput("bob")
	input.Password = strings.Repeat("p", 80)
	_, err := h.auth.Register(ctx, input, meta())
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.Equal(t, service.KindValidation, service.KindOf(err))

	stored, err := h.store.Users().FindByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, stored)

	input.Password = strings.Repeat("p", 72)
	_, err = h.auth.Register(ctx, input, meta())
	assert.NoError(t, err)
}

func TestBcryptPasswordHasher_TooLong(t *testing.T) {
	_, err := service.BcryptPasswordHasher{Cost: bcrypt.MinCost}.Hash(strings.Repeat("p", 80))
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestRegister_IssuesTokenWhenConfigured(t *testing.T) {
	h := newHarness(t, withRegisterToken())

	result, err := h.auth.Register(context.Background(), registerInput("alice"), meta())
	require.NoError(t, err)
	require.NotNil(t, result.Token)

	sessions, err := h.sessions.ListActive(context.Background(), result.User.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, utils.HashToken(*result.Token), sessions[0].TokenHash)
}

func TestLogin_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice")

	_, unknownErr := h.auth.Login(ctx, "nobody@example.com", "secret1", meta())
	_, wrongErr := h.auth.Login(ctx, "alice@example.com", "wrong-password", meta())

	require.ErrorIs(t, unknownErr, service.ErrInvalidCredentials)
	require.ErrorIs(t, wrongErr, service.ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())

	for _, entry := range h.logs.AllEntries() {
		for _, value := range entry.Data {
			assert.NotEqual(t, "wrong-password", value)
		}
	}

	var failed int
	for _, entry := range h.store.SecurityLogEntries() {
		if entry.Action == entity.LoginFailed {
			failed++
		}
	}
	assert.Equal(t, 2, failed)
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "alice")

	inactive := false
	_, err := h.users.Update(ctx, user.ID, service.UpdateUserInput{IsActive: &inactive})
	require.NoError(t, err)

	_, err = h.auth.Login(ctx, "alice@example.com", "secret1", meta())
	require.ErrorIs(t, err, service.ErrAccountDeactivated)
	assert.NotEqual(t, service.ErrInvalidCredentials.Error(), err.Error())
	assert.Equal(t, service.KindAuthentication, service.KindOf(err))
}

func TestLogin_CreatesSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "alice")
	before := h.clock.Now()

	result := h.login(t, "alice")
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 7*24*time.Hour, result.ExpiresIn)
	assert.True(t, strings.HasPrefix(result.SessionID, "sess_"))

	sessions, err := h.sessions.ListActive(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	session := sessions[0]
	assert.Equal(t, result.SessionID, session.SessionID)
	assert.Equal(t, testIP, session.IPAddress)
	assert.Equal(t, testUserAgent, session.UserAgent)
	assert.Equal(t, entity.DeviceDesktop, session.Device.Type)
	assert.Equal(t, "Chrome", session.Device.Browser)
	assert.Equal(t, "Windows", session.Device.OS)
	assert.Equal(t, entity.UnknownValue, session.Location.Country)
	assert.Equal(t, entity.LoginStatusSuccess, session.LoginStatus)
	assert.Equal(t, before.Add(7*24*time.Hour), session.ExpiresAt)
	assert.Equal(t, utils.HashToken(result.Token), session.TokenHash)
	assert.NotEqual(t, result.Token, session.TokenHash)

	authenticated, err := h.auth.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)
}

type failingSessionStore struct {
	repository.SessionRepository
}

func (failingSessionStore) Create(context.Context, *entity.Session) error {
	return errors.New("session store unavailable")
}

func TestLogin_SucceedsWhenSessionStoreFails(t *testing.T) {
	h := newHarness(t, withSessionStore(func(inner repository.SessionRepository) repository.SessionRepository {
		return failingSessionStore{SessionRepository: inner}
	}))
	user := h.register(t, "alice")

	result := h.login(t, "alice")
	assert.NotEmpty(t, result.Token)
	assert.Empty(t, result.SessionID)

	authenticated, err := h.auth.Authenticate(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)

	var sawError bool
	for _, entry := range h.logs.AllEntries() {
		if entry.Level == logrus.ErrorLevel && entry.Message == "session creation failed, continuing login" {
			sawError = true
		}
	}
	assert.True(t, sawError)
}

type failingSecurityLogs struct{}

func (failingSecurityLogs) Log(context.Context, *entity.SecurityLog) error {
	return errors.New("security log unavailable")
}

func TestLogin_WarnsWhenSecurityLogFails(t *testing.T) {
	h := newHarness(t, withSecurityLogs(func(repository.SecurityLogRepository) repository.SecurityLogRepository {
		return failingSecurityLogs{}
	}))
	h.register(t, "alice")

	result := h.login(t, "alice")
	assert.NotEmpty(t, result.Token)

	var actions []any
	for _, entry := range h.logs.AllEntries() {
		if entry.Level == logrus.WarnLevel && entry.Message == "security log write failed" {
			actions = append(actions, entry.Data["action"])
			assert.Error(t, entry.Data[logrus.ErrorKey].(error))
		}
	}
	assert.Contains(t, actions, entity.LoginSuccess)
}

func TestLogoutCurrent_IsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := h.register(t, "alice")
	result := h.login(t, "alice")

	h.clock.Advance(90 * time.Minute)
	require.NoError(t, h.auth.LogoutCurrent(ctx, result.Token, user.ID))
	require.NoError(t, h.auth.LogoutCurrent(ctx, result.Token, user.ID))

	sessions, _, err := h.store.Sessions().ListAll(ctx, repository.SessionFilter{UserID: &user.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	session := sessions[0]
	assert.False(t, session.IsActive)
	require.NotNil(t, session.LogoutTime)
	assert.Equal(t, h.clock.Now(), *session.LogoutTime)
	assert.Equal(t, 90, session.SessionDuration)

	assert.ErrorIs(t, h.auth.LogoutCurrent(ctx, "", user.ID), service.ErrMissingToken)
}

func TestLogoutBySessionID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice")
	bob := h.register(t, "bob")
	result := h.login(t, "alice")

	err := h.sessions.LogoutBySessionID(ctx, result.SessionID, bob.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	require.NoError(t, h.sessions.LogoutBySessionID(ctx, result.SessionID, alice.ID))
	err = h.sessions.LogoutBySessionID(ctx, result.SessionID, alice.ID)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)

	assert.ErrorIs(t, h.sessions.LogoutBySessionID(ctx, " ", alice.ID), service.ErrInvalidInput)
}

func TestLogoutBySessionID_ExpiresLazily(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice")
	result := h.login(t, "alice")

	h.clock.Advance(8 * 24 * time.Hour)
	err := h.sessions.LogoutBySessionID(ctx, result.SessionID, alice.ID)
	require.ErrorIs(t, err, service.ErrSessionNotFound)

	sessions, _, err := h.store.Sessions().ListAll(ctx, repository.SessionFilter{UserID: &alice.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].IsActive)
	assert.True(t, sessions[0].IsExpired)
}

func TestLogoutAll_ReturnsCountAndKeepsToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice")
	first := h.login(t, "alice")
	h.clock.Advance(time.Second)
	h.login(t, "alice")

	count, err := h.sessions.LogoutAll(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = h.sessions.LogoutAll(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	active, err := h.sessions.ListActive(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	// The bearer token stays valid until its own expiry.
	_, err = h.auth.Authenticate(ctx, first.Token)
	assert.NoError(t, err)
}

func TestLogoutAll_ExpiresPastDueSessionsWithoutCounting(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice")
	stale := h.login(t, "alice")
	h.clock.Advance(2 * 24 * time.Hour)
	h.login(t, "alice")
	h.clock.Advance(5*24*time.Hour + time.Minute)

	active, err := h.sessions.ListActive(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	count, err := h.sessions.LogoutAll(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, len(active), count)

	sessions, _, err := h.store.Sessions().ListAll(ctx, repository.SessionFilter{UserID: &alice.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, session := range sessions {
		assert.False(t, session.IsActive)
		if session.SessionID == stale.SessionID {
			assert.True(t, session.IsExpired)
		} else {
			assert.False(t, session.IsExpired)
		}
	}

	active, err = h.sessions.ListActive(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

type flakyLogoutStore struct {
	repository.SessionRepository
	allowed int
	calls   int
}

func (s *flakyLogoutStore) MarkLoggedOut(ctx context.Context, session *entity.Session, now time.Time) (*entity.Session, error) {
	s.calls++
	if s.calls > s.allowed {
		return nil, errors.New("write failed")
	}
	return s.SessionRepository.MarkLoggedOut(ctx, session, now)
}

func TestLogoutAll_ReportsPartialCount(t *testing.T) {
	flaky := &flakyLogoutStore{allowed: 1}
	h := newHarness(t, withSessionStore(func(inner repository.SessionRepository) repository.SessionRepository {
		flaky.SessionRepository = inner
		return flaky
	}))
	ctx := context.Background()
	alice := h.register(t, "alice")
	for i := 0; i < 3; i++ {
		h.login(t, "alice")
		h.clock.Advance(time.Second)
	}

	count, err := h.sessions.LogoutAll(ctx, alice.ID)
	require.Error(t, err)
	assert.Equal(t, 1, count)

	flaky.allowed = 100
	count, err = h.sessions.LogoutAll(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSweepExpired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice")
	h.login(t, "alice")

	count, err := h.sessions.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	h.clock.Advance(7*24*time.Hour + time.Minute)
	count, err = h.sessions.SweepExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = h.sessions.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	sessions, _, err := h.store.Sessions().ListAll(ctx, repository.SessionFilter{UserID: &alice.ID}, 0, 0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].IsActive)
	assert.True(t, sessions[0].IsExpired)
	require.NotNil(t, sessions[0].LogoutTime)
}

func TestTerminate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "alice")
	result := h.login(t, "alice")

	require.NoError(t, h.sessions.Terminate(ctx, result.SessionID))
	assert.ErrorIs(t, h.sessions.Terminate(ctx, result.SessionID), service.ErrSessionNotFound)
	assert.ErrorIs(t, h.sessions.Terminate(ctx, "sess_missing"), service.ErrSessionNotFound)
}

func TestListAll_Paginates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice")
	h.register(t, "bob")
	for i := 0; i < 3; i++ {
		h.login(t, "alice")
		h.clock.Advance(time.Minute)
	}
	h.login(t, "bob")

	page, err := h.sessions.ListAll(ctx, repository.SessionFilter{UserID: &alice.ID}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages())
	require.Len(t, page.Sessions, 1)
	require.NotNil(t, page.Sessions[0].User)
	assert.Equal(t, "alice", page.Sessions[0].User.UserName)

	page, err = h.sessions.ListAll(ctx, repository.SessionFilter{}, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.Limit)
	assert.EqualValues(t, 4, page.Total)
	assert.True(t, page.Sessions[0].LoginTime.After(page.Sessions[3].LoginTime))
}

func TestAuthenticate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice")
	result := h.login(t, "alice")

	_, err := h.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, service.ErrMissingToken)

	_, err = h.auth.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	inactive := false
	_, err = h.users.Update(ctx, alice.ID, service.UpdateUserInput{IsActive: &inactive})
	require.NoError(t, err)
	_, err = h.auth.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	bob := h.register(t, "bob")
	bobLogin := h.login(t, "bob")
	require.NoError(t, h.users.Delete(ctx, bob.ID))
	_, err = h.auth.Authenticate(ctx, bobLogin.Token)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	assert.Equal(t, service.KindAuthentication, service.KindOf(err))
}

func TestUpdateProfile_IgnoresPrivilegedFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice")
	h.register(t, "bob")

	admin := entity.UserRoleAdmin
	inactive := false
	first := "Alicia"
	updated, err := h.users.UpdateProfile(ctx, alice.ID, service.UpdateUserInput{
		FirstName: &first,
		Role:      &admin,
		IsActive:  &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, entity.UserRoleUser, updated.Role)
	assert.True(t, updated.IsActive)

	ownEmail := "alice@example.com"
	_, err = h.users.UpdateProfile(ctx, alice.ID, service.UpdateUserInput{Email: &ownEmail})
	assert.NoError(t, err)

	taken := "BOB@example.com"
	_, err = h.users.UpdateProfile(ctx, alice.ID, service.UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, service.ErrDuplicateEmail)

	takenName := "bob"
	_, err = h.users.Update(ctx, alice.ID, service.UpdateUserInput{UserName: &takenName})
	assert.ErrorIs(t, err, service.ErrDuplicateUsername)
}

// vanishingUsers deletes the row right before the write lands.
type vanishingUsers struct {
	repository.UserRepository
}

func (r vanishingUsers) Update(ctx context.Context, user *entity.User) error {
	if _, err := r.UserRepository.Delete(ctx, user.ID); err != nil {
		return err
	}
	return r.UserRepository.Update(ctx, user)
}

func TestUpdate_UserDeletedConcurrently(t *testing.T) {
	h := newHarness(t, withUserStore(func(inner repository.UserRepository) repository.UserRepository {
		return vanishingUsers{UserRepository: inner}
	}))
	ctx := context.Background()
	alice := h.register(t, "alice")

	first := "Alicia"
	_, err := h.users.Update(ctx, alice.ID, service.UpdateUserInput{FirstName: &first})
	require.ErrorIs(t, err, service.ErrUserNotFound)
	assert.Equal(t, service.KindNotFound, service.KindOf(err))

	stored, err := h.store.Users().FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestDeleteUser_ClosesAndRemovesSessions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice")
	h.login(t, "alice")

	require.NoError(t, h.users.Delete(ctx, alice.ID))

	_, err := h.users.Get(ctx, alice.ID)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
	assert.ErrorIs(t, h.users.Delete(ctx, alice.ID), service.ErrUserNotFound)

	sessions, total, err := h.store.Sessions().ListAll(ctx, repository.SessionFilter{UserID: &alice.ID}, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Zero(t, total)

	var deleted bool
	for _, entry := range h.store.SecurityLogEntries() {
		if entry.Action == entity.UserDeleted {
			deleted = true
		}
	}
	assert.True(t, deleted)
}

func TestSessionActivity_TouchWithoutRedis(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.register(t, "alice")
	result := h.login(t, "alice")

	h.clock.Advance(5 * time.Minute)
	activity := service.SessionActivity{Sessions: h.store.Sessions(), Clock: h.clock}
	require.NoError(t, activity.Touch(ctx, result.Token, alice.ID))

	sessions, err := h.sessions.ListActive(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, h.clock.Now(), sessions[0].LastActivity)
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind service.Kind
	}{
		{service.ErrInvalidInput, service.KindValidation},
		{service.ErrDuplicateUsername, service.KindValidation},
		{service.ErrInvalidCredentials, service.KindAuthentication},
		{service.ErrMissingToken, service.KindAuthentication},
		{service.ErrForbidden, service.KindAuthorization},
		{service.ErrSessionNotFound, service.KindNotFound},
		{errors.New("boom"), service.KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, service.KindOf(tc.err), tc.err.Error())
	}
}
