package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"authcore/internal/entity"

	"github.com/google/uuid"
)

// MemoryStore keeps users, sessions and security logs in process memory.
// It backs STORE=memory and the tests; state is lost on restart.
type MemoryStore struct {
	mutex    sync.Mutex
	users    map[uuid.UUID]*entity.User
	sessions map[string]*entity.Session
	logs     []entity.SecurityLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*entity.User),
		sessions: make(map[string]*entity.Session),
	}
}

func (m *MemoryStore) Users() UserRepository {
	return &memoryUsers{store: m}
}

func (m *MemoryStore) Sessions() SessionRepository {
	return &memorySessions{store: m}
}

func (m *MemoryStore) SecurityLogs() SecurityLogRepository {
	return &memorySecurityLogs{store: m}
}

// SecurityLogEntries returns a copy of everything logged so far.
func (m *MemoryStore) SecurityLogEntries() []entity.SecurityLog {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return append([]entity.SecurityLog(nil), m.logs...)
}

func (m *MemoryStore) lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mutex.Lock()
	return nil
}

type memoryUsers struct {
	store *MemoryStore
}

func (r *memoryUsers) Create(ctx context.Context, user *entity.User) error {
	if err := r.store.lock(ctx); err != nil {
		return err
	}
	defer r.store.mutex.Unlock()

	if err := r.checkUnique(user); err != nil {
		return err
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = entity.UserRoleUser
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.store.users[user.ID] = &stored
	return nil
}

// checkUnique must be called with the store locked.
func (r *memoryUsers) checkUnique(user *entity.User) error {
	for id, existing := range r.store.users {
		if id == user.ID {
			continue
		}
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
		if existing.UserName == user.UserName {
			return ErrDuplicateUsername
		}
	}
	return nil
}

func (r *memoryUsers) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return r.find(ctx, func(u *entity.User) bool { return u.ID == id })
}

func (r *memoryUsers) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.find(ctx, func(u *entity.User) bool { return u.Email == email })
}

func (r *memoryUsers) FindByUserName(ctx context.Context, userName string) (*entity.User, error) {
	return r.find(ctx, func(u *entity.User) bool { return u.UserName == userName })
}

func (r *memoryUsers) find(ctx context.Context, match func(*entity.User) bool) (*entity.User, error) {
	if err := r.store.lock(ctx); err != nil {
		return nil, err
	}
	defer r.store.mutex.Unlock()

	for _, user := range r.store.users {
		if match(user) {
			found := *user
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memoryUsers) Update(ctx context.Context, user *entity.User) error {
	if err := r.store.lock(ctx); err != nil {
		return err
	}
	defer r.store.mutex.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return ErrNotFound
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	user.UpdatedAt = time.Now()
	stored := *user
	r.store.users[user.ID] = &stored
	return nil
}

// Delete mirrors the ON DELETE CASCADE on sessions.user_id.
func (r *memoryUsers) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := r.store.lock(ctx); err != nil {
		return false, err
	}
	defer r.store.mutex.Unlock()

	if _, ok := r.store.users[id]; !ok {
		return false, nil
	}
	delete(r.store.users, id)
	for key, session := range r.store.sessions {
		if session.UserID == id {
			delete(r.store.sessions, key)
		}
	}
	return true, nil
}

func (r *memoryUsers) List(ctx context.Context, limit, offset int) ([]entity.User, error) {
	if err := r.store.lock(ctx); err != nil {
		return nil, err
	}
	defer r.store.mutex.Unlock()

	users := make([]entity.User, 0, len(r.store.users))
	for _, user := range r.store.users {
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return paginate(users, limit, offset), nil
}

type memorySessions struct {
	store *MemoryStore
}

func (r *memorySessions) Create(ctx context.Context, session *entity.Session) error {
	if err := r.store.lock(ctx); err != nil {
		return err
	}
	defer r.store.mutex.Unlock()

	if _, exists := r.store.sessions[session.SessionID]; exists {
		return ErrDuplicateSessionID
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	stored := *session
	stored.User = nil
	r.store.sessions[session.SessionID] = &stored
	return nil
}

func (r *memorySessions) FindActiveBySessionID(ctx context.Context, sessionID string, userID *uuid.UUID) (*entity.Session, error) {
	if err := r.store.lock(ctx); err != nil {
		return nil, err
	}
	defer r.store.mutex.Unlock()

	session, ok := r.store.sessions[sessionID]
	if !ok || !session.IsActive {
		return nil, nil
	}
	if userID != nil && session.UserID != *userID {
		return nil, nil
	}
	found := *session
	return &found, nil
}

func (r *memorySessions) FindActiveByTokenHash(ctx context.Context, tokenHash string, userID uuid.UUID) (*entity.Session, error) {
	if err := r.store.lock(ctx); err != nil {
		return nil, err
	}
	defer r.store.mutex.Unlock()

	for _, session := range r.store.sessions {
		if session.TokenHash == tokenHash && session.UserID == userID && session.IsActive {
			found := *session
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memorySessions) ListActiveForUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]entity.Session, error) {
	if err := r.store.lock(ctx); err != nil {
		return nil, err
	}
	defer r.store.mutex.Unlock()

	sessions := make([]entity.Session, 0)
	for _, session := range r.store.sessions {
		if session.UserID == userID && session.LiveAt(now) {
			sessions = append(sessions, *session)
		}
	}
	sortByLoginTime(sessions)
	return sessions, nil
}

func (r *memorySessions) ListAll(ctx context.Context, filter SessionFilter, limit, offset int) ([]entity.Session, int64, error) {
	if err := r.store.lock(ctx); err != nil {
		return nil, 0, err
	}
	defer r.store.mutex.Unlock()

	sessions := make([]entity.Session, 0)
	for _, session := range r.store.sessions {
		if filter.UserID != nil && session.UserID != *filter.UserID {
			continue
		}
		if filter.IsActive != nil && session.IsActive != *filter.IsActive {
			continue
		}
		found := *session
		if user, ok := r.store.users[session.UserID]; ok {
			found.User = &entity.User{
				ID:        user.ID,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				UserName:  user.UserName,
				Email:     user.Email,
			}
		}
		sessions = append(sessions, found)
	}
	total := int64(len(sessions))
	sortByLoginTime(sessions)
	return paginate(sessions, limit, offset), total, nil
}

func (r *memorySessions) MarkLoggedOut(ctx context.Context, session *entity.Session, now time.Time) (*entity.Session, error) {
	if err := r.store.lock(ctx); err != nil {
		return nil, err
	}
	defer r.store.mutex.Unlock()

	stored, ok := r.store.sessions[session.SessionID]
	if !ok {
		return session, nil
	}
	if stored.IsActive {
		logoutTime := now
		stored.IsActive = false
		stored.LogoutTime = &logoutTime
		stored.SessionDuration = stored.DurationMinutes(now)
		stored.UpdatedAt = now
	}
	updated := *stored
	return &updated, nil
}

func (r *memorySessions) MarkExpired(ctx context.Context, session *entity.Session, now time.Time) error {
	if err := r.store.lock(ctx); err != nil {
		return err
	}
	defer r.store.mutex.Unlock()

	if stored, ok := r.store.sessions[session.SessionID]; ok && stored.IsActive {
		expire(stored, now)
	}
	return nil
}

func (r *memorySessions) TouchActivity(ctx context.Context, tokenHash string, userID uuid.UUID, now time.Time) error {
	if err := r.store.lock(ctx); err != nil {
		return err
	}
	defer r.store.mutex.Unlock()

	for _, session := range r.store.sessions {
		if session.TokenHash == tokenHash && session.UserID == userID && session.IsActive {
			session.LastActivity = now
		}
	}
	return nil
}

func (r *memorySessions) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := r.store.lock(ctx); err != nil {
		return 0, err
	}
	defer r.store.mutex.Unlock()

	var count int64
	for _, session := range r.store.sessions {
		if session.IsActive && session.ExpiresAt.Before(now) {
			expire(session, now)
			count++
		}
	}
	return count, nil
}

func expire(session *entity.Session, now time.Time) {
	logoutTime := now
	session.IsActive = false
	session.IsExpired = true
	session.LogoutTime = &logoutTime
	session.UpdatedAt = now
}

type memorySecurityLogs struct {
	store *MemoryStore
}

func (r *memorySecurityLogs) Log(ctx context.Context, log *entity.SecurityLog) error {
	if err := r.store.lock(ctx); err != nil {
		return err
	}
	defer r.store.mutex.Unlock()

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	log.CreatedAt = time.Now()
	r.store.logs = append(r.store.logs, *log)
	return nil
}

func sortByLoginTime(sessions []entity.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LoginTime.After(sessions[j].LoginTime)
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
