package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"star_studio/internal/model"
	"star_studio/internal/repository"
)

// memoryUsers mimics the Postgres repository, unique indexes included.
type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.User
	err    error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[int64]model.User)}
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, u := range m.byID {
		if u.Username == user.Username {
			return repository.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.byID[user.ID] = *user
	return nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memoryUsers) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = passwordHash
	m.byID[id] = u
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryUsers) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	users := make([]model.User, 0, len(m.byID))
	for _, u := range m.byID {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// memoryTokens keeps one token per user, like the unique user_id column.
type memoryTokens struct {
	mu     sync.Mutex
	byUser map[int64]model.Token
	users  *memoryUsers
}

func newMemoryTokens(users *memoryUsers) *memoryTokens {
	return &memoryTokens{byUser: make(map[int64]model.Token), users: users}
}

func (m *memoryTokens) GetOrCreate(ctx context.Context, userID int64, candidateKey string) (*model.Token, error) {
	if _, err := m.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.byUser[userID]; ok {
		return &t, nil
	}
	t := model.Token{Key: candidateKey, UserID: userID, CreatedAt: time.Now()}
	m.byUser[userID] = t
	return &t, nil
}

func (m *memoryTokens) FindByKey(_ context.Context, key string) (*model.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byUser {
		if t.Key == key {
			return &t, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryTokens) DeleteByUserID(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byUser, userID)
	return nil
}
