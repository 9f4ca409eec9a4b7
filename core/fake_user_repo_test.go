package core

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var errFakeRepo = errors.New("fake repo failure")

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]*UserRecord
	failAll bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*UserRecord{}}
}

func (f *fakeUserRepo) seed(username, email, passwordHash string, roles ...string) *UserRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := &UserRecord{
		ID:           f.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errFakeRepo
	}
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserRepo) FindByID(_ context.Context, id int64) (*UserRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errFakeRepo
	}
	u, ok := f.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return false, errFakeRepo
	}
	for _, u := range f.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return false, errFakeRepo
	}
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(_ context.Context, username, email, passwordHash string, roles []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return 0, errFakeRepo
	}
	f.nextID++
	f.users[f.nextID] = &UserRecord{
		ID:           f.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        roles,
		CreatedAt:    time.Now(),
	}
	return f.nextID, nil
}

func (f *fakeUserRepo) UpdateUsername(_ context.Context, id int64, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return ErrUserNotFound
	}
	u.Username = username
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) DeleteAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = map[int64]*UserRecord{}
	return nil
}

func (f *fakeUserRepo) HasAdmin(_ context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		for _, r := range u.Roles {
			if r == string(RoleAdmin) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeUserRepo) List(_ context.Context, page, perPage int) ([]UserListItem, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if page <= 0 || perPage <= 0 {
		return nil, 0, errors.New("invalid pagination")
	}
	ids := make([]int64, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	items := make([]UserListItem, 0, perPage)
	start := (page - 1) * perPage
	for i := start; i < len(ids) && i < start+perPage; i++ {
		u := f.users[ids[i]]
		items = append(items, UserListItem{
			ID: u.ID, Username: u.Username, Email: u.Email, Roles: u.Roles, CreatedAt: u.CreatedAt,
		})
	}
	return items, len(ids), nil
}

var _ UserRepository = (*fakeUserRepo)(nil)
