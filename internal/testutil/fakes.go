// Package testutil provides in-memory repository fakes for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ideilsonsouza/backend/internal/domain/entity"
	"github.com/ideilsonsouza/backend/internal/domain/repository"
)

// FakeUserRepo is an in-memory UserRepository.
type FakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{users: map[string]*entity.User{}}
}

func (r *FakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%d", r.seq)
	u.Enabled = true // column default
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *FakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *FakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *FakeUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

var _ repository.UserRepository = (*FakeUserRepo)(nil)

// FakeCodeRepo is an in-memory VerificationCodeRepository.
type FakeCodeRepo struct {
	mu    sync.Mutex
	codes map[string]*entity.VerificationCode
}

func NewFakeCodeRepo() *FakeCodeRepo {
	return &FakeCodeRepo{codes: map[string]*entity.VerificationCode{}}
}

func key(userID string, purpose entity.Purpose) string {
	return userID + "/" + string(purpose)
}

func (r *FakeCodeRepo) Upsert(_ context.Context, v *entity.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *v
	r.codes[key(v.UserID, v.Purpose)] = &cp
	return nil
}

func (r *FakeCodeRepo) Get(_ context.Context, userID string, purpose entity.Purpose) (*entity.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.codes[key(userID, purpose)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *FakeCodeRepo) Delete(_ context.Context, userID string, purpose entity.Purpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, key(userID, purpose))
	return nil
}

func (r *FakeCodeRepo) CodeExists(_ context.Context, purpose entity.Purpose, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.codes {
		if v.Purpose == purpose && v.Code == code {
			return true, nil
		}
	}
	return false, nil
}

var _ repository.VerificationCodeRepository = (*FakeCodeRepo)(nil)
