package main

import (
	"context"
	"strings"
	"sync"

	goShield "github.com/MrEthical07/goShield"
	"github.com/google/uuid"
)

// userStore is an in-memory UserProvider keyed by lowercased email.
type userStore struct {
	mu    sync.RWMutex
	users map[string]goShield.Credential
}

func newUserStore() *userStore {
	return &userStore{users: make(map[string]goShield.Credential)}
}

func (u *userStore) seed(engine *goShield.Engine, email, password string, role goShield.Role) error {
	hash, err := engine.HashPassword(password)
	if err != nil {
		return err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	u.mu.Lock()
	defer u.mu.Unlock()
	u.users[email] = goShield.Credential{
		UserID:       uuid.NewString(),
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	}
	return nil
}

func (u *userStore) GetUserByIdentifier(_ context.Context, identifier string) (goShield.Credential, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	cred, ok := u.users[identifier]
	if !ok {
		return goShield.Credential{}, goShield.ErrUserNotFound
	}
	return cred, nil
}

func (u *userStore) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for email, cred := range u.users {
		if cred.UserID == userID {
			cred.PasswordHash = hash
			u.users[email] = cred
			return nil
		}
	}
	return goShield.ErrUserNotFound
}
