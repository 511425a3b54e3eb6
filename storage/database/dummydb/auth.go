package dummydb

import (
	"context"

	"github.com/tmusoni/darasa/core/auth"
)

type authRepository struct {
	db *authTable
}

var _ auth.Repository = (*authRepository)(nil)

func NewAuthRepository(db *DB) auth.Repository {
	return &authRepository{db: db.auth}
}

func (repo *authRepository) CheckUsernameUniqueness(_ context.Context, username string) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if _, ok := repo.db.table[username]; ok {
		return auth.ErrUsernameExists
	}
	return nil
}

func (repo *authRepository) SaveAccount(_ context.Context, acct auth.Account) (auth.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[acct.Username] = &acct
	return acct, nil
}

func (repo *authRepository) GetAccountByUsername(_ context.Context, username string) (auth.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if acct, ok := repo.db.table[username]; ok {
		return *acct, nil
	}
	return auth.Account{}, auth.ErrNotFound
}
