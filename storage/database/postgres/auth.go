package pgrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmusoni/darasa/core/auth"
)

type accountDoc struct {
	auth.Account
	Password string `json:"password"`
}

type accountRow struct {
	Username string `db:"username"`
	Doc      []byte `db:"doc"`
}

type authRepository struct {
	db *sqlx.DB
}

var _ auth.Repository = (*authRepository)(nil)

func NewAuthRepository(db *sqlx.DB) auth.Repository {
	return &authRepository{db: db}
}

func (repo *authRepository) CheckUsernameUniqueness(ctx context.Context, username string) error {
	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1)`
	if err := repo.db.GetContext(ctx, &exists, q, username); err != nil {
		return errors.Wrap(err, "checking username uniqueness")
	}
	if exists {
		return auth.ErrUsernameExists
	}
	return nil
}

func (repo *authRepository) SaveAccount(ctx context.Context, acct auth.Account) (auth.Account, error) {
	doc, err := json.Marshal(accountDoc{Account: acct, Password: acct.Password})
	if err != nil {
		return auth.Account{}, errors.Wrap(err, "encoding account document")
	}

	const q = `INSERT INTO accounts (username, doc, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (username) DO UPDATE SET doc = EXCLUDED.doc`
	if _, err = repo.db.ExecContext(ctx, q, acct.Username, doc, acct.CreatedAt); err != nil {
		return auth.Account{}, errors.Wrap(err, "storing account document")
	}
	return acct, nil
}

func (repo *authRepository) GetAccountByUsername(ctx context.Context, username string) (auth.Account, error) {
	var row accountRow
	const q = `SELECT username, doc FROM accounts WHERE username = $1`
	if err := repo.db.GetContext(ctx, &row, q, username); err != nil {
		if err == sql.ErrNoRows {
			return auth.Account{}, auth.ErrNotFound
		}
		return auth.Account{}, errors.Wrapf(err, "fetching account %s", username)
	}

	var doc accountDoc
	if err := json.Unmarshal(row.Doc, &doc); err != nil {
		return auth.Account{}, errors.Wrapf(err, "decoding account %s", username)
	}
	acct := doc.Account
	acct.Password = doc.Password
	return acct, nil
}
