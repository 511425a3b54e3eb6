package redisdb

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/tmusoni/darasa/core/auth"
)

// accountDoc carries the plaintext password that Account deliberately hides
// from its JSON form.
type accountDoc struct {
	auth.Account
	Password string `json:"password"`
}

type authRepository struct {
	client *redis.Client
}

var _ auth.Repository = (*authRepository)(nil)

func NewAuthRepository(client *redis.Client) auth.Repository {
	return &authRepository{client: client}
}

func (repo *authRepository) CheckUsernameUniqueness(ctx context.Context, username string) error {
	exists, err := repo.client.SIsMember(ctx, accountSetKey, username).Result()
	if err != nil {
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

	pipe := repo.client.TxPipeline()
	pipe.SAdd(ctx, accountSetKey, acct.Username)
	pipe.Set(ctx, accountKey(acct.Username), doc, 0)
	if _, err = pipe.Exec(ctx); err != nil {
		return auth.Account{}, errors.Wrap(err, "storing account document")
	}
	return acct, nil
}

func (repo *authRepository) GetAccountByUsername(ctx context.Context, username string) (auth.Account, error) {
	raw, err := repo.client.Get(ctx, accountKey(username)).Bytes()
	if err != nil {
		if errors.Cause(err) == redis.Nil {
			return auth.Account{}, auth.ErrNotFound
		}
		return auth.Account{}, errors.Wrapf(err, "fetching account %s", username)
	}

	var doc accountDoc
	if err = json.Unmarshal(raw, &doc); err != nil {
		return auth.Account{}, errors.Wrapf(err, "decoding account %s", username)
	}
	acct := doc.Account
	acct.Password = doc.Password
	return acct, nil
}
