package auth

import (
	"context"
	"errors"
	"time"

	"github.com/tmusoni/darasa/core"
)

var (
	// errors
	ErrNotFound           = errors.New("account not found")
	ErrUsernameExists     = errors.New("an account with this username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string) error
		SaveAccount(ctx context.Context, acct Account) (Account, error)
		GetAccountByUsername(ctx context.Context, username string) (Account, error)
	}

	ServiceInterface interface {
		CheckUniqueness(username string) error
		Register(ctx context.Context, na NewAccount) (Account, error)
		Authenticate(ctx context.Context, username, password string) (Account, error)
		GetByUsername(ctx context.Context, username string) (Account, error)
		Events() *Broadcaster
	}

	Service struct {
		repo   Repository
		events *Broadcaster
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{
		repo:   repo,
		events: NewBroadcaster(),
	}
}

func (svc *Service) CheckUniqueness(username string) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), username); err != nil {
		if err == ErrUsernameExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Register(ctx context.Context, na NewAccount) (Account, error) {
	now := time.Now().UTC()
	acct := Account{
		Username:  na.Username,
		Name:      na.Name,
		Password:  na.Password, // plaintext; toy store
		CreatedAt: now,
	}
	acct, err := svc.repo.SaveAccount(ctx, acct)
	if err != nil {
		return Account{}, err
	}
	svc.events.Publish(Event{Type: EventRegistered, Username: acct.Username, At: now})
	return acct, nil
}

// Authenticate checks the supplied credentials against the stored account via
// plaintext comparison and records the login time.
func (svc *Service) Authenticate(ctx context.Context, username, password string) (Account, error) {
	acct, err := svc.repo.GetAccountByUsername(ctx, core.CleanString(username, true /* lower */))
	if err != nil {
		if err == ErrNotFound {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if acct.Password != password {
		return Account{}, ErrInvalidCredentials
	}

	acct.LastLogin = time.Now().UTC()
	if acct, err = svc.repo.SaveAccount(ctx, acct); err != nil {
		return Account{}, err
	}
	svc.events.Publish(Event{Type: EventLoggedIn, Username: acct.Username, At: acct.LastLogin})
	return acct, nil
}

func (svc *Service) GetByUsername(ctx context.Context, username string) (Account, error) {
	return svc.repo.GetAccountByUsername(ctx, core.CleanString(username, true /* lower */))
}

func (svc *Service) Events() *Broadcaster {
	return svc.events
}
