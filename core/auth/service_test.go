package auth

import (
	"context"
	"sync"
	"testing"
	"time"
)

// memRepo is a minimal in-memory Repository for service tests.
type memRepo struct {
	mu    sync.Mutex
	table map[string]Account
}

func newMemRepo() *memRepo {
	return &memRepo{table: make(map[string]Account)}
}

func (r *memRepo) CheckUsernameUniqueness(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.table[username]; ok {
		return ErrUsernameExists
	}
	return nil
}

func (r *memRepo) SaveAccount(_ context.Context, acct Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.table[acct.Username] = acct
	return acct, nil
}

func (r *memRepo) GetAccountByUsername(_ context.Context, username string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if acct, ok := r.table[username]; ok {
		return acct, nil
	}
	return Account{}, ErrNotFound
}

func TestService_Register(t *testing.T) {
	svc := NewService(newMemRepo())
	ctx := context.Background()

	var events []Event
	unsubscribe := svc.Events().Subscribe(func(ev Event) { events = append(events, ev) })
	defer unsubscribe()

	acct, err := svc.Register(ctx, NewAccount{
		Name: "Amina Juma", Username: "amina", Password: "S3cret!pass", PasswordConfirm: "S3cret!pass",
	})
	if err != nil {
		t.Fatalf("Register() failed, %v", err)
	}
	if acct.Username != "amina" || acct.Name != "Amina Juma" {
		t.Errorf("Register() = %+v", acct)
	}
	if acct.Password != "S3cret!pass" {
		t.Errorf("stored password = %q, want the plaintext input", acct.Password)
	}
	if acct.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if len(events) != 1 || events[0].Type != EventRegistered || events[0].Username != "amina" {
		t.Errorf("events = %+v, want one %q event", events, EventRegistered)
	}
}

func TestService_Authenticate(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Register(ctx, NewAccount{
		Name: "Amina Juma", Username: "amina", Password: "S3cret!pass", PasswordConfirm: "S3cret!pass",
	}); err != nil {
		t.Fatalf("Register() failed, %v", err)
	}

	var events []Event
	defer svc.Events().Subscribe(func(ev Event) { events = append(events, ev) })()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "unknown account", username: "nobody", password: "S3cret!pass", wantErr: ErrInvalidCredentials},
		{name: "wrong password", username: "amina", password: "wrong", wantErr: ErrInvalidCredentials},
		{name: "empty password", username: "amina", password: "", wantErr: ErrInvalidCredentials},
		{name: "ok", username: "amina", password: "S3cret!pass"},
		{name: "username is case-insensitive", username: " AMINA ", password: "S3cret!pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acct, err := svc.Authenticate(ctx, tt.username, tt.password)
			if err != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && acct.LastLogin.IsZero() {
				t.Error("LastLogin not recorded")
			}
		})
	}

	if len(events) != 2 {
		t.Fatalf("published %d events, want 2 logins", len(events))
	}
	for _, ev := range events {
		if ev.Type != EventLoggedIn || ev.Username != "amina" {
			t.Errorf("event = %+v, want %q for amina", ev, EventLoggedIn)
		}
	}
}

func TestService_CheckUniqueness(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo)

	if err := svc.CheckUniqueness("amina"); err != nil {
		t.Errorf("CheckUniqueness() on a free username = %v", err)
	}

	if _, err := repo.SaveAccount(context.Background(), Account{Username: "amina"}); err != nil {
		t.Fatalf("SaveAccount() failed, %v", err)
	}
	err := svc.CheckUniqueness("amina")
	if err == nil {
		t.Fatal("CheckUniqueness() on a taken username must fail")
	}
	// the error is field-addressed so the API can surface it on the form field
	if err.Error() != ErrUsernameExists.Error() {
		t.Errorf("error = %q, want %q", err.Error(), ErrUsernameExists.Error())
	}
}

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster()

	var got1, got2 []Event
	unsub1 := b.Subscribe(func(ev Event) { got1 = append(got1, ev) })
	unsub2 := b.Subscribe(func(ev Event) { got2 = append(got2, ev) })

	ev := Event{Type: EventLoggedIn, Username: "amina", At: time.Now()}
	b.Publish(ev)
	if len(got1) != 1 || len(got2) != 1 {
		t.Fatalf("both subscribers must see the event, got %d and %d", len(got1), len(got2))
	}

	unsub1()
	b.Publish(ev)
	if len(got1) != 1 {
		t.Error("unsubscribed callback must not fire")
	}
	if len(got2) != 2 {
		t.Error("remaining subscriber must keep receiving")
	}

	unsub2()
	unsub2() // double unsubscribe is harmless
	b.Publish(ev)
	if len(got2) != 2 {
		t.Error("publish after full unsubscribe must reach nobody")
	}
}
