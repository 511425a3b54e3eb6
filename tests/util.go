package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tmusoni/darasa/core/auth"
	"github.com/tmusoni/darasa/core/student"
	"github.com/tmusoni/darasa/storage/database/dummydb"
)

// OpenDB returns a fresh in-memory store for a test.
func OpenDB(t *testing.T) *dummydb.DB {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	return db
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	name, class string,
	age int,
	grades map[string]int,
	createdAt ...time.Time,
) student.Student {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	subjects := make([]string, 0, len(grades))
	for subj := range grades {
		subjects = append(subjects, subj)
	}
	s := student.Student{
		ID:        uuid.New().String(),
		Name:      name,
		Age:       age,
		Class:     class,
		Subjects:  subjects,
		Grades:    grades,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	s, err := repo.CreateStudent(context.Background(), s)
	if err != nil {
		t.Fatalf("CreateStudent() failed, %v", err)
	}
	return s
}

func CreateAccount(
	t *testing.T,
	repo auth.Repository,
	name, uname, pwd string,
) auth.Account {
	t.Helper()

	acct := auth.Account{
		Username:  uname,
		Name:      name,
		Password:  pwd,
		CreatedAt: time.Now().UTC(),
	}
	acct, err := repo.SaveAccount(context.Background(), acct)
	if err != nil {
		t.Fatalf("SaveAccount() failed, %v", err)
	}
	return acct
}

// NopLogger discards everything. It keeps noisy components quiet in tests.
type NopLogger struct{}

func (NopLogger) Enable(bool)                        {}
func (NopLogger) Debug(string, ...interface{})       {}
func (NopLogger) Info(string, ...interface{})        {}
func (NopLogger) Warn(string, ...interface{})        {}
func (NopLogger) Error(msg string, _ ...interface{}) {}
func (NopLogger) Fatal(msg string, _ ...interface{}) {}
