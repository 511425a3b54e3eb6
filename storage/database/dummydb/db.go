package dummydb

import (
	"sync"

	"github.com/tmusoni/darasa/core/auth"
	"github.com/tmusoni/darasa/core/class"
	"github.com/tmusoni/darasa/core/student"
)

type (
	DB struct {
		student *studentTable
		class   *classTable
		auth    *authTable
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	classTable struct {
		sync.RWMutex
		table map[string]*class.Meta
	}

	authTable struct {
		sync.RWMutex
		table map[string]*auth.Account
	}
)

func Open() (*DB, error) {
	db := &DB{
		student: &studentTable{table: make(map[string]*student.Student)},
		class:   &classTable{table: make(map[string]*class.Meta)},
		auth:    &authTable{table: make(map[string]*auth.Account)},
	}
	return db, nil
}
