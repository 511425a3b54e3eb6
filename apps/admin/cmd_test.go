package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/tmusoni/darasa/core"
	"github.com/tmusoni/darasa/core/auth"
	"github.com/tmusoni/darasa/core/class"
	"github.com/tmusoni/darasa/core/student"
	"github.com/tmusoni/darasa/storage/database/dummydb"
	testutil "github.com/tmusoni/darasa/tests"
)

var (
	studentRepo student.Repository
	authRepo    auth.Repository
)

func setup(t *testing.T) *commandLine {
	if logger == nil {
		logger = log.New(os.Stdout, "ADMIN-TEST : ", log.LstdFlags)
	}

	db := testutil.OpenDB(t)
	studentRepo = dummydb.NewStudentRepository(db)
	authRepo = dummydb.NewAuthRepository(db)

	conf := core.NewConfig()
	conf.TestMode = true

	return &commandLine{
		conf:       conf,
		studentSvc: student.NewService(studentRepo),
		classSvc:   class.NewService(dummydb.NewClassRepository(db)),
		authRepo:   authRepo,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)
	cli.db = new(sql.DB) // never dereferenced; gooseRunFunc is mocked

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "class_meta", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_migrate_requiresSQL(t *testing.T) {
	cli := setup(t)
	if err := cli.run([]string{"admin", "migrate", "up"}); err != errNoSQLDatabase {
		t.Errorf("cli.run() error = %v, wantErr %v", err, errNoSQLDatabase)
	}
}

func Test_commandLine_seed(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "seed", "-students", "5"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}

	students, err := studentRepo.QueryAllStudents(context.Background())
	if err != nil {
		t.Fatalf("QueryAllStudents() failed, %v", err)
	}
	if len(students) != 5 {
		t.Errorf("seeded %d students, want 5", len(students))
	}
	for _, s := range students {
		if s.ID == "" || s.Name == "" || s.Class == "" {
			t.Errorf("seeded student missing defaults: %+v", s)
		}
	}
}

func Test_commandLine_importStudents(t *testing.T) {
	cli := setup(t)

	path := filepath.Join(t.TempDir(), "roster.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"Name", "Age", "Class"},
		{"Amina Juma", 12, "Class 7"},
		{"Baraka Phiri", "13", "Class 8"},
		{"Chanel Okafor", 12, ""}, // takes the -class default
		{"", "", ""},              // skipped
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow() failed, %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() failed, %v", err)
	}

	tests := []cliTest{
		{name: "no file flag", args: []string{"importstudents"}, wantErr: errHelp},
		{name: "import", args: []string{"importstudents", "-file", path, "-class", "Class 9"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("cli.run() unexpected error = %v", err)
			}

			students, err := studentRepo.QueryAllStudents(context.Background())
			if err != nil {
				t.Fatalf("QueryAllStudents() failed, %v", err)
			}
			if len(students) != 3 {
				t.Fatalf("imported %d students, want 3", len(students))
			}
			byName := make(map[string]student.Student, len(students))
			for _, s := range students {
				byName[s.Name] = s
			}
			if s, ok := byName["Amina Juma"]; !ok || s.Age != 12 || s.Class != "Class 7" {
				t.Errorf("unexpected record for Amina Juma: %+v", s)
			}
			if s, ok := byName["Baraka Phiri"]; !ok || s.Age != 13 || s.Class != "Class 8" {
				t.Errorf("unexpected record for Baraka Phiri: %+v", s)
			}
			if s, ok := byName["Chanel Okafor"]; !ok || s.Class != "Class 9" {
				t.Errorf("unexpected record for Chanel Okafor: %+v", s)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	existing := testutil.CreateAccount(t, authRepo, "Existing User", "existing", "oldpass")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "lol"}, wantErr: errHelp},
		{name: "create new", args: []string{"adduser", "-username", "newuser", "-name", "New User"}, extra: extra{pwd: "s3cret"}},
		{name: "update existing", args: []string{"adduser", "-username", existing.Username}, extra: extra{pwd: "newpass"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("cli.run() unexpected error = %v", err)
			}

			uname := tt.args[2]
			acct, err := authRepo.GetAccountByUsername(context.Background(), uname)
			if err != nil {
				t.Fatalf("GetAccountByUsername() failed, %v", err)
			}
			if extra, ok := tt.extra.(extra); ok {
				if acct.Password != extra.pwd {
					t.Errorf("password = %q, want %q", acct.Password, extra.pwd)
				}
			}
		})
	}
}
