package student

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// FilterStudentsByClass matches the class label exactly.
		FilterStudentsByClass(ctx context.Context, class string) ([]Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudentByID(ctx context.Context, id string) error
	}

	ServiceInterface interface {
		Create(ctx context.Context, ns NewStudent) (Student, error)
		QueryAll(ctx context.Context) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		FilterByClass(ctx context.Context, class string) ([]Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id string) error
		Summaries(ctx context.Context) ([]ClassSummary, error)
		Search(ctx context.Context, query string) (QueryResult, error)
	}

	Service struct {
		repo        Repository
		interpreter *Interpreter
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{
		repo:        repo,
		interpreter: NewInterpreter(),
	}
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	s := Student{
		ID:           uuid.New().String(),
		Owner:        ns.Owner,
		Name:         ns.Name,
		Age:          ns.Age,
		Class:        ns.Class,
		Subjects:     ns.Subjects,
		Grades:       ns.Grades,
		Address:      ns.Address,
		Guardian:     ns.Guardian,
		ClassTeacher: ns.ClassTeacher,
		SubjectHeads: ns.SubjectHeads,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if s.Class == "" {
		s.Class = DefaultClass
	}
	if s.Subjects == nil {
		s.Subjects = []string{}
	}
	if s.Grades == nil {
		s.Grades = map[string]int{}
	}
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) FilterByClass(ctx context.Context, class string) ([]Student, error) {
	return svc.repo.FilterStudentsByClass(ctx, class)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	orig, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}

	s := orig
	s.Name = us.Name
	s.Class = us.Class
	s.Subjects = us.Subjects
	s.Grades = us.Grades
	if us.Age != nil {
		s.Age = *us.Age
	}
	if us.Address != nil {
		s.Address = us.Address
	}
	if us.Guardian != nil {
		s.Guardian = us.Guardian
	}
	if us.ClassTeacher != nil {
		s.ClassTeacher = us.ClassTeacher
	}
	if us.SubjectHeads != nil {
		s.SubjectHeads = us.SubjectHeads
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudentByID(ctx, id)
}

// Summaries aggregates the whole collection into per-class views.
func (svc *Service) Summaries(ctx context.Context) ([]ClassSummary, error) {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(students), nil
}

// Search runs the free-text query interpreter over the whole collection.
func (svc *Service) Search(ctx context.Context, query string) (QueryResult, error) {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return QueryResult{}, err
	}
	return svc.interpreter.Interpret(students, query), nil
}
