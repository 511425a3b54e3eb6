package student

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/tmusoni/darasa/core"
)

// Block is an optional free-form document block (address, guardian, ...).
// Blocks are passed through storage untouched; their internal shape is not
// validated.
type Block map[string]interface{}

// Student is the canonical record every storage and transport shape is
// reconciled into.
type Student struct {
	ID           string           `json:"id"`
	Owner        string           `json:"user_id,omitempty"`
	Name         string           `json:"name"`
	Age          int              `json:"age"`
	Class        string           `json:"class"`
	Subjects     []string         `json:"subjects"`
	Grades       map[string]int   `json:"grades"`
	Address      Block            `json:"address,omitempty"`
	Guardian     Block            `json:"guardian,omitempty"`
	ClassTeacher Block            `json:"class_teacher,omitempty"`
	SubjectHeads map[string]Block `json:"subject_heads,omitempty"`
	CreatedAt    time.Time        `json:"created_at"` // UTC
	UpdatedAt    time.Time        `json:"updated_at"` // UTC
}

// Average returns the arithmetic mean of the grade map values.
// ok is false when the grade map is empty: an undefined average is not a zero
// average.
func (s Student) Average() (avg float64, ok bool) {
	if len(s.Grades) == 0 {
		return 0, false
	}
	var sum int
	for _, score := range s.Grades {
		sum += score
	}
	return float64(sum) / float64(len(s.Grades)), true
}

// Score returns the student's score in the named subject (case-insensitive),
// falling back to the overall average when the subject is absent.
// ok is false when neither is available.
func (s Student) Score(subject string) (score float64, ok bool) {
	lsub := core.CleanString(subject, true /* lower */)
	for name, val := range s.Grades {
		if core.CleanString(name, true /* lower */) == lsub {
			return float64(val), true
		}
	}
	return s.Average()
}

// HasSubject reports whether the student lists the subject (case-insensitive).
func (s Student) HasSubject(subject string) bool {
	lsub := core.CleanString(subject, true /* lower */)
	for _, name := range s.Subjects {
		if core.CleanString(name, true /* lower */) == lsub {
			return true
		}
	}
	return false
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Owner        string           `json:"user_id"`
	Name         string           `json:"name" validate:"required"`
	Age          int              `json:"age" validate:"gte=0,lte=150"`
	Class        string           `json:"class"`
	Subjects     []string         `json:"subjects"`
	Grades       map[string]int   `json:"grades" validate:"omitempty,dive,gte=0,lte=100"`
	Address      Block            `json:"address"`
	Guardian     Block            `json:"guardian"`
	ClassTeacher Block            `json:"class_teacher"`
	SubjectHeads map[string]Block `json:"subject_heads"`
}

func (ns *NewStudent) Validate(validate *validator.Validate, translator ut.Translator) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Class = core.CleanString(ns.Class)
	cleanSubjects(ns.Subjects)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing
// Student. Zero fields keep the stored value.
type UpdateStudent struct {
	Name         string           `json:"name"`
	Age          *int             `json:"age" validate:"omitempty,gte=0,lte=150"`
	Class        string           `json:"class"`
	Subjects     []string         `json:"subjects"`
	Grades       map[string]int   `json:"grades" validate:"omitempty,dive,gte=0,lte=100"`
	Address      Block            `json:"address"`
	Guardian     Block            `json:"guardian"`
	ClassTeacher Block            `json:"class_teacher"`
	SubjectHeads map[string]Block `json:"subject_heads"`
}

func (us *UpdateStudent) Validate(orig Student, validate *validator.Validate, translator ut.Translator) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	class := core.CleanString(us.Class)
	if class != "" {
		us.Class = class
	} else {
		us.Class = orig.Class
	}

	if us.Subjects == nil {
		us.Subjects = orig.Subjects
	} else {
		cleanSubjects(us.Subjects)
	}
	if us.Grades == nil {
		us.Grades = orig.Grades
	}

	return validate.Struct(us)
}

func cleanSubjects(subjects []string) {
	for i, sub := range subjects {
		subjects[i] = core.CleanString(sub)
	}
}
