package pgrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmusoni/darasa/core/student"
)

type studentRow struct {
	ID  string `db:"id"`
	Doc []byte `db:"doc"`
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "encoding student document")
	}

	const q = `INSERT INTO students (id, class, doc, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err = repo.db.ExecContext(ctx, q, s.ID, s.Class, doc, s.CreatedAt, s.UpdatedAt); err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student document")
	}
	return s, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var rows []studentRow
	const q = `SELECT id, doc FROM students ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return decodeRows(rows)
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	const q = `SELECT id, doc FROM students WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrapf(err, "fetching student %s", id)
	}
	return decodeRow(row)
}

func (repo *studentRepository) FilterStudentsByClass(ctx context.Context, class string) ([]student.Student, error) {
	var rows []studentRow
	const q = `SELECT id, doc FROM students WHERE class = $1 ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &rows, q, class); err != nil {
		return nil, errors.Wrap(err, "querying students by class")
	}
	return decodeRows(rows)
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "encoding student document")
	}

	const q = `UPDATE students SET class = $2, doc = $3, updated_at = $4 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, s.ID, s.Class, doc, s.UpdatedAt)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student document")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

func (repo *studentRepository) DeleteStudentByID(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student document")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return student.ErrNotFound
	}
	return nil
}

func decodeRow(row studentRow) (student.Student, error) {
	// stored documents may predate the canonical shape; run them through the
	// normalizer instead of decoding strictly
	var doc map[string]interface{}
	if err := json.Unmarshal(row.Doc, &doc); err != nil {
		return student.Student{}, errors.Wrapf(err, "decoding student %s", row.ID)
	}
	return student.FromDocument(doc), nil
}

func decodeRows(rows []studentRow) ([]student.Student, error) {
	students := make([]student.Student, 0, len(rows))
	for _, row := range rows {
		s, err := decodeRow(row)
		if err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, nil
}
