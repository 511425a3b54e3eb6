package redisdb

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/tmusoni/darasa/core/student"
)

type studentRepository struct {
	client *redis.Client
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(client *redis.Client) student.Repository {
	return &studentRepository{client: client}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "encoding student document")
	}

	pipe := repo.client.TxPipeline()
	pipe.SAdd(ctx, studentSetKey, s.ID)
	pipe.Set(ctx, studentKey(s.ID), doc, 0)
	if _, err = pipe.Exec(ctx); err != nil {
		return student.Student{}, errors.Wrap(err, "storing student document")
	}
	return s, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	ids, err := repo.client.SMembers(ctx, studentSetKey).Result()
	if err != nil {
		if errors.Cause(err) == redis.Nil {
			return []student.Student{}, nil
		}
		return nil, errors.Wrap(err, "listing student ids")
	}

	students := make([]student.Student, 0, len(ids))
	for _, id := range ids {
		s, err := repo.getStudent(ctx, id)
		if err != nil {
			if err == student.ErrNotFound {
				continue // id set and document can drift; skip the orphan
			}
			return nil, err
		}
		students = append(students, s)
	}
	sortStudents(students)
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	return repo.getStudent(ctx, id)
}

func (repo *studentRepository) FilterStudentsByClass(ctx context.Context, class string) ([]student.Student, error) {
	all, err := repo.QueryAllStudents(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]student.Student, 0, len(all))
	for _, s := range all {
		if s.Class == class {
			filtered = append(filtered, s)
		}
	}
	return filtered, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	exists, err := repo.client.SIsMember(ctx, studentSetKey, s.ID).Result()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "checking student existence")
	}
	if !exists {
		return student.Student{}, student.ErrNotFound
	}

	doc, err := json.Marshal(s)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "encoding student document")
	}
	if err = repo.client.Set(ctx, studentKey(s.ID), doc, 0).Err(); err != nil {
		return student.Student{}, errors.Wrap(err, "storing student document")
	}
	return s, nil
}

func (repo *studentRepository) DeleteStudentByID(ctx context.Context, id string) error {
	removed, err := repo.client.SRem(ctx, studentSetKey, id).Result()
	if err != nil {
		return errors.Wrap(err, "removing student id")
	}
	if removed == 0 {
		return student.ErrNotFound
	}
	if err = repo.client.Del(ctx, studentKey(id)).Err(); err != nil {
		return errors.Wrap(err, "removing student document")
	}
	return nil
}

func (repo *studentRepository) getStudent(ctx context.Context, id string) (student.Student, error) {
	raw, err := repo.client.Get(ctx, studentKey(id)).Bytes()
	if err != nil {
		if errors.Cause(err) == redis.Nil {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrapf(err, "fetching student %s", id)
	}

	// stored documents may predate the canonical shape; run them through the
	// normalizer instead of decoding strictly
	var doc map[string]interface{}
	if err = json.Unmarshal(raw, &doc); err != nil {
		return student.Student{}, errors.Wrapf(err, "decoding student %s", id)
	}
	return student.FromDocument(doc), nil
}

func sortStudents(students []student.Student) {
	sort.Slice(students, func(i, j int) bool {
		if students[i].CreatedAt.Equal(students[j].CreatedAt) {
			return students[i].ID < students[j].ID
		}
		return students[i].CreatedAt.Before(students[j].CreatedAt)
	})
}
