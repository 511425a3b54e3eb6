package class

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("class metadata not found")

type (
	Repository interface {
		UpsertClassMeta(ctx context.Context, meta Meta) (Meta, error)
		QueryAllClassMeta(ctx context.Context) ([]Meta, error)
		GetClassMetaByName(ctx context.Context, name string) (Meta, error)
	}

	ServiceInterface interface {
		QueryAll(ctx context.Context) ([]Meta, error)
		GetByName(ctx context.Context, name string) (Meta, error)
		Seed(ctx context.Context) ([]Meta, error)
	}

	Service struct {
		repo Repository
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Meta, error) {
	return svc.repo.QueryAllClassMeta(ctx)
}

func (svc *Service) GetByName(ctx context.Context, name string) (Meta, error) {
	return svc.repo.GetClassMetaByName(ctx, name)
}

// Seed upserts the class metadata documents. Running it again overwrites the
// previous seed wholesale; the collection is read-only otherwise.
func (svc *Service) Seed(ctx context.Context) ([]Meta, error) {
	now := time.Now().UTC()
	seeded := make([]Meta, 0, len(seedMeta))
	for _, meta := range seedMeta {
		meta.CreatedAt = now
		meta.UpdatedAt = now
		saved, err := svc.repo.UpsertClassMeta(ctx, meta)
		if err != nil {
			return seeded, err
		}
		seeded = append(seeded, saved)
	}
	return seeded, nil
}

var seedMeta = buildSeedMeta()

func buildSeedMeta() []Meta {
	teachers := []string{"J. Mollel", "A. Kessy", "S. Mushi", "B. Massawe", "E. Shirima", "P. Temba"}
	metas := make([]Meta, 0, 6)
	for i := 0; i < 6; i++ {
		n := i + 5 // Class 5 .. Class 10
		metas = append(metas, Meta{
			Name:           fmt.Sprintf("Class %d", n),
			Address:        fmt.Sprintf("Block %c, Main Campus", 'A'+i),
			Teacher:        teachers[i],
			ParentContact:  fmt.Sprintf("class%d-parents@darasa.example.com", n),
			AttendanceRate: fmt.Sprintf("%d%%", 88+i*2),
			GradeA:         4 + i,
			GradeB:         10 - i,
			GradeC:         6,
			GradeD:         2,
			TotalStudents:  22 + i,
		})
	}
	return metas
}
