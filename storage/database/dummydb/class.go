package dummydb

import (
	"context"
	"sort"

	"github.com/tmusoni/darasa/core/class"
)

type classRepository struct {
	db *classTable
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db.class}
}

func (repo *classRepository) UpsertClassMeta(_ context.Context, meta class.Meta) (class.Meta, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[meta.Name] = &meta
	return meta, nil
}

func (repo *classRepository) QueryAllClassMeta(_ context.Context) ([]class.Meta, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	metas := make([]class.Meta, 0, len(repo.db.table))
	for _, meta := range repo.db.table {
		metas = append(metas, *meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Name < metas[j].Name })
	return metas, nil
}

func (repo *classRepository) GetClassMetaByName(_ context.Context, name string) (class.Meta, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if meta, ok := repo.db.table[name]; ok {
		return *meta, nil
	}
	return class.Meta{}, class.ErrNotFound
}
