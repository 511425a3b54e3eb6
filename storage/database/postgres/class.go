package pgrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmusoni/darasa/core/class"
)

type classRow struct {
	Name string `db:"name"`
	Doc  []byte `db:"doc"`
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(db *sqlx.DB) class.Repository {
	return &classRepository{db: db}
}

func (repo *classRepository) UpsertClassMeta(ctx context.Context, meta class.Meta) (class.Meta, error) {
	doc, err := json.Marshal(meta)
	if err != nil {
		return class.Meta{}, errors.Wrap(err, "encoding class metadata")
	}

	const q = `INSERT INTO class_meta (name, doc, created_at, updated_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`
	if _, err = repo.db.ExecContext(ctx, q, meta.Name, doc, meta.CreatedAt, meta.UpdatedAt); err != nil {
		return class.Meta{}, errors.Wrap(err, "upserting class metadata")
	}
	return meta, nil
}

func (repo *classRepository) QueryAllClassMeta(ctx context.Context) ([]class.Meta, error) {
	var rows []classRow
	const q = `SELECT name, doc FROM class_meta ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying class metadata")
	}

	metas := make([]class.Meta, 0, len(rows))
	for _, row := range rows {
		var meta class.Meta
		if err := json.Unmarshal(row.Doc, &meta); err != nil {
			return nil, errors.Wrapf(err, "decoding class metadata %s", row.Name)
		}
		metas = append(metas, meta)
	}
	return metas, nil
}

func (repo *classRepository) GetClassMetaByName(ctx context.Context, name string) (class.Meta, error) {
	var row classRow
	const q = `SELECT name, doc FROM class_meta WHERE name = $1`
	if err := repo.db.GetContext(ctx, &row, q, name); err != nil {
		if err == sql.ErrNoRows {
			return class.Meta{}, class.ErrNotFound
		}
		return class.Meta{}, errors.Wrapf(err, "fetching class metadata %s", name)
	}

	var meta class.Meta
	if err := json.Unmarshal(row.Doc, &meta); err != nil {
		return class.Meta{}, errors.Wrapf(err, "decoding class metadata %s", name)
	}
	return meta, nil
}
