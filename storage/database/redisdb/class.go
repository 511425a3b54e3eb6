package redisdb

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/tmusoni/darasa/core/class"
)

type classRepository struct {
	client *redis.Client
}

var _ class.Repository = (*classRepository)(nil)

func NewClassRepository(client *redis.Client) class.Repository {
	return &classRepository{client: client}
}

func (repo *classRepository) UpsertClassMeta(ctx context.Context, meta class.Meta) (class.Meta, error) {
	doc, err := json.Marshal(meta)
	if err != nil {
		return class.Meta{}, errors.Wrap(err, "encoding class metadata")
	}

	pipe := repo.client.TxPipeline()
	pipe.SAdd(ctx, classMetaSetKey, meta.Name)
	pipe.Set(ctx, classMetaKey(meta.Name), doc, 0)
	if _, err = pipe.Exec(ctx); err != nil {
		return class.Meta{}, errors.Wrap(err, "storing class metadata")
	}
	return meta, nil
}

func (repo *classRepository) QueryAllClassMeta(ctx context.Context) ([]class.Meta, error) {
	names, err := repo.client.SMembers(ctx, classMetaSetKey).Result()
	if err != nil {
		if errors.Cause(err) == redis.Nil {
			return []class.Meta{}, nil
		}
		return nil, errors.Wrap(err, "listing class names")
	}

	metas := make([]class.Meta, 0, len(names))
	for _, name := range names {
		meta, err := repo.GetClassMetaByName(ctx, name)
		if err != nil {
			if err == class.ErrNotFound {
				continue
			}
			return nil, err
		}
		metas = append(metas, meta)
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Name < metas[j].Name })
	return metas, nil
}

func (repo *classRepository) GetClassMetaByName(ctx context.Context, name string) (class.Meta, error) {
	raw, err := repo.client.Get(ctx, classMetaKey(name)).Bytes()
	if err != nil {
		if errors.Cause(err) == redis.Nil {
			return class.Meta{}, class.ErrNotFound
		}
		return class.Meta{}, errors.Wrapf(err, "fetching class metadata %s", name)
	}

	var meta class.Meta
	if err = json.Unmarshal(raw, &meta); err != nil {
		return class.Meta{}, errors.Wrapf(err, "decoding class metadata %s", name)
	}
	return meta, nil
}
