package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/tmusoni/darasa/core/student"
)

// SnapshotKey is the fixed identifier the cached collection lives under.
const SnapshotKey = "students:snapshot"

var ErrNoSnapshot = errors.New("no cached snapshot")

// Store persists the most recent successfully fetched collection. The
// snapshot is overwritten wholesale after every successful remote read and is
// only read back when all remote candidates failed; there is no merge or
// conflict resolution, the last writer wins entirely.
type Store interface {
	SaveSnapshot(ctx context.Context, students []student.Student) error
	LoadSnapshot(ctx context.Context) ([]student.Student, error)
}

// RedisStore keeps the snapshot as a JSON array under SnapshotKey.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (st *RedisStore) SaveSnapshot(ctx context.Context, students []student.Student) error {
	raw, err := json.Marshal(students)
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	return errors.Wrap(st.client.Set(ctx, SnapshotKey, raw, 0).Err(), "storing snapshot")
}

func (st *RedisStore) LoadSnapshot(ctx context.Context) ([]student.Student, error) {
	raw, err := st.client.Get(ctx, SnapshotKey).Bytes()
	if err != nil {
		if errors.Cause(err) == redis.Nil {
			return nil, ErrNoSnapshot
		}
		return nil, errors.Wrap(err, "fetching snapshot")
	}

	var students []student.Student
	if err = json.Unmarshal(raw, &students); err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}
	return students, nil
}

// MemoryStore is an in-process snapshot store.
type MemoryStore struct {
	mu       sync.RWMutex
	snapshot []student.Student
	ok       bool
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (st *MemoryStore) SaveSnapshot(_ context.Context, students []student.Student) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.snapshot = make([]student.Student, len(students))
	copy(st.snapshot, students)
	st.ok = true
	return nil
}

func (st *MemoryStore) LoadSnapshot(_ context.Context) ([]student.Student, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	if !st.ok {
		return nil, ErrNoSnapshot
	}
	students := make([]student.Student, len(st.snapshot))
	copy(students, st.snapshot)
	return students, nil
}
