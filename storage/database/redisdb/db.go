package redisdb

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/tmusoni/darasa/core"
)

// Key layout:
//   students                 set of student ids
//   student:{id}             JSON student document
//   classmeta                set of class names
//   classmeta:{name}         JSON class metadata document
//   auth:users               set of usernames
//   auth:user:{username}     JSON account document
const (
	studentSetKey    = "students"
	studentKeyPrefix = "student:"
	classMetaSetKey  = "classmeta"
	classMetaPrefix  = "classmeta:"
	accountSetKey    = "auth:users"
	accountKeyPrefix = "auth:user:"
)

func studentKey(id string) string       { return studentKeyPrefix + id }
func classMetaKey(name string) string   { return classMetaPrefix + name }
func accountKey(username string) string { return accountKeyPrefix + username }

// Open connects to Redis and verifies the connection.
func Open(conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, errors.Wrapf(err, "pinging redis at %s", conf.Redis.Addr)
	}
	return client, nil
}
