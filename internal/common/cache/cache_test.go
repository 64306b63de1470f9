package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func TestCacheService_SetGet(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCacheService(db, "todo")
	ctx := context.Background()

	mock.ExpectSet("todo:user:tg:42", []byte(`{"id":7,"username":"alice"}`), time.Minute).SetVal("OK")
	require.NoError(t, c.Set(ctx, "user:tg:42", profile{ID: 7, Username: "alice"}, time.Minute))

	mock.ExpectGet("todo:user:tg:42").SetVal(`{"id":7,"username":"alice"}`)
	var got profile
	require.NoError(t, c.Get(ctx, "user:tg:42", &got))
	assert.Equal(t, profile{ID: 7, Username: "alice"}, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheService_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCacheService(db, "")

	mock.ExpectGet("absent").RedisNil()
	var got profile
	assert.ErrorIs(t, c.Get(context.Background(), "absent", &got), ErrMiss)
}

func TestCacheService_GetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCacheService(db, "")

	mock.ExpectGet("k").SetErr(errors.New("connection refused"))
	var got profile
	err := c.Get(context.Background(), "k", &got)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMiss)
}

func TestCacheService_Delete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewCacheService(db, "todo")

	mock.ExpectDel("todo:a", "todo:b").SetVal(2)
	require.NoError(t, c.Delete(context.Background(), "a", "b"))
	require.NoError(t, c.Delete(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
