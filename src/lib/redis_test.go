package lib

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLockerAcquireAndRelease(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	locker := NewRedisLocker(rdb)
	locker.token = func() string { return "tok-1" }

	mock.ExpectSetNX("checkout:booking:7", "tok-1", 30*time.Second).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), []string{"checkout:booking:7"}, "tok-1").SetVal(int64(1))

	release, ok, err := locker.Acquire(context.Background(), "checkout:booking:7", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	release()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLockerHeld(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	locker := NewRedisLocker(rdb)
	locker.token = func() string { return "tok-2" }

	mock.ExpectSetNX("checkout:booking:7", "tok-2", 30*time.Second).SetVal(false)

	release, ok, err := locker.Acquire(context.Background(), "checkout:booking:7", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, release)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeviceToken(t *testing.T) {
	rdb, mock := redismock.NewClientMock()

	mock.ExpectSet("user:3:fcm", "fcm-token", deviceTokenTTL).SetVal("OK")
	mock.ExpectGet("user:3:fcm").SetVal("fcm-token")
	mock.ExpectGet("user:4:fcm").RedisNil()

	require.NoError(t, SaveDeviceToken(context.Background(), rdb, 3, "fcm-token"))

	token, err := GetDeviceToken(context.Background(), rdb, 3)
	require.NoError(t, err)
	assert.Equal(t, "fcm-token", token)

	token, err = GetDeviceToken(context.Background(), rdb, 4)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.NoError(t, mock.ExpectationsWereMet())
}
