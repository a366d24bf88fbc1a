package dao

import (
	"context"
	"testing"

	"room_chat_server/internal/config"
	"room_chat_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_NoDriverIsInMemory(t *testing.T) {
	store, err := OpenStore(context.Background(), config.Default())
	require.NoError(t, err)
	assert.Nil(t, store)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.PersistenceConfig.Driver = "cassandra"
	_, err := OpenStore(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestOpenStore_MongoWithoutURI(t *testing.T) {
	cfg := config.Default()
	cfg.PersistenceConfig.Driver = DriverMongo
	_, err := OpenStore(context.Background(), cfg)
	assert.Equal(t, errorx.CodeDBError, errorx.GetCode(err))
}
