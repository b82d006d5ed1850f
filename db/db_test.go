package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestOptionsFindLatest(t *testing.T) {
	opts := OptionsFindLatest(20, 10)

	assert.Equal(t, bson.D{{Key: "created_at", Value: -1}}, opts.Sort)
	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(20), *opts.Skip)
	assert.Equal(t, int64(10), *opts.Limit)
}

func TestOptionsFindLatest_NoPaging(t *testing.T) {
	opts := OptionsFindLatest(0, 0)

	assert.Nil(t, opts.Skip)
	assert.Nil(t, opts.Limit)
}
