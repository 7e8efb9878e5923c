package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestActionCountsPipeline(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	p := actionCountsPipeline("u1", since)

	require.Len(t, p, 2)
	assert.Equal(t, "$match", p[0][0].Key)
	assert.Equal(t, bson.D{
		{Key: "user_id", Value: "u1"},
		{Key: "timestamp", Value: bson.D{{Key: "$gte", Value: since}}},
	}, p[0][0].Value)

	assert.Equal(t, "$group", p[1][0].Key)
	group := p[1][0].Value.(bson.D)
	assert.Equal(t, "$action", group[0].Value)
}

func TestTopQueriesPipeline(t *testing.T) {
	p := topQueriesPipeline("u1", 5)

	stages := make([]string, 0, len(p))
	for _, stage := range p {
		stages = append(stages, stage[0].Key)
	}
	assert.Equal(t, []string{"$match", "$group", "$sort", "$limit", "$project"}, stages)

	assert.Equal(t, bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}, p[2][0].Value)
	assert.Equal(t, int64(5), p[3][0].Value)
}

func TestIndexModels(t *testing.T) {
	models := IndexModels()

	assert.Len(t, models[ActivityLogsCollection], 4)
	assert.Len(t, models[SearchHistoryCollection], 2)
	assert.Len(t, models[NotificationsCollection], 3)
	assert.Len(t, models[CacheCollection], 2)
	assert.Len(t, models[FileTagsCollection], 3)

	ttl := models[NotificationsCollection][2]
	require.NotNil(t, ttl.Options)
	require.NotNil(t, ttl.Options.ExpireAfterSeconds)
	assert.Equal(t, int32(0), *ttl.Options.ExpireAfterSeconds)
}
