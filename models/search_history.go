package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SearchHistoryEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	Query       string             `bson:"query" json:"query"`
	ResultCount int                `bson:"result_count" json:"result_count"`
	Filters     *SearchFilters     `bson:"filters,omitempty" json:"filters,omitempty"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}

// SearchFilters is the filter snapshot taken when the search ran.
type SearchFilters struct {
	Types []string `bson:"types,omitempty" json:"types,omitempty"`
	Sort  string   `bson:"sort,omitempty" json:"sort,omitempty"`
}

type PopularQuery struct {
	Query string `bson:"query" json:"query"`
	Count int64  `bson:"count" json:"count"`
}

type NoResultQuery struct {
	Query     string    `bson:"query" json:"query"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type SearchAnalytics struct {
	TopQueries         []PopularQuery  `json:"top_queries"`
	AverageResultCount float64         `json:"average_result_count"`
	NoResultQueries    []NoResultQuery `json:"no_result_queries"`
}
