package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"storeit/models"
	"storeit/store"
	"storeit/utils"
)

const (
	defaultSearchHistoryLimit = 20
	defaultPopularLimit       = 10
	searchStatsLimit          = 10
)

type SearchHistoryService struct {
	store    store.SearchHistoryStore
	resolver CurrentUserResolver
	logger   zerolog.Logger
	now      func() time.Time
}

func NewSearchHistoryService(s store.SearchHistoryStore, resolver CurrentUserResolver) *SearchHistoryService {
	return &SearchHistoryService{
		store:    s,
		resolver: resolver,
		logger:   utils.Component("search_history"),
		now:      time.Now,
	}
}

// LogSearchQuery records a search for the current user. Blank queries and
// anonymous callers are ignored. The query is stored verbatim.
func (s *SearchHistoryService) LogSearchQuery(ctx context.Context, query string, resultCount int, filters *models.SearchFilters) {
	if strings.TrimSpace(query) == "" {
		return
	}

	user := s.currentUser(ctx)
	if user == nil {
		return
	}

	entry := &models.SearchHistoryEntry{
		UserID:      user.ID,
		Query:       query,
		ResultCount: resultCount,
		Filters:     filters,
		Timestamp:   s.now().UTC(),
	}

	if err := s.store.InsertSearch(ctx, entry); err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).
			Str("user_id", user.ID).
			Msg("failed to log search query")
	}
}

func (s *SearchHistoryService) GetSearchHistory(ctx context.Context, limit int) []models.SearchHistoryEntry {
	user := s.currentUser(ctx)
	if user == nil {
		return []models.SearchHistoryEntry{}
	}

	entries, err := s.store.FindSearches(ctx, user.ID, clampLimit(limit, defaultSearchHistoryLimit))
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).Str("user_id", user.ID).Msg("failed to get search history")
		return []models.SearchHistoryEntry{}
	}
	return entries
}

// GetPopularSearchQueries ranks the current user's queries by frequency.
func (s *SearchHistoryService) GetPopularSearchQueries(ctx context.Context, limit int) []models.PopularQuery {
	user := s.currentUser(ctx)
	if user == nil {
		return []models.PopularQuery{}
	}

	queries, err := s.store.TopSearchQueries(ctx, user.ID, clampLimit(limit, defaultPopularLimit))
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).Str("user_id", user.ID).Msg("failed to get popular queries")
		return []models.PopularQuery{}
	}
	return queries
}

// GetSearchAnalytics summarizes the current user's searches. It returns nil
// when nobody is signed in or any read fails.
func (s *SearchHistoryService) GetSearchAnalytics(ctx context.Context) *models.SearchAnalytics {
	user := s.currentUser(ctx)
	if user == nil {
		return nil
	}
	logger := utils.RequestLogger(ctx, s.logger)

	top, err := s.store.TopSearchQueries(ctx, user.ID, searchStatsLimit)
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to get top queries")
		return nil
	}

	avg, err := s.store.AverageResultCount(ctx, user.ID)
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to get average result count")
		return nil
	}

	empty, err := s.store.FindNoResultSearches(ctx, user.ID, searchStatsLimit)
	if err != nil {
		logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to get zero-result queries")
		return nil
	}

	return &models.SearchAnalytics{
		TopQueries:         top,
		AverageResultCount: avg,
		NoResultQueries:    empty,
	}
}

func (s *SearchHistoryService) currentUser(ctx context.Context) *models.SessionUser {
	user, err := s.resolver.CurrentUser(ctx)
	if err != nil {
		utils.RequestLogger(ctx, s.logger).Error().Err(err).Msg("failed to resolve current user")
		return nil
	}
	return user
}
