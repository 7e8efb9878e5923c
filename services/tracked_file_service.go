package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"storeit/models"
	"storeit/utils"
)

// TrackedFileService decorates FileOperations with activity, search history
// and share notifications. Results and errors of the wrapped operations are
// returned unchanged.
type TrackedFileService struct {
	files         FileOperations
	activity      *ActivityService
	searches      *SearchHistoryService
	notifications *NotificationService
	logger        zerolog.Logger
}

func NewTrackedFileService(files FileOperations, activity *ActivityService, searches *SearchHistoryService, notifications *NotificationService) *TrackedFileService {
	return &TrackedFileService{
		files:         files,
		activity:      activity,
		searches:      searches,
		notifications: notifications,
		logger:        utils.Component("tracked_files"),
	}
}

var _ FileOperations = (*TrackedFileService)(nil)

func (s *TrackedFileService) UploadFile(ctx context.Context, user models.SessionUser, upload FileUpload) (*models.File, error) {
	file, err := s.files.UploadFile(ctx, user, upload)
	if err != nil {
		s.logFailure(ctx, models.ActionUpload, err)
		return file, err
	}

	s.track(ctx, func() {
		s.activity.LogActivity(ctx, file.ID.Hex(), models.UploadDetails{FileName: file.Name, FileType: file.Type})
	})
	return file, nil
}

// GetFiles records the search text, unless blank, before returning the list.
func (s *TrackedFileService) GetFiles(ctx context.Context, user models.SessionUser, query FileQuery) (*models.FileList, error) {
	list, err := s.files.GetFiles(ctx, user, query)
	if err != nil {
		s.logFailure(ctx, models.ActionSearch, err)
		return list, err
	}

	if strings.TrimSpace(query.Search) != "" {
		s.track(ctx, func() {
			var filters *models.SearchFilters
			if len(query.Types) > 0 || query.Sort != "" {
				filters = &models.SearchFilters{Types: query.Types, Sort: query.Sort}
			}
			s.searches.LogSearchQuery(ctx, query.Search, int(list.Total), filters)
			s.activity.LogActivity(ctx, "", models.SearchDetails{SearchQuery: query.Search})
		})
	}
	return list, nil
}

func (s *TrackedFileService) RenameFile(ctx context.Context, user models.SessionUser, fileID, name string) (*models.RenameResult, error) {
	result, err := s.files.RenameFile(ctx, user, fileID, name)
	if err != nil {
		s.logFailure(ctx, models.ActionRename, err)
		return result, err
	}

	s.track(ctx, func() {
		s.activity.LogActivity(ctx, fileID, models.RenameDetails{OldName: result.PreviousName, NewName: result.File.Name})
	})
	return result, nil
}

// UpdateFileUsers shares the file and notifies recipients with an account.
func (s *TrackedFileService) UpdateFileUsers(ctx context.Context, user models.SessionUser, fileID string, emails []string) (*models.File, error) {
	file, err := s.files.UpdateFileUsers(ctx, user, fileID, emails)
	if err != nil {
		s.logFailure(ctx, models.ActionShare, err)
		return file, err
	}

	s.track(ctx, func() {
		s.activity.LogActivity(ctx, fileID, models.ShareDetails{FileName: file.Name, ShareEmails: file.Users})
	})
	s.track(ctx, func() {
		if s.notifications != nil {
			s.notifications.NotifyFileShared(ctx, file.Name, user, file.Users)
		}
	})
	return file, nil
}

func (s *TrackedFileService) DeleteFile(ctx context.Context, user models.SessionUser, fileID string) error {
	if err := s.files.DeleteFile(ctx, user, fileID); err != nil {
		s.logFailure(ctx, models.ActionDelete, err)
		return err
	}

	s.track(ctx, func() {
		s.activity.LogActivity(ctx, fileID, models.DeleteDetails{})
	})
	return nil
}

func (s *TrackedFileService) GetDownloadURL(ctx context.Context, user models.SessionUser, fileID string) (*models.FileURL, error) {
	url, err := s.files.GetDownloadURL(ctx, user, fileID)
	if err != nil {
		s.logFailure(ctx, models.ActionDownload, err)
		return url, err
	}

	s.LogFileAccess(ctx, fileID, url.FileName, models.ActionDownload)
	return url, nil
}

func (s *TrackedFileService) GetPreviewURL(ctx context.Context, user models.SessionUser, fileID string) (*models.FileURL, error) {
	url, err := s.files.GetPreviewURL(ctx, user, fileID)
	if err != nil {
		s.logFailure(ctx, models.ActionView, err)
		return url, err
	}

	s.LogFileAccess(ctx, fileID, url.FileName, models.ActionView)
	return url, nil
}

// LogFileAccess records a download or view of a file the client fetched on
// its own. Other actions are ignored.
func (s *TrackedFileService) LogFileAccess(ctx context.Context, fileID, fileName string, action models.Action) {
	var details models.ActivityDetails
	switch action {
	case models.ActionDownload:
		details = models.DownloadDetails{FileName: fileName}
	case models.ActionView:
		details = models.ViewDetails{FileName: fileName}
	default:
		utils.RequestLogger(ctx, s.logger).Warn().Str("action", string(action)).Msg("unsupported file access action")
		return
	}

	s.track(ctx, func() {
		s.activity.LogActivity(ctx, fileID, details)
	})
}

// track runs a logging side effect. A panic inside fn is logged and dropped.
func (s *TrackedFileService) track(ctx context.Context, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			utils.RequestLogger(ctx, s.logger).Error().Interface("panic", r).Msg("activity tracking panicked")
		}
	}()
	fn()
}

func (s *TrackedFileService) logFailure(ctx context.Context, action models.Action, err error) {
	utils.RequestLogger(ctx, s.logger).Warn().Err(err).Str("action", string(action)).Msg("file operation failed")
}
