package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storeit/models"
	"storeit/utils"
)

var (
	ErrFileNotFound  = errors.New("file not found")
	ErrForbidden     = errors.New("insufficient permissions")
	ErrQuotaExceeded = errors.New("storage limit exceeded")
	ErrInvalidFile   = errors.New("invalid file")
)

const defaultFileListLimit = 100

// FileOperations is the set of file actions exposed to clients.
type FileOperations interface {
	UploadFile(ctx context.Context, user models.SessionUser, upload FileUpload) (*models.File, error)
	GetFiles(ctx context.Context, user models.SessionUser, query FileQuery) (*models.FileList, error)
	RenameFile(ctx context.Context, user models.SessionUser, fileID, name string) (*models.RenameResult, error)
	UpdateFileUsers(ctx context.Context, user models.SessionUser, fileID string, emails []string) (*models.File, error)
	DeleteFile(ctx context.Context, user models.SessionUser, fileID string) error
	GetDownloadURL(ctx context.Context, user models.SessionUser, fileID string) (*models.FileURL, error)
	GetPreviewURL(ctx context.Context, user models.SessionUser, fileID string) (*models.FileURL, error)
}

type FileUpload struct {
	Name    string
	Size    int64
	Content io.Reader
}

type FileQuery struct {
	Search string
	Types  []string
	// Sort is "<field>-<asc|desc>" with field one of name, size, created_at.
	Sort  string
	Limit int
}

type FileLimits struct {
	MaxFileSize    int64
	MaxUserStorage int64
}

type FileService struct {
	fileCollection *mongo.Collection
	userCollection *mongo.Collection
	storage        ObjectStorage
	limits         FileLimits
	logger         zerolog.Logger
	now            func() time.Time
}

func NewFileService(db *mongo.Database, storage ObjectStorage, limits FileLimits) *FileService {
	return &FileService{
		fileCollection: db.Collection("files"),
		userCollection: db.Collection("users"),
		storage:        storage,
		limits:         limits,
		logger:         utils.Component("files"),
		now:            time.Now,
	}
}

func (s *FileService) UploadFile(ctx context.Context, user models.SessionUser, upload FileUpload) (*models.File, error) {
	if err := utils.ValidateFileName(upload.Name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	if err := utils.ValidateFileSize(upload.Size, s.limits.MaxFileSize); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	userObjID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID: %w", err)
	}

	ok, err := s.checkStorageQuota(ctx, userObjID, upload.Size)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrQuotaExceeded
	}

	ext := strings.ToLower(filepath.Ext(upload.Name))
	fileID := primitive.NewObjectID()
	objectKey := fmt.Sprintf("users/%s/%s%s", user.ID, fileID.Hex(), ext)
	mimeType := getMimeType(upload.Name)

	sha1Hash, err := s.storage.Put(ctx, objectKey, upload.Content, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to store %s: %w", upload.Name, err)
	}

	now := s.now().UTC()
	fileDoc := models.File{
		ID:        fileID,
		Name:      upload.Name,
		Extension: ext,
		Type:      getFileType(ext),
		Size:      upload.Size,
		MimeType:  mimeType,
		OwnerID:   user.ID,
		Users:     []string{},
		ObjectKey: objectKey,
		SHA1Hash:  sha1Hash,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.fileCollection.InsertOne(ctx, fileDoc); err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return nil, fmt.Errorf("failed to save file metadata for %s: %w", upload.Name, err)
	}

	_, err = s.userCollection.UpdateOne(ctx,
		bson.M{"_id": userObjID},
		bson.M{"$inc": bson.M{"used_storage": upload.Size}},
	)
	if err != nil {
		// The file is stored; only the usage counter is behind.
		utils.RequestLogger(ctx, s.logger).Error().Err(err).
			Str("user_id", user.ID).
			Str("file_id", fileID.Hex()).
			Int64("size", upload.Size).
			Msg("failed to update storage usage")
	}

	return &fileDoc, nil
}

// GetFiles lists files the user owns or that were shared with them.
func (s *FileService) GetFiles(ctx context.Context, user models.SessionUser, query FileQuery) (*models.FileList, error) {
	filter := bson.M{
		"is_deleted": false,
		"$or": bson.A{
			bson.M{"owner_id": user.ID},
			bson.M{"users": strings.ToLower(user.Email)},
		},
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	}
	if len(query.Types) > 0 {
		filter["type"] = bson.M{"$in": query.Types}
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultFileListLimit
	}

	opts := options.Find().
		SetSort(parseFileSort(query.Sort)).
		SetLimit(int64(limit))

	cursor, err := s.fileCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer cursor.Close(ctx)

	files := []models.File{}
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}

	total, err := s.fileCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	return &models.FileList{Documents: files, Total: total}, nil
}

// RenameFile changes the display name and keeps the original extension.
func (s *FileService) RenameFile(ctx context.Context, user models.SessionUser, fileID, name string) (*models.RenameResult, error) {
	file, err := s.getOwnedFile(ctx, user, fileID)
	if err != nil {
		return nil, err
	}

	newName := strings.TrimSpace(name)
	if newName == "" {
		return nil, fmt.Errorf("%w: filename cannot be empty", ErrInvalidFile)
	}
	if !strings.EqualFold(filepath.Ext(newName), file.Extension) {
		newName += file.Extension
	}
	if err := utils.ValidateFileName(newName); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	now := s.now().UTC()
	_, err = s.fileCollection.UpdateOne(ctx,
		bson.M{"_id": file.ID},
		bson.M{"$set": bson.M{"name": newName, "updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to rename file: %w", err)
	}

	previous := file.Name
	file.Name = newName
	file.UpdatedAt = now
	return &models.RenameResult{File: file, PreviousName: previous}, nil
}

// UpdateFileUsers replaces the list of emails the file is shared with.
func (s *FileService) UpdateFileUsers(ctx context.Context, user models.SessionUser, fileID string, emails []string) (*models.File, error) {
	normalized, err := utils.NormalizeEmails(emails)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	file, err := s.getOwnedFile(ctx, user, fileID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	_, err = s.fileCollection.UpdateOne(ctx,
		bson.M{"_id": file.ID},
		bson.M{"$set": bson.M{"users": normalized, "updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update file users: %w", err)
	}

	file.Users = normalized
	file.UpdatedAt = now
	return file, nil
}

// DeleteFile soft deletes the record, removes the stored object and gives the
// bytes back to the owner's quota.
func (s *FileService) DeleteFile(ctx context.Context, user models.SessionUser, fileID string) error {
	file, err := s.getOwnedFile(ctx, user, fileID)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	update := bson.M{
		"$set": bson.M{
			"deleted_at": &now,
			"updated_at": now,
			"is_deleted": true,
		},
	}
	if _, err := s.fileCollection.UpdateOne(ctx, bson.M{"_id": file.ID}, update); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	// The file is deleted from here on; cleanup failures are only logged.
	logger := utils.RequestLogger(ctx, s.logger)

	if err := s.storage.Delete(ctx, file.ObjectKey); err != nil {
		logger.Error().Err(err).Str("file_id", fileID).Str("object_key", file.ObjectKey).Msg("failed to remove stored object")
	}

	userObjID, err := primitive.ObjectIDFromHex(file.OwnerID)
	if err != nil {
		return nil
	}
	_, err = s.userCollection.UpdateOne(ctx,
		bson.M{"_id": userObjID},
		bson.M{"$inc": bson.M{"used_storage": -file.Size}},
	)
	if err != nil {
		logger.Error().Err(err).Str("user_id", file.OwnerID).Str("file_id", fileID).Msg("failed to update storage usage")
	}
	return nil
}

func (s *FileService) GetDownloadURL(ctx context.Context, user models.SessionUser, fileID string) (*models.FileURL, error) {
	file, err := s.getAccessibleFile(ctx, user, fileID)
	if err != nil {
		return nil, err
	}
	return s.signedURL(ctx, file, downloadURLTTL)
}

func (s *FileService) GetPreviewURL(ctx context.Context, user models.SessionUser, fileID string) (*models.FileURL, error) {
	file, err := s.getAccessibleFile(ctx, user, fileID)
	if err != nil {
		return nil, err
	}
	if !IsPreviewableFile(file.Name) {
		return nil, fmt.Errorf("%w: file type not previewable", ErrInvalidFile)
	}
	return s.signedURL(ctx, file, previewURLTTL)
}

func (s *FileService) signedURL(ctx context.Context, file *models.File, ttl time.Duration) (*models.FileURL, error) {
	url, err := s.storage.SignedURL(ctx, file.ObjectKey, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate file URL: %w", err)
	}
	return &models.FileURL{
		FileID:    file.ID.Hex(),
		FileName:  file.Name,
		URL:       url,
		ExpiresAt: s.now().Add(ttl).UTC(),
	}, nil
}

func (s *FileService) checkStorageQuota(ctx context.Context, userObjID primitive.ObjectID, additionalSize int64) (bool, error) {
	var user models.User
	err := s.userCollection.FindOne(ctx, bson.M{"_id": userObjID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, fmt.Errorf("%w: user not found", ErrForbidden)
	} else if err != nil {
		return false, fmt.Errorf("failed to load user: %w", err)
	}

	maxStorage := user.MaxStorage
	if maxStorage <= 0 {
		maxStorage = s.limits.MaxUserStorage
	}
	return user.UsedStorage+additionalSize <= maxStorage, nil
}

func (s *FileService) findFile(ctx context.Context, fileID string) (*models.File, error) {
	objID, err := primitive.ObjectIDFromHex(fileID)
	if err != nil {
		return nil, ErrFileNotFound
	}

	var file models.File
	err = s.fileCollection.FindOne(ctx, bson.M{"_id": objID, "is_deleted": false}).Decode(&file)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrFileNotFound
	} else if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &file, nil
}

func (s *FileService) getOwnedFile(ctx context.Context, user models.SessionUser, fileID string) (*models.File, error) {
	file, err := s.findFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.OwnerID != user.ID {
		return nil, ErrForbidden
	}
	return file, nil
}

func (s *FileService) getAccessibleFile(ctx context.Context, user models.SessionUser, fileID string) (*models.File, error) {
	file, err := s.findFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if !canAccess(file, user) {
		return nil, ErrForbidden
	}
	return file, nil
}

func canAccess(file *models.File, user models.SessionUser) bool {
	if file.OwnerID == user.ID {
		return true
	}
	for _, email := range file.Users {
		if strings.EqualFold(email, user.Email) {
			return true
		}
	}
	return false
}

func parseFileSort(raw string) bson.D {
	field, direction, _ := strings.Cut(raw, "-")
	switch field {
	case "name", "size", "created_at", "updated_at":
	default:
		field = "created_at"
		direction = "desc"
	}

	order := -1
	if direction == "asc" {
		order = 1
	}
	return bson.D{{Key: field, Value: order}, {Key: "_id", Value: order}}
}

func getFileType(ext string) string {
	switch ext {
	case ".pdf", ".doc", ".docx", ".txt", ".xls", ".xlsx", ".csv", ".ppt", ".pptx", ".odt", ".rtf", ".md":
		return "document"
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp":
		return "image"
	case ".mp4", ".avi", ".mov", ".mkv", ".webm":
		return "video"
	case ".mp3", ".wav", ".ogg", ".flac", ".m4a", ".aac":
		return "audio"
	default:
		return "other"
	}
}

func getMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".zip":
		return "application/zip"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}
