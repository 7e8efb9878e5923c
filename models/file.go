package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type File struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Extension string             `bson:"extension" json:"extension"`
	Type      string             `bson:"type" json:"type"` // document, image, video, audio, other
	Size      int64              `bson:"size" json:"size"`
	MimeType  string             `bson:"mime_type" json:"mime_type"`
	OwnerID   string             `bson:"owner_id" json:"owner_id"`
	Users     []string           `bson:"users" json:"users"` // emails the file is shared with
	ObjectKey string             `bson:"object_key" json:"-"`
	SHA1Hash  string             `bson:"sha1_hash,omitempty" json:"sha1_hash,omitempty"`
	IsDeleted bool               `bson:"is_deleted" json:"is_deleted"`
	DeletedAt *time.Time         `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// FileList is one page of a file listing or search.
type FileList struct {
	Documents []File `json:"documents"`
	Total     int64  `json:"total"`
}

// RenameResult carries the renamed file and the name it had before.
type RenameResult struct {
	File         *File  `json:"file"`
	PreviousName string `json:"previous_name"`
}

// FileURL is a signed, expiring access URL for a stored file.
type FileURL struct {
	FileID    string    `json:"file_id"`
	FileName  string    `json:"file_name"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
