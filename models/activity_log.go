package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action is the kind of user action tracked for analytics.
type Action string

const (
	ActionUpload   Action = "upload"
	ActionDownload Action = "download"
	ActionView     Action = "view"
	ActionShare    Action = "share"
	ActionRename   Action = "rename"
	ActionDelete   Action = "delete"
	ActionSearch   Action = "search"
)

// Actions lists every tracked action kind.
var Actions = []Action{
	ActionUpload,
	ActionDownload,
	ActionView,
	ActionShare,
	ActionRename,
	ActionDelete,
	ActionSearch,
}

func (a Action) IsValid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

type ActivityLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	FileID    string             `bson:"file_id,omitempty" json:"file_id,omitempty"`
	Action    Action             `bson:"action" json:"action"`
	Details   ActivityDetailsDoc `bson:"details" json:"details"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	IPAddress string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	UserAgent string             `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
}

// ActivityDetailsDoc is the stored shape of the per-action details.
// Only the keys relevant to the action are populated.
type ActivityDetailsDoc struct {
	FileName    string   `bson:"file_name,omitempty" json:"file_name,omitempty"`
	FileType    string   `bson:"file_type,omitempty" json:"file_type,omitempty"`
	ShareEmails []string `bson:"share_emails,omitempty" json:"share_emails,omitempty"`
	SearchQuery string   `bson:"search_query,omitempty" json:"search_query,omitempty"`
	OldName     string   `bson:"old_name,omitempty" json:"old_name,omitempty"`
	NewName     string   `bson:"new_name,omitempty" json:"new_name,omitempty"`
}

// ActivityDetails is the action-specific payload of an activity record.
// Each variant maps to exactly one Action.
type ActivityDetails interface {
	Action() Action
	doc() ActivityDetailsDoc
}

type UploadDetails struct {
	FileName string
	FileType string
}

type DownloadDetails struct {
	FileName string
}

type ViewDetails struct {
	FileName string
}

type ShareDetails struct {
	FileName    string
	ShareEmails []string
}

type RenameDetails struct {
	OldName string
	NewName string
}

// DeleteDetails is empty: the file is gone by the time the record is written.
type DeleteDetails struct{}

type SearchDetails struct {
	SearchQuery string
}

func (UploadDetails) Action() Action   { return ActionUpload }
func (DownloadDetails) Action() Action { return ActionDownload }
func (ViewDetails) Action() Action     { return ActionView }
func (ShareDetails) Action() Action    { return ActionShare }
func (RenameDetails) Action() Action   { return ActionRename }
func (DeleteDetails) Action() Action   { return ActionDelete }
func (SearchDetails) Action() Action   { return ActionSearch }

func (d UploadDetails) doc() ActivityDetailsDoc {
	return ActivityDetailsDoc{FileName: d.FileName, FileType: d.FileType}
}

func (d DownloadDetails) doc() ActivityDetailsDoc {
	return ActivityDetailsDoc{FileName: d.FileName}
}

func (d ViewDetails) doc() ActivityDetailsDoc {
	return ActivityDetailsDoc{FileName: d.FileName}
}

func (d ShareDetails) doc() ActivityDetailsDoc {
	emails := make([]string, len(d.ShareEmails))
	copy(emails, d.ShareEmails)
	return ActivityDetailsDoc{FileName: d.FileName, ShareEmails: emails}
}

func (d RenameDetails) doc() ActivityDetailsDoc {
	return ActivityDetailsDoc{OldName: d.OldName, NewName: d.NewName}
}

func (DeleteDetails) doc() ActivityDetailsDoc { return ActivityDetailsDoc{} }

func (d SearchDetails) doc() ActivityDetailsDoc {
	return ActivityDetailsDoc{SearchQuery: d.SearchQuery}
}

// NewActivityLog builds an unsaved record for the given user and details.
func NewActivityLog(userID, fileID string, details ActivityDetails, at time.Time) ActivityLog {
	return ActivityLog{
		UserID:    userID,
		FileID:    fileID,
		Action:    details.Action(),
		Details:   details.doc(),
		Timestamp: at,
	}
}

// TypedDetails converts the stored details back into the variant for the
// record's action. Unknown actions yield nil.
func (l ActivityLog) TypedDetails() ActivityDetails {
	d := l.Details
	switch l.Action {
	case ActionUpload:
		return UploadDetails{FileName: d.FileName, FileType: d.FileType}
	case ActionDownload:
		return DownloadDetails{FileName: d.FileName}
	case ActionView:
		return ViewDetails{FileName: d.FileName}
	case ActionShare:
		return ShareDetails{FileName: d.FileName, ShareEmails: d.ShareEmails}
	case ActionRename:
		return RenameDetails{OldName: d.OldName, NewName: d.NewName}
	case ActionDelete:
		return DeleteDetails{}
	case ActionSearch:
		return SearchDetails{SearchQuery: d.SearchQuery}
	default:
		return nil
	}
}
