package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storeit/models"
	"storeit/store"
)

var (
	alice = models.SessionUser{ID: "64b7f0c2a1b2c3d4e5f60001", Email: "alice@example.com", Name: "Alice"}
	bob   = models.SessionUser{ID: "64b7f0c2a1b2c3d4e5f60002", Email: "bob@example.com", Name: "Bob"}

	errBoom = errors.New("boom")
)

func fixedUser(u models.SessionUser) CurrentUserResolver {
	return ResolverFunc(func(context.Context) (*models.SessionUser, error) {
		return &u, nil
	})
}

func noUser() CurrentUserResolver {
	return ResolverFunc(func(context.Context) (*models.SessionUser, error) {
		return nil, nil
	})
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// failingActivityStore rejects every write.
type failingActivityStore struct {
	*store.MemoryStore
}

func (failingActivityStore) InsertActivity(context.Context, *models.ActivityLog) error {
	return errBoom
}

func (failingActivityStore) CountActivitiesByAction(context.Context, string, time.Time) (map[models.Action]int64, error) {
	return nil, errBoom
}

// panickingActivityStore panics on every write.
type panickingActivityStore struct {
	*store.MemoryStore
}

func (panickingActivityStore) InsertActivity(context.Context, *models.ActivityLog) error {
	panic("activity store exploded")
}

type fakeDirectory struct {
	users []models.User
	err   error
}

func (d fakeDirectory) FindByEmails(_ context.Context, emails []string) ([]models.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	want := make(map[string]bool, len(emails))
	for _, e := range emails {
		want[e] = true
	}
	out := []models.User{}
	for _, u := range d.users {
		if want[u.Email] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d fakeDirectory) FindNearQuota(_ context.Context, threshold float64) ([]models.User, error) {
	if d.err != nil {
		return nil, d.err
	}
	out := []models.User{}
	for _, u := range d.users {
		if u.MaxStorage > 0 && float64(u.UsedStorage) >= threshold*float64(u.MaxStorage) {
			out = append(out, u)
		}
	}
	return out, nil
}

func mustObjectID(hex string) primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		panic(err)
	}
	return id
}

// fakeFiles is a canned FileOperations.
type fakeFiles struct {
	file   *models.File
	list   *models.FileList
	rename *models.RenameResult
	url    *models.FileURL
	err    error
}

func (f *fakeFiles) UploadFile(context.Context, models.SessionUser, FileUpload) (*models.File, error) {
	return f.file, f.err
}

func (f *fakeFiles) GetFiles(context.Context, models.SessionUser, FileQuery) (*models.FileList, error) {
	return f.list, f.err
}

func (f *fakeFiles) RenameFile(context.Context, models.SessionUser, string, string) (*models.RenameResult, error) {
	return f.rename, f.err
}

func (f *fakeFiles) UpdateFileUsers(context.Context, models.SessionUser, string, []string) (*models.File, error) {
	return f.file, f.err
}

func (f *fakeFiles) DeleteFile(context.Context, models.SessionUser, string) error {
	return f.err
}

func (f *fakeFiles) GetDownloadURL(context.Context, models.SessionUser, string) (*models.FileURL, error) {
	return f.url, f.err
}

func (f *fakeFiles) GetPreviewURL(context.Context, models.SessionUser, string) (*models.FileURL, error) {
	return f.url, f.err
}
