package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"resume-builder/internal/shared/util"
)

// ErrNotFound is returned by Open when no object exists at the key.
var ErrNotFound = errors.New("object: not found")

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	Put(ctx context.Context, storageKey, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	// DeletePrefix removes every object whose key starts with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
}

// ResumePrefix is the namespace holding every stored artifact of one resume.
func ResumePrefix(userID, resumeID int64) string {
	return path.Join(util.HashOwner(userID), "resumes", strconv.FormatInt(resumeID, 10)) + "/"
}

// ExportKey names the rendered PDF of a resume revision. A new updatedAt yields a new key.
func ExportKey(userID, resumeID int64, updatedAt time.Time) string {
	return ResumePrefix(userID, resumeID) + fmt.Sprintf("export-%d.pdf", updatedAt.UTC().UnixMicro())
}
