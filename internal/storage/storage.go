package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

type Object struct {
	Name        string
	ContentType string
	Metadata    map[string]string
}

// Uploader stores an object and returns the key it was stored under.
type Uploader interface {
	Upload(ctx context.Context, obj Object, r io.Reader) (storedPath string, err error)
}

// ResumeObjectName returns cv/<user>/<id>.pdf with path separators stripped from both parts.
func ResumeObjectName(userID, id string) string {
	clean := func(s string) string {
		s = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(strings.TrimSpace(s))
		if s == "" {
			return "_"
		}
		return s
	}
	return path.Join("cv", clean(userID), clean(id)+".pdf")
}
