// Package storage abstracts the hosted file store used for resumes and logos.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Buckets mirror the hosted platform's storage layout.
const (
	BucketProfileResumes     = "resumes/profiles"
	BucketApplicationResumes = "applications/resumes"
	BucketRecruiterLogos     = "logos/recruiters"
)

// Storage saves a file under a bucket and returns its public URL.
type Storage interface {
	Save(ctx context.Context, bucket, filename string, data []byte) (string, error)
}

// LocalStorage writes files under a root directory and maps them to URLs
// under a base URL. Object names are prefixed with a UUID so uploads never
// collide.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *LocalStorage) Save(ctx context.Context, bucket, filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}

	objectName := uuid.New().String() + "-" + sanitize(filename)
	dir := filepath.Join(s.root, filepath.FromSlash(bucket))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}

	path := filepath.Join(dir, objectName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, bucket, objectName), nil
}

func sanitize(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "." || name == "" {
		return "upload"
	}
	return name
}
