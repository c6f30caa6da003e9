package storage

import (
	"errors"
	"io"
	"log"
	"videoserver/config"
)

// API is the blob store contract. Paths are stable keys relative to the
// store root ("staging/abc.mp4", "media/3/abc.mp4").
type API interface {
	// Save writes the full content of reader under path
	Save(path string, reader io.Reader) (int64, error)
	// Open returns a random-access handle to the blob. The caller must
	// close it; for remote stores it may be a locally cached copy.
	Open(path string) (io.ReadSeekCloser, error)
	// GetSize returns the blob size or -1 if it does not exist
	GetSize(path string) int64
	// Move relocates a blob to a new key. Open handles obtained before
	// the move stay readable.
	Move(oldPath, newPath string) error
	Delete(path string) error
	GetFullPath(path string) string
}

var ErrNotFound = errors.New("blob not found")

var defaultStorage API

func Init() {
	if config.S3_BUCKET != "" {
		defaultStorage = NewS3Storage()
		log.Printf("Storage: S3 bucket %s", config.S3_BUCKET)
		return
	}
	defaultStorage = NewDiskStorage(config.STORAGE_DIR)
	log.Printf("Storage: local disk at %s", config.STORAGE_DIR)
}

func Get() API {
	if defaultStorage == nil {
		panic("no storage available")
	}
	return defaultStorage
}
