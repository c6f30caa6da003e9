package config

import (
	"os"
	"strconv"
	"strings"
)

var (
	TLS_DOMAINS  = "" // e.g. "example.com,example2.com"
	MYSQL_DSN    = "" // MySQL will be used if this is set
	SQLITE_FILE  = "" // SQLite will be used if MYSQL_DSN is not configured and this is set
	BIND_ADDRESS = "0.0.0.0:8080"
	TMP_DIR      = "/tmp" // Used for local copies of S3 objects
	DEBUG_MODE   = true

	JWT_SECRET     = "this is a long key" // TODO: refuse to start in production without this set
	JWT_EXPIRES_IN = 86400                // seconds

	// Blob storage. If S3_BUCKET is set the S3 backend is used,
	// otherwise files go to STORAGE_DIR on the local disk
	STORAGE_DIR = "./data"
	S3_BUCKET   = ""
	S3_REGION   = "us-east-1"
	S3_ENDPOINT = "" // for S3-compatible stores (MinIO, etc)
	S3_AUTH     = "" // "key:secret"
	S3_SSE      = "" // e.g. "AES256"

	MAX_UPLOAD_SIZE = int64(500 * 1024 * 1024)

	PIPELINE_WORKERS = 4
	PHASE_SECONDS    = 1.0 // cooperative wait per processing phase

	// Classification heuristics
	SENSITIVE_KEYWORDS = "adult,explicit,violence,nsfw,18+"
	LARGE_FILE_BYTES   = int64(50 * 1024 * 1024)
	LONG_VIDEO_BYTES   = int64(100 * 1024 * 1024) // proxy for duration
)

func init() {
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("TMP_DIR", &TMP_DIR)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("JWT_SECRET", &JWT_SECRET)
	readEnvInt("JWT_EXPIRES_IN", &JWT_EXPIRES_IN)
	readEnvString("STORAGE_DIR", &STORAGE_DIR)
	readEnvString("S3_BUCKET", &S3_BUCKET)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_ENDPOINT", &S3_ENDPOINT)
	readEnvString("S3_AUTH", &S3_AUTH)
	readEnvString("S3_SSE", &S3_SSE)
	readEnvInt64("MAX_UPLOAD_SIZE", &MAX_UPLOAD_SIZE)
	readEnvInt("PIPELINE_WORKERS", &PIPELINE_WORKERS)
	readEnvFloat("PHASE_SECONDS", &PHASE_SECONDS)
	readEnvString("SENSITIVE_KEYWORDS", &SENSITIVE_KEYWORDS)
	readEnvInt64("LARGE_FILE_BYTES", &LARGE_FILE_BYTES)
	readEnvInt64("LONG_VIDEO_BYTES", &LONG_VIDEO_BYTES)
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvFloat(name string, value *float64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return
	}
	*value = f
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}

func readEnvInt64(name string, value *int64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return
	}
	*value = f
}
