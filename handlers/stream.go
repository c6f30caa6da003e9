package handlers

import (
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"videoserver/models"

	"github.com/gin-gonic/gin"
)

// VideoStream serves the bytes of a terminally-classified video with
// single-range support, compatible with media-player seeking. Multi-range
// requests are served as if only the first range was given. The asset
// record is never mutated here.
func VideoStream(c *gin.Context, user *models.User) {
	video, ok := videoFromParam(c)
	if !ok {
		return
	}
	if !video.Status.Streamable() {
		c.JSON(http.StatusBadRequest, NotReadyResponse)
		return
	}
	if video.Status == models.StatusFlagged && user.Role == models.RoleViewer {
		c.JSON(http.StatusForbidden, FlagRestrictedResp)
		return
	}
	if !user.Role.IsElevated() && video.UserID != user.ID && video.Status != models.StatusSafe {
		c.JSON(http.StatusForbidden, AccessDeniedResponse)
		return
	}

	// The blob key is captured here; a concurrent finalization rename
	// does not invalidate the handle we open below
	blobKey := video.BlobKey
	size := store.GetSize(blobKey)
	if size < 0 {
		// Record points at a blob that is gone - a data-integrity
		// fault, not an ordinary user-facing miss
		log.Printf("stream: blob missing for video %d at %s", video.ID, blobKey)
		c.JSON(http.StatusNotFound, FileMissingResponse)
		return
	}
	reader, err := store.Open(blobKey)
	if err != nil {
		log.Printf("stream: cannot open blob for video %d at %s: %v", video.ID, blobKey, err)
		c.JSON(http.StatusNotFound, FileMissingResponse)
		return
	}
	defer reader.Close()

	c.Header("Accept-Ranges", "bytes")
	c.Header("Content-Type", video.MimeType)

	rangeHeader := c.GetHeader("Range")
	if rangeHeader == "" {
		c.Header("Content-Length", strconv.FormatInt(size, 10))
		c.Status(http.StatusOK)
		if _, err = io.Copy(c.Writer, reader); err != nil {
			// Client went away or the blob vanished mid-stream; the
			// handle is released by the deferred Close either way
			log.Printf("stream: transfer aborted for video %d: %v", video.ID, err)
		}
		return
	}

	start, end, valid := parseRange(rangeHeader, size)
	if !valid {
		c.JSON(http.StatusBadRequest, Response{"invalid range"})
		return
	}
	if start >= size {
		// Include the total size so the client can retry correctly
		c.Header("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
		c.JSON(http.StatusRequestedRangeNotSatisfiable, Response{"requested range not satisfiable"})
		return
	}
	if _, err = reader.Seek(start, io.SeekStart); err != nil {
		log.Printf("stream: cannot seek blob for video %d: %v", video.ID, err)
		c.JSON(http.StatusInternalServerError, Response{"internal server error"})
		return
	}

	chunkSize := end - start + 1
	c.Header("Content-Range", "bytes "+strconv.FormatInt(start, 10)+"-"+strconv.FormatInt(end, 10)+"/"+strconv.FormatInt(size, 10))
	c.Header("Content-Length", strconv.FormatInt(chunkSize, 10))
	c.Status(http.StatusPartialContent)
	if _, err = io.CopyN(c.Writer, reader, chunkSize); err != nil {
		log.Printf("stream: partial transfer aborted for video %d: %v", video.ID, err)
	}
}

// parseRange handles "bytes=<start>-[<end>]". The start offset is
// required; end defaults to (and is clamped to) size-1. Only the first
// range of a multi-range set is considered.
func parseRange(header string, size int64) (start, end int64, valid bool) {
	if !strings.HasPrefix(header, "bytes=") {
		return 0, 0, false
	}
	spec := strings.TrimPrefix(header, "bytes=")
	if i := strings.IndexByte(spec, ','); i >= 0 {
		spec = spec[:i]
	}
	parts := strings.SplitN(strings.TrimSpace(spec), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || start < 0 {
		return 0, 0, false
	}
	end = size - 1
	if parts[1] != "" {
		end, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil || end < start {
			return 0, 0, false
		}
		if end > size-1 {
			end = size - 1
		}
	}
	return start, end, true
}
