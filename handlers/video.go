package handlers

import (
	"log"
	"net/http"
	"strconv"
	"videoserver/config"
	"videoserver/db"
	"videoserver/models"
	"videoserver/storage"
	"videoserver/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var acceptedVideoTypes = map[string]bool{
	"video/mp4":        true,
	"video/x-matroska": true,
	"video/mkv":        true,
	"video/avi":        true,
	"video/x-msvideo":  true,
	"video/webm":       true,
	"video/quicktime":  true,
}

func videoFromParam(c *gin.Context) (models.Video, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{"invalid video id"})
		return models.Video{}, false
	}
	video, err := models.VideoByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return models.Video{}, false
	}
	return video, true
}

// VideoUpload stores the raw bytes in the staging area, records the
// video as UPLOADED and hands it to the pipeline. The response never
// waits for the run to finish.
func VideoUpload(c *gin.Context, user *models.User) {
	title := c.PostForm("title")
	if title == "" {
		c.JSON(http.StatusBadRequest, Response{"title is required"})
		return
	}
	file, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{"video file is required"})
		return
	}
	if file.Size > config.MAX_UPLOAD_SIZE {
		c.JSON(http.StatusBadRequest, Response{"file too large"})
		return
	}
	if !acceptedVideoTypes[file.Header.Get("Content-Type")] {
		c.JSON(http.StatusUnsupportedMediaType, Response{"only video files are allowed"})
		return
	}

	originalName := utils.SanitizeFileName(file.Filename)
	storedName := uuid.NewString() + utils.FileExt(originalName)
	blobKey := models.StagingBlobKey(storedName)

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{"cannot read upload"})
		return
	}
	defer src.Close()
	size, err := store.Save(blobKey, src)
	if err != nil {
		log.Printf("upload: cannot save blob %s: %v", blobKey, err)
		c.JSON(http.StatusInternalServerError, Response{"cannot store file"})
		return
	}

	video := models.Video{
		UserID:       user.ID,
		Title:        title,
		Description:  c.PostForm("description"),
		OriginalName: originalName,
		StoredName:   storedName,
		BlobKey:      blobKey,
		Size:         size,
		MimeType:     file.Header.Get("Content-Type"),
		Status:       models.StatusUploaded,
		Sensitivity:  models.SensitivityUnknown,
	}
	if err = db.Instance.Create(&video).Error; err != nil {
		log.Printf("upload: cannot create record: %v", err)
		_ = store.Delete(blobKey)
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	if err = pipe.Submit(video.ID); err != nil {
		// Claim races are expected; anything else is logged and the
		// record stays UPLOADED for a manual retry
		if err != models.ErrAlreadyProcessing {
			log.Printf("upload: cannot submit video %d: %v", video.ID, err)
		}
	}
	c.JSON(http.StatusCreated, video)
}

func VideoList(c *gin.Context, user *models.User) {
	videos, err := models.VideoList()
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func VideoListMine(c *gin.Context, user *models.User) {
	videos, err := models.VideoListByOwner(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, videos)
}

func VideoUpdate(c *gin.Context, user *models.User) {
	video, ok := videoFromParam(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin && video.UserID != user.ID {
		c.JSON(http.StatusForbidden, AccessDeniedResponse)
		return
	}
	req := struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Title == "" {
		req.Title = video.Title
	}
	if req.Description == "" {
		req.Description = video.Description
	}
	if err := video.UpdateDetails(req.Title, req.Description); err != nil {
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, video)
}

func VideoFlag(c *gin.Context, user *models.User) {
	moderate(c, models.StatusFlagged)
}

func VideoUnflag(c *gin.Context, user *models.User) {
	moderate(c, models.StatusSafe)
}

// moderate flips between the two streamable terminal states directly,
// never re-entering the pipeline
func moderate(c *gin.Context, to models.VideoStatus) {
	video, ok := videoFromParam(c)
	if !ok {
		return
	}
	if err := video.Moderate(to); err != nil {
		c.JSON(http.StatusConflict, Response{"video is not in a moderatable state"})
		return
	}
	c.JSON(http.StatusOK, video)
}

func VideoDelete(c *gin.Context, user *models.User) {
	video, ok := videoFromParam(c)
	if !ok {
		return
	}
	if user.Role != models.RoleAdmin && video.UserID != user.ID {
		c.JSON(http.StatusForbidden, AccessDeniedResponse)
		return
	}
	// An active run is asked to stop and the blob is only removed once
	// it has - otherwise finalization could resurrect it elsewhere
	if done := pipe.CancelRun(video.ID); done != nil {
		<-done
	}
	// Re-read for the final blob location; the run may have finalized
	// before it saw the cancellation
	if current, err := models.VideoByID(video.ID); err == nil {
		video = current
	}
	if err := store.Delete(video.BlobKey); err != nil && err != storage.ErrNotFound {
		log.Printf("delete: cannot remove blob %s for video %d: %v", video.BlobKey, video.ID, err)
	}
	if err := video.Delete(); err != nil {
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, OKResponse)
}
