package models

import (
	"errors"
	"strconv"
	"videoserver/db"
)

type VideoStatus string

const (
	StatusUploaded   VideoStatus = "UPLOADED"
	StatusProcessing VideoStatus = "PROCESSING"
	StatusSafe       VideoStatus = "SAFE"
	StatusFlagged    VideoStatus = "FLAGGED"
	StatusError      VideoStatus = "ERROR"
)

type Sensitivity string

const (
	SensitivitySafe    Sensitivity = "SAFE"
	SensitivityFlagged Sensitivity = "FLAGGED"
	SensitivityUnknown Sensitivity = "UNKNOWN"
)

var (
	ErrAlreadyProcessing = errors.New("already processing")
	ErrConflict          = errors.New("conflicting update")
)

type Video struct {
	ID           uint64      `gorm:"primaryKey" json:"id"`
	UserID       uint64      `gorm:"index:user_video_created,priority:1;not null" json:"owner"`
	User         User        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CreatedAt    int64       `gorm:"index:user_video_created,priority:2" json:"created"`
	UpdatedAt    int64       `json:"updated"`
	Title        string      `gorm:"type:varchar(300)" json:"title"`
	Description  string      `gorm:"type:varchar(2000)" json:"description"`
	OriginalName string      `gorm:"type:varchar(300)" json:"original_name"`
	StoredName   string      `gorm:"type:varchar(300)" json:"-"`
	BlobKey      string      `gorm:"type:varchar(500)" json:"-"`
	Size         int64       `json:"size"`
	MimeType     string      `gorm:"type:varchar(50)" json:"mime_type"`
	Status       VideoStatus `gorm:"type:varchar(10);index" json:"status"`
	Sensitivity  Sensitivity `gorm:"type:varchar(10)" json:"sensitivity"`
	Confidence   *float64    `json:"confidence,omitempty"`
}

// Streamable states are terminal classification outcomes that still
// have a blob behind them
func (s VideoStatus) Streamable() bool {
	return s == StatusSafe || s == StatusFlagged
}

// StagingBlobKey is where the upload handler parks the raw bytes
// until processing relocates them
func StagingBlobKey(storedName string) string {
	return "staging/" + storedName
}

// PermanentBlobKey is the post-processing resting place
func (v *Video) PermanentBlobKey() string {
	return "media/" + strconv.FormatUint(v.UserID, 10) + "/" + v.StoredName
}

func VideoByID(id uint64) (v Video, err error) {
	err = db.Instance.First(&v, id).Error
	return
}

func VideoList() (result []Video, err error) {
	err = db.Instance.Order("created_at DESC").Find(&result).Error
	return
}

func VideoListByOwner(userID uint64) (result []Video, err error) {
	err = db.Instance.Where("user_id = ?", userID).Order("created_at DESC").Find(&result).Error
	return
}

// ClaimForProcessing performs the atomic UPLOADED -> PROCESSING transition.
// The conditional update guarantees at most one winner per video; losers
// get ErrAlreadyProcessing.
func (v *Video) ClaimForProcessing() error {
	result := db.Instance.Model(&Video{}).
		Where("id = ? AND status = ?", v.ID, StatusUploaded).
		Update("status", StatusProcessing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyProcessing
	}
	v.Status = StatusProcessing
	return nil
}

// FinalizeClassification persists the terminal outcome of a processing
// run in one update: status, sensitivity, confidence and the relocated
// blob key
func (v *Video) FinalizeClassification(status VideoStatus, confidence float64, blobKey string) error {
	result := db.Instance.Model(&Video{}).
		Where("id = ? AND status = ?", v.ID, StatusProcessing).
		Updates(map[string]interface{}{
			"status":      status,
			"sensitivity": Sensitivity(status),
			"confidence":  confidence,
			"blob_key":    blobKey,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	v.Status = status
	v.Sensitivity = Sensitivity(status)
	v.Confidence = &confidence
	v.BlobKey = blobKey
	return nil
}

// MarkError is the unrecoverable-failure terminal transition. No
// confidence is recorded for failed runs.
func (v *Video) MarkError() error {
	v.Status = StatusError
	return db.Instance.Model(&Video{}).Where("id = ?", v.ID).
		Updates(map[string]interface{}{"status": StatusError}).Error
}

// Moderate flips a terminal SAFE/FLAGGED video directly, bypassing
// re-classification. Flipping is only legal between the two streamable
// terminal states.
func (v *Video) Moderate(to VideoStatus) error {
	if to != StatusSafe && to != StatusFlagged {
		return ErrConflict
	}
	result := db.Instance.Model(&Video{}).
		Where("id = ? AND status IN ?", v.ID, []VideoStatus{StatusSafe, StatusFlagged}).
		Updates(map[string]interface{}{
			"status":      to,
			"sensitivity": Sensitivity(to),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	v.Status = to
	v.Sensitivity = Sensitivity(to)
	return nil
}

func (v *Video) UpdateDetails(title, description string) error {
	v.Title = title
	v.Description = description
	return db.Instance.Model(&Video{}).Where("id = ?", v.ID).
		Updates(map[string]interface{}{"title": title, "description": description}).Error
}

func (v *Video) Delete() error {
	return db.Instance.Delete(&Video{}, v.ID).Error
}
