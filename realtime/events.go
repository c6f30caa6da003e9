package realtime

import "videoserver/models"

const (
	EventTypeProgress  = "progress"
	EventTypeCompleted = "completed"
)

// ProgressEvent is emitted after each completed processing phase
type ProgressEvent struct {
	Type    string `json:"type"`
	VideoID uint64 `json:"assetId"`
	Percent int    `json:"percent"`
}

// CompletedEvent is always the last event of a processing run
type CompletedEvent struct {
	Type       string             `json:"type"`
	VideoID    uint64             `json:"assetId"`
	Status     models.VideoStatus `json:"status"`
	Confidence float64            `json:"confidence"`
}

func NewProgressEvent(videoID uint64, percent int) ProgressEvent {
	return ProgressEvent{Type: EventTypeProgress, VideoID: videoID, Percent: percent}
}

func NewCompletedEvent(videoID uint64, status models.VideoStatus, confidence float64) CompletedEvent {
	return CompletedEvent{Type: EventTypeCompleted, VideoID: videoID, Status: status, Confidence: confidence}
}
