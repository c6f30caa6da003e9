package pipeline

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
	"videoserver/db"
	"videoserver/models"
	"videoserver/realtime"
	"videoserver/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedEvent struct {
	Type       string  `json:"type"`
	VideoID    uint64  `json:"assetId"`
	Percent    int     `json:"percent"`
	Status     string  `json:"status"`
	Confidence float64 `json:"confidence"`
}

type eventSink struct {
	mutex  sync.Mutex
	events []capturedEvent
}

func (s *eventSink) send(data []byte) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	var e capturedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return false
	}
	s.events = append(s.events, e)
	return true
}

func (s *eventSink) snapshot() []capturedEvent {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]capturedEvent{}, s.events...)
}

func setupPipeline(t *testing.T, phaseWait time.Duration) (*Pipeline, storage.API, *eventSink) {
	t.Helper()
	db.InitTest()
	models.Init()

	store := storage.NewDiskStorage(t.TempDir())
	hub := realtime.NewHub()
	sink := &eventSink{}
	hub.Add(1, realtime.NewSession(sink.send))

	policy := &KeywordSizePolicy{
		Keywords:       []string{"nsfw"},
		LargeFileBytes: 50 * 1024 * 1024,
		LongVideoBytes: 100 * 1024 * 1024,
	}
	return New(store, hub, policy, 2, phaseWait), store, sink
}

func createUploadedVideo(t *testing.T, store storage.API, name string, content string) models.Video {
	t.Helper()
	storedName := "stored-" + name
	blobKey := models.StagingBlobKey(storedName)
	_, err := store.Save(blobKey, strings.NewReader(content))
	require.NoError(t, err)

	video := models.Video{
		UserID:       1,
		Title:        "test",
		OriginalName: name,
		StoredName:   storedName,
		BlobKey:      blobKey,
		Size:         int64(len(content)),
		MimeType:     "video/mp4",
		Status:       models.StatusUploaded,
		Sensitivity:  models.SensitivityUnknown,
	}
	require.NoError(t, db.Instance.Create(&video).Error)
	return video
}

func waitForTerminal(t *testing.T, id uint64) models.Video {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		video, err := models.VideoByID(id)
		require.NoError(t, err)
		if video.Status != models.StatusUploaded && video.Status != models.StatusProcessing {
			return video
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("video never reached a terminal state")
	return models.Video{}
}

func TestSubmitExclusivity(t *testing.T) {
	pipe, store, _ := setupPipeline(t, time.Millisecond)
	video := createUploadedVideo(t, store, "clip.mp4", "0123456789")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			errs[slot] = pipe.Submit(video.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, models.ErrAlreadyProcessing)
		}
	}
	assert.Equal(t, 1, winners, "exactly one submitter must claim the video")

	waitForTerminal(t, video.ID)
}

func TestRunCompletesSafe(t *testing.T) {
	pipe, store, sink := setupPipeline(t, time.Millisecond)
	video := createUploadedVideo(t, store, "clip.mp4", "0123456789")

	require.NoError(t, pipe.Submit(video.ID))
	final := waitForTerminal(t, video.ID)

	assert.Equal(t, models.StatusSafe, final.Status)
	assert.Equal(t, models.SensitivitySafe, final.Sensitivity)
	require.NotNil(t, final.Confidence)
	assert.Equal(t, 0.95, *final.Confidence)

	// Blob relocated from staging to the permanent area
	assert.Equal(t, final.PermanentBlobKey(), final.BlobKey)
	assert.Equal(t, int64(10), store.GetSize(final.BlobKey))
	assert.Equal(t, int64(-1), store.GetSize(models.StagingBlobKey(video.StoredName)))

	// Give the last publish a moment to land
	time.Sleep(50 * time.Millisecond)
	events := sink.snapshot()
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	assert.Equal(t, realtime.EventTypeCompleted, last.Type, "completion must be the final event")
	assert.Equal(t, "SAFE", last.Status)
	assert.Equal(t, 0.95, last.Confidence)

	previous := 0
	sawFull := false
	for _, e := range events[:len(events)-1] {
		assert.Equal(t, realtime.EventTypeProgress, e.Type)
		assert.GreaterOrEqual(t, e.Percent, previous, "percent must be non-decreasing")
		previous = e.Percent
		if e.Percent == 100 {
			sawFull = true
		}
	}
	assert.True(t, sawFull, "progress must reach exactly 100 before completion")
}

func TestRunFlagsKeywordMatch(t *testing.T) {
	pipe, store, _ := setupPipeline(t, time.Millisecond)
	video := createUploadedVideo(t, store, "totally-nsfw.mp4", "0123456789")

	require.NoError(t, pipe.Submit(video.ID))
	final := waitForTerminal(t, video.ID)

	assert.Equal(t, models.StatusFlagged, final.Status)
	assert.Equal(t, models.SensitivityFlagged, final.Sensitivity)
	require.NotNil(t, final.Confidence)
	assert.Equal(t, 0.82, *final.Confidence)
}

func TestRunErrorsWhenBlobMissing(t *testing.T) {
	pipe, store, sink := setupPipeline(t, time.Millisecond)
	video := createUploadedVideo(t, store, "clip.mp4", "0123456789")
	require.NoError(t, store.Delete(video.BlobKey))

	require.NoError(t, pipe.Submit(video.ID))
	final := waitForTerminal(t, video.ID)

	assert.Equal(t, models.StatusError, final.Status)
	assert.Nil(t, final.Confidence, "failed runs must not record a confidence")

	time.Sleep(50 * time.Millisecond)
	for _, e := range sink.snapshot() {
		assert.NotEqual(t, realtime.EventTypeCompleted, e.Type, "failed runs emit no completion event")
	}
}

func TestCancellationBetweenPhases(t *testing.T) {
	pipe, store, sink := setupPipeline(t, 150*time.Millisecond)
	video := createUploadedVideo(t, store, "clip.mp4", "0123456789")

	require.NoError(t, pipe.Submit(video.ID))
	time.Sleep(30 * time.Millisecond) // let the run enter its first phase

	done := pipe.CancelRun(video.ID)
	require.NotNil(t, done, "run should be active")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop after cancellation")
	}

	assert.False(t, pipe.HasActiveRun(video.ID))

	// No finalization happened: the blob is still in staging and no
	// completion event was emitted
	final, err := models.VideoByID(video.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, final.Status)
	assert.Equal(t, models.StagingBlobKey(video.StoredName), final.BlobKey)
	assert.Equal(t, int64(10), store.GetSize(final.BlobKey))
	assert.Equal(t, int64(-1), store.GetSize(final.PermanentBlobKey()))

	for _, e := range sink.snapshot() {
		assert.NotEqual(t, realtime.EventTypeCompleted, e.Type, "cancelled runs emit no completion event")
	}
}

func TestCancelRunWithoutActiveRun(t *testing.T) {
	pipe, _, _ := setupPipeline(t, time.Millisecond)
	assert.Nil(t, pipe.CancelRun(12345))
}
