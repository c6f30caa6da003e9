// Package pipeline moves uploaded videos through classification.
// Each video gets at most one active run: the UPLOADED -> PROCESSING
// transition is a conditional database update with a single winner.
package pipeline

import (
	"log"
	"strconv"
	"time"
	"videoserver/models"
	"videoserver/realtime"
	"videoserver/storage"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// phases each contribute an equal share of 100%
var phases = []string{"Analyzing", "Checking", "Reporting"}

const (
	submitQueueSize = 256
	moveAttempts    = 3
)

type run struct {
	videoID uint64
	cancel  chan struct{}
	done    chan struct{}
}

type Pipeline struct {
	store     storage.API
	hub       *realtime.Hub
	policy    Policy
	phaseWait time.Duration
	runs      cmap.ConcurrentMap[string, *run]
	jobs      chan *run
}

func New(store storage.API, hub *realtime.Hub, policy Policy, workers int, phaseWait time.Duration) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	p := &Pipeline{
		store:     store,
		hub:       hub,
		policy:    policy,
		phaseWait: phaseWait,
		runs:      cmap.New[*run](),
		jobs:      make(chan *run, submitQueueSize),
	}
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func runKey(videoID uint64) string {
	return strconv.FormatUint(videoID, 10)
}

// Submit claims the video for processing and queues the run. The claim
// itself happens synchronously so concurrent submitters race on the
// database row; exactly one wins, the rest get ErrAlreadyProcessing.
func (p *Pipeline) Submit(videoID uint64) error {
	video := models.Video{ID: videoID}
	if err := video.ClaimForProcessing(); err != nil {
		return err
	}
	r := &run{
		videoID: videoID,
		cancel:  make(chan struct{}),
		done:    make(chan struct{}),
	}
	p.runs.Set(runKey(videoID), r)
	p.jobs <- r
	return nil
}

// CancelRun requests cancellation of an active run. The returned channel
// closes once the run has observably stopped; nil means no run is active.
func (p *Pipeline) CancelRun(videoID uint64) <-chan struct{} {
	r, ok := p.runs.Get(runKey(videoID))
	if !ok {
		return nil
	}
	select {
	case <-r.cancel:
	default:
		close(r.cancel)
	}
	return r.done
}

// HasActiveRun is used by tests and the delete handler
func (p *Pipeline) HasActiveRun(videoID uint64) bool {
	return p.runs.Has(runKey(videoID))
}

func (p *Pipeline) worker() {
	for r := range p.jobs {
		p.process(r)
	}
}

func (p *Pipeline) cancelled(r *run) bool {
	select {
	case <-r.cancel:
		return true
	default:
		return false
	}
}

func (p *Pipeline) process(r *run) {
	defer close(r.done)
	defer p.runs.Remove(runKey(r.videoID))

	video, err := models.VideoByID(r.videoID)
	if err != nil {
		log.Printf("pipeline: cannot load video %d: %v", r.videoID, err)
		return
	}

	// Ordered phase waits. Cancellation is checked between phases -
	// an abandoned run emits no further events and never finalizes.
	for i := range phases {
		select {
		case <-r.cancel:
			log.Printf("pipeline: run for video %d cancelled during %s", video.ID, phases[i])
			return
		case <-time.After(p.phaseWait):
		}
		percent := (i + 1) * 100 / len(phases)
		p.hub.Publish(video.UserID, realtime.NewProgressEvent(video.ID, percent))
	}

	verdict := p.policy.Classify(video.OriginalName, video.Size)

	// Last checkpoint before the irreversible part
	if p.cancelled(r) {
		log.Printf("pipeline: run for video %d cancelled before finalization", video.ID)
		return
	}

	permanentKey := video.PermanentBlobKey()
	if err := p.moveBlob(video.BlobKey, permanentKey); err != nil {
		log.Printf("pipeline: cannot relocate blob for video %d (%s -> %s): %v",
			video.ID, video.BlobKey, permanentKey, err)
		p.markError(&video)
		return
	}
	if err := video.FinalizeClassification(verdict.Status, verdict.Confidence, permanentKey); err != nil {
		// The record changed under us (e.g. deleted mid-run). Put the
		// blob back so the deletion path finds it at the recorded key.
		log.Printf("pipeline: cannot finalize video %d: %v", video.ID, err)
		if moveErr := p.moveBlob(permanentKey, video.BlobKey); moveErr != nil {
			log.Printf("pipeline: cannot restore blob for video %d: %v", video.ID, moveErr)
		}
		return
	}
	p.hub.Publish(video.UserID, realtime.NewCompletedEvent(video.ID, verdict.Status, verdict.Confidence))
}

// moveBlob retries the relocation a few times - blob stores hiccup
func (p *Pipeline) moveBlob(from, to string) (err error) {
	backoff := 100 * time.Millisecond
	for attempt := 0; attempt < moveAttempts; attempt++ {
		if err = p.store.Move(from, to); err == nil || err == storage.ErrNotFound {
			return err
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	return err
}

func (p *Pipeline) markError(video *models.Video) {
	if err := video.MarkError(); err != nil {
		log.Printf("pipeline: cannot mark video %d as errored: %v", video.ID, err)
	}
	// No completion event for failed runs - clients learn the ERROR
	// state through the ordinary query path
}
