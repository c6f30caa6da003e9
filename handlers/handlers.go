package handlers

import (
	"videoserver/pipeline"
	"videoserver/realtime"
	"videoserver/storage"
)

type Response struct {
	Error string `json:"error"`
}

var (
	// Predefined errors
	OKResponse           = Response{}
	NotFoundResponse     = Response{"video not found"}
	FileMissingResponse  = Response{"file not found"}
	NotReadyResponse     = Response{"video not ready for streaming"}
	FlagRestrictedResp   = Response{"this video is flagged and restricted for your role"}
	AccessDeniedResponse = Response{"access denied"}
	DBErrorResponse      = Response{"DB error"}
)

var (
	hub   *realtime.Hub
	pipe  *pipeline.Pipeline
	store storage.API
)

// Init wires the shared services. Called once from main before any
// route is registered.
func Init(h *realtime.Hub, p *pipeline.Pipeline, s storage.API) {
	hub = h
	pipe = p
	store = s
}
