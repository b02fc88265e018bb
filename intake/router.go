package intake

import (
	"context"
	"errors"

	"github.com/bytedance/sonic"

	"github.com/hyeonkim-dev/docintake/jobstore"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
)

// Router dispatches one inbound WebSocket message to its handler based on
// the type discriminator. Malformed JSON and unknown types are reported back
// as ERROR events without closing the connection.
type Router struct {
	pipeline *Pipeline
	jobs     jobstore.Store
	notifier Notifier
}

func NewRouter(pipeline *Pipeline, jobs jobstore.Store, notifier Notifier) *Router {
	return &Router{
		pipeline: pipeline,
		jobs:     jobs,
		notifier: notifier,
	}
}

// HandleMessage runs one inbound message to completion. Any panic escaping a
// handler is reported as a generic internal error and force-closes the
// connection, mirroring the top-level catch of the message path.
func (r *Router) HandleMessage(ctx context.Context, connectionID string, raw []byte) {
	defer func() {
		if rec := recover(); rec != nil {
			tool.DefaultLogger.Errorf("[Router] Panic handling message from %s: %v", connectionID, rec)
			r.sendError(ctx, connectionID, "Internal server error")
			if err := r.notifier.Close(connectionID); err != nil {
				tool.DefaultLogger.Errorf("[Router] Failed to close connection %s: %v", connectionID, err)
			}
		}
	}()

	var env types.Envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		tool.DefaultLogger.Errorf("[Router] Invalid message from %s: %v", connectionID, err)
		r.sendError(ctx, connectionID, "Invalid message format")
		return
	}

	switch env.Type {
	case types.MessageUploadFile:
		tool.DefaultLogger.Infof("[Router] UPLOAD_FILE job %s from %s (%d files)", env.JobID, connectionID, len(env.Files))
		r.pipeline.RunUpload(ctx, connectionID, &env)

	case types.MessageStartProcessing:
		var procEnv types.StartProcessingEnvelope
		if err := sonic.Unmarshal(raw, &procEnv); err != nil {
			r.sendError(ctx, connectionID, "Invalid message format")
			return
		}
		tool.DefaultLogger.Infof("[Router] START_PROCESSING job %s from %s (%d files)", procEnv.JobID, connectionID, len(procEnv.Files))
		r.pipeline.RunProcessing(ctx, connectionID, &procEnv)
		// Single-shot processing jobs terminate the channel once done.
		if err := r.notifier.Close(connectionID); err != nil {
			tool.DefaultLogger.Errorf("[Router] Failed to close connection %s: %v", connectionID, err)
		}

	case types.MessagePing:
		pong := types.NewProgressEvent(types.EventPong, env.JobID)
		pong.Message = "pong!"
		r.send(ctx, connectionID, pong)

	case types.MessageGetStatus:
		r.handleGetStatus(ctx, connectionID, env.JobID)

	default:
		tool.DefaultLogger.Warnf("[Router] Unknown message type %q from %s", env.Type, connectionID)
		r.sendError(ctx, connectionID, "Unknown message type")
	}
}

func (r *Router) handleGetStatus(ctx context.Context, connectionID, jobID string) {
	job, err := r.jobs.Get(ctx, jobID)
	if errors.Is(err, jobstore.ErrJobNotFound) {
		r.sendError(ctx, connectionID, "Unknown job: "+jobID)
		return
	}
	if err != nil {
		tool.DefaultLogger.Errorf("[Router] Failed to load job %s: %v", jobID, err)
		r.sendError(ctx, connectionID, "Failed to load job status")
		return
	}
	update := types.NewProgressEvent(types.EventStatusUpdate, jobID)
	update.Status = job.Status
	update.Results = job.Results
	r.send(ctx, connectionID, update)
}

func (r *Router) send(ctx context.Context, connectionID string, event *types.ProgressEvent) {
	if err := r.notifier.Send(ctx, connectionID, event); err != nil {
		tool.DefaultLogger.Errorf("[Router] Failed to send %s event: %v", event.Type, err)
	}
}

func (r *Router) sendError(ctx context.Context, connectionID, message string) {
	event := types.NewProgressEvent(types.EventError, "")
	event.Message = message
	r.send(ctx, connectionID, event)
}
