package intake

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/hyeonkim-dev/docintake/jobstore"
	"github.com/hyeonkim-dev/docintake/storage"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
	"github.com/hyeonkim-dev/docintake/vision"
)

// Pipeline runs upload and extraction jobs. Files within a job are handled
// in a strict sequential loop; per-file failures are recorded and never
// abort sibling files.
type Pipeline struct {
	store    storage.ObjectStore
	model    vision.Model
	jobs     jobstore.Store
	notifier Notifier
	limits   types.LimitsConfig
}

func NewPipeline(store storage.ObjectStore, model vision.Model, jobs jobstore.Store, notifier Notifier, limits types.LimitsConfig) *Pipeline {
	return &Pipeline{
		store:    store,
		model:    model,
		jobs:     jobs,
		notifier: notifier,
		limits:   limits,
	}
}

// notify pushes an event, logging and swallowing delivery failures.
func (p *Pipeline) notify(ctx context.Context, connectionID string, event *types.ProgressEvent) {
	if err := p.notifier.Send(ctx, connectionID, event); err != nil {
		tool.DefaultLogger.Errorf("[Pipeline] Failed to send %s event: %v", event.Type, err)
	}
}

// RunUpload handles an UPLOAD_FILE job: per file, decode the base64 payload,
// persist it to object storage, then run extraction on the uploaded
// artifact. Progress events are pushed after every state transition.
func (p *Pipeline) RunUpload(ctx context.Context, connectionID string, env *types.Envelope) []types.UploadResult {
	jobID := env.JobID
	if jobID == "" {
		jobID = tool.GenerateRandomUUID()
	}
	total := len(env.Files)

	if err := p.jobs.Create(ctx, &types.Job{
		ID:        jobID,
		Username:  env.Username,
		Status:    types.JobStatusUploading,
		FileCount: total,
		Results:   []types.UploadResult{},
	}); err != nil {
		tool.DefaultLogger.Errorf("[Pipeline] Failed to create job record %s: %v", jobID, err)
	}

	started := types.NewProgressEvent(types.EventUploadStarted, jobID)
	started.Message = "File upload started"
	started.FileCount = types.IntPtr(total)
	p.notify(ctx, connectionID, started)

	results := make([]types.UploadResult, 0, total)
	for i, file := range env.Files {
		// Client disconnect cancels the connection context; stop between
		// files instead of uploading into the void.
		if ctx.Err() != nil {
			tool.DefaultLogger.Warnf("[Pipeline] Job %s cancelled after %d/%d files", jobID, i, total)
			p.setJobStatus(ctx, jobID, types.JobStatusFailed)
			return results
		}

		uploading := types.NewProgressEvent(types.EventUploadingFile, jobID)
		uploading.FileName = file.FileName
		uploading.Status = types.StatusUploading
		uploading.Index = types.IntPtr(i)
		uploading.Total = types.IntPtr(total)
		p.notify(ctx, connectionID, uploading)

		result := p.uploadFile(ctx, connectionID, jobID, env.Username, file, i, total)
		results = append(results, result)
		p.updateJobFile(ctx, jobID, result)

		if result.Success {
			p.extractUploaded(ctx, connectionID, jobID, file.FileName, result.PdfURL)
		}
	}

	completed := types.NewProgressEvent(types.EventUploadCompleted, jobID)
	completed.Results = results
	p.notify(ctx, connectionID, completed)
	p.setJobStatus(ctx, jobID, types.JobStatusCompleted)
	return results
}

// uploadFile persists one file and reports the per-file outcome. All failure
// paths emit FILE_UPLOAD_ERROR and return a success:false result.
func (p *Pipeline) uploadFile(ctx context.Context, connectionID, jobID, username string, file types.FileInput, index, total int) types.UploadResult {
	fail := func(err error) types.UploadResult {
		tool.DefaultLogger.Errorf("[Pipeline] Upload failed for %s: %v", file.FileName, err)
		event := types.NewProgressEvent(types.EventFileUploadError, jobID)
		event.FileName = file.FileName
		event.Status = types.StatusError
		event.Error = err.Error()
		event.Index = types.IntPtr(index)
		event.Total = types.IntPtr(total)
		p.notify(ctx, connectionID, event)
		return types.UploadResult{FileName: file.FileName, Success: false, Error: err.Error()}
	}

	content, err := base64.StdEncoding.DecodeString(file.Base64Content)
	if err != nil {
		return fail(fmt.Errorf("failed to decode file content: %w", err))
	}
	if p.limits.MaxFileBytes > 0 && int64(len(content)) > p.limits.MaxFileBytes {
		return fail(fmt.Errorf("file exceeds the %d byte limit", p.limits.MaxFileBytes))
	}

	key := storage.DeriveKey(username, file.FileName)
	contentType := storage.InferContentType(file.FileName, file.ContentType)
	url, err := p.store.Put(ctx, key, content, contentType)
	if err != nil {
		return fail(err)
	}

	uploaded := types.NewProgressEvent(types.EventFileUploaded, jobID)
	uploaded.FileName = file.FileName
	uploaded.Status = types.StatusUploaded
	uploaded.URL = url
	uploaded.Key = key
	uploaded.Index = types.IntPtr(index)
	uploaded.Total = types.IntPtr(total)
	p.notify(ctx, connectionID, uploaded)

	return types.UploadResult{FileName: file.FileName, PdfURL: url, Key: key, Success: true}
}

// extractUploaded runs the vision model on one uploaded artifact. Attempted
// exactly once; an extraction failure does not flip the upload result.
func (p *Pipeline) extractUploaded(ctx context.Context, connectionID, jobID, fileName, url string) {
	result, err := p.model.Extract(ctx, url)
	if err != nil {
		tool.DefaultLogger.Errorf("[Pipeline] Extraction failed for %s: %v", fileName, err)
		event := types.NewProgressEvent(types.EventOpenAIProcessingError, jobID)
		event.FileName = fileName
		event.Status = types.StatusError
		event.Error = err.Error()
		p.notify(ctx, connectionID, event)
		return
	}

	if result.DocumentType != "" {
		progress := types.NewProgressEvent(types.EventOpenAIProcessingProgress, jobID)
		progress.FileName = fileName
		progress.Status = types.StatusProcessing
		progress.DocumentType = result.DocumentType
		p.notify(ctx, connectionID, progress)
	}

	completed := types.NewProgressEvent(types.EventOpenAIProcessingCompleted, jobID)
	completed.FileName = fileName
	completed.Status = types.StatusCompleted
	completed.Result = result.Raw
	completed.HasError = types.BoolPtr(result.HasError())
	completed.DocumentType = result.DocumentType
	p.notify(ctx, connectionID, completed)
}

// RunProcessing handles a START_PROCESSING job: the files are already in
// object storage, referenced by URL, and only extraction runs.
func (p *Pipeline) RunProcessing(ctx context.Context, connectionID string, env *types.StartProcessingEnvelope) []types.ProcessResult {
	jobID := env.JobID
	if jobID == "" {
		jobID = tool.GenerateRandomUUID()
	}
	total := len(env.Files)

	if err := p.jobs.Create(ctx, &types.Job{
		ID:        jobID,
		Status:    types.JobStatusProcessing,
		FileCount: total,
		Results:   []types.UploadResult{},
	}); err != nil {
		tool.DefaultLogger.Errorf("[Pipeline] Failed to create job record %s: %v", jobID, err)
	}

	started := types.NewProgressEvent(types.EventProcessingStarted, jobID)
	started.Message = "Document processing started"
	p.notify(ctx, connectionID, started)

	results := make([]types.ProcessResult, 0, total)
	for i, ref := range env.Files {
		if ctx.Err() != nil {
			tool.DefaultLogger.Warnf("[Pipeline] Job %s cancelled after %d/%d files", jobID, i, total)
			p.setJobStatus(ctx, jobID, types.JobStatusFailed)
			return results
		}

		processing := types.NewProgressEvent(types.EventProcessingFile, jobID)
		processing.FileName = ref.Name()
		processing.Status = types.StatusProcessing
		processing.Index = types.IntPtr(i)
		p.notify(ctx, connectionID, processing)

		result := p.processRef(ctx, connectionID, jobID, ref, i)
		results = append(results, result)
	}

	completed := types.NewProgressEvent(types.EventProcessingCompleted, jobID)
	completed.ProcResults = results
	p.notify(ctx, connectionID, completed)
	p.setJobStatus(ctx, jobID, types.JobStatusCompleted)
	return results
}

func (p *Pipeline) processRef(ctx context.Context, connectionID, jobID string, ref types.ProcessedFileRef, index int) types.ProcessResult {
	fail := func(err error) types.ProcessResult {
		tool.DefaultLogger.Errorf("[Pipeline] Processing failed for %s: %v", ref.Name(), err)
		event := types.NewProgressEvent(types.EventFileError, jobID)
		event.FileName = ref.Name()
		event.Status = types.StatusError
		event.Error = err.Error()
		event.Index = types.IntPtr(index)
		p.notify(ctx, connectionID, event)
		return types.ProcessResult{Name: ref.Name(), Error: err.Error()}
	}

	url := ref.FileURL()
	if url == "" {
		return fail(fmt.Errorf("no file URL provided"))
	}
	result, err := p.model.Extract(ctx, url)
	if err != nil {
		return fail(err)
	}

	processed := types.NewProgressEvent(types.EventFileProcessed, jobID)
	processed.FileName = ref.Name()
	processed.Status = types.StatusDone
	processed.Result = result.Raw
	processed.Index = types.IntPtr(index)
	p.notify(ctx, connectionID, processed)

	return types.ProcessResult{Name: ref.Name(), Data: result.Raw}
}

func (p *Pipeline) updateJobFile(ctx context.Context, jobID string, result types.UploadResult) {
	if err := p.jobs.UpdateFile(ctx, jobID, result); err != nil {
		tool.DefaultLogger.Errorf("[Pipeline] Failed to update job %s: %v", jobID, err)
	}
}

func (p *Pipeline) setJobStatus(ctx context.Context, jobID, status string) {
	if err := p.jobs.SetStatus(ctx, jobID, status); err != nil {
		tool.DefaultLogger.Errorf("[Pipeline] Failed to set job %s status: %v", jobID, err)
	}
}
