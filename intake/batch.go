package intake

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hyeonkim-dev/docintake/storage"
	"github.com/hyeonkim-dev/docintake/tool"
	"github.com/hyeonkim-dev/docintake/types"
)

var dataURLHeader = regexp.MustCompile(`^data:[a-z]+/[a-z0-9.+-]+;base64,`)

// BatchFileInput is one file in an HTTP batch upload. ImageData may carry a
// data-URL header, which is stripped before decoding.
type BatchFileInput struct {
	ImageName string `json:"imageName"`
	ImageData string `json:"imageData"`
}

// BatchResult is the per-file outcome of an HTTP batch job, including the
// extraction payload when the model call succeeded.
type BatchResult struct {
	Name    string          `json:"name"`
	URL     string          `json:"url,omitempty"`
	Key     string          `json:"key,omitempty"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ProgressBroker fans progress events out to HTTP subscribers (SSE). Each
// subscriber gets its own channel registered under a subscriber key (the
// authenticated user id), so concurrent jobs never leak into each other.
type ProgressBroker struct {
	mu   sync.RWMutex
	subs map[string]map[chan *types.ProgressEvent]struct{}
}

func NewProgressBroker() *ProgressBroker {
	return &ProgressBroker{
		subs: make(map[string]map[chan *types.ProgressEvent]struct{}),
	}
}

// Subscribe registers a listener for the key. The returned cancel func must
// be called when the subscriber goes away.
func (b *ProgressBroker) Subscribe(key string) (<-chan *types.ProgressEvent, func()) {
	ch := make(chan *types.ProgressEvent, 64)
	b.mu.Lock()
	if b.subs[key] == nil {
		b.subs[key] = make(map[chan *types.ProgressEvent]struct{})
	}
	b.subs[key][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if set, ok := b.subs[key]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(b.subs, key)
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of the key. Slow
// subscribers drop events instead of blocking the pipeline.
func (b *ProgressBroker) Publish(key string, event *types.ProgressEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs[key] {
		select {
		case ch <- event:
		default:
		}
	}
}

// RunBatch executes one HTTP batch upload with bounded concurrent fan-out,
// at most limits.UploadConcurrency files in flight. This is the one
// concurrency policy for batch work; the WebSocket path stays strictly
// sequential. Per-file failures are recorded in the result slice.
func (p *Pipeline) RunBatch(ctx context.Context, subscriberKey, username, jobID string, files []BatchFileInput, broker *ProgressBroker) []BatchResult {
	if jobID == "" {
		jobID = tool.GenerateRandomUUID()
	}
	total := len(files)
	results := make([]BatchResult, total)

	if err := p.jobs.Create(ctx, &types.Job{
		ID:        jobID,
		Username:  username,
		Status:    types.JobStatusUploading,
		FileCount: total,
		Results:   []types.UploadResult{},
	}); err != nil {
		tool.DefaultLogger.Errorf("[Batch] Failed to create job record %s: %v", jobID, err)
	}

	publish := func(event *types.ProgressEvent) {
		broker.Publish(subscriberKey, event)
	}

	started := types.NewProgressEvent(types.EventUploadStarted, jobID)
	started.Message = "File upload started"
	started.FileCount = types.IntPtr(total)
	publish(started)

	concurrency := p.limits.UploadConcurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, file := range files {
		g.Go(func() error {
			result := p.runBatchFile(gctx, jobID, username, file, i, total, publish)
			results[i] = result
			p.updateJobFile(gctx, jobID, types.UploadResult{
				FileName: result.Name,
				PdfURL:   result.URL,
				Key:      result.Key,
				Success:  result.Success,
				Error:    result.Error,
			})
			return nil
		})
	}
	// Workers only report per-file outcomes, never errors.
	_ = g.Wait()

	completed := types.NewProgressEvent(types.EventUploadCompleted, jobID)
	publish(completed)
	p.setJobStatus(ctx, jobID, types.JobStatusCompleted)
	return results
}

func (p *Pipeline) runBatchFile(ctx context.Context, jobID, username string, file BatchFileInput, index, total int, publish func(*types.ProgressEvent)) BatchResult {
	fail := func(err error) BatchResult {
		tool.DefaultLogger.Errorf("[Batch] Upload failed for %s: %v", file.ImageName, err)
		event := types.NewProgressEvent(types.EventFileUploadError, jobID)
		event.FileName = file.ImageName
		event.Status = types.StatusError
		event.Error = err.Error()
		event.Index = types.IntPtr(index)
		event.Total = types.IntPtr(total)
		publish(event)
		return BatchResult{Name: file.ImageName, Success: false, Error: err.Error()}
	}

	uploading := types.NewProgressEvent(types.EventUploadingFile, jobID)
	uploading.FileName = file.ImageName
	uploading.Status = types.StatusUploading
	uploading.Index = types.IntPtr(index)
	uploading.Total = types.IntPtr(total)
	publish(uploading)

	payload := dataURLHeader.ReplaceAllString(file.ImageData, "")
	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fail(fmt.Errorf("failed to decode file content: %w", err))
	}
	if p.limits.MaxFileBytes > 0 && int64(len(content)) > p.limits.MaxFileBytes {
		return fail(fmt.Errorf("file exceeds the %d byte limit", p.limits.MaxFileBytes))
	}

	key := storage.DeriveKey(username, file.ImageName)
	contentType := storage.InferContentType(file.ImageName, "")
	url, err := p.store.Put(ctx, key, content, contentType)
	if err != nil {
		return fail(err)
	}

	uploaded := types.NewProgressEvent(types.EventFileUploaded, jobID)
	uploaded.FileName = file.ImageName
	uploaded.Status = types.StatusUploaded
	uploaded.URL = url
	uploaded.Key = key
	uploaded.Index = types.IntPtr(index)
	uploaded.Total = types.IntPtr(total)
	publish(uploaded)

	result := BatchResult{Name: file.ImageName, URL: url, Key: key, Success: true}
	extraction, err := p.model.Extract(ctx, url)
	if err != nil {
		tool.DefaultLogger.Errorf("[Batch] Extraction failed for %s: %v", file.ImageName, err)
		event := types.NewProgressEvent(types.EventOpenAIProcessingError, jobID)
		event.FileName = file.ImageName
		event.Status = types.StatusError
		event.Error = err.Error()
		publish(event)
		result.Error = err.Error()
		return result
	}

	result.Data = extraction.Raw
	completed := types.NewProgressEvent(types.EventOpenAIProcessingCompleted, jobID)
	completed.FileName = file.ImageName
	completed.Status = types.StatusCompleted
	completed.Result = extraction.Raw
	completed.HasError = types.BoolPtr(extraction.HasError())
	completed.DocumentType = extraction.DocumentType
	publish(completed)
	return result
}
