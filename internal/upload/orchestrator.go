package upload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	// MaxImages caps existing + new images for one listing.
	MaxImages int
	// Concurrency bounds parallel file processing. 1 reproduces the
	// strictly sequential behavior; up to 3 is allowed.
	Concurrency int
	// RejectBatchOnInvalid aborts the whole batch when any file fails
	// validation. When false, invalid files are skipped instead.
	RejectBatchOnInvalid bool
}

// Batch is one orchestrator run: a set of candidates plus the context they
// are uploaded in.
type Batch struct {
	Candidates     []Candidate
	UserID         string
	SessionToken   string
	ExistingImages int
	OnProgress     func(ProgressEvent)
}

// Orchestrator drives each file through validate → compress → remote upload
// with direct-storage fallback. Final URL order always matches input order,
// even when files are processed concurrently.
type Orchestrator struct {
	validator  *Validator
	compressor *Compressor
	remote     RemoteInvoker
	store      ObjectStore
	opts       Options
	logger     *zap.Logger
}

func NewOrchestrator(validator *Validator, compressor *Compressor, remote RemoteInvoker, store ObjectStore, opts Options, logger *zap.Logger) *Orchestrator {
	if opts.MaxImages <= 0 {
		opts.MaxImages = 5
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Concurrency > 3 {
		opts.Concurrency = 3
	}
	return &Orchestrator{
		validator:  validator,
		compressor: compressor,
		remote:     remote,
		store:      store,
		opts:       opts,
		logger:     logger,
	}
}

func (o *Orchestrator) Run(ctx context.Context, batch Batch) (*Result, error) {
	if batch.SessionToken == "" {
		return nil, ErrNotAuthenticated
	}
	if len(batch.Candidates) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}
	if batch.ExistingImages+len(batch.Candidates) > o.opts.MaxImages {
		return nil, &BatchLimitError{
			Max:       o.opts.MaxImages,
			Existing:  batch.ExistingImages,
			Requested: len(batch.Candidates),
		}
	}

	outcomes := make([]FileOutcome, len(batch.Candidates))

	// Validation runs over the whole batch before any network call.
	for i, cand := range batch.Candidates {
		batch.progress(i, cand.Filename, StateValidating)
		res := o.validator.Validate(cand)
		if !res.Accepted {
			if o.opts.RejectBatchOnInvalid {
				return nil, &ValidationError{Filename: cand.Filename, Reason: res.Reason}
			}
			outcomes[i] = FileOutcome{
				Filename: cand.Filename,
				Size:     cand.Size,
				State:    StateRejected,
				Stage:    "validate",
				Err:      &ValidationError{Filename: cand.Filename, Reason: res.Reason},
			}
			batch.progress(i, cand.Filename, StateRejected)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Concurrency)
	for i, cand := range batch.Candidates {
		if outcomes[i].State == StateRejected {
			continue
		}
		i, cand := i, cand
		g.Go(func() error {
			outcomes[i] = o.processFile(gctx, batch, i, cand)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Files: outcomes}
	for _, outcome := range outcomes {
		if outcome.State == StateUploaded {
			result.URLs = append(result.URLs, outcome.URL)
		}
	}
	return result, nil
}

func (o *Orchestrator) processFile(ctx context.Context, batch Batch, idx int, cand Candidate) FileOutcome {
	outcome := FileOutcome{Filename: cand.Filename, Size: cand.Size}

	if err := ctx.Err(); err != nil {
		outcome.State = StateUploadFailed
		outcome.Stage = "canceled"
		outcome.Err = err
		return outcome
	}

	batch.progress(idx, cand.Filename, StateCompressing)
	asset, err := o.compressor.Compress(ctx, cand)
	if err != nil {
		o.logger.Warn("compression failed",
			zap.String("filename", cand.Filename),
			zap.Error(err),
		)
		outcome.State = StateCompressFailed
		outcome.Stage = "compress"
		outcome.Err = err
		batch.progress(idx, cand.Filename, StateCompressFailed)
		return outcome
	}

	if err := ctx.Err(); err != nil {
		outcome.State = StateUploadFailed
		outcome.Stage = "canceled"
		outcome.Err = err
		return outcome
	}

	batch.progress(idx, cand.Filename, StateUploading)
	remoteOut, remoteErr := o.remote.Compress(ctx, asset, batch.UserID, batch.SessionToken)
	if remoteErr == nil {
		outcome.State = StateUploaded
		outcome.URL = remoteOut.URL
		batch.progress(idx, cand.Filename, StateUploaded)
		return outcome
	}

	// Remote failure is recovered via the fallback; it is logged, not
	// surfaced, unless the fallback fails too.
	o.logger.Warn("remote compression failed, falling back to direct upload",
		zap.String("filename", cand.Filename),
		zap.Error(remoteErr),
	)

	if err := ctx.Err(); err != nil {
		outcome.State = StateUploadFailed
		outcome.Stage = "canceled"
		outcome.Err = err
		return outcome
	}

	batch.progress(idx, cand.Filename, StateFallbackUploading)
	key := objectKey(batch.UserID, asset.ContentType)
	url, err := o.store.UploadObject(key, asset.Data, asset.ContentType)
	if err != nil {
		o.logger.Error("fallback upload failed",
			zap.String("filename", cand.Filename),
			zap.String("key", key),
			zap.Error(err),
		)
		outcome.State = StateUploadFailed
		outcome.Stage = "fallback"
		outcome.Err = &FallbackError{Filename: cand.Filename, Err: err}
		batch.progress(idx, cand.Filename, StateUploadFailed)
		return outcome
	}

	outcome.State = StateUploaded
	outcome.URL = url
	batch.progress(idx, cand.Filename, StateUploaded)
	return outcome
}

func (b Batch) progress(idx int, filename, state string) {
	if b.OnProgress != nil {
		b.OnProgress(ProgressEvent{Index: idx, Filename: filename, State: state})
	}
}

// objectKey builds a collision-resistant storage key:
// {userID}/{unixMillis}-{randomSuffix}.{ext}
func objectKey(userID, contentType string) string {
	ext := ".jpg"
	switch contentType {
	case "image/png":
		ext = ".png"
	case "image/webp":
		ext = ".webp"
	}
	suffix := strings.Split(uuid.New().String(), "-")[0]
	return fmt.Sprintf("%s/%d-%s%s", userID, time.Now().UnixMilli(), suffix, ext)
}
