package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"dossier-backend/internal/bootstrap"
	"dossier-backend/internal/queue"
	"dossier-backend/internal/sections"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{BodyLen: 0, BodySHA: ""}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrMissingSectionID indicates a job missing the section id.
type ErrMissingSectionID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingSectionID) Error() string { return "missing section id" }

// ErrProcess indicates rendering failed after successful parsing.
type ErrProcess struct {
	SectionID string
	RequestID string
	Err       error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process render job"
	}
	return "process render job: " + e.Err.Error()
}

// ParseJob validates and decodes the queue payload.
func ParseJob(body string) (queue.Job, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Job{}, meta, ErrEmptyBody{Meta: meta}
	}

	job, err := queue.DecodeJob([]byte(body))
	if err != nil {
		return queue.Job{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(job.SectionID) == "" {
		return job, meta, ErrMissingSectionID{Meta: meta, RequestID: job.RequestID}
	}
	return job, meta, nil
}

type parsedJobKey struct{}

// WithParsedJob stores a decoded job in the context for reuse.
func WithParsedJob(ctx context.Context, job queue.Job) context.Context {
	return context.WithValue(ctx, parsedJobKey{}, job)
}

func parsedJobFromContext(ctx context.Context) (queue.Job, bool) {
	if ctx == nil {
		return queue.Job{}, false
	}
	job, ok := ctx.Value(parsedJobKey{}).(queue.Job)
	return job, ok
}

// HandleJob parses, validates, and renders a queued section job.
func HandleJob(ctx context.Context, app *bootstrap.App, body string) error {
	if app == nil || app.SectionsService == nil {
		return errors.New("sections service not configured")
	}

	job, ok := parsedJobFromContext(ctx)
	if !ok {
		var err error
		job, _, err = ParseJob(body)
		if err != nil {
			return err
		}
	}

	if strings.TrimSpace(job.SectionID) == "" {
		return ErrMissingSectionID{Meta: ComputeMeta(body), RequestID: job.RequestID}
	}

	ctxWithRequest := sections.WithRequestID(ctx, job.RequestID)
	if err := app.SectionsService.ProcessRenderJob(ctxWithRequest, job); err != nil {
		return ErrProcess{SectionID: job.SectionID, RequestID: job.RequestID, Err: err}
	}
	return nil
}
