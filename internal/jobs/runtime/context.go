package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PeeapDev/merchant-backend/internal/repos"
	"github.com/PeeapDev/merchant-backend/internal/services"
	"github.com/PeeapDev/merchant-backend/internal/types"
)

// Context is the execution handle for one claimed job run. Handlers
// report progress and terminate through it; they never write the
// job_run row directly.
type Context struct {
	Ctx     context.Context
	DB      *gorm.DB
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	Notify  services.JobNotifier
	payload map[string]any
}

func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo repos.JobRunRepo, notify services.JobNotifier) *Context {
	c := &Context{
		Ctx:    ctx,
		DB:     db,
		Job:    job,
		Repo:   repo,
		Notify: notify,
	}
	_ = c.decodePayload()
	return c
}

func (c *Context) decodePayload() error {
	if c.Job == nil || len(c.Job.Payload) == 0 {
		c.payload = map[string]any{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(c.Job.Payload, &m); err != nil {
		c.payload = map[string]any{}
		return err
	}
	c.payload = m
	return nil
}

// Payload never returns nil; a missing or unparseable payload reads as
// an empty map and handlers validate required fields themselves.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

func (c *Context) PayloadUUID(key string) (uuid.UUID, bool) {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(fmt.Sprint(v))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// Progress publishes a non-terminal update: stage, percent and message
// land on the row together with a heartbeat, and the merchant channel
// gets the event.
func (c *Context) Progress(stage string, pct int, msg string) {
	if c == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	now := time.Now().UTC()
	if err := c.Repo.UpdateFieldsUnlessStatus(c.Ctx, nil, c.Job.ID, map[string]interface{}{
		"stage":        stage,
		"progress":     pct,
		"message":      msg,
		"heartbeat_at": now,
		"updated_at":   now,
	}, []string{types.JobStatusCancelled}); err != nil {
		return
	}
	c.Job.Stage = stage
	c.Job.Progress = pct
	c.Job.Message = msg
	c.Job.HeartbeatAt = &now
	if c.Notify != nil {
		c.Notify.JobProgress(c.Job.MerchantID, c.Job, stage, pct, msg)
	}
}

// Fail terminally fails the run and releases the worker lock. A
// cancelled job is never overwritten.
func (c *Context) Fail(stage string, err error) {
	if c == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	now := time.Now().UTC()
	if uErr := c.Repo.UpdateFieldsUnlessStatus(c.Ctx, nil, c.Job.ID, map[string]interface{}{
		"status":        types.JobStatusFailed,
		"stage":         stage,
		"error":         msg,
		"last_error_at": now,
		"locked_at":     nil,
		"updated_at":    now,
	}, []string{types.JobStatusCancelled}); uErr != nil {
		return
	}
	c.Job.Status = types.JobStatusFailed
	c.Job.Stage = stage
	c.Job.Error = msg
	if c.Notify != nil {
		c.Notify.JobFailed(c.Job.MerchantID, c.Job, stage, msg)
	}
}

// Succeed completes the run, storing the result document.
func (c *Context) Succeed(result map[string]any) {
	if c == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	var doc datatypes.JSON
	if result != nil {
		if raw, err := json.Marshal(result); err == nil {
			doc = raw
		}
	}
	now := time.Now().UTC()
	if uErr := c.Repo.UpdateFieldsUnlessStatus(c.Ctx, nil, c.Job.ID, map[string]interface{}{
		"status":     types.JobStatusSucceeded,
		"progress":   100,
		"result":     doc,
		"error":      "",
		"locked_at":  nil,
		"updated_at": now,
	}, []string{types.JobStatusCancelled}); uErr != nil {
		return
	}
	c.Job.Status = types.JobStatusSucceeded
	c.Job.Progress = 100
	c.Job.Result = doc
	if c.Notify != nil {
		c.Notify.JobDone(c.Job.MerchantID, c.Job)
	}
}
