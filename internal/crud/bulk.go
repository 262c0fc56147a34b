package crud

import (
	"context"
	"log/slog"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/toast"
)

// Bulk operation names.
const (
	OpBulkDelete = "delete"
	OpBulkImport = "import"
)

// BulkObserver records the outcome of each bulk item.
type BulkObserver interface {
	ObserveBulk(operation, outcome string)
}

// BulkError is the failure of one item.
type BulkError struct {
	Index int
	ID    string
	Err   error
}

// BulkResult tallies a bulk run. Processed always equals the input length
// and Succeeded+Failed.
type BulkResult struct {
	Processed int
	Succeeded int
	Failed    int
	Errors    []BulkError
}

func (r *BulkResult) ok() {
	r.Processed++
	r.Succeeded++
}

func (r *BulkResult) fail(index int, id string, err error) {
	r.Processed++
	r.Failed++
	r.Errors = append(r.Errors, BulkError{Index: index, ID: id, Err: err})
}

// BulkDelete deletes ids one after another, then refetches once.
func (c *Controller) BulkDelete(ctx context.Context, ids []string, confirmed bool) (BulkResult, error) {
	if !c.Entity.Bulk || !c.Entity.Actions.Delete {
		return BulkResult{}, ErrNotAllowed
	}
	if c.Entity.ConfirmDelete && !confirmed {
		return BulkResult{}, ErrConfirmationRequired
	}

	var res BulkResult
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			c.abandon(&res, OpBulkDelete, i, ids, err)
			break
		}
		if err := c.client.Delete(ctx, backend.ItemPath(c.Entity.Endpoint, id), nil); err != nil {
			slog.Warn("bulk delete item failed", "entity", c.Entity.Name, "id", id, "error", err)
			res.fail(i, id, err)
			c.observe(OpBulkDelete, "failed")
			continue
		}
		res.ok()
		c.observe(OpBulkDelete, "succeeded")
	}

	c.finishBulk(ctx, OpBulkDelete, res)
	return res, nil
}

// BulkImport creates one record per form, one after another, then
// refetches once. Invalid forms fail without a request.
func (c *Controller) BulkImport(ctx context.Context, records []Form) (BulkResult, error) {
	if !c.Entity.Import {
		return BulkResult{}, ErrNotAllowed
	}

	var res BulkResult
	for i, form := range records {
		if err := ctx.Err(); err != nil {
			remaining := make([]string, len(records))
			c.abandon(&res, OpBulkImport, i, remaining, err)
			break
		}
		if errs := Validate(c.Entity, form, ModalCreate); len(errs) > 0 {
			res.fail(i, "", ErrInvalidForm)
			c.observe(OpBulkImport, "failed")
			continue
		}
		if err := c.client.Post(ctx, c.Entity.Endpoint, EncodeForm(c.Entity, form, ModalCreate), nil); err != nil {
			slog.Warn("bulk import row failed", "entity", c.Entity.Name, "row", i+1, "error", err)
			res.fail(i, "", err)
			c.observe(OpBulkImport, "failed")
			continue
		}
		res.ok()
		c.observe(OpBulkImport, "succeeded")
	}

	c.finishBulk(ctx, OpBulkImport, res)
	return res, nil
}

// abandon counts the items from index on as failed with err.
func (c *Controller) abandon(res *BulkResult, op string, index int, ids []string, err error) {
	for i := index; i < len(ids); i++ {
		res.fail(i, ids[i], err)
		c.observe(op, "failed")
	}
}

func (c *Controller) finishBulk(ctx context.Context, op string, res BulkResult) {
	slog.Info("bulk operation finished", "entity", c.Entity.Name, "operation", op,
		"processed", res.Processed, "succeeded", res.Succeeded, "failed", res.Failed)

	c.cache.Invalidate(c.scope, c.Entity.Endpoint)
	if ctx.Err() == nil {
		_ = c.Load(ctx)
	}

	msg := c.t("%d of %d items processed successfully", res.Succeeded, res.Processed)
	if res.Failed > 0 {
		c.notify(toast.Error, msg)
	} else {
		c.notify(toast.Success, msg)
	}
}

func (c *Controller) observe(op, outcome string) {
	if c.observer != nil {
		c.observer.ObserveBulk(op, outcome)
	}
}
