package crud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/toast"
)

var (
	// ErrConfirmationRequired is returned by deletes that need an explicit confirmation.
	ErrConfirmationRequired = errors.New("delete requires confirmation")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotAllowed is returned for actions the entity does not offer.
	ErrNotAllowed = errors.New("action not allowed")
	// ErrInvalidForm is returned when a submission fails validation.
	ErrInvalidForm = errors.New("form has invalid fields")
)

// Phase is the list lifecycle of a screen.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "list-loaded"
)

// Backend is the subset of the REST client a controller uses.
type Backend interface {
	Get(ctx context.Context, endpoint string, query url.Values, out any) error
	Post(ctx context.Context, endpoint string, body backend.Body, out any) error
	Patch(ctx context.Context, endpoint string, body backend.Body, out any) error
	Delete(ctx context.Context, endpoint string, out any) error
}

// Translator formats interface text for the viewer's locale.
type Translator func(key string, args ...any) string

// Options configures a Controller.
type Options struct {
	Cache *ListCache
	// Scope isolates cached lists, normally the session id.
	Scope     string
	Toasts    toast.Sink
	Translate Translator
	Locale    string
	// PageURL is where the modal closes to.
	PageURL  string
	Observer BulkObserver
}

// Controller drives one entity screen: fetch, open the modal, submit,
// delete, and refetch after every mutation. It is used for a single
// request and is not safe for concurrent use.
type Controller struct {
	Entity *Entity
	Phase  Phase
	Items  []ListItem
	Err    error
	Modal  Modal
	// Query is sent with list fetches; a non-empty query bypasses the cache.
	Query url.Values

	client   Backend
	cache    *ListCache
	scope    string
	toasts   toast.Sink
	t        Translator
	locale   string
	pageURL  string
	observer BulkObserver
}

// NewController creates an idle controller for e.
func NewController(e *Entity, client Backend, opts Options) *Controller {
	t := opts.Translate
	if t == nil {
		t = fmt.Sprintf
	}
	locale := opts.Locale
	if locale == "" {
		locale = "en"
	}
	return &Controller{
		Entity:   e,
		Phase:    PhaseIdle,
		client:   client,
		cache:    opts.Cache,
		scope:    opts.Scope,
		toasts:   opts.Toasts,
		t:        t,
		locale:   locale,
		pageURL:  opts.PageURL,
		observer: opts.Observer,
	}
}

// Load fetches the list. A failure leaves the list empty, sets Err and
// raises an error toast.
func (c *Controller) Load(ctx context.Context) error {
	c.Phase = PhaseLoading
	cacheable := len(c.Query) == 0
	if cacheable {
		if items, ok := c.cache.Get(c.scope, c.locale, c.Entity.Endpoint); ok {
			c.Items, c.Err, c.Phase = items, nil, PhaseLoaded
			return nil
		}
	}

	var items []ListItem
	err := c.client.Get(ctx, c.Entity.Endpoint, c.Query, &items)
	c.Phase = PhaseLoaded
	if err != nil {
		c.Items, c.Err = nil, err
		slog.Error("failed to load list", "entity", c.Entity.Name, "error", err)
		c.notify(toast.Error, c.errorMessage(err))
		return err
	}

	if items == nil {
		items = []ListItem{}
	}
	c.Items, c.Err = items, nil
	if cacheable {
		c.cache.Put(c.scope, c.locale, c.Entity.Endpoint, items)
	}
	return nil
}

// Refresh drops the cached list and fetches it again.
func (c *Controller) Refresh(ctx context.Context) error {
	c.cache.Invalidate(c.scope, c.Entity.Endpoint)
	return c.Load(ctx)
}

// Find returns a record of the loaded list.
func (c *Controller) Find(id string) (ListItem, bool) {
	for _, it := range c.Items {
		if it.ID() == id {
			return it, true
		}
	}
	return nil, false
}

// Item returns a record from the loaded list, fetching it when absent.
func (c *Controller) Item(ctx context.Context, id string) (ListItem, error) {
	if it, ok := c.Find(id); ok {
		return it, nil
	}
	var it ListItem
	if err := c.client.Get(ctx, backend.ItemPath(c.Entity.Endpoint, id), nil, &it); err != nil {
		if backend.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, c.Entity.Name, id)
		}
		return nil, err
	}
	if it == nil {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, c.Entity.Name, id)
	}
	return it, nil
}

// OpenCreate opens an empty create modal.
func (c *Controller) OpenCreate() error {
	if !c.Entity.Actions.Create {
		return ErrNotAllowed
	}
	c.Modal = c.modal(ModalCreate, "", NewForm())
	return nil
}

// OpenEdit opens the edit modal populated from the record.
func (c *Controller) OpenEdit(ctx context.Context, id string) error {
	if !c.Entity.Actions.Edit {
		return ErrNotAllowed
	}
	it, err := c.Item(ctx, id)
	if err != nil {
		return err
	}
	c.Modal = c.modal(ModalEdit, id, FormFromItem(c.Entity, it))
	return nil
}

// OpenView opens a read-only modal for the record.
func (c *Controller) OpenView(ctx context.Context, id string) error {
	if !c.Entity.Actions.View && !c.Entity.Actions.QuickView {
		return ErrNotAllowed
	}
	it, err := c.Item(ctx, id)
	if err != nil {
		return err
	}
	c.Modal = c.modal(ModalView, id, FormFromItem(c.Entity, it))
	return nil
}

// OpenDelete opens the delete confirmation for the record.
func (c *Controller) OpenDelete(ctx context.Context, id string) error {
	if !c.Entity.Actions.Delete {
		return ErrNotAllowed
	}
	if _, err := c.Item(ctx, id); err != nil {
		return err
	}
	c.Modal = c.modal(ModalConfirmDelete, id, NewForm())
	return nil
}

// Resume reopens the modal in mode with previously submitted values, used
// when a page is rendered again after a failed submission.
func (c *Controller) Resume(mode ModalMode, id string, form Form, errs FieldErrors) {
	c.Modal = c.modal(mode, id, form)
	c.Modal.Errors = errs
}

// Close closes the modal and clears its form.
func (c *Controller) Close() {
	c.Modal = Modal{CloseURL: c.pageURL}
}

// Submit sends the open create or edit form. On success the list is
// refetched and the modal closed. On failure the modal stays open in the
// same mode with the submitted values.
func (c *Controller) Submit(ctx context.Context, form Form) error {
	mode := c.Modal.Mode
	if mode != ModalCreate && mode != ModalEdit {
		return ErrNotAllowed
	}
	c.Modal.Form = form
	c.Modal.Errors = nil

	if errs := Validate(c.Entity, form, mode); len(errs) > 0 {
		c.Modal.Errors = errs
		c.notify(toast.Error, c.t("Please correct the highlighted fields"))
		return ErrInvalidForm
	}

	body := EncodeForm(c.Entity, form, mode)
	var err error
	if mode == ModalCreate {
		err = c.client.Post(ctx, c.Entity.Endpoint, body, nil)
	} else {
		err = c.client.Patch(ctx, backend.ItemPath(c.Entity.Endpoint, c.Modal.ItemID), body, nil)
	}
	if err != nil {
		slog.Error("failed to save record", "entity", c.Entity.Name, "mode", string(mode), "id", c.Modal.ItemID, "error", err)
		c.notify(toast.Error, c.errorMessage(err))
		return err
	}

	slog.Info("record saved", "entity", c.Entity.Name, "mode", string(mode), "id", c.Modal.ItemID)
	_ = c.Refresh(ctx)
	c.Close()
	if mode == ModalCreate {
		c.notify(toast.Success, c.t("Created successfully"))
	} else {
		c.notify(toast.Success, c.t("Updated successfully"))
	}
	return nil
}

// Delete removes a record on the server and refetches the list. Entities
// with ConfirmDelete refuse unconfirmed deletes without calling the server.
func (c *Controller) Delete(ctx context.Context, id string, confirmed bool) error {
	if !c.Entity.Actions.Delete {
		return ErrNotAllowed
	}
	if c.Entity.ConfirmDelete && !confirmed {
		c.Modal = c.modal(ModalConfirmDelete, id, NewForm())
		return ErrConfirmationRequired
	}

	if err := c.client.Delete(ctx, backend.ItemPath(c.Entity.Endpoint, id), nil); err != nil {
		slog.Error("failed to delete record", "entity", c.Entity.Name, "id", id, "error", err)
		c.notify(toast.Error, c.errorMessage(err))
		return err
	}

	slog.Info("record deleted", "entity", c.Entity.Name, "id", id)
	_ = c.Refresh(ctx)
	c.Close()
	c.notify(toast.Success, c.t("Deleted successfully"))
	return nil
}

// LoadOptions fills select choices that come from other endpoints.
func (c *Controller) LoadOptions(ctx context.Context) {
	for _, field := range c.Entity.Fields {
		if field.Kind != KindSelect || field.OptionsFrom == "" {
			continue
		}
		items, ok := c.cache.Get(c.scope, c.locale, field.OptionsFrom)
		if !ok {
			if err := c.client.Get(ctx, field.OptionsFrom, nil, &items); err != nil {
				slog.Warn("failed to load select options", "entity", c.Entity.Name, "field", field.Name, "error", err)
				continue
			}
			c.cache.Put(c.scope, c.locale, field.OptionsFrom, items)
		}
		opts := make([]Option, 0, len(items))
		for _, it := range items {
			opts = append(opts, Option{Value: it.ID(), Label: it.Label(c.locale)})
		}
		if c.Modal.Options == nil {
			c.Modal.Options = map[string][]Option{}
		}
		c.Modal.Options[field.Name] = opts
	}
}

// Table renders the loaded list.
func (c *Controller) Table() Table {
	return BuildTable(c.Entity, c.Items, c.locale)
}

func (c *Controller) modal(mode ModalMode, id string, form Form) Modal {
	title := c.t(c.Entity.Title)
	switch mode {
	case ModalCreate:
		title = c.t("Create %s", title)
	case ModalEdit:
		title = c.t("Edit %s", title)
	case ModalView:
		title = c.t("View %s", title)
	case ModalConfirmDelete:
		title = c.t("Delete %s", title)
	}
	return Modal{
		Mode:     mode,
		Title:    title,
		ItemID:   id,
		CloseURL: c.pageURL,
		Fields:   c.Entity.FieldsFor(mode),
		Form:     form,
		Options:  c.Modal.Options,
	}
}

func (c *Controller) notify(kind toast.Kind, message string) {
	if c.toasts != nil {
		c.toasts.Push(kind, message)
	}
}

// errorMessage is the server's message when it sent one.
func (c *Controller) errorMessage(err error) string {
	if msg := backend.Message(err); msg != "" {
		return msg
	}
	return c.t("Something went wrong")
}
