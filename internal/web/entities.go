package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/crud"
	"github.com/proplex/proplex-admin/internal/session"
	"github.com/proplex/proplex-admin/internal/toast"
)

type entityPage struct {
	PageData
	Entity    *crud.Entity
	EntityURL string
	Table     crud.Table
	Headers   []string
	Empty     string
	Modal     crud.Modal
	Inputs    []Input
	Multipart bool
	Query     string
	// BulkIDs awaits confirmation of a bulk delete.
	BulkIDs []string
	LoadErr bool
}

// entity resolves the {entity} segment and enforces module access.
func (s *Server) entity(w http.ResponseWriter, r *http.Request) (*crud.Entity, bool) {
	e, err := s.Registry.Get(r.PathValue("entity"))
	if err != nil {
		s.notFound(w, r)
		return nil, false
	}
	if !session.FromContext(r.Context()).HasModule(e.Module) {
		slog.Warn("module access denied", "entity", e.Name, "session", session.IDFromContext(r.Context()))
		s.forbidden(w, r)
		return nil, false
	}
	return e, true
}

// controller returns a request-scoped controller for e.
func (s *Server) controller(r *http.Request, e *crud.Entity) *crud.Controller {
	locale := localeOf(r)
	id := session.IDFromContext(r.Context())
	return crud.NewController(e, s.Backend, crud.Options{
		Cache:     s.Cache,
		Scope:     id,
		Toasts:    s.Toasts.For(id),
		Translate: s.I18n.Translator(locale),
		Locale:    locale,
		PageURL:   entityURL(locale, e),
		Observer:  s.Bulk,
	})
}

func (s *Server) renderEntity(w http.ResponseWriter, r *http.Request, status int, ctrl *crud.Controller, bulkIDs []string) {
	e := ctrl.Entity
	tr := s.I18n.Translator(localeOf(r))
	data := s.pageData(w, r, e.Title)

	table := ctrl.Table()
	headers := make([]string, len(table.Headers))
	for i, h := range table.Headers {
		headers[i] = tr(h)
	}
	empty := table.EmptyMessage
	if empty == "" {
		empty = "No records found"
	}

	s.Templates.RenderStatus(w, status, "entity.html", &entityPage{
		PageData:  data,
		Entity:    e,
		EntityURL: entityURL(data.Locale, e),
		Table:     table,
		Headers:   headers,
		Empty:     tr(empty),
		Modal:     ctrl.Modal,
		Inputs:    inputs(ctrl.Modal, tr),
		Multipart: e.Multipart(),
		Query:     r.URL.Query().Get("q"),
		BulkIDs:   bulkIDs,
		LoadErr:   ctrl.Err != nil,
	})
}

// EntityPage handles GET /{locale}/{entity}. The modal query parameter
// (create, edit, view, delete) with id opens the modal.
func (s *Server) EntityPage(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entity(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	ctrl := s.controller(r, e)

	q := r.URL.Query()
	if search := q.Get("q"); search != "" {
		ctrl.Query = url.Values{"search": {search}}
	}
	if err := ctrl.Load(ctx); s.sessionLost(w, r, err) {
		return
	}

	mode := crud.ParseModalMode(q.Get("modal"))
	id := q.Get("id")
	var err error
	switch mode {
	case crud.ModalCreate:
		err = ctrl.OpenCreate()
	case crud.ModalEdit:
		err = ctrl.OpenEdit(ctx, id)
	case crud.ModalView:
		err = ctrl.OpenView(ctx, id)
	case crud.ModalConfirmDelete:
		err = ctrl.OpenDelete(ctx, id)
	}
	if err != nil {
		if s.sessionLost(w, r, err) {
			return
		}
		s.modalFailed(w, r, e, err)
		ctrl.Close()
	}
	switch ctrl.Modal.Mode {
	case crud.ModalCreate, crud.ModalEdit, crud.ModalView:
		ctrl.LoadOptions(ctx)
	}

	s.renderEntity(w, r, http.StatusOK, ctrl, nil)
}

func (s *Server) modalFailed(w http.ResponseWriter, r *http.Request, e *crud.Entity, err error) {
	switch {
	case errors.Is(err, crud.ErrNotFound):
		s.notify(w, r, toast.Error, "Record not found")
	case errors.Is(err, crud.ErrNotAllowed):
	default:
		slog.Error("failed to open record", "entity", e.Name, "error", err)
		if msg := backend.Message(err); msg != "" {
			s.Toasts.Push(s.toastKey(w, r), toast.Error, msg)
			return
		}
		s.notify(w, r, toast.Error, "Something went wrong")
	}
}

// EntityCreateSubmit handles POST /{locale}/{entity}.
func (s *Server) EntityCreateSubmit(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entity(w, r)
	if !ok {
		return
	}
	ctrl := s.controller(r, e)
	if err := ctrl.OpenCreate(); err != nil {
		s.forbidden(w, r)
		return
	}
	s.submit(w, r, ctrl)
}

// EntityUpdateSubmit handles POST /{locale}/{entity}/{id}.
func (s *Server) EntityUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entity(w, r)
	if !ok {
		return
	}
	ctrl := s.controller(r, e)
	if err := ctrl.OpenEdit(r.Context(), r.PathValue("id")); err != nil {
		if s.sessionLost(w, r, err) {
			return
		}
		if errors.Is(err, crud.ErrNotAllowed) {
			s.forbidden(w, r)
			return
		}
		s.modalFailed(w, r, e, err)
		http.Redirect(w, r, entityURL(localeOf(r), e), http.StatusSeeOther)
		return
	}
	s.submit(w, r, ctrl)
}

// submit sends the open modal's form. Success redirects to the list;
// failure renders the list again with the modal open and the values kept.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, ctrl *crud.Controller) {
	ctx := r.Context()
	form, err := s.parseForm(r, ctrl.Entity)
	if err != nil {
		slog.Warn("rejected form", "entity", ctrl.Entity.Name, "error", err)
		s.notify(w, r, toast.Error, uploadMessage(err))
		ctrl.Resume(ctrl.Modal.Mode, ctrl.Modal.ItemID, form, nil)
	} else if err = ctrl.Submit(ctx, form); err == nil {
		http.Redirect(w, r, entityURL(localeOf(r), ctrl.Entity), http.StatusSeeOther)
		return
	}
	if s.sessionLost(w, r, err) {
		return
	}

	mode, id, kept, errs := ctrl.Modal.Mode, ctrl.Modal.ItemID, ctrl.Modal.Form, ctrl.Modal.Errors
	if err := ctrl.Load(ctx); s.sessionLost(w, r, err) {
		return
	}
	ctrl.Resume(mode, id, kept, errs)
	ctrl.LoadOptions(ctx)
	s.renderEntity(w, r, http.StatusUnprocessableEntity, ctrl, nil)
}

// EntityDeleteSubmit handles POST /{locale}/{entity}/{id}/delete. Entities
// that confirm deletes need confirm=1, otherwise the confirmation opens.
func (s *Server) EntityDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entity(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	pageURL := entityURL(localeOf(r), e)

	err := s.controller(r, e).Delete(r.Context(), id, r.FormValue("confirm") == "1")
	switch {
	case errors.Is(err, crud.ErrConfirmationRequired):
		http.Redirect(w, r, pageURL+"?modal=delete&id="+url.QueryEscape(id), http.StatusSeeOther)
		return
	case errors.Is(err, crud.ErrNotAllowed):
		s.forbidden(w, r)
		return
	case s.sessionLost(w, r, err):
		return
	}
	http.Redirect(w, r, pageURL, http.StatusSeeOther)
}

// EntityBulkDeleteSubmit handles POST /{locale}/{entity}/bulk-delete.
func (s *Server) EntityBulkDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entity(w, r)
	if !ok {
		return
	}
	pageURL := entityURL(localeOf(r), e)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	ids := r.PostForm["ids"]
	if len(ids) == 0 {
		s.notify(w, r, toast.Info, "No records selected")
		http.Redirect(w, r, pageURL, http.StatusSeeOther)
		return
	}

	ctrl := s.controller(r, e)
	res, err := ctrl.BulkDelete(r.Context(), ids, r.PostForm.Get("confirm") == "1")
	switch {
	case errors.Is(err, crud.ErrConfirmationRequired):
		if err := ctrl.Load(r.Context()); s.sessionLost(w, r, err) {
			return
		}
		s.renderEntity(w, r, http.StatusOK, ctrl, ids)
		return
	case errors.Is(err, crud.ErrNotAllowed):
		s.forbidden(w, r)
		return
	}
	if res.Failed > 0 {
		for _, be := range res.Errors {
			if s.sessionLost(w, r, be.Err) {
				return
			}
		}
	}
	http.Redirect(w, r, pageURL, http.StatusSeeOther)
}

// EntityImportSubmit handles POST /{locale}/{entity}/import with a CSV upload.
func (s *Server) EntityImportSubmit(w http.ResponseWriter, r *http.Request) {
	e, ok := s.entity(w, r)
	if !ok {
		return
	}
	pageURL := entityURL(localeOf(r), e)
	if !e.Import {
		s.forbidden(w, r)
		return
	}

	if err := parseRequest(r); err != nil {
		s.notify(w, r, toast.Error, "Please choose a file")
		http.Redirect(w, r, pageURL, http.StatusSeeOther)
		return
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		s.notify(w, r, toast.Error, "Please choose a file")
		http.Redirect(w, r, pageURL, http.StatusSeeOther)
		return
	}
	defer f.Close()

	records, err := crud.ParseCSV(f, e)
	if err != nil {
		slog.Warn("rejected import", "entity", e.Name, "error", err)
		s.notify(w, r, toast.Error, "The CSV file could not be read")
		http.Redirect(w, r, pageURL, http.StatusSeeOther)
		return
	}

	res, err := s.controller(r, e).BulkImport(r.Context(), records)
	if err != nil {
		s.forbidden(w, r)
		return
	}
	for _, be := range res.Errors {
		if s.sessionLost(w, r, be.Err) {
			return
		}
	}
	http.Redirect(w, r, pageURL, http.StatusSeeOther)
}
