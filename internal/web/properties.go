package web

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/crud"
	"github.com/proplex/proplex-admin/internal/geo"
	"github.com/proplex/proplex-admin/internal/imaging"
	"github.com/proplex/proplex-admin/internal/session"
	"github.com/proplex/proplex-admin/internal/toast"
)

// propertyEntity is the registry name of property listings.
const propertyEntity = "property_listings"

// Property detail tabs.
const (
	tabDetails   = "details"
	tabImages    = "images"
	tabFloorPlan = "floor-plan"
	tabLocation  = "location"
)

// Attachment is an uploaded image or floor plan of a property.
type Attachment struct {
	ID    string
	URL   string
	Title string
}

type propertyPage struct {
	PageData
	Entity     *crud.Entity
	ID         string
	Tab        string
	Tabs       []NavItem
	BaseURL    string
	Inputs     []Input
	Multipart  bool
	Images     []Attachment
	FloorPlans []Attachment
	Latitude   string
	Longitude  string
	// GeoJSON is the stored shape as a feature collection for the map widget.
	GeoJSON string
}

// property resolves the property entity, enforcing module access.
func (s *Server) property(w http.ResponseWriter, r *http.Request) (*crud.Entity, bool) {
	e, err := s.Registry.Get(propertyEntity)
	if err != nil {
		s.notFound(w, r)
		return nil, false
	}
	if !session.FromContext(r.Context()).HasModule(e.Module) {
		s.forbidden(w, r)
		return nil, false
	}
	return e, true
}

func propertyURL(locale, id string) string {
	return "/" + locale + "/" + propertyEntity + "/" + id
}

// PropertyPage handles GET /{locale}/property_listings/{id}?tab=.
func (s *Server) PropertyPage(w http.ResponseWriter, r *http.Request) {
	e, ok := s.property(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	locale := localeOf(r)
	id := r.PathValue("id")
	tr := s.I18n.Translator(locale)

	ctrl := s.controller(r, e)
	item, err := ctrl.Item(ctx, id)
	if err != nil {
		if s.sessionLost(w, r, err) {
			return
		}
		if errors.Is(err, crud.ErrNotFound) {
			s.notFound(w, r)
			return
		}
		slog.Error("failed to load property", "id", id, "error", err)
		s.modalFailed(w, r, e, err)
		http.Redirect(w, r, entityURL(locale, e), http.StatusSeeOther)
		return
	}
	ctrl.Resume(crud.ModalEdit, id, crud.FormFromItem(e, item), nil)

	tab := r.URL.Query().Get("tab")
	switch tab {
	case tabImages, tabFloorPlan, tabLocation:
	default:
		tab = tabDetails
	}
	if tab == tabDetails {
		ctrl.LoadOptions(ctx)
	}

	base := propertyURL(locale, id)
	data := s.pageData(w, r, e.Title)
	if label := item.Label(locale); label != "" {
		data.Title = label
	}

	page := &propertyPage{
		PageData:   data,
		Entity:     e,
		ID:         id,
		Tab:        tab,
		BaseURL:    base,
		Inputs:     inputs(ctrl.Modal, tr),
		Multipart:  e.Multipart(),
		Images:     attachments(item, "images", "property_images"),
		FloorPlans: attachments(item, "floor_plans", "floor_plan"),
	}
	for _, t := range []struct{ key, title string }{
		{tabDetails, "Details"},
		{tabImages, "Images"},
		{tabFloorPlan, "Floor plans"},
		{tabLocation, "Location"},
	} {
		page.Tabs = append(page.Tabs, NavItem{Title: tr(t.title), URL: base + "?tab=" + t.key, Active: t.key == tab})
	}

	shape, err := geo.FromItem(item)
	if err != nil {
		slog.Warn("stored property location is invalid", "id", id, "error", err)
	}
	if c, ok := shape.Center(); ok {
		page.Latitude = fmt.Sprint(c.Lat())
		page.Longitude = fmt.Sprint(c.Lon())
	}
	if fc, err := shape.FeatureCollection(); err == nil {
		page.GeoJSON = string(fc)
	}

	s.Templates.Render(w, "property.html", page)
}

// attachments reads a list of uploaded files from the first present key.
func attachments(item crud.ListItem, keys ...string) []Attachment {
	for _, key := range keys {
		list, ok := item[key].([]any)
		if !ok {
			continue
		}
		out := make([]Attachment, 0, len(list))
		for _, v := range list {
			m, ok := v.(map[string]any)
			if !ok {
				continue
			}
			a := crud.ListItem(m)
			att := Attachment{ID: a.ID(), Title: a.String("title")}
			for _, k := range []string{"url", "image", "path", "file"} {
				if u := a.String(k); u != "" {
					att.URL = u
					break
				}
			}
			out = append(out, att)
		}
		return out
	}
	return nil
}

// uploads processes every image posted under field.
func (s *Server) uploads(r *http.Request, field string) ([]*imaging.Upload, error) {
	if err := parseRequest(r); err != nil {
		return nil, fmt.Errorf("parsing upload: %w", err)
	}
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File[field]
	}
	if len(headers) == 0 {
		return nil, http.ErrMissingFile
	}

	out := make([]*imaging.Upload, 0, len(headers))
	for _, hdr := range headers {
		f, err := hdr.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", hdr.Filename, err)
		}
		up, err := imaging.Process(f, hdr.Filename, s.Images)
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, up)
	}
	return out, nil
}

// afterPropertyChange drops cached property lists and returns to tab.
func (s *Server) afterPropertyChange(w http.ResponseWriter, r *http.Request, tab string) {
	s.Cache.Invalidate(session.IDFromContext(r.Context()), backend.EndpointPropertyListings)
	http.Redirect(w, r, propertyURL(localeOf(r), r.PathValue("id"))+"?tab="+tab, http.StatusSeeOther)
}

// backendFailed toasts a failed backend call, unless it ended the session.
func (s *Server) backendFailed(w http.ResponseWriter, r *http.Request, what string, err error) bool {
	if s.sessionLost(w, r, err) {
		return true
	}
	slog.Error("backend call failed", "action", what, "error", err)
	if msg := backend.Message(err); msg != "" {
		s.Toasts.Push(s.toastKey(w, r), toast.Error, msg)
	} else {
		s.notify(w, r, toast.Error, "Something went wrong")
	}
	return false
}

func (s *Server) uploadFailed(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, http.ErrMissingFile) {
		s.notify(w, r, toast.Error, "Please choose a file")
		return
	}
	slog.Warn("rejected upload", "error", err)
	s.notify(w, r, toast.Error, uploadMessage(err))
}

// PropertyImageUpload handles POST /{locale}/property_listings/{id}/images.
func (s *Server) PropertyImageUpload(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.property(w, r); !ok {
		return
	}
	id := r.PathValue("id")

	ups, err := s.uploads(r, "images")
	if err != nil {
		s.uploadFailed(w, r, err)
		s.afterPropertyChange(w, r, tabImages)
		return
	}

	body := backend.NewFormData()
	body.Set("property_id", id)
	for _, up := range ups {
		body.AddFile("images[]", up.Filename, up.Data)
	}
	if err := s.Backend.Post(r.Context(), backend.EndpointPropertyImages, body, nil); err != nil {
		if s.backendFailed(w, r, "upload property images", err) {
			return
		}
	} else {
		slog.Info("property images uploaded", "id", id, "count", len(ups))
		s.notify(w, r, toast.Success, "Image uploaded")
	}
	s.afterPropertyChange(w, r, tabImages)
}

// PropertyImageDelete handles POST /{locale}/property_listings/{id}/images/{imageID}/delete.
func (s *Server) PropertyImageDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.property(w, r); !ok {
		return
	}
	imageID := r.PathValue("imageID")
	if err := s.Backend.Delete(r.Context(), backend.ItemPath(backend.EndpointPropertyImages, imageID), nil); err != nil {
		if s.backendFailed(w, r, "delete property image", err) {
			return
		}
	} else {
		slog.Info("property image deleted", "id", r.PathValue("id"), "image", imageID)
		s.notify(w, r, toast.Success, "Image deleted")
	}
	s.afterPropertyChange(w, r, tabImages)
}

// FloorPlanUpload handles POST /{locale}/property_listings/{id}/floor-plans.
func (s *Server) FloorPlanUpload(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.property(w, r); !ok {
		return
	}
	id := r.PathValue("id")

	ups, err := s.uploads(r, "floor_plan")
	if err != nil {
		s.uploadFailed(w, r, err)
		s.afterPropertyChange(w, r, tabFloorPlan)
		return
	}

	body := backend.NewFormData()
	body.Set("property_id", id)
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		body.Set("title", title)
	}
	body.AddFile("floor_plan", ups[0].Filename, ups[0].Data)
	if err := s.Backend.Post(r.Context(), backend.EndpointFloorPlans, body, nil); err != nil {
		if s.backendFailed(w, r, "upload floor plan", err) {
			return
		}
	} else {
		slog.Info("floor plan uploaded", "id", id)
		s.notify(w, r, toast.Success, "Floor plan uploaded")
	}
	s.afterPropertyChange(w, r, tabFloorPlan)
}

// FloorPlanDelete handles POST /{locale}/property_listings/{id}/floor-plans/{planID}/delete.
func (s *Server) FloorPlanDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.property(w, r); !ok {
		return
	}
	planID := r.PathValue("planID")
	if err := s.Backend.Delete(r.Context(), backend.ItemPath(backend.EndpointFloorPlans, planID), nil); err != nil {
		if s.backendFailed(w, r, "delete floor plan", err) {
			return
		}
	} else {
		slog.Info("floor plan deleted", "id", r.PathValue("id"), "plan", planID)
		s.notify(w, r, toast.Success, "Floor plan deleted")
	}
	s.afterPropertyChange(w, r, tabFloorPlan)
}

// LocationSubmit handles POST /{locale}/property_listings/{id}/location.
// The map widget posts its drawing as geojson; without one the typed
// latitude and longitude are used.
func (s *Server) LocationSubmit(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.property(w, r); !ok {
		return
	}
	id := r.PathValue("id")

	editor := geo.NewEditor()
	if r.FormValue("clear") != "" {
		editor.Clear()
		if err := s.saveLocation(r, id, editor); err != nil {
			if s.backendFailed(w, r, "clear property location", err) {
				return
			}
		} else {
			s.notify(w, r, toast.Success, "Location cleared")
		}
		s.afterPropertyChange(w, r, tabLocation)
		return
	}

	var err error
	if drawing := strings.TrimSpace(r.FormValue("geojson")); drawing != "" {
		err = editor.Draw([]byte(drawing))
	} else {
		err = editor.Load(r.FormValue("latitude"), r.FormValue("longitude"), "")
	}
	if err == nil && editor.Shape().Empty() {
		err = geo.ErrInvalidGeometry
	}
	if err != nil {
		slog.Warn("rejected location", "id", id, "error", err)
		s.notify(w, r, toast.Error, "The drawn shape is not a valid polygon")
		s.afterPropertyChange(w, r, tabLocation)
		return
	}

	if err := s.saveLocation(r, id, editor); err != nil {
		if s.backendFailed(w, r, "save property location", err) {
			return
		}
	} else {
		s.notify(w, r, toast.Success, "Location saved")
	}
	s.afterPropertyChange(w, r, tabLocation)
}

// saveLocation patches the property with the editor's shape. An empty
// shape blanks the stored location.
func (s *Server) saveLocation(r *http.Request, id string, editor geo.PolygonEditor) error {
	fields, err := editor.Shape().Fields()
	if err != nil {
		return err
	}
	body := backend.NewFormData()
	if editor.Shape().Empty() {
		for _, k := range []string{"latitude", "longitude", "polygon"} {
			body.Set(k, "")
		}
	}
	for k, v := range fields {
		body.Set(k, v)
	}
	if err := s.Backend.Patch(r.Context(), backend.ItemPath(backend.EndpointPropertyListings, id), body, nil); err != nil {
		return err
	}
	slog.Info("property location saved", "id", id, "points", len(editor.Coordinates()))
	return nil
}
