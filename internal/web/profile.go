package web

import (
	"log/slog"
	"net/http"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/crud"
	"github.com/proplex/proplex-admin/internal/session"
	"github.com/proplex/proplex-admin/internal/toast"
)

// profileEntity describes the operator's own record.
var profileEntity = &crud.Entity{
	Name:     "profile",
	Title:    "Profile",
	Endpoint: backend.EndpointProfile,
	Fields: []crud.Field{
		{Name: "name", Label: "Name", Kind: crud.KindText, Required: true},
		{Name: "email", Label: "Email", Kind: crud.KindEmail, Required: true},
		{Name: "phone", Label: "Phone", Kind: crud.KindText},
		{Name: "password", Label: "Password", Kind: crud.KindPassword},
		{Name: "image", Label: "Image", Kind: crud.KindFile},
	},
}

type profilePage struct {
	PageData
	Image  string
	Inputs []Input
}

func (s *Server) renderProfile(w http.ResponseWriter, r *http.Request, status int, image string, modal crud.Modal) {
	s.Templates.RenderStatus(w, status, "profile.html", &profilePage{
		PageData: s.pageData(w, r, "Profile"),
		Image:    image,
		Inputs:   inputs(modal, s.I18n.Translator(localeOf(r))),
	})
}

func profileModal(form crud.Form, errs crud.FieldErrors) crud.Modal {
	return crud.Modal{
		Mode:   crud.ModalEdit,
		Fields: profileEntity.FieldsFor(crud.ModalEdit),
		Form:   form,
		Errors: errs,
	}
}

// ProfilePage handles GET /{locale}/profile.
func (s *Server) ProfilePage(w http.ResponseWriter, r *http.Request) {
	var raw crud.ListItem
	if err := s.Backend.Get(r.Context(), backend.EndpointProfile, nil, &raw); err != nil {
		if s.backendFailed(w, r, "load profile", err) {
			return
		}
		// Fall back to what the session knows.
		u := session.FromContext(r.Context()).User
		raw = crud.ListItem{"name": u.Name, "email": u.Email, "phone": u.Phone, "image": u.Image}
	}

	s.renderProfile(w, r, http.StatusOK, raw.String("image"), profileModal(crud.FormFromItem(profileEntity, raw), nil))
}

// ProfileSubmit handles POST /{locale}/profile. A successful update
// refreshes the operator held by the session.
func (s *Server) ProfileSubmit(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	form, err := s.parseForm(r, profileEntity)
	if err != nil {
		slog.Warn("rejected profile form", "error", err)
		s.notify(w, r, toast.Error, uploadMessage(err))
		s.renderProfile(w, r, http.StatusUnprocessableEntity, sess.User.Image, profileModal(form, nil))
		return
	}

	if errs := crud.Validate(profileEntity, form, crud.ModalEdit); len(errs) > 0 {
		s.notify(w, r, toast.Error, "Please correct the highlighted fields")
		s.renderProfile(w, r, http.StatusUnprocessableEntity, sess.User.Image, profileModal(form, errs))
		return
	}

	var updated map[string]any
	body := crud.EncodeForm(profileEntity, form, crud.ModalEdit)
	if err := s.Backend.Patch(r.Context(), backend.EndpointProfile, body, &updated); err != nil {
		if s.backendFailed(w, r, "update profile", err) {
			return
		}
		s.renderProfile(w, r, http.StatusUnprocessableEntity, sess.User.Image, profileModal(form, nil))
		return
	}

	user := sess.User
	if len(updated) > 0 {
		fresh := backend.UserFromMap(updated)
		if fresh.ID == "" {
			fresh.ID = user.ID
		}
		user = fresh
	} else {
		user.Name, user.Email, user.Phone = form.Get("name"), form.Get("email"), form.Get("phone")
	}
	if err := s.Sessions.UpdateUser(r.Context(), sess.ID, user); err != nil {
		slog.Error("failed to refresh session user", "session", sess.ID, "error", err)
	}

	slog.Info("profile updated", "user", user.ID)
	s.notify(w, r, toast.Success, "Profile updated")
	http.Redirect(w, r, "/"+localeOf(r)+"/profile", http.StatusSeeOther)
}
