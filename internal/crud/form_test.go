package crud

import (
	"testing"

	"github.com/proplex/proplex-admin/internal/model"
)

func TestEncodeFormLocalizedKeys(t *testing.T) {
	e, _ := DefaultRegistry().Get("blogs")
	form := NewForm()
	form.Set("en[title]", " Launch ")
	form.Set("ar[title]", "إطلاق")
	form.Set("en[content]", "<p>Hi</p>")
	form.SetFile("image", "cover.jpg", []byte{1, 2, 3})

	fd := EncodeForm(e, form, ModalCreate)
	if fd.Get("en[title]") != "Launch" {
		t.Errorf("expected trimmed en[title], got %q", fd.Get("en[title]"))
	}
	if fd.Get("ar[title]") != "إطلاق" {
		t.Errorf("unexpected ar[title]: %q", fd.Get("ar[title]"))
	}
	if fd.Has("ar[content]") {
		t.Error("expected absent values to be left out")
	}
	files := fd.Files()
	if len(files) != 1 || files[0].Field != "image" || files[0].Filename != "cover.jpg" {
		t.Errorf("unexpected files: %+v", files)
	}
}

func TestEncodeFormEditSkipsCreateOnly(t *testing.T) {
	e, _ := DefaultRegistry().Get("agents")
	form := NewForm()
	form.Set("name", "Omar")
	form.Set("email", "omar@example.test")
	form.Set("password", "hunter22")

	if fd := EncodeForm(e, form, ModalEdit); fd.Has("password") {
		t.Error("expected password left out of edits")
	}
	if fd := EncodeForm(e, form, ModalCreate); fd.Get("password") != "hunter22" {
		t.Error("expected password on create")
	}
	if errs := Validate(e, form, ModalEdit); len(errs) != 0 {
		t.Errorf("unexpected errors: %v", errs)
	}
}

func TestEncodeFormCheckbox(t *testing.T) {
	e, _ := DefaultRegistry().Get("property_listings")
	form := NewForm()
	form.Set("is_featured", "on")
	if got := EncodeForm(e, form, ModalEdit).Get("is_featured"); got != "1" {
		t.Errorf("expected 1, got %q", got)
	}
	if got := EncodeForm(e, NewForm(), ModalEdit).Get("is_featured"); got != "0" {
		t.Errorf("expected 0, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	e, _ := DefaultRegistry().Get("property_listings")
	form := NewForm()
	form.Set("en[title]", "Flat")
	form.Set("ar[title]", "شقة")
	form.Set("price", "abc")
	form.Set("status", "demolished")

	errs := Validate(e, form, ModalCreate)
	for _, key := range []string{"price", "status", "type_id"} {
		if _, ok := errs[key]; !ok {
			t.Errorf("expected error for %s, got %v", key, errs)
		}
	}
	if errs["price"].Message != "%s must be a number" || errs["price"].Label != "Price" {
		t.Errorf("unexpected price error: %+v", errs["price"])
	}
	if _, ok := errs["en[title]"]; ok {
		t.Error("unexpected error for en[title]")
	}

	agents, _ := DefaultRegistry().Get("agents")
	bad := NewForm()
	bad.Set("name", "x")
	bad.Set("email", "not-an-email")
	if _, ok := Validate(agents, bad, ModalEdit)["email"]; !ok {
		t.Error("expected email error")
	}
}

func TestFormFromItem(t *testing.T) {
	e, _ := DefaultRegistry().Get("property_listings")
	item := ListItem{
		"id":           float64(5),
		"title":        "Flat",
		"translations": []any{map[string]any{"locale": "ar", "title": "شقة"}},
		"price":        float64(1500000),
		"type":         map[string]any{"id": float64(2), "name": "Apartment"},
		"is_featured":  true,
	}
	form := FormFromItem(e, item)

	cases := map[string]string{
		"en[title]":   "Flat",
		"ar[title]":   "شقة",
		"price":       "1500000",
		"type_id":     "2",
		"is_featured": "1",
	}
	for key, want := range cases {
		if got := form.Get(key); got != want {
			t.Errorf("%s: expected %q, got %q", key, want, got)
		}
	}
}

func TestTableRendering(t *testing.T) {
	e, _ := DefaultRegistry().Get("property_listings")
	items := []ListItem{
		{
			"id":    float64(1),
			"en":    map[string]any{"title": "Villa"},
			"ar":    map[string]any{"title": "فيلا"},
			"price": float64(2500),
			"type":  map[string]any{"id": float64(3), "en": map[string]any{"name": "House"}},
		},
		{"id": "uuid-2", "title": "Flat"},
	}

	ar := BuildTable(e, items, "ar")
	if got := ar.Rows[0].Cells; got[0] != "فيلا" || got[1] != "2500" || got[2] != "House" || got[3] != Placeholder {
		t.Errorf("unexpected arabic row: %v", got)
	}
	if got := ar.Rows[1].Cells[0]; got != "Flat" {
		t.Errorf("expected flat fallback, got %q", got)
	}
	if ar.Rows[1].ID != "uuid-2" {
		t.Errorf("expected string id, got %q", ar.Rows[1].ID)
	}
	if !ar.Selectable || ar.Headers[0] != "Title" {
		t.Errorf("unexpected table header: %+v", ar)
	}

	empty := BuildTable(e, nil, "en")
	if !empty.Empty() || len(empty.Headers) != 4 {
		t.Errorf("expected empty table with headers, got %+v", empty)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	if _, err := r.Get("spaceships"); err == nil {
		t.Error("expected ErrUnknownEntity")
	}

	contacts, _ := r.Get("contacts")
	if contacts.ConfirmDelete {
		t.Error("contacts delete without confirmation")
	}
	for _, e := range r.All() {
		if e.Name != "contacts" && e.Actions.Delete && !e.ConfirmDelete {
			t.Errorf("%s should confirm deletes", e.Name)
		}
	}

	sess := &model.Session{Modules: []string{"areas", "blogs"}}
	visible := r.Visible(sess)
	if len(visible) != 2 || visible[0].Name != "areas" || visible[1].Name != "blogs" {
		names := make([]string, len(visible))
		for i, e := range visible {
			names[i] = e.Name
		}
		t.Errorf("unexpected visible entities: %v", names)
	}
	if len(r.Visible(&model.Session{})) != len(r.All()) {
		t.Error("expected empty module list to show everything")
	}

	r.Add(&Entity{Name: "areas", Title: "Districts"})
	if e, _ := r.Get("areas"); e.Title != "Districts" || len(r.All()) != 11 {
		t.Errorf("expected replacement in place, got %q with %d entities", e.Title, len(r.All()))
	}
}

func TestListItemLookup(t *testing.T) {
	it := ListItem{"id": float64(12), "owner": map[string]any{"name": "Sara"}}
	if it.ID() != "12" {
		t.Errorf("expected 12, got %q", it.ID())
	}
	if it.String("owner.name") != "Sara" {
		t.Errorf("unexpected lookup: %q", it.String("owner.name"))
	}
	if _, ok := it.Lookup("owner.name.first"); ok {
		t.Error("expected lookup through a scalar to fail")
	}
	if it.Label("en") != "12" {
		t.Errorf("expected id label, got %q", it.Label("en"))
	}
}
