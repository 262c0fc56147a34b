package crud

import (
	"net/mail"
	"net/url"
	"strconv"
	"strings"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/i18n"
)

// Form is the submitted state of a modal form, keyed by input name.
type Form struct {
	Values url.Values
	Files  map[string]backend.File
}

// NewForm returns an empty form.
func NewForm() Form {
	return Form{Values: url.Values{}, Files: map[string]backend.File{}}
}

// Get returns the value of key.
func (f Form) Get(key string) string {
	if f.Values == nil {
		return ""
	}
	return f.Values.Get(key)
}

// Set sets key to value.
func (f *Form) Set(key, value string) {
	if f.Values == nil {
		f.Values = url.Values{}
	}
	f.Values.Set(key, value)
}

// SetFile attaches an upload under key.
func (f *Form) SetFile(key, filename string, data []byte) {
	if f.Files == nil {
		f.Files = map[string]backend.File{}
	}
	f.Files[key] = backend.File{Field: key, Filename: filename, Data: data}
}

// Checked reports whether a checkbox value is on.
func (f Form) Checked(key string) bool {
	switch strings.ToLower(f.Get(key)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}

// FieldKey is the input name of field for locale. Unlocalized fields ignore locale.
func FieldKey(field Field, locale string) string {
	if field.Localized {
		return locale + "[" + field.Name + "]"
	}
	return field.Name
}

// FieldError is a validation failure. Message is a translatable format
// taking the field label.
type FieldError struct {
	Message string
	Label   string
}

// FieldErrors maps input names to their failure.
type FieldErrors map[string]FieldError

// FieldsFor returns the fields shown in mode.
func (e *Entity) FieldsFor(mode ModalMode) []Field {
	out := make([]Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.CreateOnly && mode != ModalCreate {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Validate checks form against the entity's fields.
func Validate(e *Entity, form Form, mode ModalMode) FieldErrors {
	errs := FieldErrors{}
	for _, field := range e.FieldsFor(mode) {
		for _, key := range fieldKeys(field) {
			value := strings.TrimSpace(form.Get(key))

			if field.Kind == KindFile {
				if field.Required && mode == ModalCreate {
					if _, ok := form.Files[key]; !ok {
						errs[key] = FieldError{Message: "%s is required", Label: field.Label}
					}
				}
				continue
			}

			if value == "" {
				if field.Required && field.Kind != KindCheckbox {
					errs[key] = FieldError{Message: "%s is required", Label: field.Label}
				}
				continue
			}

			switch field.Kind {
			case KindEmail:
				if _, err := mail.ParseAddress(value); err != nil {
					errs[key] = FieldError{Message: "%s must be a valid email address", Label: field.Label}
				}
			case KindNumber:
				if _, err := strconv.ParseFloat(value, 64); err != nil {
					errs[key] = FieldError{Message: "%s must be a number", Label: field.Label}
				}
			case KindSelect:
				if len(field.Options) > 0 && !hasOption(field.Options, value) {
					errs[key] = FieldError{Message: "%s has an invalid choice", Label: field.Label}
				}
			}
		}
	}
	return errs
}

// EncodeForm builds the multipart body the backend expects. Localized
// fields are sent as en[name] and ar[name].
func EncodeForm(e *Entity, form Form, mode ModalMode) *backend.FormData {
	fd := backend.NewFormData()
	for _, field := range e.FieldsFor(mode) {
		for _, key := range fieldKeys(field) {
			switch field.Kind {
			case KindFile:
				if file, ok := form.Files[key]; ok && len(file.Data) > 0 {
					fd.AddFile(key, file.Filename, file.Data)
				}
			case KindCheckbox:
				if form.Checked(key) {
					fd.Set(key, "1")
				} else {
					fd.Set(key, "0")
				}
			case KindPassword:
				if v := form.Get(key); v != "" {
					fd.Set(key, v)
				}
			default:
				if form.Values != nil && form.Values.Has(key) {
					fd.Set(key, strings.TrimSpace(form.Get(key)))
				}
			}
		}
	}
	return fd
}

// FormFromItem fills a form from a loaded record for editing or viewing.
func FormFromItem(e *Entity, item ListItem) Form {
	form := NewForm()
	for _, field := range e.Fields {
		switch field.Kind {
		case KindFile, KindPassword:
			continue
		}
		if field.Localized {
			for _, loc := range i18n.Locales() {
				v := item.String(loc + "." + field.Name)
				if v == "" {
					v = translation(item["translations"], loc, field.Name)
				}
				if v == "" && loc == i18n.English {
					v = item.String(field.Name)
				}
				form.Set(FieldKey(field, loc), v)
			}
			continue
		}

		v := item.String(field.Name)
		if v == "" && field.Kind == KindSelect && strings.HasSuffix(field.Name, "_id") {
			v = item.String(strings.TrimSuffix(field.Name, "_id") + ".id")
		}
		if field.Kind == KindCheckbox {
			if b, ok := item[field.Name].(bool); ok {
				v = "0"
				if b {
					v = "1"
				}
			}
		}
		form.Set(field.Name, v)
	}
	return form
}

func fieldKeys(field Field) []string {
	if !field.Localized {
		return []string{field.Name}
	}
	locales := i18n.Locales()
	keys := make([]string, len(locales))
	for i, loc := range locales {
		keys[i] = FieldKey(field, loc)
	}
	return keys
}

func hasOption(opts []Option, value string) bool {
	for _, o := range opts {
		if o.Value == value {
			return true
		}
	}
	return false
}
