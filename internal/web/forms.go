package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/proplex/proplex-admin/internal/crud"
	"github.com/proplex/proplex-admin/internal/i18n"
	"github.com/proplex/proplex-admin/internal/imaging"
)

const maxUploadMemory = 32 << 20

// Input is one rendered form control.
type Input struct {
	Name     string
	Label    string
	Kind     crud.FieldKind
	Value    string
	Checked  bool
	Required bool
	ReadOnly bool
	Options  []crud.Option
	Error    string
	Dir      string
}

// parseRequest parses urlencoded and multipart bodies alike.
func parseRequest(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxUploadMemory)
	}
	return r.ParseForm()
}

// parseForm reads the entity form of r. Image uploads are normalized
// before they are attached.
func (s *Server) parseForm(r *http.Request, e *crud.Entity) (crud.Form, error) {
	form := crud.NewForm()
	if err := parseRequest(r); err != nil {
		return form, fmt.Errorf("parsing form: %w", err)
	}
	for k, v := range r.PostForm {
		form.Values[k] = v
	}
	if r.MultipartForm == nil {
		return form, nil
	}

	for _, field := range e.Fields {
		if field.Kind != crud.KindFile {
			continue
		}
		f, hdr, err := r.FormFile(field.Name)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return form, fmt.Errorf("reading %s upload: %w", field.Name, err)
		}
		up, err := imaging.Process(f, hdr.Filename, s.Images)
		f.Close()
		if err != nil {
			return form, fmt.Errorf("processing %s upload: %w", field.Name, err)
		}
		form.SetFile(field.Name, up.Filename, up.Data)
	}
	return form, nil
}

// inputs turns the modal's fields into controls, one per locale for
// localized fields.
func inputs(m crud.Modal, tr func(string, ...any) string) []Input {
	var out []Input
	for _, field := range m.Fields {
		locales := []string{""}
		if field.Localized {
			locales = i18n.Locales()
		}
		for _, loc := range locales {
			key := crud.FieldKey(field, loc)
			in := Input{
				Name:     key,
				Label:    tr(field.Label),
				Kind:     field.Kind,
				Value:    m.Form.Get(key),
				Checked:  m.Form.Checked(key),
				Required: field.Required && !(field.Kind == crud.KindFile && m.Mode != crud.ModalCreate),
				ReadOnly: m.ReadOnly(),
			}
			if loc != "" {
				in.Label += " (" + tr(localeLabel(loc)) + ")"
				in.Dir = i18n.Dir(loc)
			}
			for _, o := range m.Choices(field) {
				// Static choices are interface text; loaded ones are data.
				if len(field.Options) > 0 {
					o.Label = tr(o.Label)
				}
				in.Options = append(in.Options, o)
			}
			if fe, ok := m.Error(key); ok {
				in.Error = tr(fe.Message, tr(fe.Label))
			}
			out = append(out, in)
		}
	}
	return out
}

func localeLabel(locale string) string {
	if locale == i18n.Arabic {
		return "Arabic"
	}
	return "English"
}

// uploadMessage is the toast text for a rejected upload.
func uploadMessage(err error) string {
	switch {
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "Only JPEG, PNG and WebP images are accepted"
	case errors.Is(err, imaging.ErrTooLarge):
		return "The image is too large"
	default:
		return "Something went wrong"
	}
}
