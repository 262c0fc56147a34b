package crud

// ModalMode is what the modal is open for.
type ModalMode string

const (
	ModalClosed        ModalMode = ""
	ModalCreate        ModalMode = "create"
	ModalEdit          ModalMode = "edit"
	ModalView          ModalMode = "view"
	ModalConfirmDelete ModalMode = "delete"
)

// ParseModalMode maps a query value to a mode. Unknown values close the modal.
func ParseModalMode(s string) ModalMode {
	switch m := ModalMode(s); m {
	case ModalCreate, ModalEdit, ModalView, ModalConfirmDelete:
		return m
	}
	return ModalClosed
}

// Modal is the generic modal host. It carries what to show, not how the
// form behaves: the controller owns fields and submission.
type Modal struct {
	Mode     ModalMode
	Title    string
	ItemID   string
	CloseURL string
	Fields   []Field
	Form     Form
	Errors   FieldErrors
	Options  map[string][]Option
}

// Open reports whether the modal is shown.
func (m Modal) Open() bool {
	return m.Mode != ModalClosed
}

// ReadOnly reports whether inputs are disabled.
func (m Modal) ReadOnly() bool {
	return m.Mode == ModalView
}

// Error returns the failure recorded for an input name.
func (m Modal) Error(key string) (FieldError, bool) {
	fe, ok := m.Errors[key]
	return fe, ok
}

// Choices returns the select options for field: static ones first, then
// those loaded from the backend.
func (m Modal) Choices(field Field) []Option {
	if len(field.Options) > 0 {
		return field.Options
	}
	return m.Options[field.Name]
}
