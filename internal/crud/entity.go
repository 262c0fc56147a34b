package crud

// FieldKind selects the input a field renders as.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextarea FieldKind = "textarea"
	KindRichText FieldKind = "richtext"
	KindNumber   FieldKind = "number"
	KindEmail    FieldKind = "email"
	KindSelect   FieldKind = "select"
	KindCheckbox FieldKind = "checkbox"
	KindFile     FieldKind = "file"
	KindPassword FieldKind = "password"
)

// Option is a select choice.
type Option struct {
	Value string
	Label string
}

// Field is one form input.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	// Localized fields are collected per locale as en[name], ar[name].
	Localized bool
	Options   []Option
	// OptionsFrom names an endpoint whose records fill the select.
	OptionsFrom string
	// CreateOnly fields are hidden when editing.
	CreateOnly bool
}

// Column is one table column.
type Column struct {
	Key       string
	Label     string
	Localized bool
	Render    func(item ListItem, locale string) string
}

// Actions are the row and page actions an entity offers.
type Actions struct {
	Create    bool
	Edit      bool
	Delete    bool
	View      bool
	QuickView bool
}

// Entity describes one CRUD screen.
type Entity struct {
	Name     string
	Title    string
	Endpoint string
	// Module gates the screen against the operator's modules.
	Module        string
	Columns       []Column
	Fields        []Field
	Actions       Actions
	ConfirmDelete bool
	Bulk          bool
	Import        bool
	EmptyMessage  string
	// DetailPath, when set, links rows to a dedicated page under the entity.
	DetailPath bool
}

// Multipart reports whether the form carries file inputs.
func (e *Entity) Multipart() bool {
	for _, f := range e.Fields {
		if f.Kind == KindFile {
			return true
		}
	}
	return false
}

// Field returns the field named name.
func (e *Entity) Field(name string) (Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
