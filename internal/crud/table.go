package crud

// Placeholder is shown for empty cells.
const Placeholder = "-"

// Table is the view model of a list screen.
type Table struct {
	Entity  string
	Headers []string
	Rows    []Row
	Actions Actions
	// Selectable rows carry a checkbox for bulk actions.
	Selectable   bool
	EmptyMessage string
}

// Row is one rendered record.
type Row struct {
	ID    string
	Cells []string
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// BuildTable renders items with e's columns. It does no fetching.
func BuildTable(e *Entity, items []ListItem, locale string) Table {
	t := Table{
		Entity:       e.Name,
		Headers:      make([]string, len(e.Columns)),
		Rows:         make([]Row, 0, len(items)),
		Actions:      e.Actions,
		Selectable:   e.Bulk && e.Actions.Delete,
		EmptyMessage: e.EmptyMessage,
	}
	for i, c := range e.Columns {
		t.Headers[i] = c.Label
	}
	for _, item := range items {
		row := Row{ID: item.ID(), Cells: make([]string, len(e.Columns))}
		for i, c := range e.Columns {
			row.Cells[i] = cellText(c, item, locale)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func cellText(c Column, item ListItem, locale string) string {
	var s string
	switch {
	case c.Render != nil:
		s = c.Render(item, locale)
	case c.Localized:
		s = item.Localized(locale, c.Key)
	default:
		v, _ := item.Lookup(c.Key)
		if m, ok := asMap(v); ok {
			// Nested references render by their name.
			s = ListItem(m).Label(locale)
		} else {
			s = Text(v)
		}
	}
	if s == "" {
		return Placeholder
	}
	return s
}
