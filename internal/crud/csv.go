package crud

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/proplex/proplex-admin/internal/i18n"
)

// ParseCSV reads import rows for e. The header names fields; localized
// fields are written as en.name and ar.name. Blank rows are skipped.
func ParseCSV(r io.Reader, e *Entity) ([]Form, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	keys := make([]string, len(header))
	for i, col := range header {
		key, err := columnKey(e, strings.TrimPrefix(strings.TrimSpace(col), "\ufeff"))
		if err != nil {
			return nil, err
		}
		keys[i] = key
	}

	var forms []Form
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		form := NewForm()
		for i, v := range rec {
			if i < len(keys) {
				form.Set(keys[i], strings.TrimSpace(v))
			}
		}
		forms = append(forms, form)
	}
	return forms, nil
}

func columnKey(e *Entity, col string) (string, error) {
	name, locale := col, ""
	if loc, field, ok := strings.Cut(col, "."); ok && i18n.IsSupported(loc) {
		name, locale = field, loc
	}
	field, ok := e.Field(name)
	if !ok || field.Kind == KindFile {
		return "", fmt.Errorf("unknown csv column %q", col)
	}
	if field.Localized {
		if locale == "" {
			locale = i18n.English
		}
		return FieldKey(field, locale), nil
	}
	if locale != "" {
		return "", fmt.Errorf("csv column %q is not localized", col)
	}
	return field.Name, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
