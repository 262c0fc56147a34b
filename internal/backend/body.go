package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
)

// Body is a request payload.
type Body interface {
	encode() (io.Reader, string, error)
}

type jsonBody struct {
	v any
}

// JSON wraps v as a JSON request body.
func JSON(v any) Body {
	return jsonBody{v: v}
}

func (b jsonBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", fmt.Errorf("encoding json body: %w", err)
	}
	return bytes.NewReader(data), "application/json", nil
}

// File is an uploaded file carried by FormData.
type File struct {
	Field    string
	Filename string
	Data     []byte
}

// FormData is an ordered multipart form, the server-side counterpart of the
// browser FormData the dashboard forms used to post.
type FormData struct {
	values url.Values
	keys   []string
	files  []File
}

// NewFormData creates an empty form.
func NewFormData() *FormData {
	return &FormData{values: url.Values{}}
}

// Set replaces the values of key.
func (f *FormData) Set(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = []string{value}
}

// Add appends a value to key.
func (f *FormData) Add(key, value string) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = append(f.values[key], value)
}

// Get returns the first value of key.
func (f *FormData) Get(key string) string {
	return f.values.Get(key)
}

// Has reports whether key carries a value.
func (f *FormData) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Keys returns the value keys in insertion order.
func (f *FormData) Keys() []string {
	return append([]string(nil), f.keys...)
}

// AddFile attaches a file part.
func (f *FormData) AddFile(field, filename string, data []byte) {
	f.files = append(f.files, File{Field: field, Filename: filename, Data: data})
}

// Files returns the attached files.
func (f *FormData) Files() []File {
	return append([]File(nil), f.files...)
}

func (f *FormData) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, key := range f.keys {
		for _, v := range f.values[key] {
			if err := mw.WriteField(key, v); err != nil {
				return nil, "", fmt.Errorf("writing form field %s: %w", key, err)
			}
		}
	}
	for _, file := range f.files {
		part, err := mw.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("creating form file %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("writing form file %s: %w", file.Field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
