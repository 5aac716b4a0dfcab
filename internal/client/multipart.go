package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// File field names expected by the backend upload endpoints.
const (
	FieldLogoFile    = "logoFile"
	FieldImageFile   = "imageFile"
	FieldWebImage    = "webImg"
	FieldMobileImage = "mobileImg"
)

// Upload is a file attached to a create or update call.
type Upload struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Form is a multipart payload. Every field value is sent as a string.
type Form struct {
	fields [][2]string
	files  []Upload
}

// NewForm returns an empty form.
func NewForm() *Form { return &Form{} }

// Set adds a field; nil and nil pointers become "".
func (f *Form) Set(name string, value any) *Form {
	f.fields = append(f.fields, [2]string{name, Stringify(value)})
	return f
}

// Attach adds a file part.
func (f *Form) Attach(u Upload) *Form {
	f.files = append(f.files, u)
	return f
}

// FormFromRecord flattens rec into form fields sorted by their JSON name.
// rec is a struct or a JSON object. Fields tagged omitempty are still sent;
// a zero optional value goes out as "". Nested objects are sent as their
// JSON text.
func FormFromRecord(rec any) (*Form, error) {
	v := reflect.ValueOf(rec)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}

	var fields map[string]any
	if v.Kind() == reflect.Struct {
		fields = make(map[string]any)
		structFields(v, fields)
	} else {
		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode form record: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("form record must be an object: %w", err)
		}
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	slices.Sort(names)

	form := NewForm()
	for _, name := range names {
		form.Set(name, fields[name])
	}
	return form, nil
}

// structFields collects the exported fields of v under their JSON names.
// Embedded structs are flattened.
func structFields(v reflect.Value, out map[string]any) {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := v.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if sf.Anonymous && name == "" {
			for fv.Kind() == reflect.Pointer {
				if fv.IsNil() {
					break
				}
				fv = fv.Elem()
			}
			if fv.Kind() == reflect.Struct {
				structFields(fv, out)
				continue
			}
		}
		if name == "" {
			name = sf.Name
		}
		out[name] = fieldValue(fv, strings.Contains(opts, "omitempty"))
	}
}

func fieldValue(fv reflect.Value, optional bool) any {
	if optional && fv.IsZero() {
		return nil
	}
	for fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface {
		if fv.IsNil() {
			return nil
		}
		fv = fv.Elem()
	}
	switch fv.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		raw, err := json.Marshal(fv.Interface())
		if err != nil {
			return nil
		}
		return string(raw)
	}
	return fv.Interface()
}

func (f *Form) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for _, kv := range f.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", kv[0], err)
		}
	}
	for _, u := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, u.Field, u.Filename))
		ct := u.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", u.Field, err)
		}
		if _, err := part.Write(u.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", u.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

// Stringify renders a field value the way multipart payloads carry it:
// nil becomes "", numbers use their shortest decimal form, objects JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case *int64:
		if x == nil {
			return ""
		}
		return strconv.FormatInt(*x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case map[string]any, []any:
		raw, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(raw)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
