package utils

import (
	"context"
	"encoding/json"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"recipebook/common"
	"recipebook/globals"
	"recipebook/models"
)

func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, globals.UserKey, u)
}

// UserFromContext returns the user placed in ctx by the auth gate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(globals.UserKey).(*models.User)
	return u, ok && u != nil
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(globals.RequestIDKey).(string)
	return id
}

func IsJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// DecodeJSON decodes the request body into v, limited to maxBytes.
func DecodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.Validation("Invalid JSON body")
	}
	return nil
}

// ParseForm parses a multipart or urlencoded body, limited to maxBytes.
func ParseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mt == "multipart/form-data" {
		err = r.ParseMultipartForm(maxBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return common.Validation("Failed to parse form")
	}
	return nil
}

// FormValues returns the values for key, accepting both "key" and "key[]".
// The bool reports whether either key was present at all.
func FormValues(r *http.Request, key string) ([]string, bool) {
	var out []string
	found := false
	for _, k := range []string{key, key + "[]"} {
		if vs, ok := r.Form[k]; ok {
			found = true
			for _, v := range vs {
				if v = strings.TrimSpace(v); v != "" {
					out = append(out, v)
				}
			}
		}
	}
	if out == nil && found {
		out = []string{}
	}
	return out, found
}

// FormValue returns the trimmed value for key and whether it was present.
func FormValue(r *http.Request, key string) (string, bool) {
	vs, ok := r.Form[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return strings.TrimSpace(vs[0]), true
}

// FormFile returns the first file uploaded under key, or nil.
func FormFile(r *http.Request, key string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[key]
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
