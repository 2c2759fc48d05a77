package modeladapter

import (
	"fmt"
	"io"
	"maps"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strings"
)

// File is a file part of a multipart request, such as a profile image.
type File struct {
	Field       string    // Form field name.
	Name        string    // File name reported to the server.
	ContentType string    // Part content type (default: application/octet-stream).
	Content     io.Reader // File contents.
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeMultipart encodes form fields and files to w and returns the
// Content-Type header value including the boundary. Fields are written in
// sorted key order so the body is deterministic.
func writeMultipart(w io.Writer, form map[string]string, files []File) (string, error) {
	mw := multipart.NewWriter(w)

	for _, k := range slices.Sorted(maps.Keys(form)) {
		if err := mw.WriteField(k, form[k]); err != nil {
			return "", fmt.Errorf("field %q: %w", k, err)
		}
	}

	for _, f := range files {
		if f.Field == "" {
			return "", fmt.Errorf("file %q: field name is required", f.Name)
		}
		if f.Content == nil {
			return "", fmt.Errorf("file %q: content is required", f.Name)
		}

		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.Name)))
		h.Set("Content-Type", ct)

		part, err := mw.CreatePart(h)
		if err != nil {
			return "", fmt.Errorf("file %q: %w", f.Name, err)
		}

		if _, err := io.Copy(part, f.Content); err != nil {
			return "", fmt.Errorf("file %q: %w", f.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return "", err
	}

	return mw.FormDataContentType(), nil
}
