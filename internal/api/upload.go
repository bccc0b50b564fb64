package api

import (
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const uploadField = "file"

type upload struct {
	name     string
	mimeType string
	data     []byte
}

// readUpload reads the multipart "file" field, enforcing the body cap.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		uploadError(w, err)
		return nil, false
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read upload", zap.Error(err))
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return nil, false
	}
	if len(data) == 0 {
		http.Error(w, "Empty file", http.StatusBadRequest)
		return nil, false
	}
	return &upload{name: header.Filename, mimeType: header.Header.Get("Content-Type"), data: data}, true
}

type imageRequest struct {
	DataURL string `json:"data_url"`
}

// readImage accepts either a multipart upload or a JSON camera capture carrying
// a base64 data URL.
func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		f, ok := h.readUpload(w, r)
		if !ok {
			return nil, "", false
		}
		mimeType := f.mimeType
		if !strings.HasPrefix(mimeType, "image/") {
			mimeType = http.DetectContentType(f.data)
		}
		return f.data, mimeType, true
	}

	var req imageRequest
	if !h.decodeJSON(w, r, &req) {
		return nil, "", false
	}
	data, mimeType, err := parseDataURL(req.DataURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	return data, mimeType, true
}

var errBadDataURL = errors.New("data_url must be a base64 image data URL")

// parseDataURL decodes "data:<mime>;base64,<payload>".
func parseDataURL(s string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return nil, "", errBadDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", errBadDataURL
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok || !strings.HasPrefix(mimeType, "image/") {
		return nil, "", errBadDataURL
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return nil, "", errBadDataURL
	}
	return data, mimeType, nil
}

func uploadError(w http.ResponseWriter, err error) {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) {
		http.Error(w, "Arquivo muito grande.", http.StatusRequestEntityTooLarge)
		return
	}
	http.Error(w, "Invalid multipart form", http.StatusBadRequest)
}
