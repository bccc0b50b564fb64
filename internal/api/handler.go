package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/RichardoC/humaniza/internal/extract"
	"github.com/RichardoC/humaniza/internal/history"
	"github.com/RichardoC/humaniza/internal/llm"
	"github.com/RichardoC/humaniza/internal/models"
	"github.com/RichardoC/humaniza/internal/pdfgen"
)

// DefaultMaxUploadBytes caps request bodies when no limit is configured.
const DefaultMaxUploadBytes = 20 << 20

// User-facing messages.
const (
	msgGenerationFailed = "Não foi possível gerar o texto. Tente novamente."
	msgDetectionFailed  = "Não foi possível analisar o texto. Tente novamente."
	msgOCRFailed        = "Não foi possível ler a imagem. Tente novamente."
	msgEmptyText        = "Digite ou cole um texto primeiro."
	msgLoginRequired    = "Faça login para acessar o histórico."
)

type Handler struct {
	store     *history.Store
	llm       llm.Generator
	auth      Auth
	logger    *zap.Logger
	maxUpload int64
	now       func() time.Time
}

// Option customises a Handler.
type Option func(*Handler)

// WithAuth enables bearer-token owners and the /api/auth routes.
func WithAuth(a Auth) Option {
	return func(h *Handler) { h.auth = a }
}

// WithMaxUpload sets the request body cap in bytes.
func WithMaxUpload(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

func NewHandler(store *history.Store, generator llm.Generator, logger *zap.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		store:     store,
		llm:       generator,
		logger:    logger,
		maxUpload: DefaultMaxUploadBytes,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the API mux wrapped in request-id and access-log middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/modes", h.GetModes)
	mux.HandleFunc("/api/humanize", h.Humanize)
	mux.HandleFunc("/api/detect", h.Detect)
	mux.HandleFunc("/api/extract/image", h.ExtractImage)
	mux.HandleFunc("/api/extract/document", h.ExtractDocument)
	mux.HandleFunc("/api/convert/pdf", h.ConvertPDF)
	mux.HandleFunc("/api/history", h.History)
	mux.HandleFunc("/api/history/item", h.DeleteHistoryItem)
	mux.HandleFunc("/api/auth/signin", h.SignIn)
	mux.HandleFunc("/api/auth/signup", h.SignUp)
	mux.HandleFunc("/api/auth/session", h.Session)
	mux.HandleFunc("/api/auth/oauth", h.OAuth)
	return h.withRequestLog(mux)
}

type HumanizeRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

type HumanizeResponse struct {
	Text    string                `json:"text"`
	Sources []models.Source       `json:"sources"`
	Record  *models.HistoryRecord `json:"record,omitempty"`
}

type TextRequest struct {
	Text string `json:"text"`
}

type TextResponse struct {
	Text string `json:"text"`
}

func (h *Handler) GetModes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.writeJSON(w, http.StatusOK, models.Modes)
}

func (h *Handler) Humanize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req HumanizeRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, msgEmptyText, http.StatusBadRequest)
		return
	}
	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Resolve the owner before spending a model call on a bad token.
	owner, ctx, err := h.ownerFromRequest(r)
	if err != nil {
		ownerError(w, err)
		return
	}

	var gen *models.Generation
	if mode == models.ModeSearch {
		gen, err = h.llm.Search(ctx, req.Text)
	} else {
		gen, err = h.llm.Humanize(ctx, req.Text, mode)
	}
	if err != nil {
		h.generationError(w, r, "Failed to generate text", msgGenerationFailed, err, zap.String("mode", string(mode)))
		return
	}

	resp := HumanizeResponse{Text: gen.Text, Sources: gen.Sources}
	if resp.Sources == nil {
		resp.Sources = []models.Source{}
	}
	if owner != "" && mode.Saved() {
		rec, err := h.store.Save(ctx, owner, req.Text, gen.Text, mode)
		if err != nil {
			h.logger.Error("Failed to save history record", zap.Error(err), zap.String("owner", owner))
			http.Error(w, "Failed to save history", http.StatusInternalServerError)
			return
		}
		resp.Record = rec
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Detect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req TextRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, msgEmptyText, http.StatusBadRequest)
		return
	}

	detection, err := h.llm.Detect(r.Context(), req.Text)
	if err != nil {
		h.generationError(w, r, "Failed to detect AI text", msgDetectionFailed, err)
		return
	}
	h.writeJSON(w, http.StatusOK, detection)
}

func (h *Handler) ExtractImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, mimeType, ok := h.readImage(w, r)
	if !ok {
		return
	}
	text, err := h.llm.ExtractText(r.Context(), data, mimeType)
	if err != nil {
		h.generationError(w, r, "Failed to extract text from image", msgOCRFailed, err)
		return
	}
	h.writeJSON(w, http.StatusOK, TextResponse{Text: text})
}

func (h *Handler) ExtractDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	text, err := extract.FromFile(f.name, f.data)
	if err != nil {
		h.logger.Warn("Failed to extract document text", zap.Error(err), zap.String("file", f.name))
		if errors.Is(err, extract.ErrUnsupportedFormat) {
			http.Error(w, "Formato não suportado. Use PDF, DOCX ou TXT.", http.StatusUnsupportedMediaType)
			return
		}
		http.Error(w, "Não foi possível ler o documento.", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, http.StatusOK, TextResponse{Text: text})
}

func (h *Handler) ConvertPDF(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := pdfgen.FromImage(f.data, &buf); err != nil {
		h.logger.Warn("Failed to convert image to pdf", zap.Error(err), zap.String("file", f.name))
		if errors.Is(err, pdfgen.ErrUnsupportedImage) {
			http.Error(w, "Envie uma imagem JPEG, PNG ou GIF.", http.StatusUnsupportedMediaType)
			return
		}
		http.Error(w, "Failed to generate pdf", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+pdfgen.Filename(h.now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("Failed to write pdf", zap.Error(err))
	}
}

// History lists (GET) or clears (DELETE) the caller's history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	owner, ctx, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		records, err := h.store.List(ctx, owner)
		if err != nil {
			h.logger.Error("Failed to list history", zap.Error(err), zap.String("owner", owner))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		h.logger.Debug("Retrieved history", zap.Int("count", len(records)), zap.String("owner", owner))
		h.writeJSON(w, http.StatusOK, records)

	case http.MethodDelete:
		if err := h.store.Clear(ctx, owner); err != nil {
			h.logger.Error("Failed to clear history", zap.Error(err), zap.String("owner", owner))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) DeleteHistoryItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	owner, ctx, ok := h.requireOwner(w, r)
	if !ok {
		return
	}

	var localID int64
	if raw := r.URL.Query().Get("id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id < 0 {
			http.Error(w, "Invalid history id", http.StatusBadRequest)
			return
		}
		localID = id
	}
	remoteID := strings.TrimSpace(r.URL.Query().Get("remote_id"))
	if localID == 0 && remoteID == "" {
		http.Error(w, "id or remote_id is required", http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(ctx, owner, localID, remoteID); err != nil {
		h.logger.Error("Failed to delete history record", zap.Error(err), zap.String("owner", owner), zap.Int64("id", localID), zap.String("remote_id", remoteID))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireOwner(w http.ResponseWriter, r *http.Request) (string, context.Context, bool) {
	owner, ctx, err := h.ownerFromRequest(r)
	if err != nil {
		ownerError(w, err)
		return "", nil, false
	}
	if owner == "" {
		http.Error(w, msgLoginRequired, http.StatusUnauthorized)
		return "", nil, false
	}
	return owner, ctx, true
}

// generationError maps a backend failure: empty input is the caller's fault,
// anything else is reported as a bad gateway with a friendly message.
func (h *Handler) generationError(w http.ResponseWriter, r *http.Request, logMsg, userMsg string, err error, fields ...zap.Field) {
	if errors.Is(err, llm.ErrEmptyInput) {
		http.Error(w, msgEmptyText, http.StatusBadRequest)
		return
	}
	if errors.Is(r.Context().Err(), context.Canceled) {
		h.logger.Debug("Client went away during generation", zap.String("path", r.URL.Path))
		return
	}
	h.logger.Error(logMsg, append(fields, zap.Error(err))...)
	http.Error(w, userMsg, http.StatusBadGateway)
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}
