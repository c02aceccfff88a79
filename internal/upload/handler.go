package upload

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Tyrowin/gochat/internal/log"
	"github.com/Tyrowin/gochat/internal/response"
)

// Result is the JSON body returned for a successful upload.
type Result struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// Handler exposes the store over HTTP.
type Handler struct {
	store *Store
}

// NewHandler creates the upload HTTP handler.
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts POST /upload and GET {prefix}/{name}.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/upload", h.Upload).Methods(http.MethodPost)
	r.HandleFunc(h.store.cfg.PublicPrefix+"/{name}", h.Download).Methods(http.MethodGet, http.MethodHead)
}

// Upload accepts a multipart form with a single "file" field.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.store.MaxUploadSize()+1<<20)

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "没有文件上传")
		return
	}
	defer file.Close()

	if header.Size > h.store.MaxUploadSize() {
		response.Error(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "file too large")
		return
	}

	blob, err := h.store.Store(r.Context(), file, header.Size, header.Filename)
	if err != nil {
		if errors.Is(err, ErrInvalidName) {
			response.BadRequest(w, "invalid file name")
			return
		}
		log.Ctx(r.Context()).Error().Err(err).Msg("upload failed")
		response.InternalError(w, "upload failed")
		return
	}

	log.Ctx(r.Context()).Info().Str(log.FieldBlobKey, blob.Key).Int64("size", blob.Size).Msg("file uploaded")
	response.JSON(w, http.StatusOK, Result{
		Filename: blob.Filename,
		Path:     absoluteURL(r, blob.URL),
		Size:     blob.Size,
		Type:     blob.MimeType,
	})
}

// Download streams a blob back with its original name.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["name"]

	rc, blob, err := h.store.Retrieve(r.Context(), key)
	switch {
	case errors.Is(err, ErrInvalidName):
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return
	case errors.Is(err, ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		log.Ctx(r.Context()).Error().Err(err).Str(log.FieldBlobKey, key).Msg("failed to read blob")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	disposition := "inline"
	if r.URL.Query().Get("download") == "true" || !inlineType(blob.MimeType) {
		disposition = "attachment"
	}

	w.Header().Set("Content-Type", blob.MimeType)
	w.Header().Set("Content-Disposition", disposition+"; filename*=UTF-8''"+url.PathEscape(blob.Filename))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Str(log.FieldBlobKey, key).Msg("blob download interrupted")
	}
}

func inlineType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") ||
		strings.HasPrefix(mimeType, "text/") ||
		strings.HasPrefix(mimeType, "application/pdf")
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host + path
}
