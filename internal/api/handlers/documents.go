package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/hugh/docvault/internal/api/dto"
	"github.com/hugh/docvault/internal/api/middleware"
	"github.com/hugh/docvault/internal/api/validation"
	"github.com/hugh/docvault/internal/apperr"
	"github.com/hugh/docvault/internal/documents"
)

// multipartOverhead is the room left for part headers and boundaries on top
// of the file cap.
const multipartOverhead = 64 << 10

const (
	maxTitleLength    = 255
	defaultBinaryType = "application/octet-stream"
)

var (
	errMissingFile   = apperr.Validation("File is required")
	errMalformedForm = apperr.Validation("Invalid multipart form")
	errMissingName   = apperr.Validation("File name is required")
)

type DocumentHandler struct {
	docs     *documents.Store
	maxBytes int64
}

// NewDocumentHandler serves documents. Uploads of maxBytes or more are refused.
func NewDocumentHandler(store *documents.Store, maxBytes int64) *DocumentHandler {
	return &DocumentHandler{docs: store, maxBytes: maxBytes}
}

type upload struct {
	content      []byte
	originalName string
	mimeType     string
}

// readUpload buffers the multipart "file" part in memory.
func (h *DocumentHandler) readUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, h.errTooLarge()
		case errors.Is(err, http.ErrMissingFile):
			return nil, errMissingFile
		default:
			return nil, errMalformedForm
		}
	}
	defer file.Close()

	if header.Size >= h.maxBytes {
		return nil, h.errTooLarge()
	}

	content, err := io.ReadAll(io.LimitReader(file, h.maxBytes))
	if err != nil {
		return nil, errMalformedForm
	}
	if int64(len(content)) >= h.maxBytes {
		return nil, h.errTooLarge()
	}
	if len(content) == 0 {
		return nil, documents.ErrEmptyContent
	}

	name := validation.CleanFilename(header.Filename)
	if name == "" {
		return nil, errMissingName
	}

	return &upload{
		content:      content,
		originalName: name,
		mimeType:     detectMimeType(header.Header.Get("Content-Type"), content),
	}, nil
}

func (h *DocumentHandler) errTooLarge() error {
	return apperr.Validation(fmt.Sprintf("File too large. Maximum size is %d bytes", h.maxBytes))
}

// detectMimeType keeps the declared type unless it is missing or generic.
func detectMimeType(declared string, content []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != defaultBinaryType {
		return declared
	}
	return mimetype.Detect(content).String()
}

// Upload handles POST /documents/upload
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	up, err := h.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		title = r.FormValue("title")
	}
	title = validation.TruncateString(validation.SanitizeString(title), maxTitleLength)

	doc, err := h.docs.Save(r.Context(), documents.SaveInput{
		Content:      up.content,
		Title:        title,
		OriginalName: up.originalName,
		MimeType:     up.mimeType,
		Owner:        middleware.CallerFrom(r.Context()),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.DocumentToResponse(doc))
}

// List handles GET /documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.ListActive(r.Context(), middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.DocumentsToResponse(docs))
}

// Get handles GET /documents/{id}, streaming the stored bytes.
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, documents.ErrDocumentNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := h.docs.GetByID(r.Context(), id, middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	contentType := doc.MimeType
	if contentType == "" {
		contentType = defaultBinaryType
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": doc.OriginalName,
	}))
	http.ServeContent(w, r, doc.OriginalName, doc.UpdatedAt, bytes.NewReader(doc.Content))
}

// Update handles PUT /documents/{id}, replacing the file wholesale.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, documents.ErrDocumentNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	up, err := h.readUpload(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	doc, err := h.docs.ReplaceContent(r.Context(), id, documents.ReplaceInput{
		Content:      up.content,
		OriginalName: up.originalName,
		MimeType:     up.mimeType,
	}, middleware.CallerFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DocumentToResponse(doc))
}

// Delete handles DELETE /documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, documents.ErrDocumentNotFound)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.docs.SoftDelete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Document deleted"})
}
