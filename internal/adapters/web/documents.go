package web

import (
	"fmt"
	"io"
	"net/http"

	"studio-console/internal/app"
)

const maxUploadBytes = 50 << 20 // 50 MB

// listDocuments handles GET /api/documents, optionally filtered with
// ?client_id=...
func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.svc.ListDocuments(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, docs)
}

// uploadDocument handles POST /api/documents as multipart form data. The
// file part is named "file"; an optional "client_id" field links the
// document to a client.
func (h *Handler) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, "invalid multipart body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, "file part is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var clientID *string
	if v := r.FormValue("client_id"); v != "" {
		clientID = &v
	}

	doc, err := h.svc.UploadDocument(r.Context(), app.UploadDocumentRequest{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		ClientID:    clientID,
		Body:        file,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, doc)
}

// downloadDocument handles GET /api/documents/download?id=... and streams
// the stored file.
func (h *Handler) downloadDocument(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, r, "id query parameter is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	doc, body, err := h.svc.OpenDocument(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	defer body.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	_, _ = io.Copy(w, body)
}

// deleteDocument handles DELETE /api/documents/{id}.
func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteDocument(r.Context(), idParam(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
