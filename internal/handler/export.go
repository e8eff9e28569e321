package handler

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/pkordes/transfer-tracker/internal/tabular"
)

// multipartMemory is how much of a multipart upload is held in memory
// before spilling to temp files.
const multipartMemory = 8 << 20

type importResponse struct {
	Received          int `json:"received"`
	Added             int `json:"added"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	Total             int `json:"total"`
}

// ImportTransfers handles POST /transfers/import.
// The file is either the raw request body (text/csv) or the "file" part of
// a multipart/form-data upload.
func (s *Server) ImportTransfers(w http.ResponseWriter, r *http.Request) {
	src, closeSrc, err := uploadedFile(r)
	if err != nil {
		requestError(w, err)
		return
	}
	defer closeSrc()

	res, err := s.exports.Import(r.Context(), src)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{
		Received:          res.Received,
		Added:             res.Added,
		DuplicatesRemoved: res.DuplicatesRemoved,
		Total:             res.Total,
	})
}

// ExportTransfers handles GET /transfers/export.
// The body is the full collection as all_transfers.csv.
func (s *Server) ExportTransfers(w http.ResponseWriter, r *http.Request) {
	// Buffered so a storage failure can still be answered with a JSON error.
	var buf bytes.Buffer
	if err := s.exports.Export(r.Context(), &buf); err != nil {
		s.serviceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", tabular.ContentType+"; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+tabular.ExportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// ArchiveExport handles POST /transfers/export/archive.
func (s *Server) ArchiveExport(w http.ResponseWriter, r *http.Request) {
	info, err := s.exports.Archive(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// uploadedFile returns the reader holding the uploaded CSV and a func that
// releases it.
func uploadedFile(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, nil, err
	}
	f, _, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		_ = r.MultipartForm.RemoveAll()
		return nil, nil, errors.New(`multipart upload has no "file" part`)
	}
	if err != nil {
		_ = r.MultipartForm.RemoveAll()
		return nil, nil, err
	}
	return f, func() {
		_ = f.Close()
		_ = r.MultipartForm.RemoveAll()
	}, nil
}

