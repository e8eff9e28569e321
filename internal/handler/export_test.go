package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transfer-tracker/internal/archive"
	"github.com/pkordes/transfer-tracker/internal/domain"
	"github.com/pkordes/transfer-tracker/internal/middleware"
)

const sampleCSV = "Date,Day\n2025-07-01,Tuesday\n"

// capturingImport records the uploaded bytes and reports them as one new row.
func capturingImport(got *string) *mockExportServicer {
	return &mockExportServicer{
		importFn: func(_ context.Context, r io.Reader) (domain.ImportResult, error) {
			b, err := io.ReadAll(r)
			if err != nil {
				return domain.ImportResult{}, err
			}
			*got = string(b)
			return domain.ImportResult{Received: 1, Added: 1, Total: 4}, nil
		},
	}
}

// ---- POST /transfers/import ------------------------------------------------

func TestImportTransfers_RawCSVBody(t *testing.T) {
	var got string
	req := httptest.NewRequest(http.MethodPost, "/transfers/import", strings.NewReader(sampleCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()

	newHTTPHandler(nil, capturingImport(&got)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sampleCSV, got)
	assert.JSONEq(t, `{"received":1,"added":1,"duplicates_removed":0,"total":4}`, rec.Body.String())
}

func TestImportTransfers_MultipartUpload(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "transfers.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	var got string
	req := httptest.NewRequest(http.MethodPost, "/transfers/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	newHTTPHandler(nil, capturingImport(&got)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sampleCSV, got)
}

func TestImportTransfers_MultipartWithoutFilePart(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "hello"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/transfers/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	newHTTPHandler(nil, &mockExportServicer{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, `"file"`)
}

func TestImportTransfers_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("service.ExportService.Import: %w: missing columns: \"ETA\"", domain.ErrSchemaMismatch), "schema_mismatch"},
		{fmt.Errorf("service.ExportService.Import: %w: line 3, column \"Pax\": bad", domain.ErrMalformedRow), "malformed_row"},
		{fmt.Errorf("service.ExportService.Import: %w", domain.ErrEmptyInput), "empty_input"},
	}
	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			svc := &mockExportServicer{
				importFn: func(_ context.Context, _ io.Reader) (domain.ImportResult, error) {
					return domain.ImportResult{}, tc.err
				},
			}
			rec := httptest.NewRecorder()
			newHTTPHandler(nil, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transfers/import", strings.NewReader("x")))

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.code, body.Error.Code)
			assert.NotContains(t, body.Error.Message, "service.ExportService")
		})
	}
}

func TestImportTransfers_413_StreamingBodyOverLimit(t *testing.T) {
	svc := &mockExportServicer{
		importFn: func(_ context.Context, r io.Reader) (domain.ImportResult, error) {
			_, err := io.ReadAll(r)
			return domain.ImportResult{}, fmt.Errorf("service.ExportService.Import: %w: %w", domain.ErrMalformedRow, err)
		},
	}
	h := middleware.NewMaxBodySizeHandler(16)(newHTTPHandler(nil, svc))

	req := httptest.NewRequest(http.MethodPost, "/transfers/import", strings.NewReader(strings.Repeat("x", 64)))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "request_too_large", decodeError(t, rec).Error.Code)
}

// ---- GET /transfers/export -------------------------------------------------

func TestExportTransfers_200_CSVAttachment(t *testing.T) {
	svc := &mockExportServicer{
		export: func(_ context.Context, w io.Writer) error {
			_, err := io.WriteString(w, sampleCSV)
			return err
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(nil, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transfers/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="all_transfers.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, sampleCSV, rec.Body.String())
}

func TestExportTransfers_500_NothingPartialSent(t *testing.T) {
	svc := &mockExportServicer{
		export: func(_ context.Context, w io.Writer) error {
			_, _ = io.WriteString(w, "Date,Day\n")
			return fmt.Errorf("disk went away")
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(nil, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transfers/export", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotContains(t, rec.Body.String(), "Date,Day")
}

// ---- POST /transfers/export/archive ----------------------------------------

func TestArchiveExport_201(t *testing.T) {
	svc := &mockExportServicer{
		archive: func(_ context.Context) (archive.Info, error) {
			return archive.Info{Key: "exports/2025-07-01/x/all_transfers.csv", URL: "https://example.test/x"}, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(nil, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transfers/export/archive", nil))

	require.Equal(t, http.StatusCreated, rec.Code)
	var info archive.Info
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&info))
	assert.Equal(t, "https://example.test/x", info.URL)
}

func TestArchiveExport_404_WhenDisabled(t *testing.T) {
	svc := &mockExportServicer{
		archive: func(_ context.Context) (archive.Info, error) {
			return archive.Info{}, domain.ErrArchiveDisabled
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(nil, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transfers/export/archive", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Code)
}
