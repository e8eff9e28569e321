package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/transfer-tracker/internal/archive"
	"github.com/pkordes/transfer-tracker/internal/domain"
	"github.com/pkordes/transfer-tracker/internal/handler"
	"github.com/pkordes/transfer-tracker/internal/repo"
	"github.com/pkordes/transfer-tracker/internal/service"
)

// mockTransferServicer is a test double for handler.TransferServicer.
// Set only the method fields your test needs.
type mockTransferServicer struct {
	schema        domain.Schema
	submit        func(ctx context.Context, c domain.Candidate) (domain.TransferRecord, error)
	list          func(ctx context.Context, f service.Filter) ([]domain.TransferRecord, error)
	filterOptions func(ctx context.Context, field string) ([]string, error)
}

func (m *mockTransferServicer) Schema() domain.Schema { return m.schema }
func (m *mockTransferServicer) Submit(ctx context.Context, c domain.Candidate) (domain.TransferRecord, error) {
	return m.submit(ctx, c)
}
func (m *mockTransferServicer) List(ctx context.Context, f service.Filter) ([]domain.TransferRecord, error) {
	return m.list(ctx, f)
}
func (m *mockTransferServicer) FilterOptions(ctx context.Context, field string) ([]string, error) {
	return m.filterOptions(ctx, field)
}

// compile-time check: mockTransferServicer must satisfy handler.TransferServicer.
var _ handler.TransferServicer = (*mockTransferServicer)(nil)

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	importFn func(ctx context.Context, r io.Reader) (domain.ImportResult, error)
	export   func(ctx context.Context, w io.Writer) error
	archive  func(ctx context.Context) (archive.Info, error)
}

func (m *mockExportServicer) Import(ctx context.Context, r io.Reader) (domain.ImportResult, error) {
	return m.importFn(ctx, r)
}
func (m *mockExportServicer) Export(ctx context.Context, w io.Writer) error {
	return m.export(ctx, w)
}
func (m *mockExportServicer) Archive(ctx context.Context) (archive.Info, error) {
	return m.archive(ctx)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into a chi router.
func newHTTPHandler(transfers handler.TransferServicer, exports handler.ExportServicer) http.Handler {
	return handler.NewServer(transfers, exports, nil).Handler()
}

type errorBody struct {
	Error struct {
		Code    string   `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func validRequest() map[string]any {
	return map[string]any{
		"date":             "2025-07-12",
		"centre":           "Taunton School",
		"transfer_type":    "Arrival",
		"agency":           "Direct enrolment",
		"nationality":      "Spain",
		"group_type":       "Group",
		"pax":              14,
		"meet_and_greet":   "Yes",
		"check_in":         "-- Select --",
		"flight_number":    "IB3170",
		"airport_station":  "London Heathrow",
		"terminal":         "T4",
		"eta":              "00:00",
		"gl_count":         2,
		"gl_first_name":    "Lucia",
		"gl_last_name":     "Moreno",
		"gl_country_code":  "+34 (Spain)",
		"gl_mobile_number": "612345678",
	}
}

func recordFixture() domain.TransferRecord {
	return domain.TransferRecord{
		Date:           time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC),
		Centre:         "Taunton School",
		TransferType:   domain.Arrival,
		Agency:         "Direct enrolment",
		Nationality:    "Spain",
		GroupType:      domain.Group,
		Pax:            14,
		MeetAndGreet:   "Yes",
		CheckIn:        domain.CheckInNA,
		FlightNumber:   "IB3170",
		AirportStation: "London Heathrow",
		Terminal:       "T4",
		ETA:            domain.NewClockTime(0, 0),
		GLCount:        2,
		GLName:         "Lucia Moreno",
		GLMobile:       "+34 612345678",
	}
}

// ---- POST /transfers -------------------------------------------------------

func TestCreateTransfer_201(t *testing.T) {
	var got domain.Candidate
	svc := &mockTransferServicer{
		submit: func(_ context.Context, c domain.Candidate) (domain.TransferRecord, error) {
			got = c
			return recordFixture(), nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/transfers", jsonBody(t, validRequest()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, time.Date(2025, 7, 12, 0, 0, 0, 0, time.UTC), got.Date)
	assert.Equal(t, domain.NewClockTime(0, 0), got.ETA, "midnight must arrive as a set time")
	assert.False(t, got.ETD.Valid)
	assert.Equal(t, domain.Unselected, got.CheckIn)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2025-07-12", resp["date"])
	assert.Equal(t, "Saturday", resp["day_of_week"])
	assert.Equal(t, "00:00", resp["eta"])
	assert.NotContains(t, resp, "etd")
	assert.Equal(t, "N/A", resp["check_in"])
}

func TestCreateTransfer_422_ValidationMessages(t *testing.T) {
	svc := &mockTransferServicer{
		submit: func(_ context.Context, _ domain.Candidate) (domain.TransferRecord, error) {
			return domain.TransferRecord{}, &domain.ValidationError{Messages: []string{
				"Please enter ETA 1 (arrival in country) for arrival.",
			}}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/transfers", jsonBody(t, validRequest()))
	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "validation_error", body.Error.Code)
	assert.Equal(t, []string{"Please enter ETA 1 (arrival in country) for arrival."}, body.Error.Details)
}

func TestCreateTransfer_422_BlankDateReachesFieldRules(t *testing.T) {
	for name, date := range map[string]any{"empty": "", "blank": "  ", "null": nil} {
		t.Run(name, func(t *testing.T) {
			var got domain.Candidate
			store := repo.NewCSVTransferRepo(filepath.Join(t.TempDir(), "transfer_data.csv"), domain.ProfileSimple)
			transfers := service.NewTransferService(store, domain.ProfileSimple, nil)
			svc := &mockTransferServicer{
				submit: func(ctx context.Context, c domain.Candidate) (domain.TransferRecord, error) {
					got = c
					return transfers.Submit(ctx, c)
				},
			}
			in := validRequest()
			in["date"] = date

			rec := httptest.NewRecorder()
			newHTTPHandler(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transfers", jsonBody(t, in)))

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.True(t, got.Date.IsZero())
			body := decodeError(t, rec)
			assert.Equal(t, "validation_error", body.Error.Code)
			assert.Equal(t, []string{"Please select a Date."}, body.Error.Details)
		})
	}
}

func TestCreateTransfer_422_PaxBelowOne(t *testing.T) {
	svc := &mockTransferServicer{
		submit: func(_ context.Context, _ domain.Candidate) (domain.TransferRecord, error) {
			t.Fatal("service must not be called")
			return domain.TransferRecord{}, nil
		},
	}
	in := validRequest()
	in["pax"] = 0

	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transfers", jsonBody(t, in)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, []string{"pax must be at least 1"}, decodeError(t, rec).Error.Details)
}

func TestCreateTransfer_422_BadTime(t *testing.T) {
	in := validRequest()
	in["eta"] = "half past nine"

	rec := httptest.NewRecorder()
	newHTTPHandler(&mockTransferServicer{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transfers", jsonBody(t, in)))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, "eta")
}

func TestCreateTransfer_422_MalformedJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transfers", bytes.NewBufferString(`{"date":`))
	newHTTPHandler(&mockTransferServicer{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateTransfer_500_HidesInternalError(t *testing.T) {
	svc := &mockTransferServicer{
		submit: func(_ context.Context, _ domain.Candidate) (domain.TransferRecord, error) {
			return domain.TransferRecord{}, errors.New("open /data/transfer_data.csv: permission denied")
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transfers", jsonBody(t, validRequest())))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "internal_error", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "permission denied")
}

// ---- GET /transfers --------------------------------------------------------

func TestListTransfers_200_PassesFilter(t *testing.T) {
	var got service.Filter
	svc := &mockTransferServicer{
		list: func(_ context.Context, f service.Filter) ([]domain.TransferRecord, error) {
			got = f
			return []domain.TransferRecord{recordFixture()}, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transfers?field=centre&value=Taunton+School", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.Filter{Field: "centre", Value: "Taunton School"}, got)

	var resp struct {
		Data  []map[string]any `json:"data"`
		Total int              `json:"total"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "Spain", resp.Data[0]["nationality"])
}

func TestListTransfers_200_EmptyIsArray(t *testing.T) {
	svc := &mockTransferServicer{
		list: func(_ context.Context, _ service.Filter) ([]domain.TransferRecord, error) {
			return []domain.TransferRecord{}, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transfers", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"total":0}`, rec.Body.String())
}

func TestListTransfers_422_UnknownField(t *testing.T) {
	svc := &mockTransferServicer{
		list: func(_ context.Context, _ service.Filter) ([]domain.TransferRecord, error) {
			return nil, &domain.ValidationError{Messages: []string{`cannot filter by "pax"`}}
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transfers?field=pax&value=3", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- GET /transfers/filters ------------------------------------------------

func TestListFilterOptions_DefaultsToNationality(t *testing.T) {
	var gotField string
	svc := &mockTransferServicer{
		filterOptions: func(_ context.Context, field string) ([]string, error) {
			gotField = field
			return []string{"All", "Italy", "Spain"}, nil
		},
	}

	rec := httptest.NewRecorder()
	newHTTPHandler(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transfers/filters", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.FieldNationality, gotField)
	assert.JSONEq(t, `{"field":"nationality","options":["All","Italy","Spain"]}`, rec.Body.String())
}
