package handlers

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"shiftinsight.com/shiftinsight/core"
	"shiftinsight.com/shiftinsight/loader"
	"shiftinsight.com/shiftinsight/model"
	"shiftinsight.com/shiftinsight/security"
	"shiftinsight.com/shiftinsight/web/middlewares"
)

var rawSecret = []byte("0123456789abcdef0123456789abcdef")

type fakeService struct {
	input  loader.Input
	body   string
	source string
	events []loader.Event
	err    error

	runs          []model.LoadRun
	total         int64
	limit, offset int

	run    *model.LoadRun
	getErr error
}

func (f *fakeService) Load(ctx context.Context, in loader.Input, source string, progress loader.ProgressFunc) (*loader.Summary, error) {
	f.input, f.source = in, source
	body, _ := io.ReadAll(in.Reader)
	f.body = string(body)
	for _, e := range f.events {
		progress(e)
	}
	return nil, f.err
}

func (f *fakeService) ListLoadRuns(ctx context.Context, limit, offset int) ([]model.LoadRun, int64, error) {
	f.limit, f.offset = limit, offset
	return f.runs, f.total, nil
}

func (f *fakeService) GetLoadRun(ctx context.Context, loadID string) (*model.LoadRun, error) {
	return f.run, f.getErr
}

func newRouter(svc Service, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	r := gin.New()
	api := r.Group("/api")
	api.Use(middlewares.Authentication(rawSecret))
	Register(api, svc, maxUpload, logger)
	return r
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := security.CreateIdentityToken(&security.Operator{UserName: "jane", Role: role},
		base64.StdEncoding.EncodeToString(rawSecret), time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

func uploadRequest(t *testing.T, role, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, role))
	return req
}

func decodeEvents(t *testing.T, body string) []loader.Event {
	t.Helper()
	var events []loader.Event
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		var e loader.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		events = append(events, e)
	}
	return events
}

func TestUploadStreamsEvents(t *testing.T) {
	svc := &fakeService{events: []loader.Event{
		{Status: loader.StatusProgress, Message: "Reading march.xlsx", Progress: 5},
		{Status: loader.StatusComplete, Message: "Loaded 1 of 1 rows", Progress: 100, Result: &loader.Summary{
			Inserted:     1,
			Verification: loader.Verification{ExcelRevenue: 120, DBRevenue: 120, Match: true},
		}},
	}}
	rec := httptest.NewRecorder()
	newRouter(svc, 1<<20).ServeHTTP(rec, uploadRequest(t, security.RoleAdmin, "march.xlsx", "workbook", map[string]string{"sheet": "Shifts"}))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ndjsonContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, svc.input.LoadID, rec.Header().Get("X-Load-ID"))
	assert.NotEmpty(t, svc.input.LoadID)
	assert.Equal(t, "march.xlsx", svc.input.Filename)
	assert.Equal(t, "Shifts", svc.input.Sheet)
	assert.Equal(t, "workbook", svc.body)
	assert.Equal(t, core.SourceUpload, svc.source)

	events := decodeEvents(t, rec.Body.String())
	require.Len(t, events, 2)
	assert.Equal(t, 5, events[0].Progress)
	assert.Equal(t, loader.StatusComplete, events[1].Status)
	require.NotNil(t, events[1].Result)
	assert.Equal(t, 1, events[1].Result.Inserted)
	assert.True(t, events[1].Result.Verification.Match)
}

func TestUploadStreamsFatalError(t *testing.T) {
	svc := &fakeService{
		events: []loader.Event{{Status: loader.StatusError, Message: "Upload error: Missing required columns: dns"}},
		err:    &loader.MissingColumnsError{Columns: []string{loader.ColDNS}},
	}
	rec := httptest.NewRecorder()
	newRouter(svc, 0).ServeHTTP(rec, uploadRequest(t, security.RoleAdmin, "march.csv", "a,b", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	events := decodeEvents(t, rec.Body.String())
	require.Len(t, events, 1)
	assert.Equal(t, loader.StatusError, events[0].Status)
}

func TestUploadRejects(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		filename  string
		content   string
		maxUpload int64
		code      int
		message   string
	}{
		{name: "missing file", role: security.RoleAdmin, code: http.StatusBadRequest, message: "Field 'file' is required"},
		{name: "unsupported type", role: security.RoleAdmin, filename: "shifts.pdf", content: "x", code: http.StatusBadRequest, message: "Unsupported file type"},
		{name: "too large", role: security.RoleAdmin, filename: "big.xlsx", content: strings.Repeat("x", 8192), maxUpload: 1024, code: http.StatusRequestEntityTooLarge},
		{name: "viewer", role: security.RoleViewer, filename: "march.xlsx", content: "x", code: http.StatusForbidden, message: "insufficient role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := httptest.NewRecorder()
			newRouter(svc, tt.maxUpload).ServeHTTP(rec, uploadRequest(t, tt.role, tt.filename, tt.content, nil))

			assert.Equal(t, tt.code, rec.Code)
			if tt.message != "" {
				assert.Contains(t, rec.Body.String(), tt.message)
			}
			assert.Empty(t, svc.input.LoadID, "service must not be called")
		})
	}
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", bearer(t, security.RoleViewer))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListLoadRuns(t *testing.T) {
	svc := &fakeService{
		runs: []model.LoadRun{{
			LoadID:      "5f0c1a4e-3b7d-4c55-9a53-2f4a0e7d9b11",
			Filename:    "march.xlsx",
			Status:      model.LoadStatusComplete,
			Inserted:    10,
			FirstDateID: 20240301,
			LastDateID:  20240331,
			Match:       true,
			CreatedAt:   time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC),
		}},
		total: 31,
	}

	rec := get(t, newRouter(svc, 0), "/api/uploads?limit=10&offset=20")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10, svc.limit)
	assert.Equal(t, 20, svc.offset)

	var resp struct {
		Data       []map[string]any `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(31), resp.Pagination.Total)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "march.xlsx", resp.Data[0]["filename"])
	assert.Equal(t, "2024-03-01", resp.Data[0]["firstDate"])
	assert.Equal(t, "2024-03-31", resp.Data[0]["lastDate"])
	assert.Equal(t, "2024-04-02T09:30:00", resp.Data[0]["createdAt"])
}

func TestListLoadRunsPaging(t *testing.T) {
	svc := &fakeService{}
	rec := get(t, newRouter(svc, 0), "/api/uploads")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultPageSize, svc.limit)
	assert.Equal(t, 0, svc.offset)
	assert.JSONEq(t, `{"data":[],"pagination":{"total":0,"limit":50,"offset":0}}`, rec.Body.String())

	rec = get(t, newRouter(svc, 0), "/api/uploads?limit=500")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Field 'limit' must be at most 200")
}

func TestGetLoadRun(t *testing.T) {
	const id = "5f0c1a4e-3b7d-4c55-9a53-2f4a0e7d9b11"

	t.Run("found", func(t *testing.T) {
		svc := &fakeService{run: &model.LoadRun{
			LoadID:         id,
			Status:         model.LoadStatusComplete,
			SkippedDetails: datatypes.JSON(`[{"row":3,"reason":"MissingKeys"}]`),
		}}
		rec := get(t, newRouter(svc, 0), "/api/uploads/"+id)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"skippedDetails":[{"row":3,"reason":"MissingKeys"}]`)
		assert.NotContains(t, rec.Body.String(), "firstDate")
	})

	t.Run("not found", func(t *testing.T) {
		svc := &fakeService{getErr: gorm.ErrRecordNotFound}
		rec := get(t, newRouter(svc, 0), "/api/uploads/"+id)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("database error", func(t *testing.T) {
		svc := &fakeService{getErr: errors.New("connection refused")}
		rec := get(t, newRouter(svc, 0), "/api/uploads/"+id)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := get(t, newRouter(&fakeService{}, 0), "/api/uploads/42")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
