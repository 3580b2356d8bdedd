package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"civicsolve/internal/adapter/api"
	"civicsolve/internal/adapter/api/handler"
	"civicsolve/internal/adapter/api/middleware"
	"civicsolve/internal/adapter/repository"
	"civicsolve/internal/domain/entity"
	"civicsolve/internal/infrastructure/firebase"
	"civicsolve/internal/infrastructure/ratelimit"
	"civicsolve/internal/infrastructure/storage"
	"civicsolve/internal/infrastructure/websocket"
	"civicsolve/internal/usecase"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/response"
)

type envelope struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Data       json.RawMessage      `json:"data"`
	Pagination *response.Pagination `json:"pagination"`
	Error      *response.ErrorInfo  `json:"error"`
}

type testServer struct {
	echo          *echo.Echo
	complaintRepo *repository.MemoryComplaintRepository
}

const (
	citizenID = "citizen-1"
	adminID   = "admin-1"
)

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()

	complaintRepo := repository.NewMemoryComplaintRepository()
	userRepo := repository.NewMemoryUserRepository()
	departmentRepo := repository.NewMemoryDepartmentRepository()

	require.NoError(t, userRepo.Create(ctx, &entity.User{
		ID: citizenID, Name: "Asha", Email: "asha@example.com", Phone: "9876543210", CitizenID: "CIT-1", Role: entity.RoleCitizen, IsActive: true,
	}))
	require.NoError(t, userRepo.Create(ctx, &entity.User{
		ID: adminID, Name: "Admin", Email: "admin@example.com", Phone: "9000000000", CitizenID: "ADM-1", Role: entity.RoleAdmin, IsActive: true,
	}))

	complaints := usecase.NewComplaintUseCase(complaintRepo, userRepo, departmentRepo, nil, usecase.ComplaintPolicy{AnonymousUserID: citizenID})
	lifecycle := usecase.NewLifecycleUseCase(complaintRepo, complaints, nil, true)
	stats := usecase.NewStatsUseCase(complaintRepo)
	users := usecase.NewUserUseCase(userRepo, complaints, stats, nil)
	departments := usecase.NewDepartmentUseCase(departmentRepo)
	media := usecase.NewMediaUseCase(storage.NewMemoryFileStore())

	handler.Setup(complaints, lifecycle, stats, users, departments, media, complaintRepo, websocket.NewManager())

	limiter := ratelimit.NewRateLimiter(ratelimit.PerMinute(100))
	limiter.SetPolicy(ActionUpvote, ratelimit.Policy{Limit: rate.Every(time.Hour), Burst: 2})

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e, middleware.NewAuthMiddleware(firebase.NewDevTokenVerifier()), middleware.NewAdminMiddleware(userRepo), limiter)

	return &testServer{echo: e, complaintRepo: complaintRepo}
}

func (s *testServer) do(t *testing.T, method, path, uid string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if uid != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+firebase.DevToken(uid))
	}
	return s.serve(t, req)
}

func (s *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func complaintBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Overflowing garbage bin",
		"description": "The bin at the corner has not been emptied for a week",
		"category":    "Garbage & Waste",
		"location":    "5th Cross, Ward 9",
		"coordinates": map[string]float64{"latitude": 18.52, "longitude": 73.85},
	}
}

func (s *testServer) createComplaint(t *testing.T) *entity.Complaint {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/v1/complaints", citizenID, complaintBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var c entity.Complaint
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return &c
}

func TestCreateAndFetchComplaint(t *testing.T) {
	s := newTestServer(t)

	created := s.createComplaint(t)
	assert.Regexp(t, `^CMP-\d+-[A-Z0-9]{5}$`, created.ComplaintID)
	assert.Equal(t, entity.PriorityMedium, created.Priority)
	require.NotNil(t, created.Reporter)
	assert.Equal(t, "Asha", created.Reporter.Name)

	for _, id := range []string{created.ID, created.ComplaintID} {
		rec, env := s.do(t, http.MethodGet, "/v1/complaints/"+id, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var got entity.Complaint
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, created.ComplaintID, got.ComplaintID)
		assert.Equal(t, created.Description, got.Description)
		assert.Equal(t, []entity.MediaAttachment{}, got.Media)
	}
}

func TestCreateComplaintMissingDescription(t *testing.T) {
	s := newTestServer(t)

	body := complaintBody()
	delete(body, "description")
	rec, env := s.do(t, http.MethodPost, "/v1/complaints", citizenID, body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, errors.CodeMissingField, env.Error.Code)
	assert.Contains(t, env.Message, "description")

	rec, env = s.do(t, http.MethodGet, "/v1/complaints", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), env.Pagination.TotalItems)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestCreateComplaintValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		mutate  func(map[string]interface{})
		code    string
		message string
	}{
		{"missing coordinates", func(b map[string]interface{}) { delete(b, "coordinates") }, errors.CodeMissingField, "coordinates"},
		{"blank title", func(b map[string]interface{}) { b["title"] = "   " }, errors.CodeMissingField, "title"},
		{"unknown category", func(b map[string]interface{}) { b["category"] = "Parks" }, errors.CodeValidation, "category"},
		{"unknown priority", func(b map[string]interface{}) { b["priority"] = "critical" }, errors.CodeValidation, "priority"},
		{"title too long", func(b map[string]interface{}) { b["title"] = strings.Repeat("a", 101) }, errors.CodeValidation, "title must be at most 100"},
		{"description too long", func(b map[string]interface{}) { b["description"] = strings.Repeat("a", 501) }, errors.CodeValidation, "description must be at most 500"},
		{"latitude out of range", func(b map[string]interface{}) {
			b["coordinates"] = map[string]float64{"latitude": 91, "longitude": 73.85}
		}, errors.CodeValidation, "latitude"},
		{"bad media type", func(b map[string]interface{}) {
			b["media"] = []map[string]string{{"type": "hologram", "uri": "https://example.com/a"}}
		}, errors.CodeValidation, "type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := complaintBody()
			tt.mutate(body)

			rec, env := s.do(t, http.MethodPost, "/v1/complaints", citizenID, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Contains(t, env.Message, tt.message)
		})
	}

	rec, env := s.do(t, http.MethodPost, "/v1/complaints", citizenID, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: title, description, category, coordinates", env.Message)

	rec, env = s.do(t, http.MethodGet, "/v1/complaints", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), env.Pagination.TotalItems)
}

func TestAnonymousComplaintUsesConfiguredReporter(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/v1/complaints", "", complaintBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	var c entity.Complaint
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, citizenID, c.ReportedBy)
}

func TestGetUnknownComplaint(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/v1/complaints/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, errors.CodeNotFound, env.Error.Code)
}

func TestListPaginationAndStats(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 5; i++ {
		s.createComplaint(t)
	}

	rec, env := s.do(t, http.MethodGet, "/v1/complaints?limit=2&page=3&category=All&sortBy=oldest", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, response.Pagination{CurrentPage: 3, TotalPages: 3, TotalItems: 5, ItemsPerPage: 2}, *env.Pagination)

	var page []entity.Complaint
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page, 1)

	rec, env = s.do(t, http.MethodGet, "/v1/complaints/stats", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats entity.ComplaintStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(5), stats.Overall.Total)
	assert.Equal(t, []entity.CategoryCount{{Category: entity.CategoryGarbageWaste, Count: 5}}, stats.ByCategory)
}

func TestListClampsPageSize(t *testing.T) {
	s := newTestServer(t)
	s.createComplaint(t)

	tests := []struct {
		query        string
		itemsPerPage int
		currentPage  int
	}{
		{"limit=500", 100, 1},
		{"limit=abc&page=-2", 10, 1},
		{"limit=0", 10, 1},
		{"limit=25&page=4", 25, 4},
	}
	for _, tt := range tests {
		rec, env := s.do(t, http.MethodGet, "/v1/complaints?"+tt.query, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tt.itemsPerPage, env.Pagination.ItemsPerPage, tt.query)
		assert.Equal(t, tt.currentPage, env.Pagination.CurrentPage, tt.query)
		assert.Equal(t, int64(1), env.Pagination.TotalItems, tt.query)
	}
}

func TestStatusLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	created := s.createComplaint(t)
	path := "/v1/complaints/" + created.ID + "/status"

	rec, _ := s.do(t, http.MethodPatch, path, "", map[string]string{"status": "in_progress"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := s.do(t, http.MethodPatch, path, adminID, map[string]string{"status": "resolved", "workOrderNumber": "WO-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resolved entity.Complaint
	require.NoError(t, json.Unmarshal(env.Data, &resolved))
	assert.Equal(t, entity.StatusResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedDate)

	rec, env = s.do(t, http.MethodPatch, path, adminID, map[string]string{"status": "reported"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errors.CodeInvalidTransition, env.Error.Code)

	rec, env = s.do(t, http.MethodPatch, path, adminID, map[string]string{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.CodeInvalidStatus, env.Error.Code)
}

func TestUpvoteIsRateLimited(t *testing.T) {
	s := newTestServer(t)
	created := s.createComplaint(t)
	path := "/v1/complaints/" + created.ID + "/upvote"

	for want := 1; want <= 2; want++ {
		rec, env := s.do(t, http.MethodPost, path, citizenID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"upvotes":%d}`, want), string(env.Data))
	}

	rec, env := s.do(t, http.MethodPost, path, citizenID, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, errors.CodeTooManyRequests, env.Error.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec, env = s.do(t, http.MethodPost, "/v1/complaints/"+created.ID+"/escalate", citizenID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"escalationCount":1}`, string(env.Data))
}

func TestMyComplaintsRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	s.createComplaint(t)

	rec, _ := s.do(t, http.MethodGet, "/v1/complaints/my-complaints", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/v1/complaints/my-complaints?status=reported", citizenID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), env.Pagination.TotalItems)

	rec, env = s.do(t, http.MethodGet, "/v1/complaints/my-complaints", adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(0), env.Pagination.TotalItems)
}

func TestUserRegistrationAndProfile(t *testing.T) {
	s := newTestServer(t)

	body := map[string]string{
		"name": "Meera", "phone": "9123456780", "citizenId": "CIT-9", "dob": "1990-05-01",
		"location": "Pune", "gender": "female", "email": "meera@example.com",
	}
	rec, env := s.do(t, http.MethodPost, "/v1/users/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var registered map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &registered))
	assert.Equal(t, "meera@example.com", registered["email"])
	assert.NotEmpty(t, registered["id"])

	rec, env = s.do(t, http.MethodPost, "/v1/users/register", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, errors.CodeConflict, env.Error.Code)

	body["phone"] = "12345"
	body["email"] = "other@example.com"
	rec, env = s.do(t, http.MethodPost, "/v1/users/register", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Message, "phone")

	rec, env = s.do(t, http.MethodPatch, "/v1/users/profile", citizenID, map[string]string{"location": "Nashik"})
	require.Equal(t, http.StatusOK, rec.Code)
	var user entity.User
	require.NoError(t, json.Unmarshal(env.Data, &user))
	assert.Equal(t, "Nashik", user.Location)

	s.createComplaint(t)
	rec, env = s.do(t, http.MethodGet, "/v1/users/dashboard", citizenID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard usecase.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &dashboard))
	assert.Equal(t, int64(1), dashboard.Stats.Total)
	assert.Len(t, dashboard.RecentComplaints, 1)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/v1/users/search?search=asha", citizenID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := s.do(t, http.MethodGet, "/v1/users/search?search=asha", adminID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), env.Pagination.TotalItems)

	rec, _ = s.do(t, http.MethodPost, "/v1/departments", citizenID, map[string]string{"name": "PWD"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/v1/departments", adminID, map[string]string{"name": "PWD"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var department entity.Department
	require.NoError(t, json.Unmarshal(env.Data, &department))

	rec, _ = s.do(t, http.MethodPost, "/v1/departments/"+department.ID+"/branches", adminID, map[string]string{"name": "Ward 9"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/v1/departments/"+department.ID+"/branches", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var branches []entity.Branch
	require.NoError(t, json.Unmarshal(env.Data, &branches))
	require.Len(t, branches, 1)
	assert.Equal(t, "Ward 9", branches[0].Name)

	rec, _ = s.do(t, http.MethodGet, "/v1/departments/missing/branches", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssistantRoutes(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/v1/assistant/messages", "", map[string]string{"message": "Is there an emergency number?"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"topic":"emergency"`)

	rec, _ = s.do(t, http.MethodPost, "/v1/assistant/messages", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/v1/assistant/greeting", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "civic assistant")
}

func TestStoreHealth(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, http.MethodGet, "/health/store", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.complaintRepo.SetUnavailable(assert.AnError)
	rec, env := s.do(t, http.MethodGet, "/health/store", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, errors.StoreUnavailableMessage, env.Message)

	rec, env = s.do(t, http.MethodGet, "/v1/complaints", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, errors.CodeStoreUnavailable, env.Error.Code)
}

func TestMediaUpload(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "pothole.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/complaints/media", &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec, env := s.serve(t, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var attachment entity.MediaAttachment
	require.NoError(t, json.Unmarshal(env.Data, &attachment))
	assert.Equal(t, entity.MediaImage, attachment.Type)
	assert.Equal(t, "pothole.png", attachment.Name)

	req = httptest.NewRequest(http.MethodPost, "/v1/complaints/media", strings.NewReader(""))
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec, env = s.serve(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, errors.CodeMissingField, env.Error.Code)
}
