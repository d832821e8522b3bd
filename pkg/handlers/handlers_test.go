package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnavshah/duty-roster-go/pkg/auth"
	"github.com/arnavshah/duty-roster-go/pkg/database"
	"github.com/arnavshah/duty-roster-go/pkg/metrics"
	"github.com/arnavshah/duty-roster-go/pkg/models"
)

func newTestServer(t *testing.T) (*Handler, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open("", fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	h := &Handler{
		DB:       db,
		Signer:   auth.NewSigner("jwt-secret", "master-secret"),
		Metrics:  metrics.New(reg, ""),
		Gatherer: reg,
		Logger:   zap.NewNop(),
	}
	return h, NewRouter(h)
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func team(n int) []models.EmployeeInput {
	out := make([]models.EmployeeInput, 0, n)
	for i := 0; i < n; i++ {
		gender := "female"
		if i%2 == 1 {
			gender = "male"
		}
		out = append(out, models.EmployeeInput{
			FirstName: "First",
			LastName:  fmt.Sprintf("Last%02d", i),
			Gender:    gender,
		})
	}
	return out
}

func planRequest(employees []models.EmployeeInput) models.PlanRequest {
	seed := int64(42)
	return models.PlanRequest{TeamConfig: models.TeamConfig{
		Year:      2024,
		Month:     3,
		Seed:      &seed,
		Employees: employees,
	}}
}

func TestPlanJSON(t *testing.T) {
	h, r := newTestServer(t)
	key := h.Signer.TeamKey("desk")

	w := do(t, r, http.MethodPost, "/api/plan", key, planRequest(team(10)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.PlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Len(t, resp.Planning, 31)
	for day, names := range resp.Planning {
		assert.NotEmpty(t, names, day)
		assert.LessOrEqual(t, len(names), 2, day)
	}

	w = do(t, r, http.MethodGet, "/api/plans/2024/3", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stored database.Planning
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stored))
	assert.Equal(t, resp.RunID, stored.RunID)
	assert.Equal(t, resp.Planning, stored.Assignments)

	w = do(t, r, http.MethodGet, "/api/plans/2024/4", key, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/usage", key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"requests":1`)
	assert.Contains(t, w.Body.String(), `"days":31`)
}

func TestPlanJSONContinuity(t *testing.T) {
	h, r := newTestServer(t)
	key := h.Signer.TeamKey("desk")

	employees := append(team(10), models.EmployeeInput{FirstName: "John", LastName: "Smith", Gender: "male"})
	req := planRequest(employees)
	req.Previous = map[string][]string{"2024-02-29": {"Smith"}}

	w := do(t, r, http.MethodPost, "/api/plan", key, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.PlanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	for _, day := range []string{"2024-03-01", "2024-03-02", "2024-03-03"} {
		assert.NotContains(t, resp.Planning[day], "Smith", day)
	}
}

func TestPlanErrors(t *testing.T) {
	h, r := newTestServer(t)
	key := h.Signer.TeamKey("desk")

	w := do(t, r, http.MethodPost, "/api/plan", "", planRequest(team(3)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/plan", "desk.bad", planRequest(team(3)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	bad := team(3)
	bad[0].Leaves = []models.LeaveInput{{StartDate: "2024-03-01", EndDate: "2024-03-05"}}
	bad[0].MandatoryShifts = []string{"2024-03-02"}
	w = do(t, r, http.MethodPost, "/api/plan", key, planRequest(bad))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/plan", key, models.PlanRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	onLeave := team(1)
	onLeave[0].Leaves = []models.LeaveInput{{StartDate: "2024-03-01", EndDate: "2024-03-31"}}
	w = do(t, r, http.MethodPost, "/api/plan", key, planRequest(onLeave))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "no possible solution")

	w = do(t, r, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `roster_planner_runs_total{outcome="infeasible"} 1`)
	assert.Contains(t, w.Body.String(), `roster_planner_runs_total{outcome="invalid"} 2`)
}

func TestPlanRenderings(t *testing.T) {
	h, r := newTestServer(t)
	key := h.Signer.TeamKey("desk")

	w := do(t, r, http.MethodPost, "/api/plan/csv", key, planRequest(team(10)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var csvResp struct {
		CSV string `json:"csv"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &csvResp))
	assert.Contains(t, csvResp.CSV, "date,weekday,first_name,last_name,on_duty")
	assert.Contains(t, csvResp.CSV, "2024-03-31,Sunday,")

	w = do(t, r, http.MethodPost, "/api/plan/table", key, planRequest(team(10)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "On duty")
}

func TestValidateInput(t *testing.T) {
	h, r := newTestServer(t)
	key := h.Signer.TeamKey("desk")

	employees := team(2)
	employees[0].MandatoryShifts = []string{"2024-03-10"}
	w := do(t, r, http.MethodPost, "/api/validate", key, planRequest(employees))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)
	assert.Contains(t, w.Body.String(), `"mandatory_count":1`)

	employees[1].LastName = employees[0].LastName
	w = do(t, r, http.MethodPost, "/api/validate", key, planRequest(employees))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":false`)
}

func TestRateLimitAndRevocation(t *testing.T) {
	h, r := newTestServer(t)
	key := h.Signer.TeamKey("small")
	require.NoError(t, h.DB.Create(&database.APIKey{Key: key, Team: "small", RateLimit: 1}).Error)

	w := do(t, r, http.MethodPost, "/api/plan", key, planRequest(team(10)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, r, http.MethodPost, "/api/plan", key, planRequest(team(10)))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	require.NoError(t, h.DB.Where("key = ?", key).Delete(&database.APIKey{}).Error)
	w = do(t, r, http.MethodGet, "/api/usage", key, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminFlow(t *testing.T) {
	auth.PasswordCost = bcrypt.MinCost
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "pw")

	h, r := newTestServer(t)
	_, err := auth.EnsureAdminExists(h.DB)
	require.NoError(t, err)

	w := do(t, r, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/admin/login", "", gin.H{"username": "admin", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = do(t, r, http.MethodGet, "/admin/keys", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/admin/keys", login.AccessToken, gin.H{"team": "ward-b"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		ID  uint   `json:"id"`
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, h.Signer.TeamKey("ward-b"), created.Key)

	w = do(t, r, http.MethodPut, fmt.Sprintf("/admin/keys/%d", created.ID), login.AccessToken, gin.H{"rate_limit": 5})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodGet, "/admin/keys", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"team":"ward-b"`)
	assert.Contains(t, w.Body.String(), `"rate_limit":5`)
	assert.NotContains(t, w.Body.String(), created.Key)

	w = do(t, r, http.MethodDelete, fmt.Sprintf("/admin/keys/%d", created.ID), login.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, r, http.MethodDelete, fmt.Sprintf("/admin/keys/%d", created.ID), login.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodGet, "/api/usage", created.Key, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
