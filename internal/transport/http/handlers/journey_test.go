package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"kpm/internal/app/server"
	"kpm/internal/platform/config"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error any             `json:"error"`
}

// The migration files are resolved relative to the repository root, so the
// test process has to run from there.
func chdirRepoRoot(t *testing.T) {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("failed to locate test file")
	}
	root := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "..")
	if err := os.Chdir(root); err != nil {
		t.Fatalf("failed to chdir to repo root: %v", err)
	}
}

func testConfig(dbURL string) config.Config {
	return config.Config{
		DatabaseURL:        dbURL,
		JWTSecret:          "test-secret",
		DataEncryptionKey:  "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef",
		Environment:        "test",
		SeedAdminEmail:     "admin@test.local",
		SeedAdminPassword:  "ChangeMe123!",
		SeedBoardEmail:     "board@test.local",
		SeedBoardPassword:  "ChangeMe123!",
		EmailFrom:          "no-reply@test.local",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 1000,
	}
}

func TestGoalApprovalAndEvaluationJourney(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	chdirRepoRoot(t)

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	closeLeftoverCycles(t, client, ts.URL, adminToken)

	orgUnitID := firstOrgUnit(t, client, ts.URL, adminToken)

	suffix := time.Now().UnixNano()
	password := "Journey123!"
	hodID := createUser(t, client, ts.URL, adminToken, map[string]any{
		"name": "Hana Head", "email": fmt.Sprintf("hod-%d@example.com", suffix),
		"password": password, "role": "HEAD_OF_DEPT", "orgUnitId": orgUnitID,
	})
	lmID := createUser(t, client, ts.URL, adminToken, map[string]any{
		"name": "Lena Lead", "email": fmt.Sprintf("lm-%d@example.com", suffix),
		"password": password, "role": "LINE_MANAGER", "orgUnitId": orgUnitID,
		"managerId": hodID,
	})
	staffEmail := fmt.Sprintf("staff-%d@example.com", suffix)
	createUser(t, client, ts.URL, adminToken, map[string]any{
		"name": "Sam Staff", "email": staffEmail,
		"password": password, "role": "STAFF", "orgUnitId": orgUnitID,
		"managerId": lmID,
	})

	cycleID := createCycle(t, client, ts.URL, adminToken, suffix)
	postJSON(t, client, ts.URL+"/api/v1/cycles/"+cycleID+"/activate", adminToken, map[string]any{})

	staffToken := login(t, client, ts.URL, staffEmail, password)
	kpiID := createKpi(t, client, ts.URL, staffToken, cycleID)

	submitted := submitGoals(t, client, ts.URL, staffToken, cycleID)
	if len(submitted) != 1 {
		t.Fatalf("expected 1 submitted kpi, got %d", len(submitted))
	}
	if status := submitted[0]["status"]; status != "PENDING_LM" {
		t.Fatalf("expected status PENDING_LM after submit, got %v", status)
	}

	lmToken := login(t, client, ts.URL, fmt.Sprintf("lm-%d@example.com", suffix), password)
	hodToken := login(t, client, ts.URL, fmt.Sprintf("hod-%d@example.com", suffix), password)
	boardToken := login(t, client, ts.URL, cfg.SeedBoardEmail, cfg.SeedBoardPassword)

	pending := listPending(t, client, ts.URL, lmToken)
	if len(pending) == 0 {
		t.Fatal("expected a pending approval for the line manager")
	}

	approve(t, client, ts.URL, lmToken, kpiID, 1)
	approve(t, client, ts.URL, hodToken, kpiID, 2)
	wf := approve(t, client, ts.URL, boardToken, kpiID, 3)
	if complete, _ := wf["isComplete"].(bool); !complete {
		t.Fatalf("expected workflow complete after level 3, got %v", wf)
	}
	if final := wf["finalStatus"]; final != "APPROVED" {
		t.Fatalf("expected final status APPROVED, got %v", final)
	}

	actual := postJSON(t, client, ts.URL+"/api/v1/kpis/"+kpiID+"/actual", staffToken, map[string]any{
		"actualValue": 90,
		"selfComment": "Hit most of the target",
	})
	var actualPayload map[string]any
	if err := json.Unmarshal(actual.Data, &actualPayload); err != nil {
		t.Fatalf("failed to decode actual response: %v", err)
	}
	if pct, _ := actualPayload["percentage"].(float64); pct != 90 {
		t.Fatalf("expected 90%% achievement, got %v", actualPayload["percentage"])
	}

	detail := postJSON(t, client, ts.URL+"/api/v1/evaluations/submit", staffToken, map[string]any{
		"cycleId":     cycleID,
		"selfComment": "Solid quarter overall",
	})
	evaluationID := evaluationIDFromDetail(t, detail)

	postJSON(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/start-review", lmToken, map[string]any{})
	completed := postJSON(t, client, ts.URL+"/api/v1/evaluations/"+evaluationID+"/complete", lmToken, map[string]any{
		"managerComment": "Agreed with self assessment",
		"calibration":    1,
	})
	var evalPayload map[string]any
	if err := json.Unmarshal(completed.Data, &evalPayload); err != nil {
		t.Fatalf("failed to decode completed evaluation: %v", err)
	}
	if status := evalPayload["status"]; status != "COMPLETED" {
		t.Fatalf("expected evaluation COMPLETED, got %v", status)
	}
	if final, _ := evalPayload["finalScore"].(float64); final != 4 {
		t.Fatalf("expected calibrated final score 4, got %v", evalPayload["finalScore"])
	}

	summary := getJSON(t, client, ts.URL+"/api/v1/reports/summary?cycleId="+cycleID, adminToken)
	var summaryPayload map[string]any
	if err := json.Unmarshal(summary.Data, &summaryPayload); err != nil {
		t.Fatalf("failed to decode report summary: %v", err)
	}
	if summaryPayload["totalKpis"] == nil && summaryPayload["totalEmployees"] == nil {
		t.Fatalf("expected populated report summary, got %v", summaryPayload)
	}
}

func TestGoalSubmitIdempotencyReplay(t *testing.T) {
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	chdirRepoRoot(t)

	cfg := testConfig(dbURL)
	app, err := server.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to start app: %v", err)
	}
	defer app.Close()

	ts := httptest.NewServer(app.Router)
	defer ts.Close()

	client := ts.Client()
	adminToken := login(t, client, ts.URL, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	closeLeftoverCycles(t, client, ts.URL, adminToken)
	orgUnitID := firstOrgUnit(t, client, ts.URL, adminToken)

	suffix := time.Now().UnixNano()
	password := "Journey123!"
	lmID := createUser(t, client, ts.URL, adminToken, map[string]any{
		"name": "Rita Reviewer", "email": fmt.Sprintf("rlm-%d@example.com", suffix),
		"password": password, "role": "LINE_MANAGER", "orgUnitId": orgUnitID,
	})
	staffEmail := fmt.Sprintf("rstaff-%d@example.com", suffix)
	createUser(t, client, ts.URL, adminToken, map[string]any{
		"name": "Rob Repeat", "email": staffEmail,
		"password": password, "role": "STAFF", "orgUnitId": orgUnitID,
		"managerId": lmID,
	})

	cycleID := createCycle(t, client, ts.URL, adminToken, suffix)
	postJSON(t, client, ts.URL+"/api/v1/cycles/"+cycleID+"/activate", adminToken, map[string]any{})

	staffToken := login(t, client, ts.URL, staffEmail, password)
	createKpi(t, client, ts.URL, staffToken, cycleID)

	key := fmt.Sprintf("submit-%d", suffix)
	body := map[string]any{"cycleId": cycleID}

	first := postJSONWithHeaders(t, client, ts.URL+"/api/v1/kpis/submit", staffToken,
		map[string]string{"Idempotency-Key": key}, body, http.StatusOK)
	replay := postJSONWithHeaders(t, client, ts.URL+"/api/v1/kpis/submit", staffToken,
		map[string]string{"Idempotency-Key": key}, body, http.StatusOK)
	if !bytes.Equal(first.Data, replay.Data) {
		t.Fatalf("expected replay to return the stored response\nfirst:  %s\nreplay: %s", first.Data, replay.Data)
	}

	postJSONWithHeaders(t, client, ts.URL+"/api/v1/kpis/submit", staffToken,
		map[string]string{"Idempotency-Key": key}, map[string]any{"cycleId": "00000000-0000-0000-0000-000000000000"},
		http.StatusConflict)
}

func login(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	})
	var payload map[string]any
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatal("expected token")
	}
	return token
}

func firstOrgUnit(t *testing.T, client *http.Client, baseURL, token string) string {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/org-units/", token)
	var units []map[string]any
	if err := json.Unmarshal(resp.Data, &units); err != nil {
		t.Fatalf("failed to decode org units: %v", err)
	}
	if len(units) == 0 {
		t.Fatal("expected seeded org units")
	}
	id, _ := units[0]["id"].(string)
	return id
}

func closeLeftoverCycles(t *testing.T, client *http.Client, baseURL, token string) {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/cycles/", token)
	var cycles []map[string]any
	if err := json.Unmarshal(resp.Data, &cycles); err != nil {
		t.Fatalf("failed to decode cycles: %v", err)
	}
	for _, c := range cycles {
		if c["status"] == "ACTIVE" {
			id, _ := c["id"].(string)
			postJSON(t, client, baseURL+"/api/v1/cycles/"+id+"/close", token, map[string]any{})
		}
	}
}

func createUser(t *testing.T, client *http.Client, baseURL, token string, payload map[string]any) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/users/", token, payload)
	var created map[string]any
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("failed to decode user response: %v", err)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected user id")
	}
	return id
}

func createCycle(t *testing.T, client *http.Client, baseURL, token string, suffix int64) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/cycles/", token, map[string]any{
		"name":       fmt.Sprintf("Q1 journey %d", suffix),
		"periodType": "QUARTERLY",
		"startDate":  "2026-01-01",
		"endDate":    "2030-03-31",
	})
	var created map[string]any
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("failed to decode cycle response: %v", err)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected cycle id")
	}
	return id
}

func createKpi(t *testing.T, client *http.Client, baseURL, token, cycleID string) string {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/kpis/", token, map[string]any{
		"cycleId": cycleID,
		"title":   "Close 100 support tickets",
		"type":    "QUANT_HIGHER_BETTER",
		"unit":    "tickets",
		"target":  100,
		"weight":  100,
	})
	var created map[string]any
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("failed to decode kpi response: %v", err)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("expected kpi id")
	}
	return id
}

func submitGoals(t *testing.T, client *http.Client, baseURL, token, cycleID string) []map[string]any {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/kpis/submit", token, map[string]any{"cycleId": cycleID})
	var defs []map[string]any
	if err := json.Unmarshal(resp.Data, &defs); err != nil {
		t.Fatalf("failed to decode submit response: %v", err)
	}
	return defs
}

func listPending(t *testing.T, client *http.Client, baseURL, token string) []map[string]any {
	t.Helper()
	resp := getJSON(t, client, baseURL+"/api/v1/approvals/pending", token)
	var items []map[string]any
	if err := json.Unmarshal(resp.Data, &items); err != nil {
		t.Fatalf("failed to decode pending approvals: %v", err)
	}
	return items
}

func approve(t *testing.T, client *http.Client, baseURL, token, kpiID string, level int) map[string]any {
	t.Helper()
	resp := postJSON(t, client, baseURL+"/api/v1/approvals/"+kpiID+"/approve", token, map[string]any{
		"level":   level,
		"comment": "Looks good",
	})
	var wf map[string]any
	if err := json.Unmarshal(resp.Data, &wf); err != nil {
		t.Fatalf("failed to decode workflow response: %v", err)
	}
	return wf
}

func evaluationIDFromDetail(t *testing.T, resp envelope) string {
	t.Helper()
	var detail map[string]any
	if err := json.Unmarshal(resp.Data, &detail); err != nil {
		t.Fatalf("failed to decode evaluation detail: %v", err)
	}
	eval, _ := detail["evaluation"].(map[string]any)
	id, _ := eval["id"].(string)
	if id == "" {
		t.Fatalf("expected evaluation id in detail: %v", detail)
	}
	return id
}

func postJSON(t *testing.T, client *http.Client, url, token string, body any) envelope {
	t.Helper()
	return postJSONWithHeaders(t, client, url, token, nil, body, 0)
}

func postJSONWithHeaders(t *testing.T, client *http.Client, url, token string, headers map[string]string, body any, wantStatus int) envelope {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	}
	req, err := http.NewRequest(http.MethodPost, url, reader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if wantStatus != 0 {
		if resp.StatusCode != wantStatus {
			t.Fatalf("expected status %d, got %d: %s", wantStatus, resp.StatusCode, string(raw))
		}
		return env
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}

func getJSON(t *testing.T, client *http.Client, url, token string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.StatusCode >= 400 {
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return env
}
