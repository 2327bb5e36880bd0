//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/classfund/classfund/internal/repository"
	"github.com/classfund/classfund/internal/testutil"
)

type registerResponse struct {
	Status      string `json:"status"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type donationResponse struct {
	Status     string `json:"status"`
	DonationID int64  `json:"donation_id"`
	Receipt    string `json:"receipt"`
	Amount     string `json:"amount"`
	ProjectID  string `json:"project_id"`
}

type fundingResponse struct {
	ProjectID      string `json:"project_id"`
	Title          string `json:"title"`
	SchoolName     string `json:"school_name"`
	PercentDisplay string `json:"percent_display"`
	LowFunding     bool   `json:"low_funding"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("CLASSFUND_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	pid := seedProject(t, dbURL, `Books & "Supplies" <Room 12>`, 0.10)

	email := testutil.UniqueEmail("e2e")
	registerAccount(t, baseURL, email, "Taylor Reed", "sunny-day-5")
	token := login(t, baseURL, email, "sunny-day-5")

	donation := createDonation(t, baseURL, token, pid)
	if donation.Status != "donated" {
		t.Fatalf("expected donated status, got %q", donation.Status)
	}
	if donation.DonationID <= 0 {
		t.Fatalf("expected positive donation id, got %d", donation.DonationID)
	}
	if !strings.HasPrefix(donation.Receipt, "rcpt_") {
		t.Fatalf("unexpected receipt format %q", donation.Receipt)
	}

	fetched := getDonation(t, baseURL, token, donation.DonationID)
	if fetched.Receipt != donation.Receipt {
		t.Fatalf("donation round-trip mismatch: %q vs %q", fetched.Receipt, donation.Receipt)
	}

	assertFundingJSON(t, baseURL, pid)
	assertFundingPage(t, baseURL, pid)

	logout(t, baseURL, token)
	assertUnauthorized(t, baseURL, token, pid)
}

func TestE2EDuplicateRegistration(t *testing.T) {
	baseURL := envOrDefault("CLASSFUND_BASE_URL", "http://localhost:8080")

	email := testutil.UniqueEmail("e2e-dup")
	registerAccount(t, baseURL, email, "First In", "sunny-day-5")

	payload := registerPayload(email, "Second In", "sunny-day-5")
	var errResp errorResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", "", payload, &errResp)
	if status != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate registration, got %d", status)
	}
	if errResp.Code != "used" {
		t.Fatalf("expected code %q, got %q", "used", errResp.Code)
	}
}

func TestE2EBadLogin(t *testing.T) {
	baseURL := envOrDefault("CLASSFUND_BASE_URL", "http://localhost:8080")

	email := testutil.UniqueEmail("e2e-login")
	registerAccount(t, baseURL, email, "Casey Park", "sunny-day-5")

	payload := map[string]any{"email": email, "password": "wrong-pass"}
	var errResp errorResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/login", "", payload, &errResp)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", status)
	}
	if errResp.Code != "bad_login" {
		t.Fatalf("expected code %q, got %q", "bad_login", errResp.Code)
	}
}

// TestE2ENoSecretsEchoed validates that passwords never come back on the wire.
func TestE2ENoSecretsEchoed(t *testing.T) {
	baseURL := envOrDefault("CLASSFUND_BASE_URL", "http://localhost:8080")

	email := testutil.UniqueEmail("e2e-secret")
	password := "hunter-green-7"

	payload := registerPayload(email, "Quiet Donor", password)
	body := doRaw(t, http.MethodPost, baseURL+"/api/v1/auth/register", "", payload)
	if strings.Contains(body, password) {
		t.Error("registration response echoed the password")
	}

	loginPayload := map[string]any{"email": email, "password": password}
	body = doRaw(t, http.MethodPost, baseURL+"/api/v1/auth/login", "", loginPayload)
	if strings.Contains(body, password) {
		t.Error("login response echoed the password")
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func seedProject(t *testing.T, dbURL, title string, percentFunded float64) string {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	pool := repo.Pool()
	sid := testutil.UniqueID("nces")
	tid := testutil.UniqueID("t")
	pid := testutil.UniqueID("p")

	if _, err := pool.Exec(ctx, `INSERT INTO schools (ncesid, name) VALUES ($1, $2)`, sid, "O'Hare & Sons Academy"); err != nil {
		t.Fatalf("seed school: %v", err)
	}
	if _, err := pool.Exec(ctx, `INSERT INTO teachers (tid, name, ncesid) VALUES ($1, $2, $3)`, tid, "Mr. Alvarez", sid); err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	_, err = pool.Exec(ctx, `
		INSERT INTO projects (pid, tid, ncesid, title, subject, short_description,
		                      num_students, percent_funded, total_price, expiration_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, pid, tid, sid, title, "Literacy", "Help our classroom", 22, percentFunded, "420.00",
		time.Now().UTC().AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}

	return pid
}

func registerPayload(email, name, password string) map[string]any {
	return map[string]any{
		"email":                 email,
		"display_name":          name,
		"password":              password,
		"password_confirmation": password,
	}
}

func registerAccount(t *testing.T, baseURL, email, name, password string) {
	t.Helper()

	var resp registerResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/register", "", registerPayload(email, name, password), &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", status)
	}
	if resp.Status != "welcome" {
		t.Fatalf("expected welcome status, got %q", resp.Status)
	}
}

// login returns the session token issued through the Set-Cookie header.
func login(t *testing.T, baseURL, email, password string) string {
	t.Helper()

	payload, err := json.Marshal(map[string]any{"email": email, "password": password})
	if err != nil {
		t.Fatalf("marshal login payload: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/auth/login", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("create login request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d", resp.StatusCode)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "classfund_session" && cookie.Value != "" {
			return cookie.Value
		}
	}
	t.Fatalf("login response missing session cookie")
	return ""
}

func createDonation(t *testing.T, baseURL, token, pid string) donationResponse {
	t.Helper()

	payload := map[string]any{
		"amount":     "25.00",
		"teacher_id": "t_e2e",
		"project_id": pid,
	}

	var resp donationResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/donations", token, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from donation create, got %d", status)
	}
	return resp
}

func getDonation(t *testing.T, baseURL, token string, id int64) donationResponse {
	t.Helper()

	var resp donationResponse
	status := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/donations/%d", baseURL, id), token, nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from donation get, got %d", status)
	}
	return resp
}

func assertFundingJSON(t *testing.T, baseURL, pid string) {
	t.Helper()

	var resp fundingResponse
	status := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/projects/%s/funding", baseURL, pid), "", nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from funding get, got %d", status)
	}
	if resp.ProjectID != pid {
		t.Fatalf("funding project id mismatch: %q", resp.ProjectID)
	}
	if !resp.LowFunding {
		t.Fatalf("10%% funded project should be flagged low")
	}
	if strings.Contains(resp.Title, "<") || strings.Contains(resp.Title, `"`) {
		t.Fatalf("funding title not escaped: %q", resp.Title)
	}
}

func assertFundingPage(t *testing.T, baseURL, pid string) {
	t.Helper()

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Get(fmt.Sprintf("%s/projects/%s", baseURL, pid))
	if err != nil {
		t.Fatalf("funding page request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from funding page, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read funding page: %v", err)
	}
	page := string(body)

	if !strings.Contains(page, "Almost out of time!") {
		t.Error("low-funded page missing the alert banner")
	}
	if strings.Contains(page, `<Room 12>`) {
		t.Error("page contains an unescaped title fragment")
	}
	if !strings.Contains(page, "&lt;Room 12&gt;") {
		t.Error("page missing the escaped title fragment")
	}
}

func assertUnauthorized(t *testing.T, baseURL, token, pid string) {
	t.Helper()

	payload := map[string]any{
		"amount":     "5.00",
		"teacher_id": "t_e2e",
		"project_id": pid,
	}

	var errResp errorResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/donations", token, payload, &errResp)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", status)
	}
	if errResp.Code != "loggedin" {
		t.Fatalf("expected code %q, got %q", "loggedin", errResp.Code)
	}
}

func logout(t *testing.T, baseURL, token string) {
	t.Helper()

	status := doJSON(t, http.MethodPost, baseURL+"/api/v1/auth/logout", token, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", status)
	}
}

func doRaw(t *testing.T, method, url, token string, body any) string {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	return string(data)
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}
