package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/zaloga/internal/access"
	"github.com/erazemk/zaloga/internal/archive"
	"github.com/erazemk/zaloga/internal/auth"
	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/ledger"
	"github.com/erazemk/zaloga/internal/model"
	"github.com/erazemk/zaloga/internal/report"
	"github.com/erazemk/zaloga/internal/store"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	server   *httptest.Server
	database *db.DB
	ledger   *ledger.Store
	token    string
}

func setupTestServer(t *testing.T, archiver Archiver) *testEnv {
	t.Helper()
	ctx := context.Background()
	database := db.NewTestDB(t)

	l, err := ledger.Open(ctx, store.NewRecords(database), ledger.Options{})
	if err != nil {
		t.Fatalf("opening ledger: %v", err)
	}
	t.Cleanup(l.Close)

	router := NewRouter(Config{
		DB:        database,
		Ledger:    l,
		JWTSecret: testJWTSecret,
		Archiver:  archiver,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	// Create admin user.
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if _, err := store.CreateUser(ctx, database, "admin", string(hash), model.RoleAdmin, ""); err != nil {
		t.Fatalf("creating admin: %v", err)
	}

	// Get token.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "password"})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp loginResponse
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	if loginResp.Role != model.RoleAdmin {
		t.Errorf("expected admin role in login response, got %q", loginResp.Role)
	}

	return &testEnv{server: server, database: database, ledger: l, token: loginResp.Token}
}

// userToken creates a site-bound user and returns a token for it.
func (e *testEnv) userToken(t *testing.T, username string, role model.Role, siteID string) string {
	t.Helper()
	u, err := store.CreateUser(context.Background(), e.database, username, "x", role, siteID)
	if err != nil {
		t.Fatalf("creating %s: %v", username, err)
	}
	token, err := auth.GenerateToken(testJWTSecret, access.Identity{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		SiteID:   u.SiteID,
	})
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	} else {
		bodyReader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// call performs a request, checks the status and decodes the body into out
// when out is not nil.
func (e *testEnv) call(t *testing.T, method, path, token string, body any, want int, out any) {
	t.Helper()
	req, err := authRequest(method, e.server.URL+path, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		var errBody map[string]string
		json.NewDecoder(resp.Body).Decode(&errBody)
		t.Fatalf("%s %s: expected %d, got %d (%s)", method, path, want, resp.StatusCode, errBody["error"])
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, path, err)
		}
	}
}

// seedCatalog creates two sites and one item type as admin.
func (e *testEnv) seedCatalog(t *testing.T) (alpha, bravo model.Site, rifle model.ItemType) {
	t.Helper()
	e.call(t, "POST", "/api/sites", e.token, map[string]string{"name": "Alpha", "location": "North"}, http.StatusCreated, &alpha)
	e.call(t, "POST", "/api/sites", e.token, map[string]string{"name": "Bravo", "location": "South"}, http.StatusCreated, &bravo)
	e.call(t, "POST", "/api/item-types", e.token, map[string]string{"name": "Rifle", "category": "weapon"}, http.StatusCreated, &rifle)
	return alpha, bravo, rifle
}

func TestLoginEndpoint(t *testing.T) {
	env := setupTestServer(t, nil)

	// Test invalid credentials.
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "wrong"})
	resp, _ := http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnauthenticatedAccess(t *testing.T) {
	env := setupTestServer(t, nil)

	resp, _ := http.Get(env.server.URL + "/api/inventory")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for unauthenticated request, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	env.call(t, "GET", "/api/sites", "garbage", nil, http.StatusUnauthorized, nil)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupTestServer(t, nil)

	env.call(t, "GET", "/api/sites", env.token, nil, http.StatusOK, nil)
	env.call(t, "POST", "/api/auth/logout", env.token, nil, http.StatusOK, nil)
	env.call(t, "GET", "/api/sites", env.token, nil, http.StatusUnauthorized, nil)
}

func TestChangePassword(t *testing.T) {
	env := setupTestServer(t, nil)

	env.call(t, "PUT", "/api/auth/password", env.token, map[string]string{
		"current_password": "wrong", "new_password": "new-password",
	}, http.StatusUnauthorized, nil)
	env.call(t, "PUT", "/api/auth/password", env.token, map[string]string{
		"current_password": "password", "new_password": "short",
	}, http.StatusBadRequest, nil)
	env.call(t, "PUT", "/api/auth/password", env.token, map[string]string{
		"current_password": "password", "new_password": "new-password",
	}, http.StatusOK, nil)

	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "new-password"})
	resp, err := http.Post(env.server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected login with new password to succeed, got %d", resp.StatusCode)
	}
}

func TestTransactionFlow(t *testing.T) {
	env := setupTestServer(t, nil)
	alpha, bravo, rifle := env.seedCatalog(t)

	env.call(t, "POST", "/api/acquisitions", env.token, map[string]any{
		"siteId": alpha.ID, "itemTypeId": rifle.ID, "quantity": 10, "date": "2024-01-10", "orderNumber": "PO-1",
	}, http.StatusCreated, nil)

	var transfer model.Transfer
	env.call(t, "POST", "/api/transfers", env.token, map[string]any{
		"fromSiteId": alpha.ID, "toSiteId": bravo.ID, "itemTypeId": rifle.ID,
		"quantity": 4, "date": "2024-01-12", "status": "in-transit",
	}, http.StatusCreated, &transfer)

	var avail availableResponse
	env.call(t, "GET", "/api/inventory/available?siteId="+alpha.ID+"&itemTypeId="+rifle.ID, env.token, nil, http.StatusOK, &avail)
	if avail.Available != 6 {
		t.Errorf("expected 6 available at Alpha, got %d", avail.Available)
	}

	// Bravo is not credited until the transfer completes.
	var rows []model.InventoryRow
	env.call(t, "GET", "/api/inventory?siteId="+bravo.ID, env.token, nil, http.StatusOK, &rows)
	if len(rows) != 0 {
		t.Errorf("expected no Bravo rows before completion, got %d", len(rows))
	}

	env.call(t, "PUT", "/api/transfers/"+transfer.ID+"/status", env.token,
		map[string]string{"status": "completed"}, http.StatusOK, nil)
	env.call(t, "PUT", "/api/transfers/"+transfer.ID+"/status", env.token,
		map[string]string{"status": "pending"}, http.StatusConflict, nil)
	env.call(t, "PUT", "/api/transfers/missing/status", env.token,
		map[string]string{"status": "completed"}, http.StatusNotFound, nil)

	env.call(t, "GET", "/api/inventory?siteId="+bravo.ID, env.token, nil, http.StatusOK, &rows)
	if len(rows) != 1 || rows[0].AvailableQuantity != 4 {
		t.Fatalf("expected 4 rifles at Bravo, got %+v", rows)
	}

	// Over-consumption is rejected.
	env.call(t, "POST", "/api/consumptions", env.token, map[string]any{
		"siteId": alpha.ID, "itemTypeId": rifle.ID, "quantity": 7, "date": "2024-01-15", "reason": "training",
	}, http.StatusConflict, nil)
	env.call(t, "POST", "/api/consumptions", env.token, map[string]any{
		"siteId": alpha.ID, "itemTypeId": rifle.ID, "quantity": 0, "date": "2024-01-15",
	}, http.StatusBadRequest, nil)

	var m metricsResponse
	env.call(t, "GET", "/api/metrics?siteId="+alpha.ID, env.token, nil, http.StatusOK, &m)
	if m.Metrics.Acquisitions != 10 || m.Metrics.TransferOut != 4 || m.Metrics.ClosingBalance != 6 {
		t.Errorf("unexpected Alpha metrics: %+v", m.Metrics)
	}

	var mv movementsResponse
	env.call(t, "GET", "/api/metrics/movements?siteId="+bravo.ID, env.token, nil, http.StatusOK, &mv)
	if len(mv.TransfersIn) != 1 || mv.Metrics.TransferIn != 4 {
		t.Errorf("expected one inbound transfer of 4 at Bravo, got %+v", mv)
	}

	env.call(t, "GET", "/api/metrics?startDate=2024-1-1", env.token, nil, http.StatusBadRequest, nil)
}

func TestAssignmentReturn(t *testing.T) {
	env := setupTestServer(t, nil)
	alpha, _, rifle := env.seedCatalog(t)

	var person model.Person
	env.call(t, "POST", "/api/personnel", env.token, map[string]string{
		"name": "Jane Doe", "rank": "Sergeant", "siteId": alpha.ID,
	}, http.StatusCreated, &person)
	env.call(t, "POST", "/api/acquisitions", env.token, map[string]any{
		"siteId": alpha.ID, "itemTypeId": rifle.ID, "quantity": 3, "date": "2024-02-01",
	}, http.StatusCreated, nil)

	var a model.Assignment
	env.call(t, "POST", "/api/assignments", env.token, map[string]any{
		"siteId": alpha.ID, "itemTypeId": rifle.ID, "personId": person.ID, "quantity": 2, "dateAssigned": "2024-02-02",
	}, http.StatusCreated, &a)
	if a.Status != model.AssignmentActive {
		t.Errorf("expected active assignment, got %q", a.Status)
	}

	var rows []model.InventoryRow
	env.call(t, "GET", "/api/inventory", env.token, nil, http.StatusOK, &rows)
	if len(rows) != 1 || rows[0].AvailableQuantity != 1 || rows[0].AssignedQuantity != 2 {
		t.Fatalf("unexpected inventory with active assignment: %+v", rows)
	}

	env.call(t, "POST", "/api/assignments/"+a.ID+"/return", env.token,
		map[string]string{"date": "2024-02-05"}, http.StatusOK, &a)
	if a.Status != model.AssignmentReturned || a.DateReturned != "2024-02-05" {
		t.Errorf("unexpected returned assignment: %+v", a)
	}
	env.call(t, "POST", "/api/assignments/"+a.ID+"/return", env.token, nil, http.StatusConflict, nil)
}

func TestRoleBasedAccess(t *testing.T) {
	env := setupTestServer(t, nil)
	alpha, bravo, rifle := env.seedCatalog(t)

	for _, site := range []string{alpha.ID, bravo.ID} {
		env.call(t, "POST", "/api/acquisitions", env.token, map[string]any{
			"siteId": site, "itemTypeId": rifle.ID, "quantity": 5, "date": "2024-03-01",
		}, http.StatusCreated, nil)
	}

	commander := env.userToken(t, "commander", model.RoleSiteCommander, alpha.ID)

	// Logs are pinned to the commander's site whatever they ask for.
	var acqs []model.Acquisition
	env.call(t, "GET", "/api/acquisitions?siteId="+bravo.ID, commander, nil, http.StatusOK, &acqs)
	if len(acqs) != 1 || acqs[0].SiteID != alpha.ID {
		t.Errorf("expected only Alpha acquisitions, got %+v", acqs)
	}
	var sites []model.Site
	env.call(t, "GET", "/api/sites", commander, nil, http.StatusOK, &sites)
	if len(sites) != 1 || sites[0].ID != alpha.ID {
		t.Errorf("expected only Alpha site, got %+v", sites)
	}

	env.call(t, "GET", "/api/sites/"+alpha.ID, commander, nil, http.StatusOK, nil)
	env.call(t, "GET", "/api/sites/"+bravo.ID, commander, nil, http.StatusForbidden, nil)
	env.call(t, "POST", "/api/acquisitions", commander, map[string]any{
		"siteId": bravo.ID, "itemTypeId": rifle.ID, "quantity": 1, "date": "2024-03-02",
	}, http.StatusForbidden, nil)
	env.call(t, "POST", "/api/sites", commander, map[string]string{"name": "Charlie"}, http.StatusForbidden, nil)
	env.call(t, "GET", "/api/users", commander, nil, http.StatusForbidden, nil)

	officer := env.userToken(t, "officer", model.RoleLogisticsOfficer, bravo.ID)

	env.call(t, "POST", "/api/acquisitions", officer, map[string]any{
		"siteId": bravo.ID, "itemTypeId": rifle.ID, "quantity": 2, "date": "2024-03-03",
	}, http.StatusCreated, nil)
	env.call(t, "POST", "/api/consumptions", officer, map[string]any{
		"siteId": bravo.ID, "itemTypeId": rifle.ID, "quantity": 1, "date": "2024-03-03",
	}, http.StatusForbidden, nil)
	env.call(t, "GET", "/api/personnel", officer, nil, http.StatusForbidden, nil)

	var rows []model.InventoryRow
	env.call(t, "GET", "/api/inventory", officer, nil, http.StatusOK, &rows)
	if len(rows) != 1 || rows[0].SiteID != bravo.ID || rows[0].TotalQuantity != 7 {
		t.Errorf("expected Bravo inventory of 7, got %+v", rows)
	}

	// A pending transfer out of another site touches the officer's site as
	// the destination, so it may be requested.
	env.call(t, "POST", "/api/transfers", officer, map[string]any{
		"fromSiteId": alpha.ID, "toSiteId": bravo.ID, "itemTypeId": rifle.ID, "quantity": 1, "date": "2024-03-04",
	}, http.StatusCreated, nil)
}

func TestLogisticsOfficerReadViews(t *testing.T) {
	env := setupTestServer(t, nil)
	alpha, bravo, rifle := env.seedCatalog(t)

	for _, site := range []string{alpha.ID, bravo.ID} {
		env.call(t, "POST", "/api/acquisitions", env.token, map[string]any{
			"siteId": site, "itemTypeId": rifle.ID, "quantity": 5, "date": "2024-03-01",
		}, http.StatusCreated, nil)
	}
	officer := env.userToken(t, "officer", model.RoleLogisticsOfficer, bravo.ID)

	var sites []model.Site
	env.call(t, "GET", "/api/sites", officer, nil, http.StatusOK, &sites)
	if len(sites) != 1 || sites[0].ID != bravo.ID {
		t.Errorf("expected only Bravo site, got %+v", sites)
	}
	env.call(t, "GET", "/api/sites/"+bravo.ID, officer, nil, http.StatusOK, nil)
	env.call(t, "GET", "/api/sites/"+alpha.ID, officer, nil, http.StatusForbidden, nil)

	var items []model.ItemType
	env.call(t, "GET", "/api/item-types", officer, nil, http.StatusOK, &items)
	if len(items) != 1 || items[0].ID != rifle.ID {
		t.Errorf("expected the rifle item type, got %+v", items)
	}

	// Metrics are pinned to the officer's site whatever they ask for.
	var m metricsResponse
	env.call(t, "GET", "/api/metrics?siteId="+alpha.ID, officer, nil, http.StatusOK, &m)
	if m.Filter.SiteID != bravo.ID || m.Metrics.Acquisitions != 5 {
		t.Errorf("expected Bravo metrics, got %+v", m)
	}
	var mv movementsResponse
	env.call(t, "GET", "/api/metrics/movements", officer, nil, http.StatusOK, &mv)
	if len(mv.Acquisitions) != 1 || mv.Acquisitions[0].SiteID != bravo.ID {
		t.Errorf("expected one Bravo acquisition, got %+v", mv.Acquisitions)
	}

	// Writes to the catalog stay admin-only.
	env.call(t, "POST", "/api/item-types", officer, map[string]string{"name": "Bandage", "category": "medical"}, http.StatusForbidden, nil)
}

func TestTransferDispatchRequiresSourceSite(t *testing.T) {
	env := setupTestServer(t, nil)
	alpha, bravo, rifle := env.seedCatalog(t)

	env.call(t, "POST", "/api/acquisitions", env.token, map[string]any{
		"siteId": alpha.ID, "itemTypeId": rifle.ID, "quantity": 150, "date": "2024-03-01",
	}, http.StatusCreated, nil)

	officer := env.userToken(t, "officer", model.RoleLogisticsOfficer, bravo.ID)
	for _, status := range []string{"in-transit", "completed"} {
		env.call(t, "POST", "/api/transfers", officer, map[string]any{
			"fromSiteId": alpha.ID, "toSiteId": bravo.ID, "itemTypeId": rifle.ID,
			"quantity": 150, "date": "2024-03-02", "status": status,
		}, http.StatusForbidden, nil)
	}

	var avail availableResponse
	env.call(t, "GET", "/api/inventory/available?siteId="+alpha.ID+"&itemTypeId="+rifle.ID, env.token, nil, http.StatusOK, &avail)
	if avail.Available != 150 {
		t.Fatalf("expected Alpha stock untouched at 150, got %d", avail.Available)
	}

	var transfer model.Transfer
	env.call(t, "POST", "/api/transfers", officer, map[string]any{
		"fromSiteId": alpha.ID, "toSiteId": bravo.ID, "itemTypeId": rifle.ID, "quantity": 40, "date": "2024-03-02",
	}, http.StatusCreated, &transfer)
	if transfer.Status != model.TransferPending {
		t.Fatalf("expected pending transfer, got %q", transfer.Status)
	}

	receiver := env.userToken(t, "bravo-cmd", model.RoleSiteCommander, bravo.ID)
	sender := env.userToken(t, "alpha-cmd", model.RoleSiteCommander, alpha.ID)
	path := "/api/transfers/" + transfer.ID + "/status"

	env.call(t, "PUT", path, receiver, map[string]string{"status": "in-transit"}, http.StatusForbidden, nil)
	env.call(t, "PUT", path, receiver, map[string]string{"status": "completed"}, http.StatusForbidden, nil)
	env.call(t, "PUT", path, sender, map[string]string{"status": "in-transit"}, http.StatusOK, nil)
	// Once in flight, the destination may confirm receipt.
	env.call(t, "PUT", path, receiver, map[string]string{"status": "completed"}, http.StatusOK, nil)

	env.call(t, "GET", "/api/inventory/available?siteId="+alpha.ID+"&itemTypeId="+rifle.ID, env.token, nil, http.StatusOK, &avail)
	if avail.Available != 110 {
		t.Errorf("expected 110 left at Alpha, got %d", avail.Available)
	}

	// The destination may still cancel a request it made.
	env.call(t, "POST", "/api/transfers", receiver, map[string]any{
		"fromSiteId": alpha.ID, "toSiteId": bravo.ID, "itemTypeId": rifle.ID, "quantity": 5, "date": "2024-03-03",
	}, http.StatusCreated, &transfer)
	env.call(t, "PUT", "/api/transfers/"+transfer.ID+"/status", receiver,
		map[string]string{"status": "cancelled"}, http.StatusOK, nil)
}

func TestUserManagement(t *testing.T) {
	env := setupTestServer(t, nil)
	alpha, _, _ := env.seedCatalog(t)

	env.call(t, "POST", "/api/users", env.token, map[string]string{
		"username": "officer", "password": "long-enough", "role": "logisticsOfficer",
	}, http.StatusBadRequest, nil)
	env.call(t, "POST", "/api/users", env.token, map[string]string{
		"username": "officer", "password": "long-enough", "role": "quartermaster",
	}, http.StatusBadRequest, nil)

	var u model.User
	env.call(t, "POST", "/api/users", env.token, map[string]string{
		"username": "officer", "password": "long-enough", "role": "logisticsOfficer", "siteId": alpha.ID,
	}, http.StatusCreated, &u)
	if u.SiteID != alpha.ID || u.Role != model.RoleLogisticsOfficer {
		t.Errorf("unexpected user: %+v", u)
	}

	env.call(t, "POST", "/api/users", env.token, map[string]string{
		"username": "officer", "password": "long-enough", "role": "admin",
	}, http.StatusConflict, nil)

	var users []model.User
	env.call(t, "GET", "/api/users", env.token, nil, http.StatusOK, &users)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	env.call(t, "DELETE", "/api/users/1", env.token, nil, http.StatusBadRequest, nil)
	env.call(t, "DELETE", "/api/users/999", env.token, nil, http.StatusNotFound, nil)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	env := setupTestServer(t, nil)
	alpha, _, _ := env.seedCatalog(t)

	token := env.userToken(t, "commander", model.RoleSiteCommander, alpha.ID)
	env.call(t, "GET", "/api/sites", token, nil, http.StatusOK, nil)

	var users []model.User
	env.call(t, "GET", "/api/users", env.token, nil, http.StatusOK, &users)
	for _, u := range users {
		if u.Username == "commander" {
			if err := store.DeleteUser(context.Background(), env.database, u.ID); err != nil {
				t.Fatalf("deleting user: %v", err)
			}
		}
	}
	env.call(t, "GET", "/api/sites", token, nil, http.StatusUnauthorized, nil)
}

func TestInventoryExport(t *testing.T) {
	env := setupTestServer(t, nil)

	req, _ := authRequest("GET", env.server.URL+"/api/inventory/export", env.token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("export request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != report.ContentType {
		t.Errorf("expected workbook content type, got %q", ct)
	}
}

type fakeArchiver struct {
	snap ledger.Snapshot
	err  error
}

func (f *fakeArchiver) Archive(_ context.Context, snap ledger.Snapshot) (archive.Result, error) {
	f.snap = snap
	if f.err != nil {
		return archive.Result{}, f.err
	}
	return archive.Result{Prefix: "ledger/x", Keys: []string{"ledger/x/ledger.json"}}, nil
}

func TestArchiveEndpoint(t *testing.T) {
	env := setupTestServer(t, nil)
	env.call(t, "POST", "/api/admin/archive", env.token, nil, http.StatusServiceUnavailable, nil)

	fake := &fakeArchiver{}
	env = setupTestServer(t, fake)
	env.seedCatalog(t)

	var res archive.Result
	env.call(t, "POST", "/api/admin/archive", env.token, nil, http.StatusCreated, &res)
	if res.Prefix != "ledger/x" {
		t.Errorf("unexpected archive result: %+v", res)
	}
	if len(fake.snap.Sites) != 2 {
		t.Errorf("expected archived snapshot with 2 sites, got %d", len(fake.snap.Sites))
	}

	fake.err = errors.New("bucket gone")
	env.call(t, "POST", "/api/admin/archive", env.token, nil, http.StatusBadGateway, nil)
}

func TestHealthz(t *testing.T) {
	env := setupTestServer(t, nil)

	resp, err := http.Get(env.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}
