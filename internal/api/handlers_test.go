package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumifun/order-intake-api/internal/config"
	"github.com/sumifun/order-intake-api/internal/models"
	"github.com/sumifun/order-intake-api/pkg/logger"
)

// setupServer builds a server on an in-memory database with temp static and
// export directories.
func setupServer(t *testing.T) *Server {
	t.Helper()

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>landing</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "orders_viewer.html"), []byte("<html>viewer</html>"), 0o644))

	cfg := &config.Config{
		Port:      0,
		LogLevel:  "error",
		DBPath:    ":memory:",
		ExportDir: t.TempDir(),
		StaticDir: staticDir,
		Auth: config.AuthConfig{
			AdminUsername:   "admin",
			AdminPassword:   "secret",
			PublicAccessKey: "public-key",
			SessionTTL:      30 * time.Minute,
		},
	}

	server, err := NewServer(cfg, logger.NewLogger("error"))
	require.NoError(t, err)
	t.Cleanup(func() { server.db.Close() })

	return server
}

// doForm posts url-encoded form values and decodes the JSON response into out.
func doForm(t *testing.T, s *Server, path string, form url.Values, out interface{}) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), out))
	}
	return rr
}

// login authenticates as admin and returns the session cookie.
func login(t *testing.T, s *Server) *http.Cookie {
	t.Helper()

	var resp apiResponse
	rr := doForm(t, s, "/api/login", url.Values{"username": {"admin"}, "password": {"secret"}}, &resp)
	require.True(t, resp.Success)

	cookies := rr.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

// createOrder submits the public order form and returns the new order ID.
func createOrder(t *testing.T, s *Server, name, phone, quantity string) string {
	t.Helper()

	form := url.Values{"name": {name}, "phone": {phone}}
	if quantity != "" {
		form.Set("quantity", quantity)
	}

	var resp createOrderResponse
	doForm(t, s, "/api/orders", form, &resp)
	require.True(t, resp.Success, "create failed: %s", resp.Message)
	return resp.OrderID
}

func TestCreateOrderHandler(t *testing.T) {
	s := setupServer(t)

	form := url.Values{"name": {"Test"}, "phone": {"5551234567"}, "quantity": {"2"}}

	var resp createOrderResponse
	rr := doForm(t, s, "/api/orders", form, &resp)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, resp.Success)
	assert.Regexp(t, `^SUMIFUN-\d{14}-\d{3}$`, resp.OrderID)
}

func TestCreateOrderHandler_MissingFields(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing name", url.Values{"phone": {"5551234567"}}},
		{"missing phone", url.Values{"name": {"Test"}}},
		{"missing both", url.Values{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp createOrderResponse
			doForm(t, s, "/api/orders", tt.form, &resp)
			assert.False(t, resp.Success)
			assert.Equal(t, "Please provide both name and phone", resp.Message)
		})
	}
}

func TestCreateOrderHandler_QuantityDefaultsToOne(t *testing.T) {
	s := setupServer(t)
	cookie := login(t, s)

	createOrder(t, s, "Test", "5551234567", "")

	orders := adminList(t, s, cookie)
	require.Len(t, orders, 1)
	assert.Equal(t, 1, orders[0].Quantity)
	assert.Equal(t, models.UnitPrice, orders[0].Price)
}

// adminList fetches the unmasked order list using the given session cookie.
func adminList(t *testing.T, s *Server, cookie *http.Cookie) []*models.Order {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/orders?admin=true", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp orderListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Success, "list failed: %s", resp.Message)
	return resp.Orders
}

func TestGetOrdersHandler_EndToEnd(t *testing.T) {
	s := setupServer(t)

	orderID := createOrder(t, s, "Test", "5551234567", "2")

	cookie := login(t, s)
	orders := adminList(t, s, cookie)

	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0].OrderID)
	assert.Equal(t, 1780, orders[0].Price)
	assert.Equal(t, "new", orders[0].Status)
	// Admin mode never masks.
	assert.Equal(t, "5551234567", orders[0].Phone)
}

func TestGetOrdersHandler_PublicKeyMasksPhones(t *testing.T) {
	s := setupServer(t)

	createOrder(t, s, "Test", "5551234567", "1")
	createOrder(t, s, "Other", "123", "1")

	req := httptest.NewRequest(http.MethodGet, "/api/orders?key=public-key", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp orderListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.Orders, 2)

	for _, order := range resp.Orders {
		switch order.Name {
		case "Test":
			assert.Equal(t, "******4567", order.Phone)
		case "Other":
			// Short numbers stay unmasked.
			assert.Equal(t, "123", order.Phone)
		}
	}
}

func TestGetOrdersHandler_BadKey(t *testing.T) {
	s := setupServer(t)
	createOrder(t, s, "Test", "5551234567", "1")

	for _, target := range []string{"/api/orders", "/api/orders?key=wrong"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, req)

		var resp orderListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, resp.Success)
		assert.NotNil(t, resp.Orders)
		assert.Empty(t, resp.Orders)
	}
}

func TestGetOrdersHandler_AdminModeRequiresSession(t *testing.T) {
	s := setupServer(t)

	// The shared key does not grant admin mode.
	req := httptest.NewRequest(http.MethodGet, "/api/orders?admin=true&key=public-key", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp orderListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Empty(t, resp.Orders)
}

func TestLoginHandler_RejectsBadCredentials(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"wrong username", url.Values{"username": {"nobody"}, "password": {"secret"}}},
		{"wrong password", url.Values{"username": {"admin"}, "password": {"wrong"}}},
		{"both wrong", url.Values{"username": {"nobody"}, "password": {"wrong"}}},
		{"empty", url.Values{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp apiResponse
			rr := doForm(t, s, "/api/login", tt.form, &resp)
			assert.False(t, resp.Success)
			// One generic message regardless of which field was wrong.
			assert.Equal(t, "Invalid username or password", resp.Message)
			assert.Empty(t, rr.Result().Cookies())
		})
	}
}

func TestLogoutHandler_EndsSession(t *testing.T) {
	s := setupServer(t)
	cookie := login(t, s)

	req := httptest.NewRequest(http.MethodPost, "/api/logout", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	// The old token no longer grants admin access.
	req = httptest.NewRequest(http.MethodGet, "/api/orders?admin=true", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var listResp orderListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listResp))
	assert.False(t, listResp.Success)
}

func TestSearchOrdersHandler(t *testing.T) {
	s := setupServer(t)
	cookie := login(t, s)

	createOrder(t, s, "Alice Johnson", "5551112222", "1")
	createOrder(t, s, "Bob Stone", "5553334444", "1")

	search := func(q string) orderListResponse {
		req := httptest.NewRequest(http.MethodGet, "/api/orders/search?q="+url.QueryEscape(q), nil)
		req.AddCookie(cookie)
		rr := httptest.NewRecorder()
		s.router.ServeHTTP(rr, req)

		var resp orderListResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		return resp
	}

	resp := search("Alice")
	require.True(t, resp.Success)
	require.Len(t, resp.Orders, 1)
	assert.Equal(t, "Alice Johnson", resp.Orders[0].Name)
	assert.Equal(t, "Found 1 orders", resp.Message)

	resp = search("")
	require.True(t, resp.Success)
	assert.Len(t, resp.Orders, 2)
}

func TestSearchOrdersHandler_RequiresSession(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/search?q=x", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp orderListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, resp.Success)
}

func TestUpdateOrderStatusHandler(t *testing.T) {
	s := setupServer(t)
	cookie := login(t, s)

	orderID := createOrder(t, s, "Test", "5551234567", "1")

	body := strings.NewReader(`{"status": "shipped"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/"+orderID+"/status", body)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, fmt.Sprintf("Order %s status updated to shipped", orderID), resp.Message)

	orders := adminList(t, s, cookie)
	require.Len(t, orders, 1)
	assert.Equal(t, "shipped", orders[0].Status)
}

func TestUpdateOrderStatusHandler_MissingOrderStillSucceeds(t *testing.T) {
	s := setupServer(t)
	cookie := login(t, s)

	body := strings.NewReader(`{"status": "shipped"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/SUMIFUN-00000000000000-000/status", body)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	// Historical contract: the caller cannot tell a zero-match update apart
	// from a real one.
	assert.True(t, resp.Success)

	assert.Empty(t, adminList(t, s, cookie))
}

func TestUpdateOrderStatusHandler_RequiresSession(t *testing.T) {
	s := setupServer(t)

	body := strings.NewReader(`{"status": "shipped"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/orders/x/status", body)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestExportOrdersHandler(t *testing.T) {
	s := setupServer(t)
	cookie := login(t, s)

	createOrder(t, s, "Test", "5551234567", "1")
	createOrder(t, s, "Other", "5559876543", "3")

	req := httptest.NewRequest(http.MethodGet, "/api/orders/export", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp exportOrdersResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	assert.Equal(t, 2, resp.Count)
	assert.Regexp(t, `^orders_export_\d{8}_\d{6}\.json$`, resp.Filename)

	data, err := os.ReadFile(filepath.Join(s.config.ExportDir, resp.Filename))
	require.NoError(t, err)

	var exported []*models.Order
	require.NoError(t, json.Unmarshal(data, &exported))
	assert.Len(t, exported, 2)
}

func TestExportOrdersHandler_RequiresSession(t *testing.T) {
	s := setupServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/orders/export", nil)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestStaticPagesAndFallback(t *testing.T) {
	s := setupServer(t)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"landing page", "/", "landing"},
		{"admin viewer", "/orders", "viewer"},
		{"unmatched path falls back to landing", "/no/such/page", "landing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rr := httptest.NewRecorder()
			s.router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
		})
	}
}
