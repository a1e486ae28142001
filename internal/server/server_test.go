package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"campdir/internal/config"
	"campdir/internal/database"
	"campdir/internal/geo"
	"campdir/internal/mailer"
	"campdir/internal/models"
	"campdir/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixedGeocoder resolves every address to the same Boston point.
type fixedGeocoder struct {
	err error
}

func (g fixedGeocoder) Geocode(ctx context.Context, address string) (*geo.Result, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &geo.Result{
		Lat: 42.3601, Lng: -71.0589,
		FormattedAddress: "233 Bay State Rd, Boston, MA 02215, US",
		Street:           "233 Bay State Rd", City: "Boston", State: "MA",
		Zipcode: "02215", Country: "US",
	}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:                "5000",
		Env:                 "test",
		JWTSecret:           "test_secret",
		JWTExpireHours:      1,
		JWTCookieExpireDays: 1,
		FileUploadDir:       "/tmp/campdir-test-uploads",
		MaxFileUploadMB:     1,
	}
}

func newTestServer(t *testing.T) (*fiber.App, *Server, *gorm.DB) {
	t.Helper()

	db, err := database.ConnectTest()
	require.NoError(t, err)

	srv, err := NewServerWithDeps(testConfig(), db, nil, fixedGeocoder{}, mailer.LogMailer{})
	require.NoError(t, err)
	// Route-level prometheus registration clashes across tests sharing the
	// default registry.
	srv.promMiddleware = nil

	app := fiber.New()
	srv.SetupRoutes(app)
	return app, srv, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var parsed map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &parsed), "body: %s", raw)
	}
	return resp, parsed
}

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, app *fiber.App, name, email string, role models.Role) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"name":     name,
		"email":    email,
		"password": "password123",
		"role":     role,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// createAdmin inserts an admin directly; admins cannot self-register.
func createAdmin(t *testing.T, app *fiber.App, db *gorm.DB) string {
	t.Helper()
	hash, err := service.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Name: "Admin", Email: "admin@example.com", Password: hash, Role: models.RoleAdmin,
	}).Error)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    "admin@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return body["token"].(string)
}

func createBootcamp(t *testing.T, app *fiber.App, token, name string) uint {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/bootcamps", map[string]any{
		"name":        name,
		"description": "Full stack training",
		"address":     "233 Bay State Rd Boston MA",
		"careers":     []string{models.CareerWebDev},
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	data := body["data"].(map[string]any)
	return uint(data["id"].(float64))
}
