package server

import (
	"fmt"
	"net/http"
	"testing"

	"campdir/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBootcampRequiresPublisherRole(t *testing.T) {
	app, _, _ := newTestServer(t)
	token := registerUser(t, app, "Regular", "regular@example.com", models.RoleUser)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/bootcamps", map[string]any{
		"name":        "Nope Bootcamp",
		"description": "Should not be created",
		"address":     "1 Main St Boston MA",
		"careers":     []string{models.CareerWebDev},
	}, token)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "User role 'user' is not authorized to access this route", body["error"])
}

func TestCreateBootcampGeocodesAndSlugs(t *testing.T) {
	app, _, _ := newTestServer(t)
	token := registerUser(t, app, "Pub", "pub@example.com", models.RolePublisher)

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/bootcamps", map[string]any{
		"name":        "Devworks Bootcamp",
		"description": "Full stack in twelve weeks",
		"address":     "233 Bay State Rd Boston MA 02215",
		"careers":     []string{models.CareerWebDev, models.CareerDataSci},
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, "devworks-bootcamp", data["slug"])
	assert.Equal(t, models.DefaultBootcampPhoto, data["photo"])

	loc := data["location"].(map[string]any)
	assert.Equal(t, "Point", loc["type"])
	// The submitted address is never persisted, only the geocoded result.
	assert.Equal(t, "02215", loc["zipcode"])
}

func TestPublisherLimitedToOneBootcamp(t *testing.T) {
	app, _, _ := newTestServer(t)
	token := registerUser(t, app, "Pub", "one@example.com", models.RolePublisher)

	createBootcamp(t, app, token, "First Bootcamp")

	resp, body := doJSON(t, app, http.MethodPost, "/api/v1/bootcamps", map[string]any{
		"name":        "Second Bootcamp",
		"description": "One too many",
		"address":     "1 Main St Boston MA",
		"careers":     []string{models.CareerWebDev},
	}, token)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "has already published a bootcamp")
}

func TestUpdateBootcampOwnership(t *testing.T) {
	app, _, db := newTestServer(t)
	owner := registerUser(t, app, "Owner", "owner@example.com", models.RolePublisher)
	other := registerUser(t, app, "Other", "other@example.com", models.RolePublisher)

	id := createBootcamp(t, app, owner, "Owned Bootcamp")
	path := fmt.Sprintf("/api/v1/bootcamps/%d", id)

	resp, body := doJSON(t, app, http.MethodPut, path, map[string]any{
		"description": "hijacked",
	}, other)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body["error"], "is not authorized to update this bootcamp")

	resp, body = doJSON(t, app, http.MethodPut, path, map[string]any{
		"description": "refreshed copy",
	}, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "refreshed copy", body["data"].(map[string]any)["description"])

	// Admins bypass ownership.
	admin := createAdmin(t, app, db)
	resp, _ = doJSON(t, app, http.MethodPut, path, map[string]any{
		"description": "admin edit",
	}, admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeleteBootcampOwnership(t *testing.T) {
	app, _, _ := newTestServer(t)
	owner := registerUser(t, app, "Owner", "down@example.com", models.RolePublisher)
	other := registerUser(t, app, "Other", "up@example.com", models.RolePublisher)

	id := createBootcamp(t, app, owner, "Doomed Bootcamp")
	path := fmt.Sprintf("/api/v1/bootcamps/%d", id)

	resp, body := doJSON(t, app, http.MethodDelete, path, nil, other)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body["error"], "is not authorized to delete this bootcamp")

	resp, _ = doJSON(t, app, http.MethodDelete, path, nil, owner)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "not found")
}

func TestGetBootcampsEnvelope(t *testing.T) {
	app, _, _ := newTestServer(t)
	a := registerUser(t, app, "A", "a@example.com", models.RolePublisher)
	b := registerUser(t, app, "B", "b@example.com", models.RolePublisher)
	createBootcamp(t, app, a, "Alpha Bootcamp")
	createBootcamp(t, app, b, "Beta Bootcamp")

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/bootcamps?limit=1&page=2&sort=name", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(1), body["count"])
	assert.Equal(t, float64(2), body["total"])

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["prev"].(map[string]any)["page"])
	assert.NotContains(t, pagination, "next")

	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "Beta Bootcamp", data[0].(map[string]any)["name"])
}

func TestGetBootcampsRejectsUnknownFilter(t *testing.T) {
	app, _, _ := newTestServer(t)

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/bootcamps?secret[gt]=1", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
}

func TestGetBootcampMalformedID(t *testing.T) {
	app, _, _ := newTestServer(t)

	// A non-numeric identifier can never name a bootcamp, so it is a miss,
	// not a bad request.
	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/bootcamps/abc", nil, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Resource not found", body["error"])
}

func TestGetBootcampsInRadius(t *testing.T) {
	app, _, _ := newTestServer(t)
	token := registerUser(t, app, "Pub", "radius@example.com", models.RolePublisher)
	// Test geocoder pins everything to Boston, so the bootcamp sits at the
	// center of any radius search.
	createBootcamp(t, app, token, "Hub Bootcamp")

	resp, body := doJSON(t, app, http.MethodGet, "/api/v1/bootcamps/radius/02215/10", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["count"])

	resp, body = doJSON(t, app, http.MethodGet, "/api/v1/bootcamps/radius/02215/0", nil, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "Distance must be positive")
}
