package server

import (
	"fmt"
	"net/http"
	"testing"

	"campdir/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReviewUpdatesAverageRating(t *testing.T) {
	app, _, _ := newTestServer(t)
	pub := registerUser(t, app, "Pub", "rpub@example.com", models.RolePublisher)
	reviewer := registerUser(t, app, "Reviewer", "reviewer@example.com", models.RoleUser)
	campID := createBootcamp(t, app, pub, "Reviewed Bootcamp")

	resp, body := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/bootcamps/%d/reviews", campID), map[string]any{
		"title":  "Loved it",
		"text":   "Great mentors",
		"rating": 8,
	}, reviewer)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, float64(8), body["data"].(map[string]any)["rating"])

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/bootcamps/%d", campID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 8.0, body["data"].(map[string]any)["average_rating"])
}

func TestCreateReviewPublisherForbidden(t *testing.T) {
	app, _, _ := newTestServer(t)
	pub := registerUser(t, app, "Pub", "rpub2@example.com", models.RolePublisher)
	campID := createBootcamp(t, app, pub, "Self Praise Bootcamp")

	resp, body := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/bootcamps/%d/reviews", campID), map[string]any{
		"title":  "Five stars",
		"text":   "I would say that",
		"rating": 10,
	}, pub)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "User role 'publisher' is not authorized to access this route", body["error"])
}

func TestCreateReviewDuplicate(t *testing.T) {
	app, _, _ := newTestServer(t)
	pub := registerUser(t, app, "Pub", "rpub3@example.com", models.RolePublisher)
	reviewer := registerUser(t, app, "Reviewer", "again@example.com", models.RoleUser)
	campID := createBootcamp(t, app, pub, "Once Only Bootcamp")

	path := fmt.Sprintf("/api/v1/bootcamps/%d/reviews", campID)
	resp, _ := doJSON(t, app, http.MethodPost, path, map[string]any{
		"title": "First take", "text": "good", "rating": 7,
	}, reviewer)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, path, map[string]any{
		"title": "Second take", "text": "still good", "rating": 9,
	}, reviewer)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "already submitted")
}

func TestUpdateReviewOwnership(t *testing.T) {
	app, _, _ := newTestServer(t)
	pub := registerUser(t, app, "Pub", "rpub4@example.com", models.RolePublisher)
	author := registerUser(t, app, "Author", "author@example.com", models.RoleUser)
	stranger := registerUser(t, app, "Stranger", "stranger@example.com", models.RoleUser)
	campID := createBootcamp(t, app, pub, "Edited Bootcamp")

	resp, body := doJSON(t, app, http.MethodPost, fmt.Sprintf("/api/v1/bootcamps/%d/reviews", campID), map[string]any{
		"title": "Draft", "text": "meh", "rating": 5,
	}, author)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reviewID := uint(body["data"].(map[string]any)["id"].(float64))
	path := fmt.Sprintf("/api/v1/reviews/%d", reviewID)

	resp, body = doJSON(t, app, http.MethodPut, path, map[string]any{"rating": 1}, stranger)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, body["error"], "is not authorized to update this review")

	resp, body = doJSON(t, app, http.MethodPut, path, map[string]any{"rating": 9}, author)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(9), body["data"].(map[string]any)["rating"])
}

func TestDeleteReviewRecomputesAverage(t *testing.T) {
	app, _, _ := newTestServer(t)
	pub := registerUser(t, app, "Pub", "rpub5@example.com", models.RolePublisher)
	one := registerUser(t, app, "One", "one@example.com", models.RoleUser)
	two := registerUser(t, app, "Two", "two@example.com", models.RoleUser)
	campID := createBootcamp(t, app, pub, "Shifting Bootcamp")

	path := fmt.Sprintf("/api/v1/bootcamps/%d/reviews", campID)
	resp, body := doJSON(t, app, http.MethodPost, path, map[string]any{
		"title": "Great", "text": "yes", "rating": 10,
	}, one)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	firstID := uint(body["data"].(map[string]any)["id"].(float64))

	resp, _ = doJSON(t, app, http.MethodPost, path, map[string]any{
		"title": "Poor", "text": "no", "rating": 2,
	}, two)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/bootcamps/%d", campID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 6.0, body["data"].(map[string]any)["average_rating"])

	resp, _ = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", firstID), nil, one)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/bootcamps/%d", campID), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2.0, body["data"].(map[string]any)["average_rating"])
}
