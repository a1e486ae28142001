package repository

import (
	"context"
	"fmt"
	"testing"

	"campdir/internal/database"
	"campdir/internal/models"
	"campdir/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectTest()
	require.NoError(t, err)
	return db
}

func seedOwner(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Name:     "Owner",
		Email:    "owner@example.com",
		Password: "hashed",
		Role:     models.RolePublisher,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedBootcamp(t *testing.T, db *gorm.DB, owner *models.User, name string, cost float64, lat, lng float64) *models.Bootcamp {
	t.Helper()
	bootcamp := &models.Bootcamp{
		Name:        name,
		Slug:        name,
		Description: "d",
		Careers:     []string{models.CareerWebDev},
		Location:    models.Location{Lat: lat, Lng: lng, City: "Boston"},
		UserID:      owner.ID,
	}
	if cost > 0 {
		bootcamp.AverageCost = &cost
	}
	require.NoError(t, db.Create(bootcamp).Error)
	return bootcamp
}

func TestBootcampListFiltering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBootcampRepository(db)
	owner := seedOwner(t, db)

	seedBootcamp(t, db, owner, "cheap", 4000, 42.36, -71.06)
	seedBootcamp(t, db, owner, "mid", 9000, 42.37, -71.11)
	seedBootcamp(t, db, owner, "pricey", 15000, 41.82, -71.41)

	q, err := query.Parse(map[string]string{"average_cost[lte]": "10000"}, BootcampQueryFields)
	require.NoError(t, err)

	bootcamps, total, err := repo.List(context.Background(), q, false)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, bootcamps, 2)
	for _, b := range bootcamps {
		assert.LessOrEqual(t, *b.AverageCost, 10000.0)
	}
}

func TestBootcampListFilteredTotalDrivesPagination(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBootcampRepository(db)
	owner := seedOwner(t, db)

	for i := 0; i < 5; i++ {
		seedBootcamp(t, db, owner, fmt.Sprintf("match-%d", i), 5000, 42.36, -71.06)
	}
	seedBootcamp(t, db, owner, "excluded", 20000, 42.36, -71.06)

	q, err := query.Parse(map[string]string{
		"average_cost[lt]": "10000",
		"limit":            "2",
		"page":             "2",
	}, BootcampQueryFields)
	require.NoError(t, err)

	bootcamps, total, err := repo.List(context.Background(), q, false)
	require.NoError(t, err)

	// Total counts the filtered set, not the table.
	assert.Equal(t, int64(5), total)
	assert.Len(t, bootcamps, 2)

	p := q.PageInfo(total)
	require.NotNil(t, p.Next)
	require.NotNil(t, p.Prev)
	assert.Equal(t, 3, p.Next.Page)
	assert.Equal(t, 1, p.Prev.Page)
}

func TestBootcampListSelectAndSort(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBootcampRepository(db)
	owner := seedOwner(t, db)

	seedBootcamp(t, db, owner, "bravo", 8000, 42.36, -71.06)
	seedBootcamp(t, db, owner, "alpha", 6000, 42.36, -71.06)

	q, err := query.Parse(map[string]string{
		"select": "name",
		"sort":   "name",
	}, BootcampQueryFields)
	require.NoError(t, err)

	bootcamps, _, err := repo.List(context.Background(), q, true)
	require.NoError(t, err)
	require.Len(t, bootcamps, 2)
	assert.Equal(t, "alpha", bootcamps[0].Name)
	assert.Equal(t, "bravo", bootcamps[1].Name)
	// Projection suppresses text columns outside the select list.
	assert.Empty(t, bootcamps[0].Description)
}

func TestBootcampDeleteCascade(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBootcampRepository(db)
	owner := seedOwner(t, db)
	bootcamp := seedBootcamp(t, db, owner, "doomed", 5000, 42.36, -71.06)

	require.NoError(t, db.Create(&models.Course{
		Title: "c", Description: "d", Weeks: "8", Tuition: 100,
		MinimumSkill: models.SkillBeginner, BootcampID: bootcamp.ID, UserID: owner.ID,
	}).Error)
	require.NoError(t, db.Create(&models.Review{
		Title: "r", Text: "t", Rating: 8, BootcampID: bootcamp.ID, UserID: owner.ID,
	}).Error)

	require.NoError(t, repo.DeleteCascade(context.Background(), bootcamp.ID))

	var courseCount, reviewCount int64
	require.NoError(t, db.Model(&models.Course{}).Where("bootcamp_id = ?", bootcamp.ID).Count(&courseCount).Error)
	require.NoError(t, db.Model(&models.Review{}).Where("bootcamp_id = ?", bootcamp.ID).Count(&reviewCount).Error)
	assert.Zero(t, courseCount)
	assert.Zero(t, reviewCount)

	_, err := repo.GetByID(context.Background(), bootcamp.ID)
	require.Error(t, err)
	assert.Equal(t, 404, models.StatusOf(err))
}

func TestBootcampListWithinRadius(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBootcampRepository(db)
	owner := seedOwner(t, db)

	// Boston, Cambridge (~3 miles away), Providence (~40 miles away).
	seedBootcamp(t, db, owner, "boston", 0, 42.3601, -71.0589)
	seedBootcamp(t, db, owner, "cambridge", 0, 42.3736, -71.1097)
	seedBootcamp(t, db, owner, "providence", 0, 41.8240, -71.4128)

	within, err := repo.ListWithinRadius(context.Background(), 42.3601, -71.0589, 10)
	require.NoError(t, err)
	require.Len(t, within, 2)

	names := []string{within[0].Name, within[1].Name}
	assert.Contains(t, names, "boston")
	assert.Contains(t, names, "cambridge")
}

func TestBootcampCreateDuplicateName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBootcampRepository(db)
	owner := seedOwner(t, db)

	seedBootcamp(t, db, owner, "Taken", 0, 42.36, -71.06)

	err := repo.Create(context.Background(), &models.Bootcamp{
		Name: "Taken", Slug: "taken", Description: "d",
		Careers: []string{models.CareerWebDev}, UserID: owner.ID,
	})
	require.Error(t, err)
	assert.Equal(t, 400, models.StatusOf(err))
	assert.Contains(t, err.Error(), "Duplicate field value")
}

func TestReviewUniquePerUser(t *testing.T) {
	db := setupTestDB(t)
	reviews := NewReviewRepository(db)
	owner := seedOwner(t, db)
	bootcamp := seedBootcamp(t, db, owner, "reviewed", 0, 42.36, -71.06)

	first := &models.Review{Title: "a", Text: "t", Rating: 8, BootcampID: bootcamp.ID, UserID: owner.ID}
	require.NoError(t, reviews.Create(context.Background(), first))

	dup := &models.Review{Title: "b", Text: "t", Rating: 5, BootcampID: bootcamp.ID, UserID: owner.ID}
	err := reviews.Create(context.Background(), dup)
	require.Error(t, err)
	assert.Equal(t, 400, models.StatusOf(err))
	assert.Contains(t, err.Error(), "already submitted")

	// Hard delete frees the slot for a fresh review.
	require.NoError(t, reviews.Delete(context.Background(), first.ID))
	again := &models.Review{Title: "c", Text: "t", Rating: 6, BootcampID: bootcamp.ID, UserID: owner.ID}
	require.NoError(t, reviews.Create(context.Background(), again))
}

func TestCourseAverageTuition(t *testing.T) {
	db := setupTestDB(t)
	courses := NewCourseRepository(db)
	owner := seedOwner(t, db)
	bootcamp := seedBootcamp(t, db, owner, "avg", 0, 42.36, -71.06)

	avg, err := courses.AverageTuition(context.Background(), bootcamp.ID)
	require.NoError(t, err)
	assert.Nil(t, avg)

	for _, tuition := range []float64{100, 200, 900} {
		require.NoError(t, courses.Create(context.Background(), &models.Course{
			Title: "c", Description: "d", Weeks: "8", Tuition: tuition,
			MinimumSkill: models.SkillBeginner, BootcampID: bootcamp.ID, UserID: owner.ID,
		}))
	}

	avg, err = courses.AverageTuition(context.Background(), bootcamp.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 400.0, *avg, 0.001)
}
