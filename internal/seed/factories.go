// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"campdir/internal/models"
	"campdir/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// seedCity anchors generated bootcamps to a real point so the radius search
// behaves sensibly on seeded data.
type seedCity struct {
	City    string
	State   string
	Zipcode string
	Lat     float64
	Lng     float64
}

var seedCities = []seedCity{
	{"Boston", "MA", "02118", 42.3601, -71.0589},
	{"Cambridge", "MA", "02139", 42.3736, -71.1097},
	{"Providence", "RI", "02903", 41.8240, -71.4128},
	{"New York", "NY", "10001", 40.7128, -74.0060},
	{"Philadelphia", "PA", "19104", 39.9526, -75.1652},
	{"San Francisco", "CA", "94103", 37.7749, -122.4194},
	{"Oakland", "CA", "94607", 37.8044, -122.2712},
	{"Seattle", "WA", "98101", 47.6062, -122.3321},
	{"Austin", "TX", "78701", 30.2672, -97.7431},
	{"Denver", "CO", "80202", 39.7392, -104.9903},
}

var careerPool = []string{
	models.CareerWebDev,
	models.CareerMobileDev,
	models.CareerUIUX,
	models.CareerDataSci,
	models.CareerBusiness,
	models.CareerOther,
}

var skillPool = []string{
	models.SkillBeginner,
	models.SkillIntermediate,
	models.SkillAdvanced,
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	now := time.Now().UnixNano()
	gofakeit.Seed(now)
	return &Factory{db: db, r: rand.New(rand.NewSource(now))}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		Name:     gofakeit.Name(),
		Email:    fmt.Sprintf("%d.%s", gofakeit.Number(100, 999), gofakeit.Email()),
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateBootcamp constructs and persists a bootcamp owned by the publisher,
// anchored to one of the seed cities with a little positional jitter.
func (f *Factory) CreateBootcamp(owner *models.User, overrides ...func(*models.Bootcamp)) (*models.Bootcamp, error) {
	city := seedCities[f.r.Intn(len(seedCities))]
	name := fmt.Sprintf("%s %s Bootcamp", gofakeit.Company(), gofakeit.HackerNoun())
	street := fmt.Sprintf("%d %s", gofakeit.Number(1, 999), gofakeit.StreetName())

	careers := f.pickCareers()

	bootcamp := &models.Bootcamp{
		Name:        name,
		Slug:        service.Slugify(name),
		Description: gofakeit.Paragraph(1, 3, 10, " "),
		Website:     gofakeit.URL(),
		Phone:       gofakeit.Phone(),
		Email:       gofakeit.Email(),
		Location: models.Location{
			Type:             models.GeoJSONPoint,
			Lat:              jitter(f.r, city.Lat),
			Lng:              jitter(f.r, city.Lng),
			FormattedAddress: fmt.Sprintf("%s, %s, %s %s, US", street, city.City, city.State, city.Zipcode),
			Street:           street,
			City:             city.City,
			State:            city.State,
			Zipcode:          city.Zipcode,
			Country:          "US",
		},
		Careers:       careers,
		Photo:         models.DefaultBootcampPhoto,
		Housing:       gofakeit.Bool(),
		JobAssistance: gofakeit.Bool(),
		JobGuarantee:  f.r.Intn(4) == 0,
		AcceptGI:      gofakeit.Bool(),
		UserID:        owner.ID,
	}

	for _, override := range overrides {
		override(bootcamp)
	}

	if err := f.db.Create(bootcamp).Error; err != nil {
		return nil, err
	}
	return bootcamp, nil
}

// CreateCourse constructs and persists a course under the bootcamp.
func (f *Factory) CreateCourse(bootcamp *models.Bootcamp, overrides ...func(*models.Course)) (*models.Course, error) {
	course := &models.Course{
		Title:                 fmt.Sprintf("%s %s", gofakeit.HackerAdjective(), gofakeit.HackerNoun()),
		Description:           gofakeit.Paragraph(1, 2, 8, " "),
		Weeks:                 fmt.Sprintf("%d", gofakeit.Number(4, 16)),
		Tuition:               float64(gofakeit.Number(20, 140)) * 100,
		MinimumSkill:          skillPool[f.r.Intn(len(skillPool))],
		ScholarshipsAvailable: gofakeit.Bool(),
		BootcampID:            bootcamp.ID,
		UserID:                bootcamp.UserID,
	}

	for _, override := range overrides {
		override(course)
	}

	if err := f.db.Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

// CreateReview constructs and persists a review of the bootcamp by the user.
func (f *Factory) CreateReview(bootcamp *models.Bootcamp, author *models.User, overrides ...func(*models.Review)) (*models.Review, error) {
	review := &models.Review{
		Title:      gofakeit.Sentence(4),
		Text:       gofakeit.Paragraph(1, 2, 8, " "),
		Rating:     gofakeit.Number(1, 10),
		BootcampID: bootcamp.ID,
		UserID:     author.ID,
	}

	for _, override := range overrides {
		override(review)
	}

	if err := f.db.Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (f *Factory) pickCareers() []string {
	n := 1 + f.r.Intn(3)
	picked := make([]string, 0, n)
	perm := f.r.Perm(len(careerPool))
	for _, i := range perm[:n] {
		picked = append(picked, careerPool[i])
	}
	return picked
}

// jitter shifts a coordinate by up to roughly three miles.
func jitter(r *rand.Rand, v float64) float64 {
	return math.Round((v+(r.Float64()-0.5)*0.08)*10000) / 10000
}
