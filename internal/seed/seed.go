package seed

import (
	"context"
	"fmt"
	"log"
	"math"

	"campdir/internal/models"
	"campdir/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumPublishers int
	NumUsers      int
	ShouldClean   bool
}

// Seed populates the database with demo data: an admin, publishers with one
// bootcamp each, courses, and reviews from regular users. Derived aggregates
// are recomputed at the end so the listings look real.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d publishers and %d users...",
		opts.NumPublishers, opts.NumUsers)

	if opts.ShouldClean {
		if err := ClearAll(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	f := NewFactory(db)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	admin := &models.User{
		Name:     "Admin Account",
		Email:    "admin@campdir.dev",
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser()
		if err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("%d users created", len(users))

	bootcamps := make([]*models.Bootcamp, 0, opts.NumPublishers)
	for i := 0; i < opts.NumPublishers; i++ {
		publisher, err := f.CreateUser(func(u *models.User) {
			u.Role = models.RolePublisher
		})
		if err != nil {
			return fmt.Errorf("failed to create publishers: %w", err)
		}

		bootcamp, err := f.CreateBootcamp(publisher)
		if err != nil {
			return fmt.Errorf("failed to create bootcamps: %w", err)
		}
		bootcamps = append(bootcamps, bootcamp)
	}
	log.Printf("%d publishers with bootcamps created", len(bootcamps))

	courses := 0
	reviews := 0
	for _, bootcamp := range bootcamps {
		for i := 0; i < 2+f.r.Intn(3); i++ {
			if _, err := f.CreateCourse(bootcamp); err != nil {
				return fmt.Errorf("failed to create courses: %w", err)
			}
			courses++
		}

		// Each reviewer reviews at most once per bootcamp.
		perm := f.r.Perm(len(users))
		for _, idx := range perm[:f.r.Intn(min(len(users), 5))] {
			if _, err := f.CreateReview(bootcamp, users[idx]); err != nil {
				return fmt.Errorf("failed to create reviews: %w", err)
			}
			reviews++
		}
	}
	log.Printf("%d courses and %d reviews created", courses, reviews)

	if err := recomputeAggregates(db, bootcamps); err != nil {
		return fmt.Errorf("failed to recompute aggregates: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	log.Println("All seeded accounts use the password: password123")
	return nil
}

// ClearAll wipes every seeded table.
func ClearAll(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE reviews, courses, bootcamps, users RESTART IDENTITY CASCADE;`).Error
	}
	for _, table := range []string{"reviews", "courses", "bootcamps", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return err
		}
	}
	return nil
}

func recomputeAggregates(db *gorm.DB, bootcamps []*models.Bootcamp) error {
	ctx := context.Background()
	courseRepo := repository.NewCourseRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	bootcampRepo := repository.NewBootcampRepository(db)

	for _, bootcamp := range bootcamps {
		avgCost, err := courseRepo.AverageTuition(ctx, bootcamp.ID)
		if err != nil {
			return err
		}
		if avgCost != nil {
			rounded := math.Ceil(*avgCost/10) * 10
			avgCost = &rounded
		}
		if err := bootcampRepo.UpdateAverageCost(ctx, bootcamp.ID, avgCost); err != nil {
			return err
		}

		avgRating, err := reviewRepo.AverageRating(ctx, bootcamp.ID)
		if err != nil {
			return err
		}
		if avgRating != nil {
			rounded := math.Round(*avgRating*10) / 10
			avgRating = &rounded
		}
		if err := bootcampRepo.UpdateAverageRating(ctx, bootcamp.ID, avgRating); err != nil {
			return err
		}
	}
	return nil
}
