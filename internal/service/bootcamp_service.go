package service

import (
	"context"
	"fmt"
	"strings"

	"campdir/internal/authz"
	"campdir/internal/geo"
	"campdir/internal/models"
	"campdir/internal/repository"
)

// BootcampService implements bootcamp write operations: slug derivation,
// geocoding, the one-bootcamp-per-publisher rule and cascade delete.
type BootcampService struct {
	repo     repository.BootcampRepository
	geocoder geo.Geocoder
}

// NewBootcampService returns a new BootcampService.
func NewBootcampService(repo repository.BootcampRepository, geocoder geo.Geocoder) *BootcampService {
	return &BootcampService{repo: repo, geocoder: geocoder}
}

// CreateBootcampInput is the payload for creating a bootcamp.
type CreateBootcampInput struct {
	Name          string   `json:"name" validate:"required,max=50"`
	Description   string   `json:"description" validate:"required,max=500"`
	Website       string   `json:"website" validate:"omitempty,url"`
	Phone         string   `json:"phone" validate:"omitempty,max=20"`
	Email         string   `json:"email" validate:"omitempty,email"`
	Address       string   `json:"address" validate:"required"`
	Careers       []string `json:"careers" validate:"required,min=1"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"job_assistance"`
	JobGuarantee  bool     `json:"job_guarantee"`
	AcceptGI      bool     `json:"accept_gi"`
}

// UpdateBootcampInput is the partial payload for updating a bootcamp.
// Nil fields are left untouched.
type UpdateBootcampInput struct {
	Name          *string   `json:"name" validate:"omitempty,max=50"`
	Description   *string   `json:"description" validate:"omitempty,max=500"`
	Website       *string   `json:"website" validate:"omitempty,url"`
	Phone         *string   `json:"phone" validate:"omitempty,max=20"`
	Email         *string   `json:"email" validate:"omitempty,email"`
	Address       *string   `json:"address"`
	Careers       []string  `json:"careers"`
	Housing       *bool     `json:"housing"`
	JobAssistance *bool     `json:"job_assistance"`
	JobGuarantee  *bool     `json:"job_guarantee"`
	AcceptGI      *bool     `json:"accept_gi"`
}

func validCareers(careers []string) error {
	for _, c := range careers {
		if !models.ValidCareer(c) {
			return models.NewValidationError(fmt.Sprintf("Invalid career '%s'", c))
		}
	}
	return nil
}

// Create publishes a new bootcamp owned by the principal. Non-admins may own
// at most one.
func (s *BootcampService) Create(ctx context.Context, principal *models.User, in CreateBootcampInput) (*models.Bootcamp, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := validCareers(in.Careers); err != nil {
		return nil, err
	}

	if !principal.IsAdmin() {
		exists, err := s.repo.ExistsForUser(ctx, principal.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, models.NewValidationError(
				fmt.Sprintf("User %d has already published a bootcamp", principal.ID))
		}
	}

	location, err := s.geocode(ctx, in.Address)
	if err != nil {
		return nil, err
	}

	bootcamp := &models.Bootcamp{
		Name:          in.Name,
		Slug:          Slugify(in.Name),
		Description:   in.Description,
		Website:       in.Website,
		Phone:         in.Phone,
		Email:         in.Email,
		Location:      *location,
		Careers:       in.Careers,
		Photo:         models.DefaultBootcampPhoto,
		Housing:       in.Housing,
		JobAssistance: in.JobAssistance,
		JobGuarantee:  in.JobGuarantee,
		AcceptGI:      in.AcceptGI,
		UserID:        principal.ID,
	}

	if err := s.repo.Create(ctx, bootcamp); err != nil {
		return nil, err
	}
	return bootcamp, nil
}

// Update applies a partial update; owner or admin only. Changing the name
// re-derives the slug, changing the address re-geocodes.
func (s *BootcampService) Update(ctx context.Context, principal *models.User, id uint, in UpdateBootcampInput) (*models.Bootcamp, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	bootcamp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.RequireOwner(principal, bootcamp.UserID, "update", "bootcamp"); err != nil {
		return nil, err
	}

	if in.Name != nil {
		bootcamp.Name = *in.Name
		bootcamp.Slug = Slugify(*in.Name)
	}
	if in.Description != nil {
		bootcamp.Description = *in.Description
	}
	if in.Website != nil {
		bootcamp.Website = *in.Website
	}
	if in.Phone != nil {
		bootcamp.Phone = *in.Phone
	}
	if in.Email != nil {
		bootcamp.Email = *in.Email
	}
	if in.Careers != nil {
		if err := validCareers(in.Careers); err != nil {
			return nil, err
		}
		bootcamp.Careers = in.Careers
	}
	if in.Housing != nil {
		bootcamp.Housing = *in.Housing
	}
	if in.JobAssistance != nil {
		bootcamp.JobAssistance = *in.JobAssistance
	}
	if in.JobGuarantee != nil {
		bootcamp.JobGuarantee = *in.JobGuarantee
	}
	if in.AcceptGI != nil {
		bootcamp.AcceptGI = *in.AcceptGI
	}
	if in.Address != nil {
		location, err := s.geocode(ctx, *in.Address)
		if err != nil {
			return nil, err
		}
		bootcamp.Location = *location
	}

	if err := s.repo.Update(ctx, bootcamp); err != nil {
		return nil, err
	}
	return bootcamp, nil
}

// Delete removes the bootcamp and cascades to its courses and reviews.
func (s *BootcampService) Delete(ctx context.Context, principal *models.User, id uint) error {
	bootcamp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.RequireOwner(principal, bootcamp.UserID, "delete", "bootcamp"); err != nil {
		return err
	}
	return s.repo.DeleteCascade(ctx, id)
}

// WithinRadius geocodes the zipcode and returns bootcamps inside the radius.
func (s *BootcampService) WithinRadius(ctx context.Context, zipcode string, distanceMiles float64) ([]models.Bootcamp, error) {
	if distanceMiles <= 0 {
		return nil, models.NewValidationError("Distance must be positive")
	}
	point, err := s.geocoder.Geocode(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	return s.repo.ListWithinRadius(ctx, point.Lat, point.Lng, distanceMiles)
}

// geocode resolves the raw address into the persisted location; the address
// itself is never stored.
func (s *BootcampService) geocode(ctx context.Context, address string) (*models.Location, error) {
	result, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}
	return &models.Location{
		Type:             models.GeoJSONPoint,
		Lat:              result.Lat,
		Lng:              result.Lng,
		FormattedAddress: result.FormattedAddress,
		Street:           result.Street,
		City:             result.City,
		State:            result.State,
		Zipcode:          result.Zipcode,
		Country:          result.Country,
	}, nil
}

// Slugify derives a URL slug from a bootcamp name: lowercase, alphanumeric
// runs joined by single dashes.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	pendingDash := false
	for _, r := range name {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
