package products

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mfigueroa/showroom-backend/internal/images"
	"github.com/mfigueroa/showroom-backend/pkg/db/models"
	pkgerrors "github.com/mfigueroa/showroom-backend/pkg/errors"
	"github.com/mfigueroa/showroom-backend/pkg/logger"
)

const minYearLaunched = 1900

type productRepository interface {
	ListAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Insert(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, changes Changes) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type imageStore interface {
	Upload(ctx context.Context, data []byte, contentType string, productID uuid.UUID, role images.Role) (string, error)
	DeleteByURL(ctx context.Context, url string)
	DeleteAllForProduct(ctx context.Context, productID uuid.UUID)
}

// ImageUpload carries raw image bytes with the client-declared content type.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

// CreateInput models a new catalog entry.
type CreateInput struct {
	Title          string
	YearLaunched   int
	Category       *string
	DisplayOrder   *int
	PrimaryImage   *ImageUpload
	SecondaryImage *ImageUpload
}

// UpdateInput models a partial edit. Nil fields stay untouched;
// RemoveSecondary wins over a new secondary upload when both are sent.
type UpdateInput struct {
	Title           *string
	YearLaunched    *int
	Category        *string
	DisplayOrder    *int
	PrimaryImage    *ImageUpload
	SecondaryImage  *ImageUpload
	RemoveSecondary bool
}

// Service owns the product lifecycle: row state and image blobs move
// together through create, update, and delete.
type Service struct {
	repo  productRepository
	store imageStore
	logg  *logger.Logger
}

// NewService wires the lifecycle service.
func NewService(repo productRepository, store imageStore, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if store == nil {
		return nil, fmt.Errorf("image store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{repo: repo, store: store, logg: logg}, nil
}

// List returns the catalog in gallery order.
func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return s.repo.ListAll(ctx)
}

// GetByID returns a single product or a not-found error.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// Create validates the payload, uploads blobs under a pre-generated id, then
// inserts the row. A failed insert leaves the uploaded blobs orphaned; that
// is logged and accepted rather than compensated.
func (s *Service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	productID := uuid.New()
	ctx = s.logg.WithProductID(ctx, productID.String())

	primaryURL, err := s.store.Upload(ctx, input.PrimaryImage.Data, input.PrimaryImage.ContentType, productID, images.RolePrimary)
	if err != nil {
		return nil, err
	}

	var secondaryURL *string
	if input.SecondaryImage != nil {
		url, err := s.store.Upload(ctx, input.SecondaryImage.Data, input.SecondaryImage.ContentType, productID, images.RoleSecondary)
		if err != nil {
			return nil, err
		}
		secondaryURL = &url
	}

	product := &models.Product{
		ID:                productID,
		Title:             strings.TrimSpace(input.Title),
		YearLaunched:      input.YearLaunched,
		PrimaryImageURL:   primaryURL,
		SecondaryImageURL: secondaryURL,
		Category:          input.Category,
	}
	if input.DisplayOrder != nil {
		product.DisplayOrder = *input.DisplayOrder
	}

	created, err := s.repo.Insert(ctx, product)
	if err != nil {
		s.logg.Warn(ctx, "product insert failed after blob upload, blobs orphaned")
		return nil, err
	}
	return created, nil
}

// Update stages changes against the current row and applies them in one
// write. Old blobs are deleted best-effort before their replacements upload.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Product, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateUpdate(input); err != nil {
		return nil, err
	}

	ctx = s.logg.WithProductID(ctx, id.String())
	changes := Changes{
		Category:     input.Category,
		DisplayOrder: input.DisplayOrder,
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		changes.Title = &title
	}
	if input.YearLaunched != nil {
		changes.YearLaunched = input.YearLaunched
	}

	if input.PrimaryImage != nil {
		s.store.DeleteByURL(ctx, current.PrimaryImageURL)
		url, err := s.store.Upload(ctx, input.PrimaryImage.Data, input.PrimaryImage.ContentType, id, images.RolePrimary)
		if err != nil {
			return nil, err
		}
		changes.PrimaryImageURL = &url
	}

	switch {
	case input.RemoveSecondary:
		if current.SecondaryImageURL != nil {
			s.store.DeleteByURL(ctx, *current.SecondaryImageURL)
		}
		changes.SecondaryImageURL = OptionalString{Set: true}
	case input.SecondaryImage != nil:
		if current.SecondaryImageURL != nil {
			s.store.DeleteByURL(ctx, *current.SecondaryImageURL)
		}
		url, err := s.store.Upload(ctx, input.SecondaryImage.Data, input.SecondaryImage.ContentType, id, images.RoleSecondary)
		if err != nil {
			return nil, err
		}
		changes.SecondaryImageURL = OptionalString{Set: true, Value: &url}
	}

	return s.repo.Update(ctx, id, changes)
}

// Delete removes the row first, then sweeps the product's blob prefix. The
// sweep is best-effort and never reverses the row delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.store.DeleteAllForProduct(s.logg.WithProductID(ctx, id.String()), id)
	return nil
}

func validateCreate(input CreateInput) error {
	var problems []string
	if strings.TrimSpace(input.Title) == "" {
		problems = append(problems, "title is required")
	}
	if msg := yearProblem(input.YearLaunched); msg != "" {
		problems = append(problems, msg)
	}
	if input.PrimaryImage == nil || len(input.PrimaryImage.Data) == 0 {
		problems = append(problems, "primary_image is required")
	}
	if len(problems) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product payload").WithDetails(problems)
	}
	return nil
}

func validateUpdate(input UpdateInput) error {
	var problems []string
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		problems = append(problems, "title cannot be empty")
	}
	if input.YearLaunched != nil {
		if msg := yearProblem(*input.YearLaunched); msg != "" {
			problems = append(problems, msg)
		}
	}
	if len(problems) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product payload").WithDetails(problems)
	}
	return nil
}

func yearProblem(year int) string {
	maxYear := time.Now().Year() + 1
	if year < minYearLaunched || year > maxYear {
		return fmt.Sprintf("year_launched must be between %d and %d", minYearLaunched, maxYear)
	}
	return ""
}
