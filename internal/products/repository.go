package products

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mfigueroa/showroom-backend/pkg/db/models"
	pkgerrors "github.com/mfigueroa/showroom-backend/pkg/errors"
	"gorm.io/gorm"
)

// OptionalString distinguishes "leave the column alone" from "set it to NULL".
type OptionalString struct {
	Set   bool
	Value *string
}

// Changes carries a partial update. Nil fields are left untouched; only the
// repository turns this into a column map, callers never pass raw maps.
type Changes struct {
	Title             *string
	YearLaunched      *int
	Category          *string
	DisplayOrder      *int
	PrimaryImageURL   *string
	SecondaryImageURL OptionalString
}

func (c Changes) columns() map[string]any {
	cols := map[string]any{}
	if c.Title != nil {
		cols["title"] = *c.Title
	}
	if c.YearLaunched != nil {
		cols["year_launched"] = *c.YearLaunched
	}
	if c.Category != nil {
		cols["category"] = *c.Category
	}
	if c.DisplayOrder != nil {
		cols["display_order"] = *c.DisplayOrder
	}
	if c.PrimaryImageURL != nil {
		cols["primary_image_url"] = *c.PrimaryImageURL
	}
	if c.SecondaryImageURL.Set {
		cols["secondary_image_url"] = c.SecondaryImageURL.Value
	}
	return cols
}

// Repository wires product persistence to the shared GORM connection.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListAll returns every product in gallery order. An empty catalog yields an
// empty slice, not an error.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	rows := []models.Product{}
	err := r.db.WithContext(ctx).
		Order("display_order DESC, created_at DESC").
		Find(&rows).
		Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return rows, nil
}

// FindByID loads a product for read paths. Absence is (nil, nil).
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

// Get loads a product for write paths, where absence is an error.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// Insert persists a new product row.
func (r *Repository) Insert(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert product")
	}
	return product, nil
}

// Update applies a partial change set and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, changes Changes) (*models.Product, error) {
	cols := changes.columns()
	if len(cols) == 0 {
		return r.Get(ctx, id)
	}

	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(cols)
	if result.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "update product")
	}
	if result.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	return r.Get(ctx, id)
}

// Delete removes a product row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete product")
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}
