package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mfigueroa/showroom-backend/api/responses"
	productsvc "github.com/mfigueroa/showroom-backend/internal/products"
	"github.com/mfigueroa/showroom-backend/pkg/db/models"
	pkgerrors "github.com/mfigueroa/showroom-backend/pkg/errors"
	"github.com/mfigueroa/showroom-backend/pkg/logger"
)

// ProductService is the lifecycle surface the product controllers call.
type ProductService interface {
	List(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, input productsvc.CreateInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, input productsvc.UpdateInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListProducts returns the public gallery in display order.
func ListProducts(svc ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		products, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

// GetProduct returns a single public product by id.
func GetProduct(svc ProductService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := productIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

func productIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "productId")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
	}
	return id, nil
}
