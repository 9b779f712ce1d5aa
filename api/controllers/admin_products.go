package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/mfigueroa/showroom-backend/api/responses"
	productsvc "github.com/mfigueroa/showroom-backend/internal/products"
	pkgerrors "github.com/mfigueroa/showroom-backend/pkg/errors"
	"github.com/mfigueroa/showroom-backend/pkg/logger"
)

// Room for two images plus the metadata fields.
const multipartFormOverhead = 1 << 20

// AdminCreateProduct accepts a multipart payload and creates a catalog entry.
func AdminCreateProduct(svc ProductService, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		if err := parseMultipart(w, r, maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.CreateInput{}
		if title, ok := formField(r, "title"); ok {
			input.Title = title
		}
		if rawYear, ok := formField(r, "year_launched"); ok {
			year, err := strconv.Atoi(strings.TrimSpace(rawYear))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "year_launched must be an integer"))
				return
			}
			input.YearLaunched = year
		}
		if category, ok := formField(r, "category"); ok {
			input.Category = &category
		}
		if rawOrder, ok := formField(r, "display_order"); ok {
			order, err := strconv.Atoi(strings.TrimSpace(rawOrder))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "display_order must be an integer"))
				return
			}
			input.DisplayOrder = &order
		}

		primary, err := readImagePart(r, "primary_image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.PrimaryImage = primary

		secondary, err := readImagePart(r, "secondary_image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.SecondaryImage = secondary

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial multipart edit to an existing product.
func AdminUpdateProduct(svc ProductService, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
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

		if err := parseMultipart(w, r, maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := productsvc.UpdateInput{}
		if title, ok := formField(r, "title"); ok {
			input.Title = &title
		}
		if rawYear, ok := formField(r, "year_launched"); ok {
			year, err := strconv.Atoi(strings.TrimSpace(rawYear))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "year_launched must be an integer"))
				return
			}
			input.YearLaunched = &year
		}
		if category, ok := formField(r, "category"); ok {
			input.Category = &category
		}
		if rawOrder, ok := formField(r, "display_order"); ok {
			order, err := strconv.Atoi(strings.TrimSpace(rawOrder))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "display_order must be an integer"))
				return
			}
			input.DisplayOrder = &order
		}
		if rawRemove, ok := formField(r, "remove_secondary"); ok {
			remove, err := strconv.ParseBool(strings.TrimSpace(rawRemove))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "remove_secondary must be a boolean"))
				return
			}
			input.RemoveSecondary = remove
		}

		primary, err := readImagePart(r, "primary_image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.PrimaryImage = primary

		secondary, err := readImagePart(r, "secondary_image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.SecondaryImage = secondary

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct removes the product row and sweeps its blobs.
func AdminDeleteProduct(svc ProductService, logg *logger.Logger) http.HandlerFunc {
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

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"id":     id.String(),
			"status": "deleted",
		})
	}
}

func parseMultipart(w http.ResponseWriter, r *http.Request, maxUploadBytes int64) error {
	limit := 2*maxUploadBytes + multipartFormOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart payload")
	}
	return nil
}

func formField(r *http.Request, name string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func readImagePart(r *http.Request, field string) (*productsvc.ImageUpload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, nil
	}

	file, err := files[0].Open()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "open "+field)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read "+field)
	}

	return &productsvc.ImageUpload{
		Data:        data,
		ContentType: files[0].Header.Get("Content-Type"),
	}, nil
}
