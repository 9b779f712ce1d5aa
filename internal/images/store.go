package images

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	pkgerrors "github.com/mfigueroa/showroom-backend/pkg/errors"
	"github.com/mfigueroa/showroom-backend/pkg/logger"
	"github.com/mfigueroa/showroom-backend/pkg/storage/gcs"
)

// Role names the slot an image occupies on a product.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

func (r Role) IsValid() bool {
	return r == RolePrimary || r == RoleSecondary
}

// ObjectStore is the object-level surface the adapter needs from the bucket.
type ObjectStore interface {
	Upload(ctx context.Context, object, contentType string, data []byte) error
	Delete(ctx context.Context, object string) error
	ListPrefix(ctx context.Context, prefix string) ([]string, error)
	ObjectURL(object string) string
	PathFromURL(rawURL string) string
}

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// Store uploads and removes product image blobs. It knows object paths,
// never product rows.
type Store struct {
	objects  ObjectStore
	logg     *logger.Logger
	maxBytes int64
}

// NewStore constructs an image store on top of a bucket handle.
func NewStore(objects ObjectStore, logg *logger.Logger, maxBytes int64) (*Store, error) {
	if objects == nil {
		return nil, fmt.Errorf("object store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if maxBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive")
	}
	return &Store{objects: objects, logg: logg, maxBytes: maxBytes}, nil
}

// Upload stores the image under {productID}/{role}-{suffix}.{ext} and returns
// its public URL. The extension comes from the sniffed content, not the
// client-declared type.
func (s *Store) Upload(ctx context.Context, data []byte, contentType string, productID uuid.UUID, role Role) (string, error) {
	if productID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if !role.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid image role")
	}
	if len(data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image payload is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image exceeds %d byte limit", s.maxBytes))
	}

	kind, err := sniffImage(data)
	if err != nil {
		return "", err
	}

	key := buildObjectKey(productID, role, kind)
	if err := s.objects.Upload(ctx, key, kind.MIME.Value, data); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image blob")
	}

	return s.objects.ObjectURL(key), nil
}

// DeleteByURL removes the object behind a previously issued public URL.
// Best-effort: failures are logged and swallowed so callers never block on
// cleanup.
func (s *Store) DeleteByURL(ctx context.Context, rawURL string) {
	if strings.TrimSpace(rawURL) == "" {
		return
	}
	path := s.objects.PathFromURL(rawURL)
	if path == "" {
		s.logg.Warn(s.logg.WithField(ctx, "url", rawURL), "image url does not map to a bucket object")
		return
	}
	if err := s.objects.Delete(ctx, path); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
		s.logg.Error(s.logg.WithField(ctx, "object", path), "deleting image blob failed", err)
	}
}

// DeleteAllForProduct sweeps every object under the product's prefix.
// Best-effort: an empty listing is fine, failures are logged only.
func (s *Store) DeleteAllForProduct(ctx context.Context, productID uuid.UUID) {
	if productID == uuid.Nil {
		return
	}
	prefix := productID.String() + "/"
	names, err := s.objects.ListPrefix(ctx, prefix)
	if err != nil {
		s.logg.Error(s.logg.WithProductID(ctx, productID.String()), "listing image blobs failed", err)
		return
	}
	for _, name := range names {
		if err := s.objects.Delete(ctx, name); err != nil && !errors.Is(err, gcs.ErrObjectNotFound) {
			s.logg.Error(s.logg.WithField(ctx, "object", name), "sweeping image blob failed", err)
		}
	}
}

func sniffImage(data []byte) (types.Type, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return types.Unknown, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "sniff image content")
	}
	if kind == types.Unknown {
		return types.Unknown, pkgerrors.New(pkgerrors.CodeValidation, "unrecognized image content")
	}
	if _, ok := allowedImageTypes[kind.MIME.Value]; !ok {
		return types.Unknown, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("content type %s not allowed", kind.MIME.Value))
	}
	return kind, nil
}

func buildObjectKey(productID uuid.UUID, role Role, kind types.Type) string {
	suffix := uuid.NewString()
	return fmt.Sprintf("%s/%s-%s.%s", productID, role, suffix, kind.Extension)
}
