package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mbayend/sama-boutique/internal/core/domain"
	"github.com/mbayend/sama-boutique/internal/port"
)

var ErrProductNotFound = errors.New("product not found")

// ProductImage is an image file submitted with a new product.
type ProductImage struct {
	Name string
	Data []byte
}

// CatalogService reads the product catalog and handles the vendor-side
// product lifecycle.
type CatalogService struct {
	store port.StoreRepository
	blobs port.BlobRepository
}

func NewCatalogService(store port.StoreRepository, blobs port.BlobRepository) *CatalogService {
	return &CatalogService{store: store, blobs: blobs}
}

// ListProducts returns the catalog, newest first.
func (s *CatalogService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.store.SelectProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.store.SelectProduct(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	if p == nil {
		return domain.Product{}, ErrProductNotFound
	}
	return *p, nil
}

// CreateProduct uploads the images to the blob store, then inserts the
// product record carrying their public URLs.
func (s *CatalogService) CreateProduct(ctx context.Context, product domain.Product, images []ProductImage) (domain.Product, error) {
	for _, img := range images {
		path := fmt.Sprintf("products/%d-%s", time.Now().UnixNano(), img.Name)
		if err := s.blobs.Upload(ctx, path, img.Data); err != nil {
			return domain.Product{}, fmt.Errorf("upload image %s: %w", img.Name, err)
		}
		product.Images = append(product.Images, s.blobs.PublicURL(path))
	}

	now := time.Now()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	for i := range product.Variants {
		if product.Variants[i].ID == "" {
			product.Variants[i].ID = uuid.NewString()
		}
	}

	if err := s.store.InsertProduct(ctx, product); err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}
