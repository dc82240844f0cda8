package model

import "context"

// Catalog is the read-only view of the parts database used by the tools.
type Catalog interface {
	ListCategories(ctx context.Context) ([]Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	SearchSubcategories(ctx context.Context, name string) ([]Category, error)
	ListManufacturers(ctx context.Context) ([]Manufacturer, error)
	GetManufacturer(ctx context.Context, id int64) (Manufacturer, error)
	SearchManufacturers(ctx context.Context, name string) ([]Manufacturer, error)
	GetDatasheetURL(ctx context.Context, lcsc int64) (string, error)
	GetComponentExtra(ctx context.Context, lcsc int64) (RawJSON, error)
	SearchComponents(ctx context.Context, criteria SearchCriteria) ([]Component, error)
	Close() error
}

// ImageResolver turns a stored image set into a fetched image.
type ImageResolver interface {
	Resolve(ctx context.Context, images []Image) (ImageBlock, error)
}
