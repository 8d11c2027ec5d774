package repository

import (
	"context"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
)

// ProductStore covers the inventory catalog.
type ProductStore interface {
	InsertProduct(ctx context.Context, product models.Product) error
	GetProduct(ctx context.Context, id string) (models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
	InsertCategory(ctx context.Context, category models.Category) error
	GetCategory(ctx context.Context, id string) (models.Category, error)
}

// StockStore covers lots and reservations.
type StockStore interface {
	InsertLot(ctx context.Context, lot models.StockLot) error
	GetLot(ctx context.Context, id string) (models.StockLot, error)
	UpdateLot(ctx context.Context, lot models.StockLot) error
	ListLotsByProduct(ctx context.Context, productID string) ([]models.StockLot, error)

	InsertReservation(ctx context.Context, reservation models.Reservation) error
	GetReservation(ctx context.Context, id string) (models.Reservation, error)
	UpdateReservation(ctx context.Context, reservation models.Reservation) error
	ListReservationsByProduct(ctx context.Context, productID string) ([]models.Reservation, error)
	ListReservationsByActivity(ctx context.Context, activityID string) ([]models.Reservation, error)
}

// ActivityStore covers scheduled field work.
type ActivityStore interface {
	InsertActivity(ctx context.Context, activity models.Activity) error
	GetActivity(ctx context.Context, id string) (models.Activity, error)
	UpdateActivity(ctx context.Context, activity models.Activity) error
	ListActivitiesByCrop(ctx context.Context, cropID string) ([]models.Activity, error)
}

// HarvestStore covers crops, harvests and sales.
type HarvestStore interface {
	InsertCrop(ctx context.Context, crop models.Crop) error
	GetCrop(ctx context.Context, id string) (models.Crop, error)
	UpdateCrop(ctx context.Context, crop models.Crop) error
	ListCrops(ctx context.Context) ([]models.Crop, error)

	InsertHarvest(ctx context.Context, harvest models.Harvest) error
	GetHarvest(ctx context.Context, id string) (models.Harvest, error)
	UpdateHarvest(ctx context.Context, harvest models.Harvest) error
	ListHarvestsByCrop(ctx context.Context, cropID string) ([]models.Harvest, error)

	InsertSale(ctx context.Context, sale models.Sale) error
	ListSalesByCrop(ctx context.Context, cropID string) ([]models.Sale, error)
}

// Store is the full persistence boundary the engine services depend on.
// Implementations must return models.ErrNotFound for missing records.
type Store interface {
	ProductStore
	StockStore
	ActivityStore
	HarvestStore

	// RunTransaction executes fn atomically: either every write performed
	// through ctx inside fn is committed, or none are. Activity finalization
	// relies on this being all-or-nothing.
	RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
