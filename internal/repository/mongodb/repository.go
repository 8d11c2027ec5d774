package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/agrocampo/internal/domain/models"
)

const (
	productsColl     = "products"
	categoriesColl   = "categories"
	lotsColl         = "stock_lots"
	reservationsColl = "reservations"
	activitiesColl   = "activities"
	cropsColl        = "crops"
	harvestsColl     = "harvests"
	salesColl        = "sales"
)

// MongoDBStore implements repository.Store on MongoDB with one collection
// per aggregate.
type MongoDBStore struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBStore connects to MongoDB and verifies the connection.
func NewMongoDBStore(ctx context.Context, uri string, dbName string) (*MongoDBStore, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBStore{client: client, dbName: dbName}, nil
}

// Close closes the MongoDB connection.
func (s *MongoDBStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoDBStore) coll(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

func insertOne[T any](ctx context.Context, coll *mongo.Collection, doc T) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s: %w", coll.Name(), err)
	}
	return nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, id string) (T, error) {
	var out T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, models.ErrNotFound
	}
	if err != nil {
		return out, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}
	return out, nil
}

func replaceOne[T any](ctx context.Context, coll *mongo.Collection, id string, doc T) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("replace in %s: %w", coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s documents: %w", coll.Name(), err)
	}
	return out, nil
}

func (s *MongoDBStore) InsertProduct(ctx context.Context, product models.Product) error {
	return insertOne(ctx, s.coll(productsColl), product)
}

func (s *MongoDBStore) GetProduct(ctx context.Context, id string) (models.Product, error) {
	return findOne[models.Product](ctx, s.coll(productsColl), id)
}

func (s *MongoDBStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	return findAll[models.Product](ctx, s.coll(productsColl), bson.M{})
}

// SearchProducts performs a case-insensitive substring match on product names.
func (s *MongoDBStore) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	filter := bson.M{}
	if query != "" {
		filter["name"] = bson.M{"$regex": query, "$options": "i"}
	}
	return findAll[models.Product](ctx, s.coll(productsColl), filter)
}

func (s *MongoDBStore) InsertCategory(ctx context.Context, category models.Category) error {
	return insertOne(ctx, s.coll(categoriesColl), category)
}

func (s *MongoDBStore) GetCategory(ctx context.Context, id string) (models.Category, error) {
	return findOne[models.Category](ctx, s.coll(categoriesColl), id)
}

func (s *MongoDBStore) InsertLot(ctx context.Context, lot models.StockLot) error {
	return insertOne(ctx, s.coll(lotsColl), lot)
}

func (s *MongoDBStore) GetLot(ctx context.Context, id string) (models.StockLot, error) {
	return findOne[models.StockLot](ctx, s.coll(lotsColl), id)
}

func (s *MongoDBStore) UpdateLot(ctx context.Context, lot models.StockLot) error {
	return replaceOne(ctx, s.coll(lotsColl), lot.ID, lot)
}

func (s *MongoDBStore) ListLotsByProduct(ctx context.Context, productID string) ([]models.StockLot, error) {
	return findAll[models.StockLot](ctx, s.coll(lotsColl), bson.M{"productId": productID})
}

func (s *MongoDBStore) InsertReservation(ctx context.Context, reservation models.Reservation) error {
	return insertOne(ctx, s.coll(reservationsColl), reservation)
}

func (s *MongoDBStore) GetReservation(ctx context.Context, id string) (models.Reservation, error) {
	return findOne[models.Reservation](ctx, s.coll(reservationsColl), id)
}

func (s *MongoDBStore) UpdateReservation(ctx context.Context, reservation models.Reservation) error {
	return replaceOne(ctx, s.coll(reservationsColl), reservation.ID, reservation)
}

func (s *MongoDBStore) ListReservationsByProduct(ctx context.Context, productID string) ([]models.Reservation, error) {
	return findAll[models.Reservation](ctx, s.coll(reservationsColl), bson.M{"productId": productID})
}

func (s *MongoDBStore) ListReservationsByActivity(ctx context.Context, activityID string) ([]models.Reservation, error) {
	return findAll[models.Reservation](ctx, s.coll(reservationsColl), bson.M{"activityId": activityID})
}

func (s *MongoDBStore) InsertActivity(ctx context.Context, activity models.Activity) error {
	return insertOne(ctx, s.coll(activitiesColl), activity)
}

func (s *MongoDBStore) GetActivity(ctx context.Context, id string) (models.Activity, error) {
	return findOne[models.Activity](ctx, s.coll(activitiesColl), id)
}

func (s *MongoDBStore) UpdateActivity(ctx context.Context, activity models.Activity) error {
	return replaceOne(ctx, s.coll(activitiesColl), activity.ID, activity)
}

func (s *MongoDBStore) ListActivitiesByCrop(ctx context.Context, cropID string) ([]models.Activity, error) {
	return findAll[models.Activity](ctx, s.coll(activitiesColl), bson.M{"cropId": cropID})
}

func (s *MongoDBStore) InsertCrop(ctx context.Context, crop models.Crop) error {
	return insertOne(ctx, s.coll(cropsColl), crop)
}

func (s *MongoDBStore) GetCrop(ctx context.Context, id string) (models.Crop, error) {
	return findOne[models.Crop](ctx, s.coll(cropsColl), id)
}

func (s *MongoDBStore) UpdateCrop(ctx context.Context, crop models.Crop) error {
	return replaceOne(ctx, s.coll(cropsColl), crop.ID, crop)
}

func (s *MongoDBStore) ListCrops(ctx context.Context) ([]models.Crop, error) {
	return findAll[models.Crop](ctx, s.coll(cropsColl), bson.M{})
}

func (s *MongoDBStore) InsertHarvest(ctx context.Context, harvest models.Harvest) error {
	return insertOne(ctx, s.coll(harvestsColl), harvest)
}

func (s *MongoDBStore) GetHarvest(ctx context.Context, id string) (models.Harvest, error) {
	return findOne[models.Harvest](ctx, s.coll(harvestsColl), id)
}

func (s *MongoDBStore) UpdateHarvest(ctx context.Context, harvest models.Harvest) error {
	return replaceOne(ctx, s.coll(harvestsColl), harvest.ID, harvest)
}

func (s *MongoDBStore) ListHarvestsByCrop(ctx context.Context, cropID string) ([]models.Harvest, error) {
	return findAll[models.Harvest](ctx, s.coll(harvestsColl), bson.M{"cropId": cropID})
}

func (s *MongoDBStore) InsertSale(ctx context.Context, sale models.Sale) error {
	return insertOne(ctx, s.coll(salesColl), sale)
}

func (s *MongoDBStore) ListSalesByCrop(ctx context.Context, cropID string) ([]models.Sale, error) {
	return findAll[models.Sale](ctx, s.coll(salesColl), bson.M{"cropId": cropID})
}

// RunTransaction runs fn inside a MongoDB session transaction. Writes issued
// through the callback context commit together or abort together.
func (s *MongoDBStore) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongodb session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}
