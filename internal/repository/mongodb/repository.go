package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/farmstock/internal/domain/models"
)

const (
	forecastRunsCollection = "forecast_runs"
	orderDraftsCollection  = "purchase_order_drafts"
)

// Repository defines the interface for forecast history and order draft storage.
type Repository interface {
	SaveForecastRun(ctx context.Context, run models.ForecastRun) error
	RecentForecastRuns(ctx context.Context, limit int64) ([]models.ForecastRun, error)
	SaveOrderDraft(ctx context.Context, draft models.PurchaseOrderDraft) error
}

var _ Repository = (*MongoDBRepository)(nil)

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

// SaveForecastRun stores the result of one forecast run.
func (r *MongoDBRepository) SaveForecastRun(ctx context.Context, run models.ForecastRun) error {
	if _, err := r.collection(forecastRunsCollection).InsertOne(ctx, run); err != nil {
		return fmt.Errorf("failed to insert forecast run: %w", err)
	}
	return nil
}

// RecentForecastRuns returns the latest runs, newest first.
func (r *MongoDBRepository) RecentForecastRuns(ctx context.Context, limit int64) ([]models.ForecastRun, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection(forecastRunsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecast runs: %w", err)
	}
	defer cursor.Close(ctx)

	var runs []models.ForecastRun
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("failed to decode forecast runs: %w", err)
	}
	return runs, nil
}

// SaveOrderDraft stores a purchase order draft.
func (r *MongoDBRepository) SaveOrderDraft(ctx context.Context, draft models.PurchaseOrderDraft) error {
	if _, err := r.collection(orderDraftsCollection).InsertOne(ctx, draft); err != nil {
		return fmt.Errorf("failed to insert order draft: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *MongoDBRepository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}
