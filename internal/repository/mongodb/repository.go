package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/palmoil/internal/domain/models"
)

const digestCollection = "alert_digests"

// Repository defines the interface for digest storage.
type Repository interface {
	SaveDigest(ctx context.Context, digest models.Digest) error
	RecentDigests(ctx context.Context, limit int64) ([]models.Digest, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// Connect dials MongoDB, verifies the connection and returns a repository.
func Connect(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return NewMongoDBRepository(client, dbName), nil
}

// NewMongoDBRepository wraps an established client.
func NewMongoDBRepository(client *mongo.Client, dbName string) *MongoDBRepository {
	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: digestCollection,
	}
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveDigest archives a digest.
func (r *MongoDBRepository) SaveDigest(ctx context.Context, digest models.Digest) error {
	if _, err := r.collection().InsertOne(ctx, digest); err != nil {
		return fmt.Errorf("failed to insert digest: %w", err)
	}
	return nil
}

// RecentDigests returns the latest digests, newest first.
func (r *MongoDBRepository) RecentDigests(ctx context.Context, limit int64) ([]models.Digest, error) {
	if limit <= 0 {
		limit = 10
	}
	opts := options.Find().SetSort(bson.D{{Key: "generated_at", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query digests: %w", err)
	}
	defer cursor.Close(ctx)

	digests := []models.Digest{}
	if err := cursor.All(ctx, &digests); err != nil {
		return nil, fmt.Errorf("failed to decode digests: %w", err)
	}
	return digests, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
