package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	SlotCollection         *mongo.Collection
	BookingsCollection     *mongo.Collection
	BlockedDatesCollection *mongo.Collection
	CustomersCollection    *mongo.Collection
	NailTechsCollection    *mongo.Collection
	CountersCollection     *mongo.Collection
	Client                 *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	Client, err = mongo.Connect(context.TODO(), clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database("salondb")
	SlotCollection = database.Collection("slots")
	BookingsCollection = database.Collection("bookings")
	BlockedDatesCollection = database.Collection("blockeddates")
	CustomersCollection = database.Collection("customers")
	NailTechsCollection = database.Collection("nailtechs")
	CountersCollection = database.Collection("counters")
}

// EnsureIndexes creates the uniqueness guarantees the allocator relies on:
// one live slot per (tech, date, time) and a stable unique booking code.
func EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := SlotCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "techid", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_tech_date_time"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("status_date"),
		},
	})
	if err != nil {
		return err
	}

	_, err = BookingsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_code"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdat", Value: 1}},
			Options: options.Index().SetName("status_createdat"),
		},
	})
	return err
}
