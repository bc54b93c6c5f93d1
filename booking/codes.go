package booking

import (
	"context"
	"fmt"

	"nailbar/db"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const codePrefix = "NB"
const codeSeed = 1000

// NextCode returns the next human booking code (NB-1001, NB-1002, ...).
// The counter document's $inc is atomic, so concurrent allocations cannot
// mint the same code.
func NextCode(ctx context.Context) (string, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := db.CountersCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": "booking_code"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%d", codePrefix, codeSeed+doc.Seq), nil
}
