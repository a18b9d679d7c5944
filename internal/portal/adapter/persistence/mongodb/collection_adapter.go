package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the slice of the driver's collection API the repositories
// need. *mongo.SingleResult and *mongo.Cursor satisfy the result types as-is.
type Collection interface {
	InsertOne(ctx context.Context, doc interface{}) (interface{}, error)
	FindOne(ctx context.Context, filter interface{}) Decoder
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error)
	UpdateOne(ctx context.Context, filter, update interface{}) (WriteCounts, error)
	FindOneAndUpdate(ctx context.Context, filter, update interface{}, opts ...*options.FindOneAndUpdateOptions) Decoder
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
}

// Decoder yields a single document, or the error that prevented finding one.
type Decoder interface {
	Decode(v interface{}) error
}

// Cursor iterates a result set.
type Cursor interface {
	Next(ctx context.Context) bool
	Decode(v interface{}) error
	Close(ctx context.Context) error
	Err() error
}

// WriteCounts reports how many documents an update matched and changed.
type WriteCounts struct {
	Matched  int64
	Modified int64
}

type driverCollection struct {
	col *mongo.Collection
}

// WrapCollection adapts a driver collection to Collection.
func WrapCollection(col *mongo.Collection) Collection {
	return driverCollection{col: col}
}

func (d driverCollection) InsertOne(ctx context.Context, doc interface{}) (interface{}, error) {
	res, err := d.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

func (d driverCollection) FindOne(ctx context.Context, filter interface{}) Decoder {
	return d.col.FindOne(ctx, filter)
}

func (d driverCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (Cursor, error) {
	cur, err := d.col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func (d driverCollection) UpdateOne(ctx context.Context, filter, update interface{}) (WriteCounts, error) {
	res, err := d.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return WriteCounts{}, err
	}
	return WriteCounts{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (d driverCollection) FindOneAndUpdate(ctx context.Context, filter, update interface{}, opts ...*options.FindOneAndUpdateOptions) Decoder {
	return d.col.FindOneAndUpdate(ctx, filter, update, opts...)
}

func (d driverCollection) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	res, err := d.col.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
