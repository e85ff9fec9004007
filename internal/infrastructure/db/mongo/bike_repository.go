package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
)

const (
	collectionBikes    = "bikes"
	collectionCounters = "counters"
)

// BikeRepository implements the bike registry on MongoDB. Atomicity of each
// availability transition comes from conditional single-document updates:
// the filter encodes the expected current state, so of two concurrent
// bookings exactly one matches and wins.
type BikeRepository struct {
	bikes    *mongo.Collection
	counters *mongo.Collection
}

func NewBikeRepository(db *mongo.Database) *BikeRepository {
	return &BikeRepository{
		bikes:    db.Collection(collectionBikes),
		counters: db.Collection(collectionCounters),
	}
}

// nextSeq allocates the next creation sequence number.
func (r *BikeRepository) nextSeq(ctx context.Context) (int64, error) {
	var doc struct {
		Value int64 `bson:"value"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "bike_seq"},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}

func (r *BikeRepository) Create(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	seq, err := r.nextSeq(ctx)
	if err != nil {
		return nil, err
	}

	clone := *bike
	clone.Seq = seq
	if _, err := r.bikes.InsertOne(ctx, clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

func (r *BikeRepository) Get(ctx context.Context, id string) (*domain.Bike, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Bike
	if err := r.bikes.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBikeNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *BikeRepository) List(ctx context.Context) ([]domain.Bike, error) {
	return r.find(ctx, bson.M{})
}

func (r *BikeRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Bike, error) {
	return r.find(ctx, bson.M{"owner": owner})
}

func (r *BikeRepository) find(ctx context.Context, filter bson.M) ([]domain.Bike, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.bikes.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	bikes := []domain.Bike{}
	if err := cur.All(ctx, &bikes); err != nil {
		return nil, err
	}
	return bikes, nil
}

func (r *BikeRepository) Book(ctx context.Context, id, requester string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.bikes.UpdateOne(ctx,
		bson.M{"_id": id, "is_available": true},
		bson.M{"$set": bson.M{"is_available": false, "booked_by": requester}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.classifyBookMiss(ctx, id)
	}
	return nil
}

// classifyBookMiss distinguishes a missing bike from a lost race.
func (r *BikeRepository) classifyBookMiss(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return domain.ErrBikeUnavailable
}

func (r *BikeRepository) Return(ctx context.Context, id, requester string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.bikes.UpdateOne(ctx,
		bson.M{"_id": id, "is_available": false, "booked_by": requester},
		bson.M{"$set": bson.M{"is_available": true}, "$unset": bson.M{"booked_by": ""}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		b, err := r.Get(ctx, id)
		if err != nil {
			return err
		}
		if b.IsAvailable {
			return domain.ErrBikeNotBooked
		}
		return domain.ErrForbidden
	}
	return nil
}

func (r *BikeRepository) Remove(ctx context.Context, id, requester string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.bikes.DeleteOne(ctx,
		bson.M{"_id": id, "owner": requester, "is_available": true},
	)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		b, err := r.Get(ctx, id)
		if err != nil {
			return err
		}
		if b.Owner != requester {
			return domain.ErrForbidden
		}
		return domain.ErrBikeBooked
	}
	return nil
}

// EnsureIndexes creates the indexes the registry queries rely on.
func (r *BikeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "seq", Value: 1}}},
	}

	_, err := r.bikes.Indexes().CreateMany(ctx, indexes)
	return err
}
