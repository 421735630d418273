package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "suitespot/internal/bookings/errors"
	"suitespot/pkg/config"
	"suitespot/pkg/daterange"
	mongotx "suitespot/pkg/db/mongo"
	"suitespot/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	FindByGuest(ctx context.Context, guestID string) ([]*model.Booking, error)
	FindByListing(ctx context.Context, listingID string) ([]*model.Booking, error)
	FindByListings(ctx context.Context, listingIDs []string) ([]*model.Booking, error)
	FindOverlapping(ctx context.Context, listingID string, r daterange.DateRange, excludeStatuses ...string) (*model.Booking, error)
	FindGuestOverlapping(ctx context.Context, guestID string, r daterange.DateRange) (*model.Booking, error)
	// UpdateStatus moves the booking from one status to another and fails with
	// ErrStatusChanged when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to string) error
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	booking.ID = mongotx.InsertedHex(result.InsertedID)
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := mongotx.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoBookingRepository) FindByGuest(ctx context.Context, guestID string) ([]*model.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: -1}})
	return r.find(ctx, bson.M{"guest_id": guestID}, opts)
}

func (r *mongoBookingRepository) FindByListing(ctx context.Context, listingID string) ([]*model.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	return r.find(ctx, bson.M{"listing_id": listingID}, opts)
}

func (r *mongoBookingRepository) FindByListings(ctx context.Context, listingIDs []string) ([]*model.Booking, error) {
	if len(listingIDs) == 0 {
		return []*model.Booking{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	return r.find(ctx, bson.M{"listing_id": bson.M{"$in": listingIDs}}, opts)
}

// FindOverlapping returns one booking of the listing whose range shares at
// least one instant with dr, or nil.
func (r *mongoBookingRepository) FindOverlapping(ctx context.Context, listingID string, dr daterange.DateRange, excludeStatuses ...string) (*model.Booking, error) {
	return r.findOne(ctx, listingOverlapFilter(listingID, dr, excludeStatuses...))
}

// FindGuestOverlapping considers every status and every listing.
func (r *mongoBookingRepository) FindGuestOverlapping(ctx context.Context, guestID string, dr daterange.DateRange) (*model.Booking, error) {
	return r.findOne(ctx, guestOverlapFilter(guestID, dr))
}

func listingOverlapFilter(listingID string, dr daterange.DateRange, excludeStatuses ...string) bson.M {
	filter := overlapFilter(dr)
	filter["listing_id"] = listingID
	if len(excludeStatuses) > 0 {
		filter["status"] = bson.M{"$nin": excludeStatuses}
	}
	return filter
}

func guestOverlapFilter(guestID string, dr daterange.DateRange) bson.M {
	filter := overlapFilter(dr)
	filter["guest_id"] = guestID
	return filter
}

// overlapFilter matches a stored range that starts inside dr, ends inside dr,
// or encloses it. Bounds are inclusive.
func overlapFilter(dr daterange.DateRange) bson.M {
	return bson.M{
		"$or": []bson.M{
			{"start_date": bson.M{"$gte": dr.Start, "$lte": dr.End}},
			{"end_date": bson.M{"$gte": dr.Start, "$lte": dr.End}},
			{"start_date": bson.M{"$lte": dr.Start}, "end_date": bson.M{"$gte": dr.End}},
		},
	}
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id string, from, to string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := mongotx.ObjectID(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s is no longer %s", bookingserrors.ErrStatusChanged, id, from)
	}

	return nil
}

func (r *mongoBookingRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	return count, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) findOne(ctx context.Context, filter bson.M) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, filter).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}

	return &booking, nil
}
