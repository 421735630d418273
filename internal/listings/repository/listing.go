package repository

import (
	"context"
	"errors"
	"fmt"
	bookingsrepo "suitespot/internal/bookings/repository"
	listingserrors "suitespot/internal/listings/errors"
	"suitespot/pkg/config"
	"suitespot/pkg/daterange"
	mongotx "suitespot/pkg/db/mongo"
	"suitespot/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Listings"
)

type mongoListingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	// FindByStatus and CountByStatus skip the listings in excludeIDs.
	FindByStatus(ctx context.Context, status string, limit int, offset int64, excludeIDs ...string) ([]*model.Listing, error)
	CountByStatus(ctx context.Context, status string, excludeIDs ...string) (int64, error)
	FindBookedListingIDs(ctx context.Context, dr daterange.DateRange) ([]string, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoListingRepository(cfg *config.Config) ListingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoListingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoListingRepository) Create(ctx context.Context, listing *model.Listing) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	listing.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, listing)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	listing.ID = mongotx.InsertedHex(result.InsertedID)
	return nil
}

func (r *mongoListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := mongotx.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	var listing model.Listing
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", listingserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return &listing, nil
}

func (r *mongoListingRepository) FindByStatus(ctx context.Context, status string, limit int, offset int64, excludeIDs ...string) ([]*model.Listing, error) {
	filter, err := statusFilter(status, excludeIDs)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, filter, opts)
}

func (r *mongoListingRepository) CountByStatus(ctx context.Context, status string, excludeIDs ...string) (int64, error) {
	filter, err := statusFilter(status, excludeIDs)
	if err != nil {
		return 0, err
	}

	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

// FindBookedListingIDs returns the listings holding a confirmed booking that
// shares at least one day with dr.
func (r *mongoListingRepository) FindBookedListingIDs(ctx context.Context, dr daterange.DateRange) ([]string, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	values, err := r.db.Collection(bookingsrepo.CollectionName).Distinct(ctx, "listing_id", bookedFilter(dr))
	if err != nil {
		return nil, fmt.Errorf("failed to find booked listings: %w", err)
	}

	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func bookedFilter(dr daterange.DateRange) bson.M {
	return bson.M{
		"status":     model.BookingConfirmed,
		"start_date": bson.M{"$lte": dr.End},
		"end_date":   bson.M{"$gte": dr.Start},
	}
}

func statusFilter(status string, excludeIDs []string) (bson.M, error) {
	filter := bson.M{"status": status}
	if len(excludeIDs) == 0 {
		return filter, nil
	}

	oids, err := mongotx.ObjectIDs(excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build listing filter: %w", err)
	}
	filter["_id"] = bson.M{"$nin": oids}
	return filter, nil
}

func (r *mongoListingRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.find(ctx, bson.M{"owner_id": ownerID}, opts)
}

func (r *mongoListingRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := mongotx.ObjectID(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", listingserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoListingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := mongotx.ObjectID(id)
	if err != nil {
		return fmt.Errorf("%w: %s", listingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", listingserrors.ErrNotFound, id)
	}
	return nil
}

func (r *mongoListingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoListingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Listing, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find listings: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []*model.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}
