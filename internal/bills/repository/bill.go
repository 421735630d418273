package repository

import (
	"context"
	"errors"
	"fmt"
	billserrors "suitespot/internal/bills/errors"
	"suitespot/pkg/config"
	mongotx "suitespot/pkg/db/mongo"
	"suitespot/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Bills"

type BillRepository interface {
	// Create fails with ErrDuplicateBill when the booking already has a bill.
	Create(ctx context.Context, bill *model.Bill) error
	FindByID(ctx context.Context, id string) (*model.Bill, error)
	FindByBooking(ctx context.Context, bookingID string) (*model.Bill, error)
	FindByBookings(ctx context.Context, bookingIDs []string) ([]*model.Bill, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Bill, error)
}

type mongoBillRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBillRepository(cfg *config.Config) BillRepository {
	return &mongoBillRepository{
		cfg:        cfg,
		collection: cfg.Client.Mongo.Database(cfg.MongoDatabaseName).Collection(CollectionName),
	}
}

func (r *mongoBillRepository) Create(ctx context.Context, bill *model.Bill) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, bill)
	if err != nil {
		if mongotx.IsDuplicateKey(err) {
			return fmt.Errorf("%w: %s", billserrors.ErrDuplicateBill, bill.BookingID)
		}
		return fmt.Errorf("failed to create bill: %w", err)
	}

	bill.ID = mongotx.InsertedHex(result.InsertedID)
	return nil
}

func (r *mongoBillRepository) FindByID(ctx context.Context, id string) (*model.Bill, error) {
	objectID, err := mongotx.ObjectID(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", billserrors.ErrInvalidID, id)
	}

	bill, err := r.findOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, billserrors.ErrNotFound
	}
	return bill, nil
}

// FindByBooking returns nil without error when the booking has no bill.
func (r *mongoBillRepository) FindByBooking(ctx context.Context, bookingID string) (*model.Bill, error) {
	return r.findOne(ctx, bson.M{"booking_id": bookingID})
}

func (r *mongoBillRepository) FindByBookings(ctx context.Context, bookingIDs []string) ([]*model.Bill, error) {
	if len(bookingIDs) == 0 {
		return []*model.Bill{}, nil
	}
	return r.find(ctx, bson.M{"booking_id": bson.M{"$in": bookingIDs}}, options.Find())
}

func (r *mongoBillRepository) FindByUser(ctx context.Context, userID string) ([]*model.Bill, error) {
	opts := options.Find().SetSort(bson.D{{Key: "issue_date", Value: -1}})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *mongoBillRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Bill, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bills: %w", err)
	}
	defer cursor.Close(ctx)

	bills := []*model.Bill{}
	if err := cursor.All(ctx, &bills); err != nil {
		return nil, fmt.Errorf("failed to decode bills: %w", err)
	}
	return bills, nil
}

func (r *mongoBillRepository) findOne(ctx context.Context, filter bson.M) (*model.Bill, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var bill model.Bill
	if err := r.collection.FindOne(ctx, filter).Decode(&bill); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find bill: %w", err)
	}
	return &bill, nil
}
