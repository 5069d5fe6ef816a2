package services

import (
	"context"
	"errors"
	"time"

	"civicpulse-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrInvalidPoints = errors.New("points must be a positive value")
	ErrEmptyBadge    = errors.New("badge name is required")
	ErrEmptyCoupon   = errors.New("coupon code and value are required")
)

// RewardStore applies ledger deltas for a user. Every method is a
// single atomic find-or-create-and-modify on the Reward record; the
// User mirror is a separate per-document atomic write, so the pair is
// not transactional across documents.
type RewardStore interface {
	IncrementPoints(ctx context.Context, userID primitive.ObjectID, amount int64) (models.Reward, error)
	AddToSet(ctx context.Context, userID primitive.ObjectID, field, value string) (models.Reward, error)
	PushCoupon(ctx context.Context, userID primitive.ObjectID, coupon models.Coupon) (models.Reward, error)
	Get(ctx context.Context, userID primitive.ObjectID) (models.Reward, error)
	ErrNotFound() error

	MirrorUserPoints(ctx context.Context, userID primitive.ObjectID, amount int64) error
	MirrorUserBadge(ctx context.Context, userID primitive.ObjectID, badge string) error
}

// RewardLedger accrues points, badges, certificates and coupons.
type RewardLedger struct {
	store RewardStore
}

func NewRewardLedger(store RewardStore) *RewardLedger {
	return &RewardLedger{store: store}
}

// AddPoints credits amount to the user's ledger and mirrors the
// increment onto the User record.
func (l *RewardLedger) AddPoints(ctx context.Context, userID primitive.ObjectID, amount int64) (models.Reward, error) {
	if amount <= 0 {
		return models.Reward{}, ErrInvalidPoints
	}
	reward, err := l.store.IncrementPoints(ctx, userID, amount)
	if err != nil {
		return models.Reward{}, err
	}
	if err := l.store.MirrorUserPoints(ctx, userID, amount); err != nil {
		return models.Reward{}, err
	}
	return reward, nil
}

// AddBadge adds a badge with set semantics and mirrors it onto the
// User record. Adding an existing badge is a no-op.
func (l *RewardLedger) AddBadge(ctx context.Context, userID primitive.ObjectID, badge string) (models.Reward, error) {
	if badge == "" {
		return models.Reward{}, ErrEmptyBadge
	}
	reward, err := l.store.AddToSet(ctx, userID, "badges", badge)
	if err != nil {
		return models.Reward{}, err
	}
	if err := l.store.MirrorUserBadge(ctx, userID, badge); err != nil {
		return models.Reward{}, err
	}
	return reward, nil
}

// AddCertificate adds a certificate with set semantics.
func (l *RewardLedger) AddCertificate(ctx context.Context, userID primitive.ObjectID, cert string) (models.Reward, error) {
	if cert == "" {
		return models.Reward{}, ErrEmptyBadge
	}
	return l.store.AddToSet(ctx, userID, "certificates", cert)
}

// AddCoupon appends a coupon unconditionally; duplicate codes are
// allowed.
func (l *RewardLedger) AddCoupon(ctx context.Context, userID primitive.ObjectID, code, value string, expiresAt *time.Time) (models.Reward, error) {
	if code == "" || value == "" {
		return models.Reward{}, ErrEmptyCoupon
	}
	coupon := models.Coupon{Code: code, Value: value, ExpiresAt: expiresAt}
	return l.store.PushCoupon(ctx, userID, coupon)
}

// GetRewards returns the user's ledger record, or a zero-valued
// synthetic record when none exists. Absence is never an error.
func (l *RewardLedger) GetRewards(ctx context.Context, userID primitive.ObjectID) (models.Reward, error) {
	reward, err := l.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, l.store.ErrNotFound()) {
			return models.EmptyReward(userID), nil
		}
		return models.Reward{}, err
	}
	return reward, nil
}

// MongoRewardStore is the production RewardStore over the rewards and
// users collections.
type MongoRewardStore struct {
	Rewards *mongo.Collection
	Users   *mongo.Collection
}

func NewMongoRewardStore(rewards, users *mongo.Collection) *MongoRewardStore {
	return &MongoRewardStore{Rewards: rewards, Users: users}
}

func (s *MongoRewardStore) ErrNotFound() error {
	return mongo.ErrNoDocuments
}

// upsertOpts returns the shared options for find-or-create deltas:
// create the record when missing, return the post-update document.
func upsertOpts() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
}

func (s *MongoRewardStore) IncrementPoints(ctx context.Context, userID primitive.ObjectID, amount int64) (models.Reward, error) {
	update := bson.M{
		"$inc":         bson.M{"points": amount},
		"$set":         bson.M{"updatedAt": time.Now()},
		"$setOnInsert": bson.M{"userId": userID, "createdAt": time.Now()},
	}
	var reward models.Reward
	err := s.Rewards.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, upsertOpts()).Decode(&reward)
	return reward, err
}

func (s *MongoRewardStore) AddToSet(ctx context.Context, userID primitive.ObjectID, field, value string) (models.Reward, error) {
	update := bson.M{
		"$addToSet":    bson.M{field: value},
		"$set":         bson.M{"updatedAt": time.Now()},
		"$setOnInsert": bson.M{"userId": userID, "createdAt": time.Now()},
	}
	var reward models.Reward
	err := s.Rewards.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, upsertOpts()).Decode(&reward)
	return reward, err
}

func (s *MongoRewardStore) PushCoupon(ctx context.Context, userID primitive.ObjectID, coupon models.Coupon) (models.Reward, error) {
	update := bson.M{
		"$push":        bson.M{"coupons": coupon},
		"$set":         bson.M{"updatedAt": time.Now()},
		"$setOnInsert": bson.M{"userId": userID, "createdAt": time.Now()},
	}
	var reward models.Reward
	err := s.Rewards.FindOneAndUpdate(ctx, bson.M{"userId": userID}, update, upsertOpts()).Decode(&reward)
	return reward, err
}

func (s *MongoRewardStore) Get(ctx context.Context, userID primitive.ObjectID) (models.Reward, error) {
	var reward models.Reward
	err := s.Rewards.FindOne(ctx, bson.M{"userId": userID}).Decode(&reward)
	return reward, err
}

func (s *MongoRewardStore) MirrorUserPoints(ctx context.Context, userID primitive.ObjectID, amount int64) error {
	_, err := s.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$inc": bson.M{"points": amount},
		"$set": bson.M{"updatedAt": time.Now()},
	})
	return err
}

func (s *MongoRewardStore) MirrorUserBadge(ctx context.Context, userID primitive.ObjectID, badge string) error {
	_, err := s.Users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$addToSet": bson.M{"badges": badge},
		"$set":      bson.M{"updatedAt": time.Now()},
	})
	return err
}
