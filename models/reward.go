package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Coupon is an append-only reward entry; codes are not de-duplicated.
type Coupon struct {
	Code      string     `bson:"code" json:"code"`
	Value     string     `bson:"value" json:"value"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	Redeemed  bool       `bson:"redeemed" json:"redeemed"`
}

// Reward is the per-user ledger record. One record per user, created
// lazily on first grant.
type Reward struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Points       int64              `bson:"points" json:"points"`
	Badges       []string           `bson:"badges" json:"badges"`
	Certificates []string           `bson:"certificates" json:"certificates"`
	Coupons      []Coupon           `bson:"coupons" json:"coupons"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// EmptyReward returns the zero-valued synthetic record served when a
// user has no ledger entry yet.
func EmptyReward(userID primitive.ObjectID) Reward {
	return Reward{
		UserID:       userID,
		Badges:       []string{},
		Certificates: []string{},
		Coupons:      []Coupon{},
	}
}

// EnsureRewardIndex creates an index on userId backing the upsert path
func EnsureRewardIndex(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	}

	_, err := collection.Indexes().CreateOne(ctx, indexModel)
	return err
}
