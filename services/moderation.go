package services

import (
	"context"
	"errors"
	"log"
	"time"

	"civicpulse-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrItemNotFound      = errors.New("moderation item not found")
	ErrItemDecided       = errors.New("moderation item already decided")
	ErrComplaintNotFound = errors.New("complaint not found")
)

// ModerationStore persists moderation items and the reward-eligibility
// linkage back onto complaints.
type ModerationStore interface {
	GetItem(ctx context.Context, id primitive.ObjectID) (models.ModerationQueueItem, error)
	SaveDecision(ctx context.Context, item models.ModerationQueueItem) error
	SetComplaintRewardEligible(ctx context.Context, complaintID primitive.ObjectID, eligible bool) (primitive.ObjectID, error)
}

// ModerationService decides queue items. The queue item state machine
// (pending -> approved | rejected, both terminal) is independent of
// the complaint status state machine: a decision only ever touches
// rewardEligible on the complaint.
type ModerationService struct {
	store  ModerationStore
	ledger *RewardLedger
}

func NewModerationService(store ModerationStore, ledger *RewardLedger) *ModerationService {
	return &ModerationService{store: store, ledger: ledger}
}

// Approve marks the item approved, flips the linked complaint to
// reward-eligible and, when pointsToAward > 0, credits the complaint's
// author.
func (s *ModerationService) Approve(ctx context.Context, itemID, adminID primitive.ObjectID, pointsToAward int64) (models.ModerationQueueItem, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return models.ModerationQueueItem{}, err
	}
	if item.Decided() {
		return models.ModerationQueueItem{}, ErrItemDecided
	}

	item.Status = models.ModerationApproved
	item.ReviewedBy = &adminID
	if err := s.store.SaveDecision(ctx, item); err != nil {
		return models.ModerationQueueItem{}, err
	}

	author, err := s.store.SetComplaintRewardEligible(ctx, item.ComplaintID, true)
	if err != nil {
		// The decision is already recorded; a missing complaint leaves
		// the item approved with nothing to credit, same as before.
		if errors.Is(err, ErrComplaintNotFound) {
			log.Printf("moderation approve %s: linked complaint %s missing", itemID.Hex(), item.ComplaintID.Hex())
			return item, nil
		}
		return models.ModerationQueueItem{}, err
	}

	if pointsToAward > 0 {
		if _, err := s.ledger.AddPoints(ctx, author, pointsToAward); err != nil {
			return models.ModerationQueueItem{}, err
		}
	}
	return item, nil
}

// Reject marks the item rejected with a reason and clears the linked
// complaint's reward eligibility.
func (s *ModerationService) Reject(ctx context.Context, itemID, adminID primitive.ObjectID, reason string) (models.ModerationQueueItem, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return models.ModerationQueueItem{}, err
	}
	if item.Decided() {
		return models.ModerationQueueItem{}, ErrItemDecided
	}

	item.Status = models.ModerationRejected
	item.ReviewedBy = &adminID
	item.Reason = reason
	if err := s.store.SaveDecision(ctx, item); err != nil {
		return models.ModerationQueueItem{}, err
	}

	if _, err := s.store.SetComplaintRewardEligible(ctx, item.ComplaintID, false); err != nil {
		if errors.Is(err, ErrComplaintNotFound) {
			log.Printf("moderation reject %s: linked complaint %s missing", itemID.Hex(), item.ComplaintID.Hex())
			return item, nil
		}
		return models.ModerationQueueItem{}, err
	}
	return item, nil
}

// MongoModerationStore is the production ModerationStore.
type MongoModerationStore struct {
	Items      *mongo.Collection
	Complaints *mongo.Collection
}

func NewMongoModerationStore(items, complaints *mongo.Collection) *MongoModerationStore {
	return &MongoModerationStore{Items: items, Complaints: complaints}
}

func (s *MongoModerationStore) GetItem(ctx context.Context, id primitive.ObjectID) (models.ModerationQueueItem, error) {
	var item models.ModerationQueueItem
	err := s.Items.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.ModerationQueueItem{}, ErrItemNotFound
		}
		return models.ModerationQueueItem{}, err
	}
	return item, nil
}

func (s *MongoModerationStore) SaveDecision(ctx context.Context, item models.ModerationQueueItem) error {
	update := bson.M{
		"status":     item.Status,
		"reviewedBy": item.ReviewedBy,
		"updatedAt":  time.Now(),
	}
	if item.Reason != "" {
		update["reason"] = item.Reason
	}
	_, err := s.Items.UpdateOne(ctx, bson.M{"_id": item.ID}, bson.M{"$set": update})
	return err
}

func (s *MongoModerationStore) SetComplaintRewardEligible(ctx context.Context, complaintID primitive.ObjectID, eligible bool) (primitive.ObjectID, error) {
	var complaint models.Complaint
	err := s.Complaints.FindOneAndUpdate(ctx,
		bson.M{"_id": complaintID},
		bson.M{"$set": bson.M{"rewardEligible": eligible, "updatedAt": time.Now()}},
	).Decode(&complaint)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, ErrComplaintNotFound
		}
		return primitive.NilObjectID, err
	}
	return complaint.CreatedBy, nil
}
