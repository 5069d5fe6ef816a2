package services_test

import (
	"context"
	"testing"

	"civicpulse-be/models"
	"civicpulse-be/services"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newModerationFixture() (*services.ModerationService, *fakeModerationStore, *fakeRewardStore) {
	modStore := newFakeModerationStore()
	rewardStore := newFakeRewardStore()
	svc := services.NewModerationService(modStore, services.NewRewardLedger(rewardStore))
	return svc, modStore, rewardStore
}

func TestApprovePendingItem(t *testing.T) {
	svc, modStore, rewardStore := newModerationFixture()
	author := primitive.NewObjectID()
	admin := primitive.NewObjectID()
	complaintID := primitive.NewObjectID()
	itemID := modStore.addPendingItem(complaintID, author)

	item, err := svc.Approve(context.Background(), itemID, admin, 50)

	assert.NoError(t, err)
	assert.Equal(t, models.ModerationApproved, item.Status)
	if assert.NotNil(t, item.ReviewedBy) {
		assert.Equal(t, admin, *item.ReviewedBy)
	}
	assert.True(t, modStore.rewardEligible[complaintID], "approval must mark the complaint reward-eligible")

	// A user with no prior record gets one created holding the grant,
	// mirrored onto the User points.
	reward, ok := rewardStore.rewards[author]
	if assert.True(t, ok) {
		assert.Equal(t, int64(50), reward.Points)
	}
	assert.Equal(t, int64(50), rewardStore.userPoints[author])
}

func TestApproveWithoutPointsGrantsNothing(t *testing.T) {
	svc, modStore, rewardStore := newModerationFixture()
	author := primitive.NewObjectID()
	complaintID := primitive.NewObjectID()
	itemID := modStore.addPendingItem(complaintID, author)

	_, err := svc.Approve(context.Background(), itemID, primitive.NewObjectID(), 0)

	assert.NoError(t, err)
	assert.True(t, modStore.rewardEligible[complaintID])
	assert.Empty(t, rewardStore.rewards, "no points requested, no ledger record")
}

func TestApproveDecidedItemConflicts(t *testing.T) {
	svc, modStore, rewardStore := newModerationFixture()
	author := primitive.NewObjectID()
	complaintID := primitive.NewObjectID()
	itemID := modStore.addPendingItem(complaintID, author)

	_, err := svc.Approve(context.Background(), itemID, primitive.NewObjectID(), 50)
	assert.NoError(t, err)

	writesAfterFirst := modStore.eligibleWrites

	_, err = svc.Approve(context.Background(), itemID, primitive.NewObjectID(), 50)

	assert.ErrorIs(t, err, services.ErrItemDecided)
	assert.Equal(t, writesAfterFirst, modStore.eligibleWrites, "a conflicting approval must have no side effects")
	assert.Equal(t, int64(50), rewardStore.rewards[author].Points, "points must be credited exactly once")
}

func TestRejectPendingItem(t *testing.T) {
	svc, modStore, _ := newModerationFixture()
	admin := primitive.NewObjectID()
	complaintID := primitive.NewObjectID()
	itemID := modStore.addPendingItem(complaintID, primitive.NewObjectID())

	item, err := svc.Reject(context.Background(), itemID, admin, "blurry photos")

	assert.NoError(t, err)
	assert.Equal(t, models.ModerationRejected, item.Status)
	assert.Equal(t, "blurry photos", item.Reason)
	assert.False(t, modStore.rewardEligible[complaintID])
}

func TestRejectDecidedItemConflicts(t *testing.T) {
	svc, modStore, _ := newModerationFixture()
	itemID := modStore.addPendingItem(primitive.NewObjectID(), primitive.NewObjectID())

	_, err := svc.Reject(context.Background(), itemID, primitive.NewObjectID(), "first")
	assert.NoError(t, err)

	_, err = svc.Reject(context.Background(), itemID, primitive.NewObjectID(), "second")
	assert.ErrorIs(t, err, services.ErrItemDecided)
}

func TestRejectAfterApproveConflicts(t *testing.T) {
	svc, modStore, _ := newModerationFixture()
	complaintID := primitive.NewObjectID()
	itemID := modStore.addPendingItem(complaintID, primitive.NewObjectID())

	_, err := svc.Approve(context.Background(), itemID, primitive.NewObjectID(), 0)
	assert.NoError(t, err)

	_, err = svc.Reject(context.Background(), itemID, primitive.NewObjectID(), "too late")
	assert.ErrorIs(t, err, services.ErrItemDecided)
	assert.True(t, modStore.rewardEligible[complaintID], "a failed rejection must not flip eligibility")
}

func TestApproveMissingItem(t *testing.T) {
	svc, _, _ := newModerationFixture()

	_, err := svc.Approve(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), 10)

	assert.ErrorIs(t, err, services.ErrItemNotFound)
}

func TestApproveMissingComplaintStillDecides(t *testing.T) {
	svc, modStore, rewardStore := newModerationFixture()
	complaintID := primitive.NewObjectID()
	itemID := modStore.addPendingItem(complaintID, primitive.NewObjectID())
	// Simulate the linked complaint having vanished.
	delete(modStore.complaintOwner, complaintID)

	item, err := svc.Approve(context.Background(), itemID, primitive.NewObjectID(), 50)

	assert.NoError(t, err)
	assert.Equal(t, models.ModerationApproved, item.Status)
	assert.Empty(t, rewardStore.rewards, "nothing to credit without a complaint author")
}
