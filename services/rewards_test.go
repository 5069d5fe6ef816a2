package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"civicpulse-be/services"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAddPointsAccumulates(t *testing.T) {
	store := newFakeRewardStore()
	ledger := services.NewRewardLedger(store)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := ledger.AddPoints(ctx, userID, 30)
	assert.NoError(t, err)

	reward, err := ledger.AddPoints(ctx, userID, 20)
	assert.NoError(t, err)

	assert.Equal(t, int64(50), reward.Points)
	assert.Equal(t, int64(50), store.userPoints[userID], "User.points mirror must match the ledger")
}

func TestAddPointsRejectsNonPositive(t *testing.T) {
	store := newFakeRewardStore()
	ledger := services.NewRewardLedger(store)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := ledger.AddPoints(ctx, userID, 0)
	assert.ErrorIs(t, err, services.ErrInvalidPoints)

	_, err = ledger.AddPoints(ctx, userID, -10)
	assert.ErrorIs(t, err, services.ErrInvalidPoints)

	assert.Empty(t, store.rewards, "a rejected grant must not create a record")
}

func TestAddBadgeIdempotent(t *testing.T) {
	store := newFakeRewardStore()
	ledger := services.NewRewardLedger(store)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := ledger.AddBadge(ctx, userID, "Community Hero")
	assert.NoError(t, err)
	reward, err := ledger.AddBadge(ctx, userID, "Community Hero")
	assert.NoError(t, err)

	assert.Equal(t, []string{"Community Hero"}, reward.Badges)
	assert.Equal(t, []string{"Community Hero"}, store.userBadges[userID], "User.badges mirror must stay de-duplicated")
}

func TestAddCertificateIdempotent(t *testing.T) {
	store := newFakeRewardStore()
	ledger := services.NewRewardLedger(store)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := ledger.AddCertificate(ctx, userID, "Clean City 2026")
	assert.NoError(t, err)
	reward, err := ledger.AddCertificate(ctx, userID, "Clean City 2026")
	assert.NoError(t, err)

	assert.Equal(t, []string{"Clean City 2026"}, reward.Certificates)
}

func TestAddCouponAppendsWithoutDedup(t *testing.T) {
	store := newFakeRewardStore()
	ledger := services.NewRewardLedger(store)
	userID := primitive.NewObjectID()
	ctx := context.Background()
	expiry := time.Now().Add(30 * 24 * time.Hour)

	_, err := ledger.AddCoupon(ctx, userID, "SAVE10", "10% off", &expiry)
	assert.NoError(t, err)
	reward, err := ledger.AddCoupon(ctx, userID, "SAVE10", "10% off", nil)
	assert.NoError(t, err)

	assert.Len(t, reward.Coupons, 2, "duplicate coupon codes are allowed")
	assert.False(t, reward.Coupons[0].Redeemed)
	assert.False(t, reward.Coupons[1].Redeemed)
}

func TestAddCouponRequiresCodeAndValue(t *testing.T) {
	ledger := services.NewRewardLedger(newFakeRewardStore())
	userID := primitive.NewObjectID()

	_, err := ledger.AddCoupon(context.Background(), userID, "", "10% off", nil)
	assert.ErrorIs(t, err, services.ErrEmptyCoupon)

	_, err = ledger.AddCoupon(context.Background(), userID, "SAVE10", "", nil)
	assert.ErrorIs(t, err, services.ErrEmptyCoupon)
}

func TestGetRewardsSyntheticRecord(t *testing.T) {
	ledger := services.NewRewardLedger(newFakeRewardStore())
	userID := primitive.NewObjectID()

	reward, err := ledger.GetRewards(context.Background(), userID)

	assert.NoError(t, err, "absence is never an error to the caller")
	assert.Equal(t, userID, reward.UserID)
	assert.Equal(t, int64(0), reward.Points)
	assert.Empty(t, reward.Badges)
	assert.Empty(t, reward.Certificates)
	assert.Empty(t, reward.Coupons)
}

// Concurrent grants must not lose updates when the store applies each
// delta atomically.
func TestAddPointsConcurrentGrants(t *testing.T) {
	store := newFakeRewardStore()
	ledger := services.NewRewardLedger(store)
	userID := primitive.NewObjectID()

	const grants = 50
	var wg sync.WaitGroup
	wg.Add(grants)
	for i := 0; i < grants; i++ {
		go func() {
			defer wg.Done()
			_, err := ledger.AddPoints(context.Background(), userID, 2)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	reward, err := ledger.GetRewards(context.Background(), userID)
	assert.NoError(t, err)
	assert.Equal(t, int64(grants*2), reward.Points)
	assert.Equal(t, int64(grants*2), store.userPoints[userID])
}
