package services_test

import (
	"context"
	"errors"
	"sync"

	"civicpulse-be/models"
	"civicpulse-be/services"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeRewardStore is an in-memory RewardStore. Every delta is applied
// under one lock, mirroring the per-document atomicity of the real
// store's findOneAndUpdate upserts.
type fakeRewardStore struct {
	mu          sync.Mutex
	rewards     map[primitive.ObjectID]*models.Reward
	userPoints  map[primitive.ObjectID]int64
	userBadges  map[primitive.ObjectID][]string
	errNotFound error
}

func newFakeRewardStore() *fakeRewardStore {
	return &fakeRewardStore{
		rewards:     make(map[primitive.ObjectID]*models.Reward),
		userPoints:  make(map[primitive.ObjectID]int64),
		userBadges:  make(map[primitive.ObjectID][]string),
		errNotFound: errors.New("reward record not found"),
	}
}

func (f *fakeRewardStore) ErrNotFound() error { return f.errNotFound }

func (f *fakeRewardStore) getOrCreateLocked(userID primitive.ObjectID) *models.Reward {
	if reward, ok := f.rewards[userID]; ok {
		return reward
	}
	reward := &models.Reward{UserID: userID}
	f.rewards[userID] = reward
	return reward
}

func (f *fakeRewardStore) IncrementPoints(_ context.Context, userID primitive.ObjectID, amount int64) (models.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reward := f.getOrCreateLocked(userID)
	reward.Points += amount
	return *reward, nil
}

func (f *fakeRewardStore) AddToSet(_ context.Context, userID primitive.ObjectID, field, value string) (models.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reward := f.getOrCreateLocked(userID)
	switch field {
	case "badges":
		reward.Badges = appendUnique(reward.Badges, value)
	case "certificates":
		reward.Certificates = appendUnique(reward.Certificates, value)
	}
	return *reward, nil
}

func (f *fakeRewardStore) PushCoupon(_ context.Context, userID primitive.ObjectID, coupon models.Coupon) (models.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reward := f.getOrCreateLocked(userID)
	reward.Coupons = append(reward.Coupons, coupon)
	return *reward, nil
}

func (f *fakeRewardStore) Get(_ context.Context, userID primitive.ObjectID) (models.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reward, ok := f.rewards[userID]
	if !ok {
		return models.Reward{}, f.errNotFound
	}
	return *reward, nil
}

func (f *fakeRewardStore) MirrorUserPoints(_ context.Context, userID primitive.ObjectID, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userPoints[userID] += amount
	return nil
}

func (f *fakeRewardStore) MirrorUserBadge(_ context.Context, userID primitive.ObjectID, badge string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userBadges[userID] = appendUnique(f.userBadges[userID], badge)
	return nil
}

func appendUnique(set []string, value string) []string {
	for _, existing := range set {
		if existing == value {
			return set
		}
	}
	return append(set, value)
}

// fakeModerationStore is an in-memory ModerationStore.
type fakeModerationStore struct {
	items          map[primitive.ObjectID]*models.ModerationQueueItem
	complaintOwner map[primitive.ObjectID]primitive.ObjectID
	rewardEligible map[primitive.ObjectID]bool
	eligibleWrites int
}

func newFakeModerationStore() *fakeModerationStore {
	return &fakeModerationStore{
		items:          make(map[primitive.ObjectID]*models.ModerationQueueItem),
		complaintOwner: make(map[primitive.ObjectID]primitive.ObjectID),
		rewardEligible: make(map[primitive.ObjectID]bool),
	}
}

func (f *fakeModerationStore) addPendingItem(complaintID, author primitive.ObjectID) primitive.ObjectID {
	id := primitive.NewObjectID()
	f.items[id] = &models.ModerationQueueItem{
		ID:          id,
		ComplaintID: complaintID,
		Status:      models.ModerationPending,
	}
	f.complaintOwner[complaintID] = author
	return id
}

func (f *fakeModerationStore) GetItem(_ context.Context, id primitive.ObjectID) (models.ModerationQueueItem, error) {
	item, ok := f.items[id]
	if !ok {
		return models.ModerationQueueItem{}, services.ErrItemNotFound
	}
	return *item, nil
}

func (f *fakeModerationStore) SaveDecision(_ context.Context, item models.ModerationQueueItem) error {
	stored, ok := f.items[item.ID]
	if !ok {
		return services.ErrItemNotFound
	}
	*stored = item
	return nil
}

func (f *fakeModerationStore) SetComplaintRewardEligible(_ context.Context, complaintID primitive.ObjectID, eligible bool) (primitive.ObjectID, error) {
	author, ok := f.complaintOwner[complaintID]
	if !ok {
		return primitive.NilObjectID, services.ErrComplaintNotFound
	}
	f.rewardEligible[complaintID] = eligible
	f.eligibleWrites++
	return author, nil
}
