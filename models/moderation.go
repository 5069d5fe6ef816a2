package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationStatus enum
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// ModerationQueueItem gates reward eligibility for complaints filed by
// travel-flagged students. An item is decided at most once; approved
// and rejected are terminal.
type ModerationQueueItem struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ComplaintID primitive.ObjectID  `bson:"complaintId" json:"complaintId"`
	AIFlagged   bool                `bson:"AI_flagged" json:"AI_flagged"`
	Status      ModerationStatus    `bson:"status" json:"status"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	Reason      string              `bson:"reason,omitempty" json:"reason,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Decided reports whether the item has reached a terminal state.
func (m *ModerationQueueItem) Decided() bool {
	return m.Status != ModerationPending
}
