package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplaintCategory enum; the category field is an open string but
// these are the values the frontend submits.
type ComplaintCategory string

const (
	CategoryRoads       ComplaintCategory = "Roads & Infrastructure"
	CategoryWater       ComplaintCategory = "Water & Sanitation"
	CategoryElectricity ComplaintCategory = "Electricity"
	CategorySafety      ComplaintCategory = "Public Safety"
	CategoryGarbage     ComplaintCategory = "Garbage & Waste"
	CategoryParks       ComplaintCategory = "Parks & Environment"
	CategoryNoise       ComplaintCategory = "Noise & Disturbance"
	CategoryTransport   ComplaintCategory = "Public Transport"
	CategoryOther       ComplaintCategory = "Other"
)

// ComplaintStatus enum
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pending"
	StatusInProgress ComplaintStatus = "in-progress"
	StatusResolved   ComplaintStatus = "resolved"
)

// ValidStatus reports whether s is a known complaint status.
func ValidStatus(s string) bool {
	switch ComplaintStatus(s) {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// statusRank orders statuses for the optional strict-transition check.
var statusRank = map[ComplaintStatus]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusResolved:   2,
}

// CanTransition reports whether moving from one status to another
// respects the pending -> in-progress -> resolved order. Staying put
// is allowed. Callers decide whether to enforce it; the default
// server behavior accepts any transition.
func CanTransition(from, to ComplaintStatus) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank >= fromRank
}

// ComplaintPriority enum
type ComplaintPriority string

const (
	PriorityLow    ComplaintPriority = "low"
	PriorityMedium ComplaintPriority = "medium"
	PriorityHigh   ComplaintPriority = "high"
)

// ValidPriority reports whether s is a known priority.
func ValidPriority(s string) bool {
	switch ComplaintPriority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ResolutionProof is the evidence a worker attaches when marking a
// complaint resolved. The timestamp is always server-generated.
type ResolutionProof struct {
	MediaURL  string    `bson:"mediaURL" json:"mediaURL"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Complaint represents a civic issue reported by a user
type Complaint struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Type            ComplaintCategory   `bson:"type" json:"type"`
	Title           string              `bson:"title" json:"title"`
	Description     string              `bson:"description" json:"description"`
	MediaURL        string              `bson:"mediaURL,omitempty" json:"mediaURL,omitempty"`
	MediaURLs       []string            `bson:"mediaURLs" json:"mediaURLs"`
	Location        Location            `bson:"location" json:"location"`
	Priority        ComplaintPriority   `bson:"priority" json:"priority"`
	Status          ComplaintStatus     `bson:"status" json:"status"`
	CreatedBy       primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	AssignedTo      *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	RewardEligible  bool                `bson:"rewardEligible" json:"rewardEligible"`
	ResolutionProof *ResolutionProof    `bson:"resolutionProof,omitempty" json:"resolutionProof,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// AttachResolutionProof sets the proof with a server timestamp. No-op
// when the media reference is empty.
func (c *Complaint) AttachResolutionProof(mediaURL string, now time.Time) {
	if mediaURL == "" {
		return
	}
	c.ResolutionProof = &ResolutionProof{MediaURL: mediaURL, Timestamp: now}
}
