package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"civicpulse-be/config"
	"civicpulse-be/middlewares"
	"civicpulse-be/models"
	"civicpulse-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func moderationService() *services.ModerationService {
	store := services.NewMongoModerationStore(
		config.GetCollection("moderation_queue"),
		config.GetCollection("complaints"),
	)
	ledger := services.NewRewardLedger(services.NewMongoRewardStore(
		config.GetCollection("rewards"),
		config.GetCollection("users"),
	))
	return services.NewModerationService(store, ledger)
}

// GetPendingModeration lists pending moderation items, newest first,
// with the linked complaint and its author joined in.
func GetPendingModeration(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection("moderation_queue").Find(ctx, bson.M{"status": models.ModerationPending}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve moderation items"})
		return
	}
	defer cursor.Close(ctx)

	var items []models.ModerationQueueItem
	if err := cursor.All(ctx, &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode moderation items"})
		return
	}

	type moderationDetail struct {
		models.ModerationQueueItem
		Complaint *models.Complaint      `json:"complaint,omitempty"`
		Author    map[string]interface{} `json:"author,omitempty"`
	}

	details := make([]moderationDetail, 0, len(items))
	for _, item := range items {
		detail := moderationDetail{ModerationQueueItem: item}

		var complaint models.Complaint
		if err := config.GetCollection("complaints").FindOne(ctx, bson.M{"_id": item.ComplaintID}).Decode(&complaint); err == nil {
			detail.Complaint = &complaint

			var author models.User
			if err := config.GetCollection("users").FindOne(ctx, bson.M{"_id": complaint.CreatedBy}).Decode(&author); err == nil {
				detail.Author = map[string]interface{}{
					"id":    author.ID,
					"name":  author.Name,
					"email": author.Email,
					"role":  author.Role,
				}
			}
		}
		details = append(details, detail)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(details), "moderationItems": details})
}

// ApproveModeration approves a pending item, marks the linked
// complaint reward-eligible and optionally credits points to its
// author.
func ApproveModeration(c *gin.Context) {
	admin, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid moderation item ID"})
		return
	}

	var input struct {
		PointsToAward int64 `json:"pointsToAward"`
	}
	// Body is optional for approvals without a points grant.
	_ = c.ShouldBindJSON(&input)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item, err := moderationService().Approve(ctx, itemID, admin.ID, input.PointsToAward)
	if err != nil {
		respondModerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "moderationItem": item})
}

// RejectModeration rejects a pending item with a reason and clears the
// linked complaint's reward eligibility.
func RejectModeration(c *gin.Context) {
	admin, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	itemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid moderation item ID"})
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	item, err := moderationService().Reject(ctx, itemID, admin.ID, input.Reason)
	if err != nil {
		respondModerationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "moderationItem": item})
}

func respondModerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Moderation item not found"})
	case errors.Is(err, services.ErrItemDecided):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Moderation item already decided"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
	}
}
