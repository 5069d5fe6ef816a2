package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
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

const leaderboardCacheKey = "rewards:leaderboard"
const leaderboardCacheTTL = 60 * time.Second

func rewardLedger() *services.RewardLedger {
	return services.NewRewardLedger(services.NewMongoRewardStore(
		config.GetCollection("rewards"),
		config.GetCollection("users"),
	))
}

// GetUserRewards returns a user's reward record, or a zero-valued one
// when none exists. Owner or admin only.
func GetUserRewards(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	if user.ID != targetID && !user.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to view these rewards"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reward, err := rewardLedger().GetRewards(ctx, targetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve rewards"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reward": reward})
}

// AddPoints credits points to a user. Admin only.
func AddPoints(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var input struct {
		Points int64 `json:"points"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reward, err := rewardLedger().AddPoints(ctx, targetID, input.Points)
	if err != nil {
		respondRewardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reward": reward})
}

// AddBadge grants a badge to a user; re-granting is a no-op. Admin only.
func AddBadge(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var input struct {
		Badge string `json:"badge"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reward, err := rewardLedger().AddBadge(ctx, targetID, input.Badge)
	if err != nil {
		respondRewardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reward": reward})
}

// AddCertificate grants a certificate to a user; re-granting is a
// no-op. Admin only.
func AddCertificate(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var input struct {
		Certificate string `json:"certificate"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reward, err := rewardLedger().AddCertificate(ctx, targetID, input.Certificate)
	if err != nil {
		respondRewardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reward": reward})
}

// AddCoupon appends a coupon to a user's rewards. Duplicate codes are
// allowed. Admin only.
func AddCoupon(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user ID"})
		return
	}

	var input struct {
		Code      string     `json:"code"`
		Value     string     `json:"value"`
		ExpiresAt *time.Time `json:"expiresAt"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reward, err := rewardLedger().AddCoupon(ctx, targetID, input.Code, input.Value, input.ExpiresAt)
	if err != nil {
		respondRewardError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "reward": reward})
}

// leaderboardEntry is the public slice of a student's standing.
type leaderboardEntry struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	Points int64              `bson:"points" json:"points"`
	Badges []string           `bson:"badges" json:"badges"`
}

// GetLeaderboard returns the top 10 students by points. Public; the
// result is cached in Redis for a minute.
func GetLeaderboard(c *gin.Context) {
	if config.RedisClient != nil {
		if cached, err := config.RedisClient.Get(config.Ctx, leaderboardCacheKey).Result(); err == nil {
			var users []leaderboardEntry
			if err := json.Unmarshal([]byte(cached), &users); err == nil {
				c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
				return
			}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().
		SetSort(bson.D{{Key: "points", Value: -1}}).
		SetLimit(10).
		SetProjection(bson.M{"name": 1, "points": 1, "badges": 1})

	cursor, err := config.GetCollection("users").Find(ctx, bson.M{"role": models.RoleStudent}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve leaderboard"})
		return
	}
	defer cursor.Close(ctx)

	users := make([]leaderboardEntry, 0, 10)
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode leaderboard"})
		return
	}

	if config.RedisClient != nil {
		if payload, err := json.Marshal(users); err == nil {
			if err := config.RedisClient.Set(config.Ctx, leaderboardCacheKey, payload, leaderboardCacheTTL).Err(); err != nil {
				log.Println("Error caching leaderboard:", err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

func respondRewardError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidPoints):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valid points value is required"})
	case errors.Is(err, services.ErrEmptyBadge):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A name for the grant is required"})
	case errors.Is(err, services.ErrEmptyCoupon):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Coupon code and value are required"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server Error"})
	}
}
