package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"civicpulse-be/config"
	"civicpulse-be/middlewares"
	"civicpulse-be/models"
	"civicpulse-be/services"
	authUtils "civicpulse-be/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	workerSelector services.WorkerSelector = services.NewRandomSelector(nil)
	dispatcher     *services.Dispatcher
)

// InitServices wires the controller-level collaborators. Called once
// from main after config is loaded.
func InitServices(cfg *config.Config) {
	dispatcher = services.NewDispatcher(
		services.NewSMTPEmailSender(cfg.SMTP),
		services.NewTwilioSMSSender(cfg.Twilio),
	)
}

// CreateComplaint handles the creation of a new complaint with up to
// five image attachments.
func CreateComplaint(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	category := c.PostForm("category")
	locationRaw := c.PostForm("location")
	priority := c.PostForm("priority")

	if title == "" || description == "" || category == "" || locationRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required fields: title, description, category, location"})
		return
	}

	location, err := models.ParseLocation([]byte(locationRaw))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid location format"})
		return
	}

	if priority == "" {
		priority = string(models.PriorityMedium)
	}
	if !models.ValidPriority(priority) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid priority"})
		return
	}

	var mediaURLs []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := form.File["images"]
		mediaURLs, err = authUtils.SaveComplaintImages(c, files)
		if err != nil {
			switch {
			case errors.Is(err, authUtils.ErrTooManyImages),
				errors.Is(err, authUtils.ErrImageTooLarge),
				errors.Is(err, authUtils.ErrNotAnImage):
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			default:
				log.Println("Error saving complaint images:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store images"})
			}
			return
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Pick a worker before creating the complaint. Selection is uniform
	// random over the worker pool; an empty pool leaves the complaint
	// unassigned.
	var assignedTo *primitive.ObjectID
	cursor, err := config.GetCollection("users").Find(ctx, bson.M{"role": models.RoleWorker})
	if err == nil {
		var workers []models.User
		if err := cursor.All(ctx, &workers); err == nil {
			pool := make([]primitive.ObjectID, 0, len(workers))
			for _, w := range workers {
				pool = append(pool, w.ID)
			}
			assignedTo = workerSelector.SelectWorker(pool)
		}
	} else {
		log.Println("Error finding workers:", err)
	}

	complaint := models.Complaint{
		ID:          primitive.NewObjectID(),
		Type:        models.ComplaintCategory(category),
		Title:       title,
		Description: description,
		MediaURLs:   mediaURLs,
		Location:    location,
		Priority:    models.ComplaintPriority(priority),
		Status:      models.StatusPending,
		CreatedBy:   user.ID,
		AssignedTo:  assignedTo,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if len(mediaURLs) > 0 {
		complaint.MediaURL = mediaURLs[0]
	}

	if _, err := config.GetCollection("complaints").InsertOne(ctx, complaint); err != nil {
		log.Println("Error inserting complaint:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create complaint"})
		return
	}

	// Travel-flagged students go through moderation before any reward
	// eligibility; the complaint stays ineligible until approval.
	if user.RequiresModeration() {
		item := models.ModerationQueueItem{
			ID:          primitive.NewObjectID(),
			ComplaintID: complaint.ID,
			AIFlagged:   false,
			Status:      models.ModerationPending,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		if _, err := config.GetCollection("moderation_queue").InsertOne(ctx, item); err != nil {
			log.Println("Error enqueueing moderation item:", err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "complaint": complaint})
}

// GetComplaintsByUser retrieves complaints created by a specific user;
// only the user themselves or an admin may call it.
func GetComplaintsByUser(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to view these complaints"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection("complaints").Find(ctx, bson.M{"createdBy": targetID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve complaints"})
		return
	}
	defer cursor.Close(ctx)

	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode complaints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(complaints), "complaints": complaints})
}

// GetAllComplaints retrieves all complaints with optional status, type
// and creation date range filters. Admin only (enforced at the route).
func GetAllComplaints(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if category := c.Query("type"); category != "" {
		filter["type"] = category
	}

	dateRange := bson.M{}
	if startDate := c.Query("startDate"); startDate != "" {
		if t, err := time.Parse(time.RFC3339, startDate); err == nil {
			dateRange["$gte"] = t
		} else if t, err := time.Parse("2006-01-02", startDate); err == nil {
			dateRange["$gte"] = t
		}
	}
	if endDate := c.Query("endDate"); endDate != "" {
		if t, err := time.Parse(time.RFC3339, endDate); err == nil {
			dateRange["$lte"] = t
		} else if t, err := time.Parse("2006-01-02", endDate); err == nil {
			dateRange["$lte"] = t
		}
	}
	if len(dateRange) > 0 {
		filter["createdAt"] = dateRange
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection("complaints").Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve complaints"})
		return
	}
	defer cursor.Close(ctx)

	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode complaints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(complaints), "complaints": complaints})
}

// GetWorkerComplaints returns every complaint, newest first. Workers
// can see and work on all complaints, not only assigned ones.
func GetWorkerComplaints(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := config.GetCollection("complaints").Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve complaints"})
		return
	}
	defer cursor.Close(ctx)

	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to decode complaints"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(complaints), "complaints": complaints})
}

// AssignComplaint assigns a complaint to a worker and forces it to
// in-progress, regardless of its current status. Admin only.
func AssignComplaint(c *gin.Context) {
	complaintID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid complaint ID"})
		return
	}

	var input struct {
		WorkerID string `json:"workerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	workerID, err := primitive.ObjectIDFromHex(input.WorkerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid worker ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	complaintCollection := config.GetCollection("complaints")

	var complaint models.Complaint
	err = complaintCollection.FindOneAndUpdate(ctx,
		bson.M{"_id": complaintID},
		bson.M{"$set": bson.M{
			"assignedTo": workerID,
			"status":     models.StatusInProgress,
			"updatedAt":  time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&complaint)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Complaint not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to assign complaint"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "complaint": complaint})
}

// UpdateComplaintStatus transitions a complaint's status. Any worker
// may update any complaint; an unassigned complaint is claimed by the
// acting worker as a side effect.
func UpdateComplaintStatus(c *gin.Context) {
	worker, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	complaintID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid complaint ID"})
		return
	}

	var input struct {
		Status          string `json:"status" binding:"required"`
		ResolutionProof string `json:"resolutionProof"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if !models.ValidStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status"})
		return
	}
	newStatus := models.ComplaintStatus(input.Status)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	complaintCollection := config.GetCollection("complaints")

	var complaint models.Complaint
	err = complaintCollection.FindOne(ctx, bson.M{"_id": complaintID}).Decode(&complaint)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Complaint not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve complaint"})
		}
		return
	}

	if config.AppConfig.StrictStatusTransitions && !models.CanTransition(complaint.Status, newStatus) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid status transition"})
		return
	}

	oldStatus := complaint.Status

	update := bson.M{
		"status":    newStatus,
		"updatedAt": time.Now(),
	}
	if complaint.AssignedTo == nil {
		update["assignedTo"] = worker.ID
		complaint.AssignedTo = &worker.ID
	}
	if newStatus == models.StatusResolved && input.ResolutionProof != "" {
		complaint.AttachResolutionProof(input.ResolutionProof, time.Now())
		update["resolutionProof"] = complaint.ResolutionProof
	}
	complaint.Status = newStatus

	if _, err := complaintCollection.UpdateOne(ctx, bson.M{"_id": complaintID}, bson.M{"$set": update}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to update complaint"})
		return
	}

	// Notify the creator on an actual change. Fire-and-forget: the
	// response does not wait on delivery, and delivery failures are
	// logged only.
	if oldStatus != newStatus {
		var creator models.User
		if err := config.GetCollection("users").FindOne(ctx, bson.M{"_id": complaint.CreatedBy}).Decode(&creator); err != nil {
			log.Println("Error loading complaint creator for notification:", err)
		} else if dispatcher != nil {
			go func(creator models.User, complaint models.Complaint, status models.ComplaintStatus) {
				notifyCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				results := dispatcher.NotifyStatusChange(notifyCtx, creator, complaint, status)
				for _, res := range results {
					if res.Success {
						log.Printf("Notification sent: channel=%s complaint=%s", res.Channel, complaint.ID.Hex())
					} else {
						log.Printf("Notification failed: channel=%s complaint=%s err=%s", res.Channel, complaint.ID.Hex(), res.Error)
					}
				}
			}(creator, complaint, newStatus)
		}
	}

	message := "Complaint status updated successfully"
	if newStatus == models.StatusResolved {
		message = "Complaint marked as resolved and user has been notified!"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "complaint": complaint, "message": message})
}

// GetComplaint retrieves a complaint by ID. Only the creator, the
// assignee or an admin may view it.
func GetComplaint(c *gin.Context) {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "User not authenticated"})
		return
	}

	complaintID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid complaint ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var complaint models.Complaint
	err = config.GetCollection("complaints").FindOne(ctx, bson.M{"_id": complaintID}).Decode(&complaint)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Complaint not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to retrieve complaint"})
		}
		return
	}

	isAssignee := complaint.AssignedTo != nil && *complaint.AssignedTo == user.ID
	if !user.IsAdmin() && complaint.CreatedBy != user.ID && !isAssignee {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized to view this complaint"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "complaint": complaint})
}
