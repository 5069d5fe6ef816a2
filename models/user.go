package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleCitizen Role = "citizen"
	RoleStudent Role = "student"
	RoleWorker  Role = "worker"
	RoleAdmin   Role = "admin"
)

// ValidRole reports whether s is a known role value.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleCitizen, RoleStudent, RoleWorker, RoleAdmin:
		return true
	}
	return false
}

// User represents a platform participant. Role-specific behavior hangs
// off the capability methods below instead of inline string comparisons.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password,omitempty" json:"-"`
	Mobile     string             `bson:"mobile,omitempty" json:"mobile,omitempty"`
	Role       Role               `bson:"role" json:"role"`
	TravelFlag bool               `bson:"travelFlag" json:"travelFlag"`
	Points     int64              `bson:"points" json:"points"`
	Badges     []string           `bson:"badges" json:"badges"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsWorker() bool {
	return u.Role == RoleWorker
}

// RequiresModeration reports whether complaints by this user must pass
// the moderation queue before becoming reward-eligible. Only students
// carrying the travel flag qualify; the flag is zeroed at registration
// for every other role, so the check stays a plain conjunction.
func (u *User) RequiresModeration() bool {
	return u.Role == RoleStudent && u.TravelFlag
}
