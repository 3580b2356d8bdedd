package entity

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

const (
	RoleCitizen = "citizen"
	RoleAdmin   = "admin"
)

type User struct {
	ID        string    `json:"id" firestore:"id" bson:"_id"`
	Name      string    `json:"name" firestore:"name" bson:"name"`
	Phone     string    `json:"phone" firestore:"phone" bson:"phone"`
	CitizenID string    `json:"citizenId" firestore:"citizenId" bson:"citizenId"`
	DOB       time.Time `json:"dob" firestore:"dob" bson:"dob"`
	Location  string    `json:"location" firestore:"location" bson:"location"`
	Gender    Gender    `json:"gender" firestore:"gender" bson:"gender"`
	Email     string    `json:"email" firestore:"email" bson:"email"`
	Role      string    `json:"role" firestore:"role" bson:"role"`
	IsActive  bool      `json:"isActive" firestore:"isActive" bson:"isActive"`

	LastLogin *time.Time `json:"lastLogin,omitempty" firestore:"lastLogin,omitempty" bson:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

// UserSummary is the reporter identity joined onto complaint reads.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

// ProfileUpdate holds the only fields a user may change after registration.
type ProfileUpdate struct {
	Name     string
	Phone    string
	Location string
	Email    string
}
