package entity

import (
	"time"
)

type Contact struct {
	Email   string `json:"email,omitempty" firestore:"email,omitempty" bson:"email,omitempty"`
	Phone   string `json:"phone,omitempty" firestore:"phone,omitempty" bson:"phone,omitempty"`
	Address string `json:"address,omitempty" firestore:"address,omitempty" bson:"address,omitempty"`
	Manager string `json:"manager,omitempty" firestore:"manager,omitempty" bson:"manager,omitempty"`
}

type Department struct {
	ID          string    `json:"id" firestore:"id" bson:"_id"`
	Name        string    `json:"name" firestore:"name" bson:"name"`
	Description string    `json:"description,omitempty" firestore:"description,omitempty" bson:"description,omitempty"`
	Contact     Contact   `json:"contact" firestore:"contact" bson:"contact"`
	IsActive    bool      `json:"isActive" firestore:"isActive" bson:"isActive"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

type BranchLocation struct {
	Address     string       `json:"address,omitempty" firestore:"address,omitempty" bson:"address,omitempty"`
	City        string       `json:"city,omitempty" firestore:"city,omitempty" bson:"city,omitempty"`
	State       string       `json:"state,omitempty" firestore:"state,omitempty" bson:"state,omitempty"`
	Pincode     string       `json:"pincode,omitempty" firestore:"pincode,omitempty" bson:"pincode,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty" firestore:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

type Branch struct {
	ID           string         `json:"id" firestore:"id" bson:"_id"`
	Name         string         `json:"name" firestore:"name" bson:"name"`
	DepartmentID string         `json:"departmentId" firestore:"departmentId" bson:"departmentId"`
	Location     BranchLocation `json:"location" firestore:"location" bson:"location"`
	Contact      Contact        `json:"contact" firestore:"contact" bson:"contact"`
	IsActive     bool           `json:"isActive" firestore:"isActive" bson:"isActive"`
	CreatedAt    time.Time      `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

// NamedRef is the id/name pair joined onto complaint reads.
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
