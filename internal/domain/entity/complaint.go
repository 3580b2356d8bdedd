package entity

import (
	"time"
)

type Status string

const (
	StatusReported   Status = "reported"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Statuses lists the lifecycle in its canonical order.
var Statuses = []Status{StatusReported, StatusInProgress, StatusResolved, StatusClosed}

func (s Status) Valid() bool {
	return s.Rank() > 0
}

// Rank is the position in the canonical progression, 0 for unknown values.
func (s Status) Rank() int {
	for i, st := range Statuses {
		if st == s {
			return i + 1
		}
	}
	return 0
}

// Terminal reports whether entering s stamps the resolution time.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusClosed
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities high=3, medium=2, low=1.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

type Category string

const (
	CategoryRoadTransport   Category = "Road & Transport"
	CategoryWaterSanitation Category = "Water & Sanitation"
	CategoryElectricity     Category = "Electricity"
	CategoryGarbageWaste    Category = "Garbage & Waste"
	CategoryPublicSafety    Category = "Public Safety"
	CategoryHealthMedical   Category = "Health & Medical"
	CategoryEducation       Category = "Education"
	CategoryOthers          Category = "Others"
)

var Categories = []Category{
	CategoryRoadTransport,
	CategoryWaterSanitation,
	CategoryElectricity,
	CategoryGarbageWaste,
	CategoryPublicSafety,
	CategoryHealthMedical,
	CategoryEducation,
	CategoryOthers,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if known == c {
			return true
		}
	}
	return false
}

type MediaType string

const (
	MediaImage    MediaType = "image"
	MediaVideo    MediaType = "video"
	MediaAudio    MediaType = "audio"
	MediaDocument MediaType = "document"
)

func (m MediaType) Valid() bool {
	switch m {
	case MediaImage, MediaVideo, MediaAudio, MediaDocument:
		return true
	}
	return false
}

type Coordinates struct {
	Latitude  float64 `json:"latitude" firestore:"latitude" bson:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude" bson:"longitude"`
}

type MediaAttachment struct {
	Type MediaType `json:"type" firestore:"type" bson:"type"`
	URI  string    `json:"uri" firestore:"uri" bson:"uri"`
	Name string    `json:"name" firestore:"name" bson:"name"`
}

// Complaint is a reported civic issue. Reporter, Department and Branch are read-side joins
// and are never persisted.
type Complaint struct {
	ID          string `json:"id" firestore:"id" bson:"_id"`
	ComplaintID string `json:"complaintId" firestore:"complaintId" bson:"complaintId"`

	Title       string      `json:"title" firestore:"title" bson:"title"`
	Description string      `json:"description" firestore:"description" bson:"description"`
	Category    Category    `json:"category" firestore:"category" bson:"category"`
	Location    string      `json:"location" firestore:"location" bson:"location"`
	Coordinates Coordinates `json:"coordinates" firestore:"coordinates" bson:"coordinates"`

	Priority     Priority `json:"priority" firestore:"priority" bson:"priority"`
	PriorityRank int      `json:"-" firestore:"priorityRank" bson:"priorityRank"`
	Status       Status   `json:"status" firestore:"status" bson:"status"`

	ReportedBy   string `json:"reportedBy" firestore:"reportedBy" bson:"reportedBy"`
	DepartmentID string `json:"departmentId,omitempty" firestore:"departmentId,omitempty" bson:"departmentId,omitempty"`
	BranchID     string `json:"branchId,omitempty" firestore:"branchId,omitempty" bson:"branchId,omitempty"`

	Upvotes         int `json:"upvotes" firestore:"upvotes" bson:"upvotes"`
	Comments        int `json:"comments" firestore:"comments" bson:"comments"`
	EscalationCount int `json:"escalationCount" firestore:"escalationCount" bson:"escalationCount"`

	Media []MediaAttachment `json:"media" firestore:"media" bson:"media"`

	WorkOrderNumber string     `json:"workOrderNumber,omitempty" firestore:"workOrderNumber,omitempty" bson:"workOrderNumber,omitempty"`
	CreatedDate     time.Time  `json:"createdDate" firestore:"createdDate" bson:"createdDate"`
	ResolvedDate    *time.Time `json:"resolvedDate,omitempty" firestore:"resolvedDate,omitempty" bson:"resolvedDate,omitempty"`
	UpdatedAt       time.Time  `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`

	Reporter   *UserSummary `json:"reporter,omitempty" firestore:"-" bson:"-"`
	Department *NamedRef    `json:"department,omitempty" firestore:"-" bson:"-"`
	Branch     *NamedRef    `json:"branch,omitempty" firestore:"-" bson:"-"`
}

// StatusUpdate is the write half of a lifecycle transition.
type StatusUpdate struct {
	Status          Status
	WorkOrderNumber string
	At              time.Time
}

// Apply mutates c the way every store driver must: status and updatedAt always,
// workOrderNumber when supplied, resolvedDate only on the first terminal entry.
func (u StatusUpdate) Apply(c *Complaint) {
	c.Status = u.Status
	c.UpdatedAt = u.At
	if u.WorkOrderNumber != "" {
		c.WorkOrderNumber = u.WorkOrderNumber
	}
	if u.Status.Terminal() && c.ResolvedDate == nil {
		at := u.At
		c.ResolvedDate = &at
	}
}

// Clone returns a deep copy safe to hand out from a shared store.
func (c *Complaint) Clone() *Complaint {
	cp := *c
	if c.Media != nil {
		cp.Media = append([]MediaAttachment(nil), c.Media...)
	}
	if c.ResolvedDate != nil {
		rd := *c.ResolvedDate
		cp.ResolvedDate = &rd
	}
	if c.Reporter != nil {
		r := *c.Reporter
		cp.Reporter = &r
	}
	if c.Department != nil {
		d := *c.Department
		cp.Department = &d
	}
	if c.Branch != nil {
		b := *c.Branch
		cp.Branch = &b
	}
	return &cp
}
