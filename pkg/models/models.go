package models

// Domain models matching the database schema in internal/db/migrations/0001_init.sql

type AdminRole string

const (
	RoleAdmin AdminRole = "admin"
	RoleUser  AdminRole = "user"
)

type Admin struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"password_hash,omitempty" db:"password_hash"`
	Role         AdminRole `json:"role" db:"role"`
	Created      int64     `json:"createdAt" db:"created"`
}

type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "Pending"
	StatusInProgress ComplaintStatus = "In Progress"
	StatusResolved   ComplaintStatus = "Resolved"
)

// Valid reports whether s is one of the three known statuses.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

type Complaint struct {
	ID          string          `json:"id" db:"id"`
	Description string          `json:"description" db:"description"`
	Email       string          `json:"email,omitempty" db:"email"`
	Lat         *float64        `json:"lat,omitempty" db:"lat"`
	Lng         *float64        `json:"lng,omitempty" db:"lng"`
	PhotoURL    string          `json:"photoUrl,omitempty" db:"photo_url"`
	Status      ComplaintStatus `json:"status" db:"status"`
	Created     int64           `json:"createdAt" db:"created"`
	Updated     *int64          `json:"updatedAt,omitempty" db:"updated"`
}
