package models

import "time"

// Employee represents a tracked employee profile.
type Employee struct {
	ID           string    `db:"id" json:"id"`
	EmployeeCode string    `db:"employee_code" json:"employee_code"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	Role         string    `db:"role" json:"role"`
	Location     *string   `db:"location" json:"location,omitempty"`
	JoinDate     time.Time `db:"join_date" json:"join_date"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// EmployeeFilter captures filtering criteria for employee listings.
type EmployeeFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
