package domain

import "time"

// Mustering is a trade or specialisation, e.g. P for pilots.
type Mustering struct {
	Code        string
	Name        string
	Description string
}

// Base is an air force base.
type Base struct {
	ID            int64
	Name          string
	City          string
	Province      string
	ContactNumber string
}

// Unit is a squadron or school stationed at a base.
type Unit struct {
	ID            int64
	MusteringCode string
	Name          string
	BaseID        *int64
}

// ReadinessStatus is the overall combat readiness of a member.
type ReadinessStatus string

const (
	ReadinessReady    ReadinessStatus = "Ready"
	ReadinessNotReady ReadinessStatus = "Not Ready"
	ReadinessPending  ReadinessStatus = "Pending"
)

// Readiness is the latest readiness assessment of a member.
type Readiness struct {
	MemberID     string
	Status       ReadinessStatus
	Reason       string
	LastAssessed time.Time
	AssessedBy   *string
}

// Placeholder shown when a lookup is missing.
const Placeholder = "—"

// PersonnelRow is a member joined with mustering, unit, base and readiness.
type PersonnelRow struct {
	MemberID        string
	ForceNumber     string
	Rank            string
	FirstName       string
	Surname         string
	Email           string
	MusteringCode   string
	MusteringName   string
	UnitID          *int64
	UnitName        string
	BaseID          *int64
	BaseName        string
	ReadinessStatus ReadinessStatus
}
