// Package model defines the persistent records for the sale verification
// application: sales, the agents who generated them, and the append-only
// status history kept for every sale.
package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SaleStatus is the lifecycle state of a sale.
type SaleStatus string

const (
	StatusUnverified SaleStatus = "Unverified"
	StatusVerified   SaleStatus = "Verified"
	StatusCancelled  SaleStatus = "Cancelled"
	StatusClawback   SaleStatus = "Clawback"
)

// ErrInvalidStatus indicates a status value outside the known set.
var ErrInvalidStatus = errors.New("invalid sale status")

// Statuses lists all valid sale statuses in display order.
func Statuses() []SaleStatus {
	return []SaleStatus{StatusUnverified, StatusVerified, StatusCancelled, StatusClawback}
}

// ParseStatus validates a raw status string.
func ParseStatus(s string) (SaleStatus, error) {
	switch SaleStatus(s) {
	case StatusUnverified, StatusVerified, StatusCancelled, StatusClawback:
		return SaleStatus(s), nil
	}
	return "", ErrInvalidStatus
}

// Sale is a lead record. NMIMirn is the unique business key; a sale is
// created on its first successful sale-file import row and never deleted.
type Sale struct {
	ID                uuid.UUID
	AgentID           uuid.NullUUID // resolved owning agent; null in non-strict imports
	AgentName         string        // denormalized lookup name from the import file
	PartyCode         string
	ChannelName       string
	ClientName        string
	SiteID            string
	PhoneNo           string
	PostalSuburb      string
	DistrictCode      string
	ClientType        string
	ProductTypeCode   string
	NMIMirn           string
	SignedDate        *time.Time
	LoadedDate        *time.Time
	AnnualConsumption *float64
	CommissionValue   *float64
	ClawbackValue     *float64 // set only when the sale is clawed back
	SaleStatus        SaleStatus
	Created           time.Time
	Updated           time.Time
}

// SaleStatusHistory is one row of the append-only audit trail. A row is
// written whenever a sale's status changes, on import or manual edit.
type SaleStatusHistory struct {
	ID      uuid.UUID
	SaleID  uuid.UUID
	Status  SaleStatus
	Created time.Time
}

// Agent is a salesperson. SIDN and LumoName are each unique; LumoName is the
// lookup key used to resolve sale imports to an agent.
type Agent struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	SIDN      string
	Email     string
	Phone     string
	Team      string
	StartDate *time.Time
	EndDate   *time.Time
	LumoName  string
	SIQ       bool
}

// FullName returns the agent's display name.
func (a *Agent) FullName() string {
	return a.FirstName + " " + a.LastName
}
