package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// OnboardingStatus tracks a store's verification progress.
type OnboardingStatus string

const (
	OnboardingPending   OnboardingStatus = "Pending"
	OnboardingSubmitted OnboardingStatus = "Submitted"
	OnboardingVerified  OnboardingStatus = "Verified"
	OnboardingApproved  OnboardingStatus = "Approved"
	OnboardingRejected  OnboardingStatus = "Rejected"
)

// ParseOnboardingStatus validates an onboarding status string.
func ParseOnboardingStatus(s string) (OnboardingStatus, error) {
	switch st := OnboardingStatus(s); st {
	case OnboardingPending, OnboardingSubmitted, OnboardingVerified, OnboardingApproved, OnboardingRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown onboarding status %q", s)
}

// AcceptsOrders reports whether a store in this status takes orders.
func (s OnboardingStatus) AcceptsOrders() bool {
	return s == OnboardingVerified || s == OnboardingApproved
}

// StoreAddress is a store's postal address
type StoreAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

func (a StoreAddress) Value() (driver.Value, error) { return jsonValue(a) }
func (a *StoreAddress) Scan(src interface{}) error  { return jsonScan(src, a) }

// Complete reports whether every address field is set.
func (a StoreAddress) Complete() bool {
	return a.Street != "" && a.City != "" && a.State != "" && a.Pincode != ""
}

// GeoPoint is a GeoJSON point, coordinates are [lng, lat].
type GeoPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func (g GeoPoint) Value() (driver.Value, error) { return jsonValue(g) }
func (g *GeoPoint) Scan(src interface{}) error  { return jsonScan(src, g) }

// NewGeoPoint builds a point from longitude and latitude.
func NewGeoPoint(lng, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// DocumentUpload is one uploaded verification document.
type DocumentUpload struct {
	DocType string `json:"docType"`
	URL     string `json:"url"`
}

// DocumentUploads is append-only; re-uploading a docType adds an entry.
type DocumentUploads []DocumentUpload

func (d DocumentUploads) Value() (driver.Value, error) {
	if d == nil {
		d = DocumentUploads{}
	}
	return jsonValue(d)
}
func (d *DocumentUploads) Scan(src interface{}) error { return jsonScan(src, d) }

// VerificationDocuments groups licence numbers and uploaded files.
type VerificationDocuments struct {
	GSTIN           null.String     `db:"gstin" json:"gstin"`
	FSSAILicense    null.String     `db:"fssai_license" json:"fssaiLicense"`
	DocumentUploads DocumentUploads `db:"document_uploads" json:"documentUploads"`
}

type BankDetails struct {
	AccountHolderName string `json:"accountHolderName,omitempty"`
	AccountNumber     string `json:"accountNumber,omitempty"`
	BankName          string `json:"bankName,omitempty"`
	IFSCCode          string `json:"ifscCode,omitempty"`
}

func (b BankDetails) Value() (driver.Value, error) { return jsonValue(b) }
func (b *BankDetails) Scan(src interface{}) error  { return jsonScan(src, b) }

type OperatingHour struct {
	Day   string `json:"day"`
	Open  string `json:"open"`
	Close string `json:"close"`
}

type OperatingHours []OperatingHour

func (o OperatingHours) Value() (driver.Value, error) {
	if o == nil {
		o = OperatingHours{}
	}
	return jsonValue(o)
}
func (o *OperatingHours) Scan(src interface{}) error { return jsonScan(src, o) }

// Store is a merchant's shop on the platform.
type Store struct {
	ID                    uuid.UUID    `db:"id" json:"id"`
	StoreName             string       `db:"store_name" json:"storeName"`
	OwnerID               uuid.UUID    `db:"owner_id" json:"owner"`
	ContactNumber         string       `db:"contact_number" json:"contactNumber"`
	Email                 null.String  `db:"email" json:"email"`
	Address               StoreAddress `db:"address" json:"address"`
	Geolocation           GeoPoint     `db:"geolocation" json:"geolocation"`
	VerificationDocuments `json:"verificationDocuments"`
	OnboardingStatus      OnboardingStatus `db:"onboarding_status" json:"onboardingStatus"`
	BankDetails           BankDetails      `db:"bank_details" json:"bankDetails"`
	OperatingHours        OperatingHours   `db:"operating_hours" json:"operatingHours"`
	IsAcceptingOrders     bool             `db:"is_accepting_orders" json:"isAcceptingOrders"`
	OnboardedBy           uuid.UUID        `db:"onboarded_by" json:"onboardedBy"`
	CreatedAt             time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time        `db:"updated_at" json:"updatedAt"`
}

// SetOnboardingStatus updates the status and the derived accepting flag.
func (s *Store) SetOnboardingStatus(status OnboardingStatus) {
	s.OnboardingStatus = status
	s.IsAcceptingOrders = status.AcceptsOrders()
}

// StoreFilter narrows store listings. OwnerID restricts to one merchant.
type StoreFilter struct {
	OwnerID *uuid.UUID
	Status  OnboardingStatus
	Pagination
}
