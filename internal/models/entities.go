package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Role discriminates the three kinds of identity.
type Role string

const (
	RoleClient     Role = "client"
	RoleVenueOwner Role = "venue_owner"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleClient, RoleVenueOwner, RoleAdmin:
		return true
	}
	return false
}

// Identity represents a client, venue owner or admin account
type Identity struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"firstName" db:"first_name"`
	LastName     string     `json:"lastName" db:"last_name"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	ProfileImage *string    `json:"profileImage,omitempty" db:"profile_image"`
	Role         Role       `json:"role" db:"role"`
	IsVerified   bool       `json:"isVerified" db:"is_verified"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

type VenueStatus string

const (
	VenueStatusPending    VenueStatus = "pending"
	VenueStatusUnverified VenueStatus = "unverified"
	VenueStatusVerified   VenueStatus = "verified"
)

type VenueType string

const (
	VenueTypeIndoor       VenueType = "indoor"
	VenueTypeOutdoor      VenueType = "outdoor"
	VenueTypeMultipurpose VenueType = "multipurpose"
)

// VenueDocuments holds references to uploaded files, stored as JSONB.
type VenueDocuments struct {
	Images       []string `json:"images"`
	CAC          string   `json:"cac,omitempty"`
	Registration string   `json:"registration,omitempty"`
}

func (d VenueDocuments) Value() (driver.Value, error) {
	if d.Images == nil {
		d.Images = []string{}
	}
	return json.Marshal(d)
}

func (d *VenueDocuments) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = VenueDocuments{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("cannot scan %T into VenueDocuments", src)
	}
}

// Venue represents a listed event venue
type Venue struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"ownerId"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Street        string         `json:"street"`
	City          string         `json:"city"`
	State         string         `json:"state"`
	CapacityMin   int            `json:"capacityMin"`
	CapacityMax   int            `json:"capacityMax"`
	Price         Money          `json:"price"`
	CautionFee    Money          `json:"cautionFee"`
	OpenTime      string         `json:"openTime"`
	CloseTime     string         `json:"closeTime"`
	HallSize      string         `json:"hallSize"`
	Type          VenueType      `json:"type"`
	Amenities     []string       `json:"amenities"`
	Documents     VenueDocuments `json:"documents"`
	Available     bool           `json:"available"`
	Featured      bool           `json:"featured"`
	FeaturedUntil *time.Time     `json:"featuredUntil,omitempty"`
	Status        VenueStatus    `json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// Bookable reports whether clients may request bookings for the venue.
func (v *Venue) Bookable() bool {
	return v.Status == VenueStatusVerified && v.Available
}

// IsFeatured reports whether the featured flag is still in effect at now.
func (v *Venue) IsFeatured(now time.Time) bool {
	if !v.Featured {
		return false
	}
	return v.FeaturedUntil == nil || now.Before(*v.FeaturedUntil)
}

type BookingStatus string

const (
	BookingStatusPending  BookingStatus = "pending"
	BookingStatusAccepted BookingStatus = "accepted"
	BookingStatusRejected BookingStatus = "rejected"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

type CautionFeeStatus string

const (
	CautionFeePending  CautionFeeStatus = "pending"
	CautionFeeRefunded CautionFeeStatus = "refunded"
)

// Booking represents a client's reservation of a venue for a date
type Booking struct {
	ID               string           `json:"id" db:"id"`
	VenueID          string           `json:"venueId" db:"venue_id"`
	OwnerID          string           `json:"ownerId" db:"owner_id"`
	ClientID         string           `json:"clientId" db:"client_id"`
	EventDate        Date             `json:"date" db:"event_date"`
	NumberOfGuests   int              `json:"numberOfGuests" db:"number_of_guests"`
	BaseAmount       Money            `json:"baseAmount" db:"base_amount"`
	ServiceCharge    Money            `json:"serviceCharge" db:"service_charge"`
	TotalAmount      Money            `json:"totalAmount" db:"total_amount"`
	CautionFee       Money            `json:"cautionFee" db:"caution_fee"`
	CautionFeeStatus CautionFeeStatus `json:"cautionFeeStatus" db:"caution_fee_status"`
	PaymentStatus    PaymentStatus    `json:"paymentStatus" db:"payment_status"`
	PaymentReference *string          `json:"paymentReference,omitempty" db:"payment_reference"`
	PaidAt           *time.Time       `json:"paidAt,omitempty" db:"paid_at"`
	Status           BookingStatus    `json:"bookingStatus" db:"booking_status"`
	Version          int64            `json:"version" db:"version"`
	CreatedAt        time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time        `json:"updatedAt" db:"updated_at"`
}

// Settled reports whether the booking is accepted and paid.
func (b *Booking) Settled() bool {
	return b.Status == BookingStatusAccepted && b.PaymentStatus == PaymentStatusPaid
}

// HasReference reports whether ref is the booking's current gateway reference.
func (b *Booking) HasReference(ref string) bool {
	return b.PaymentReference != nil && *b.PaymentReference == ref
}

type CountStat struct {
	Total int64   `json:"total"`
	Trend float64 `json:"trend"`
}

type RevenueStat struct {
	Total Money   `json:"total"`
	Trend float64 `json:"trend"`
}

type RateStat struct {
	Total float64 `json:"total"`
	Trend float64 `json:"trend"`
}

type ActiveBookingStat struct {
	Confirmed int64 `json:"confirmed"`
	Pending   int64 `json:"pending"`
}

// DashboardSummary is the per-owner aggregate shown on the owner dashboard
type DashboardSummary struct {
	OwnerID       string            `json:"ownerId"`
	TotalVenues   CountStat         `json:"totalVenues"`
	ActiveBooking ActiveBookingStat `json:"activeBooking"`
	Revenue       RevenueStat       `json:"revenue"`
	OccupancyRate RateStat          `json:"occupancyRate"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// DashboardStats are the raw per-owner counts a summary is derived from.
type DashboardStats struct {
	TotalVenues       int64 `db:"total_venues"`
	VenuesThisMonth   int64 `db:"venues_this_month"`
	VenuesLastMonth   int64 `db:"venues_last_month"`
	ConfirmedBookings int64 `db:"confirmed_bookings"`
	PendingBookings   int64 `db:"pending_bookings"`
	RevenueTotal      Money `db:"revenue_total"`
	RevenueThisMonth  Money `db:"revenue_this_month"`
	RevenueLastMonth  Money `db:"revenue_last_month"`
	OccupiedThisMonth int64 `db:"occupied_this_month"`
	OccupiedLastMonth int64 `db:"occupied_last_month"`
}

type NotificationTitle string

const (
	TitleBookingRequest    NotificationTitle = "New Booking Request"
	TitleBookingAccepted   NotificationTitle = "Booking Accepted"
	TitleBookingRejected   NotificationTitle = "Booking Rejected"
	TitlePaymentSuccessful NotificationTitle = "Payment Successful"
	TitlePaymentFailed     NotificationTitle = "Payment Failed"
	TitlePaymentReceived   NotificationTitle = "Payment Received"
	TitleVenueStatus       NotificationTitle = "Venue Status Updated"
)

type NotificationDot string

const (
	DotGreen  NotificationDot = "green"
	DotRed    NotificationDot = "red"
	DotYellow NotificationDot = "yellow"
	DotBlue   NotificationDot = "blue"
)

// Notification is a message shown to a client or venue owner
type Notification struct {
	ID            string            `json:"id" db:"id" bson:"_id"`
	RecipientID   string            `json:"recipientId" db:"recipient_id" bson:"recipientId"`
	RecipientRole Role              `json:"recipientRole" db:"recipient_role" bson:"recipientRole"`
	VenueID       *string           `json:"venueId,omitempty" db:"venue_id" bson:"venueId,omitempty"`
	BookingID     *string           `json:"bookingId,omitempty" db:"booking_id" bson:"bookingId,omitempty"`
	Title         NotificationTitle `json:"title" db:"title" bson:"title"`
	Message       string            `json:"message" db:"message" bson:"message"`
	Dot           NotificationDot   `json:"dot" db:"dot" bson:"dot"`
	Read          bool              `json:"read" db:"is_read" bson:"read"`
	CreatedAt     time.Time         `json:"createdAt" db:"created_at" bson:"createdAt"`
	TimeAgo       string            `json:"timeAgo" db:"-" bson:"-"`
}
