package models

import (
	"fmt"
	"strings"
	"time"
)

// FlexibleBool accepts JSON booleans, numbers and strings such as "true" or "0"
type FlexibleBool bool

func (fb *FlexibleBool) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	switch strings.ToLower(str) {
	case "true", "1", "yes", "on":
		*fb = true
	case "false", "0", "no", "off":
		*fb = false
	default:
		return fmt.Errorf("invalid boolean value: %s", str)
	}
	return nil
}

func (fb FlexibleBool) Bool() bool {
	return bool(fb)
}

// CreateBookingRequest - POST /booking/:venueId
type CreateBookingRequest struct {
	Date           string `json:"date" binding:"required"`
	NumberOfGuests int    `json:"numberofguests" binding:"required,min=1"`
}

// RejectBookingRequest - POST /rejectbooking/:bookingId
type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// InitiatePaymentResponse is returned when a checkout session is opened
type InitiatePaymentResponse struct {
	BookingID   string `json:"bookingId"`
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkoutUrl"`
}

// PaymentWebhookPayload is the body the payment gateway posts to the webhook
type PaymentWebhookPayload struct {
	Event string              `json:"event" binding:"required"`
	Data  *PaymentWebhookData `json:"data" binding:"required"`
}

type PaymentWebhookData struct {
	Reference       string          `json:"reference"`
	Status          string          `json:"status"`
	Amount          int64           `json:"amount"`
	Currency        string          `json:"currency"`
	GatewayResponse string          `json:"gateway_response"`
	Metadata        PaymentMetadata `json:"metadata"`
}

type PaymentMetadata struct {
	BookingID string `json:"booking_id"`
}

// PaymentOutcome is the result the gateway reports for a charge
type PaymentOutcome string

const (
	PaymentSucceeded PaymentOutcome = "succeeded"
	PaymentFailed    PaymentOutcome = "failed"
)

// Gateway webhook event names
const (
	GatewayEventChargeSuccess = "charge.success"
	GatewayEventChargeFailed  = "charge.failed"
)

// RegisterRequest - POST /auth/register
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8,max=72"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Phone     string `json:"phone,omitempty" binding:"omitempty,max=32"`
	Role      Role   `json:"role" binding:"required,oneof=client venue_owner"`
}

// LoginRequest - POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Identity  *Identity `json:"identity"`
}

// RequestOTPRequest - POST /auth/otp
type RequestOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// VerifyOTPRequest - POST /auth/otp/verify
type VerifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// VenueRequest - POST /venues, PUT /venues/:venueId
type VenueRequest struct {
	Name         string       `json:"name" binding:"required,max=200"`
	Description  string       `json:"description" binding:"max=5000"`
	Street       string       `json:"street" binding:"required"`
	City         string       `json:"city" binding:"required"`
	State        string       `json:"state" binding:"required"`
	CapacityMin  int          `json:"capacityMin" binding:"min=0"`
	CapacityMax  int          `json:"capacityMax" binding:"required,min=1,gtefield=CapacityMin"`
	Price        Money        `json:"price" binding:"required,gt=0"`
	CautionFee   Money        `json:"cautionFee" binding:"min=0"`
	OpenTime     string       `json:"openTime" binding:"required,clock"`
	CloseTime    string       `json:"closeTime" binding:"required,clock"`
	HallSize     string       `json:"hallSize"`
	Type         VenueType    `json:"type" binding:"required,oneof=indoor outdoor multipurpose"`
	Amenities    []string     `json:"amenities" binding:"max=50,dive,max=100"`
	Images       []string     `json:"images" binding:"max=20,dive,url"`
	CAC          string       `json:"cac" binding:"omitempty,url"`
	Registration string       `json:"registration" binding:"omitempty,url"`
	Available    FlexibleBool `json:"available"`
}

// VenueFilter narrows public venue listings
type VenueFilter struct {
	Query    string    `form:"q"`
	City     string    `form:"city"`
	State    string    `form:"state"`
	Type     VenueType `form:"type" binding:"omitempty,oneof=indoor outdoor multipurpose"`
	Page     int       `form:"page" binding:"omitempty,min=1"`
	PageSize int       `form:"pageSize" binding:"omitempty,min=1,max=100"`
}

// Normalize applies paging defaults.
func (f *VenueFilter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
}

func (f *VenueFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

type VenueListResponse struct {
	Venues   []Venue `json:"venues"`
	Total    int64   `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"pageSize"`
}

// UpdateVenueStatusRequest - PATCH /admin/venues/:venueId/status
type UpdateVenueStatusRequest struct {
	Status VenueStatus `json:"status" binding:"required,oneof=pending unverified verified"`
}

// FeatureVenueRequest - POST /admin/venues/:venueId/feature
type FeatureVenueRequest struct {
	Days int `json:"days" binding:"required,min=1,max=365"`
}
