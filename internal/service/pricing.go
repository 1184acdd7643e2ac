package service

import "venuehub/internal/models"

// Quote is the price breakdown of a booking.
type Quote struct {
	Base          models.Money
	ServiceCharge models.Money
	Total         models.Money
}

// NewQuote prices a booking at the venue's base price plus the service charge.
// Total always equals Base + ServiceCharge.
func NewQuote(price models.Money) Quote {
	charge := price.Percent(models.ServiceChargePercent)
	return Quote{
		Base:          price,
		ServiceCharge: charge,
		Total:         price + charge,
	}
}
