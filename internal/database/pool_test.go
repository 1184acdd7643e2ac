package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert booking: %w", &pq.Error{Code: "23505", Constraint: "bookings_client_venue_settled_uidx"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "bookings_client_venue_settled_uidx"))
	assert.False(t, IsUniqueViolation(err, "identities_email_key"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(&pq.Error{Code: "40001"}))
	assert.True(t, isRetryableError(&pq.Error{Code: "40P01"}))
	assert.True(t, isRetryableError(errors.New("driver: bad connection")))
	assert.False(t, isRetryableError(&pq.Error{Code: "23505"}))
	assert.False(t, isRetryableError(nil))
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, User: "u", Password: "p", DBName: "venuehub", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=venuehub sslmode=disable", cfg.DSN())
}
