package data

import (
	"testing"
	"time"

	"CricketScoreApi/internal/assert"
	"CricketScoreApi/internal/validator"
)

func TestValidateFixture(t *testing.T) {
	tests := []struct {
		name    string
		fixture Fixture
		valid   bool
	}{
		{
			name:    "Valid Fixture",
			fixture: Fixture{Opponent: "Oldfield CC", StartsAt: time.Now().Add(48 * time.Hour)},
			valid:   true,
		},
		{
			name:    "Missing Opponent",
			fixture: Fixture{StartsAt: time.Now()},
			valid:   false,
		},
		{
			name:    "Missing Start",
			fixture: Fixture{Opponent: "Oldfield CC"},
			valid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidateFixture(v, &tt.fixture)
			assert.Equal(t, v.Valid(), tt.valid)
		})
	}
}

func TestValidateAvailability(t *testing.T) {
	tests := []struct {
		name  string
		a     Availability
		valid bool
	}{
		{
			name:  "Valid Reply",
			a:     Availability{PlayerName: "Asif", Reply: "yes", DeviceFp: "fp-1"},
			valid: true,
		},
		{
			name:  "Unknown Reply",
			a:     Availability{PlayerName: "Asif", Reply: "perhaps", DeviceFp: "fp-1"},
			valid: false,
		},
		{
			name:  "Missing Fingerprint",
			a:     Availability{PlayerName: "Asif", Reply: "no"},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidateAvailability(v, &tt.a)
			assert.Equal(t, v.Valid(), tt.valid)
		})
	}
}

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		valid bool
	}{
		{
			name:  "Valid Income",
			entry: Entry{Member: "Asif", Description: "Monthly subs", AmountCents: 2000, Kind: "income"},
			valid: true,
		},
		{
			name:  "Zero Amount",
			entry: Entry{Description: "Monthly subs", AmountCents: 0, Kind: "income"},
			valid: false,
		},
		{
			name:  "Unknown Kind",
			entry: Entry{Description: "Monthly subs", AmountCents: 2000, Kind: "transfer"},
			valid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := validator.New()
			ValidateEntry(v, &tt.entry)
			assert.Equal(t, v.Valid(), tt.valid)
		})
	}
}
