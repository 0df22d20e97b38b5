package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPriceFor(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		want     int
	}{
		{"single unit", 1, 890},
		{"two units", 2, 1780},
		{"bundle of three", 3, 1800},
		{"four units", 4, 3560},
		{"ten units", 10, 8900},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceFor(tt.quantity))
		})
	}
}

func TestGenerateOrderID_Format(t *testing.T) {
	now := time.Date(2023, 6, 15, 9, 30, 45, 0, time.Local)
	pattern := regexp.MustCompile(`^SUMIFUN-20230615093045-\d{3}$`)

	for i := 0; i < 20; i++ {
		id := GenerateOrderID(now)
		assert.Regexp(t, pattern, id)
	}
}

func TestNewOrder(t *testing.T) {
	order := NewOrder("Test", "5551234567", 2)

	assert.Regexp(t, regexp.MustCompile(`^SUMIFUN-\d{14}-\d{3}$`), order.OrderID)
	assert.Equal(t, "Test", order.Name)
	assert.Equal(t, "5551234567", order.Phone)
	assert.Equal(t, 2, order.Quantity)
	assert.Equal(t, 1780, order.Price)
	assert.Equal(t, DefaultStatus, order.Status)
	assert.NotEmpty(t, order.Date)

	_, err := time.ParseInLocation("2006-01-02 15:04:05", order.Date, time.Local)
	assert.NoError(t, err)
}

func TestMaskPhone(t *testing.T) {
	tests := []struct {
		name  string
		phone string
		want  string
	}{
		{"long number", "5551234567", "******4567"},
		{"formatted number", "+7 (123) 456-7890", "*************7890"},
		{"exactly four chars", "1234", "1234"},
		{"short number", "123", "123"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskPhone(tt.phone))
		})
	}
}
