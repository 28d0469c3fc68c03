package domain

import (
	"strings"
	"time"
)

// Customer holds the contact details captured with one order. Customers are
// not deduplicated: a returning buyer gets a new row per checkout.
type Customer struct {
	ID         int64     `gorm:"primaryKey"`
	FirstName  string    `gorm:"column:first_name;type:varchar(100);not null"`
	LastName   string    `gorm:"column:last_name;type:varchar(100);not null"`
	Email      *string   `gorm:"type:varchar(254);index"`
	Phone      string    `gorm:"type:varchar(30);not null;index"`
	Address    string    `gorm:"type:text;not null"`
	City       string    `gorm:"type:varchar(100);not null"`
	Region     *string   `gorm:"type:varchar(100)"`
	PostalCode *string   `gorm:"column:postal_code;type:varchar(20)"`
	CreatedAt  time.Time `gorm:"not null;index"`
}

func (Customer) TableName() string { return "customers" }

func (c Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
