package domain

import (
	"context"
	"errors"
	"time"
)

// HeroSlide is a homepage banner. Slides show in SortOrder, then newest first.
type HeroSlide struct {
	ID         int64     `gorm:"primaryKey"`
	Title      string    `gorm:"type:varchar(200);not null"`
	Subtitle   *string   `gorm:"type:varchar(300)"`
	Image      string    `gorm:"type:varchar(500);not null"`
	LinkURL    *string   `gorm:"column:link_url;type:varchar(500)"`
	ButtonText *string   `gorm:"column:button_text;type:varchar(60)"`
	SortOrder  int       `gorm:"column:sort_order;not null;index"`
	IsActive   bool      `gorm:"column:is_active;not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

func (HeroSlide) TableName() string { return "hero_slides" }

var (
	ErrNotFound     = errors.New("not_found")
	ErrInvalidID    = errors.New("invalid_id")
	ErrInvalidTitle = errors.New("invalid_title")
	ErrInvalidImage = errors.New("invalid_image")
	ErrInvalidLink  = errors.New("invalid_link")
)

type Service interface {
	// ListActive returns the slides the storefront shows.
	ListActive(ctx context.Context) ([]Response, error)
	List(ctx context.Context) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
}

type CreateRequest struct {
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	Image      string `json:"image"`
	LinkURL    string `json:"link_url"`
	ButtonText string `json:"button_text"`
	SortOrder  int    `json:"sort_order"`
	IsActive   *bool  `json:"is_active"`
}

type UpdateRequest struct {
	Title      *string `json:"title"`
	Subtitle   *string `json:"subtitle"`
	Image      *string `json:"image"`
	LinkURL    *string `json:"link_url"`
	ButtonText *string `json:"button_text"`
	SortOrder  *int    `json:"sort_order"`
	IsActive   *bool   `json:"is_active"`
}

type Response struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Subtitle   *string   `json:"subtitle"`
	Image      string    `json:"image"`
	LinkURL    *string   `json:"link_url"`
	ButtonText *string   `json:"button_text"`
	SortOrder  int       `json:"sort_order"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
