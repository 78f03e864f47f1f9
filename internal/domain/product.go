package domain

import "time"

type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"` // 如 "GHS"
	Category     string    `json:"category"`
	Image        string    `json:"image"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"numReviews"`
	CountInStock int       `json:"countInStock"` // 不变式：>= 0
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ProductPatch struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Currency     *string  `json:"currency"`
	Category     *string  `json:"category"`
	Image        *string  `json:"image"`
	Rating       *float64 `json:"rating"`
	NumReviews   *int     `json:"numReviews"`
	CountInStock *int     `json:"countInStock"`
}
