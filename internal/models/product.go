package models

import "time"

// Product is a catalog entry. Priority controls display order, lowest first.
type Product struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Category  string    `db:"category"`
	Price     int       `db:"price"`
	Image     string    `db:"image"`
	Priority  int       `db:"priority"`
	InStock   bool      `db:"in_stock"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
