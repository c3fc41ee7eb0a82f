// Package model defines the records the services exchange.
// Orders embed copies of the user and product as they were at creation.
package model

import "time"

// User is the auth record. Password holds whatever the password policy
// stores and never leaves the auth service.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"`
}

// Identity is the sanitized user returned by register and verify_token.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u User) Identity() Identity { return Identity{ID: u.ID, Email: u.Email} }

// Product has optional stock; nil means stock is not tracked.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock *int    `json:"stock,omitempty"`
}

// ProductSnapshot is the part of a product copied into an order.
type ProductSnapshot struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{ID: p.ID, Name: p.Name, Price: p.Price}
}

type Order struct {
	ID        string          `json:"id"`
	Product   ProductSnapshot `json:"product"`
	Qty       int             `json:"qty"`
	User      Identity        `json:"user"`
	CreatedAt time.Time       `json:"createdAt"`
}

// StockCheck answers check_stock.
type StockCheck struct {
	ID      string `json:"id"`
	Qty     int    `json:"qty"`
	InStock bool   `json:"in_stock"`
	Stock   *int   `json:"stock,omitempty"`
}
