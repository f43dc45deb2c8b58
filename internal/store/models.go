package store

import "time"

type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"` // Nullable
	Price       float64 `json:"price"`
	Category    *string `json:"category"` // Nullable
	Stock       int64   `json:"stock"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"` // Plain or bcrypt, depending on the configured hasher
}

type ChatMessage struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	MessageType string    `json:"type"` // "user" or "bot", not enforced
}

// ProductFilter narrows ListProducts. Empty fields are ignored.
type ProductFilter struct {
	Category string
	Search   string
}

type SeedResult struct {
	ProductsInserted int
	UsersInserted    int
}
