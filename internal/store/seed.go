package store

import (
	"context"
	"fmt"
)

const (
	SeedUsername = "test"
	SeedPassword = "test123"
)

type seedProduct struct {
	name        string
	description string
	price       float64
	category    string
	stock       int64
}

var seedProducts = []seedProduct{
	{"4K Smart TV", "55-inch 4K Ultra HD Smart LED TV", 699.99, "Electronics", 50},
	{"Wireless Headphones", "Over-ear noise cancelling Bluetooth headphones", 199.99, "Electronics", 120},
	{"Smartphone", "6.1-inch OLED display, 128GB storage", 799.00, "Electronics", 75},
	{"Laptop Backpack", "Water-resistant backpack with padded 15-inch laptop sleeve", 49.95, "Accessories", 200},
	{"Espresso Machine", "15-bar pump espresso and cappuccino maker", 249.50, "Home", 30},
	{"Cast Iron Skillet", "12-inch pre-seasoned cast iron skillet", 34.99, "Home", 90},
	{"The Go Programming Language", "Hardcover edition", 39.99, "Books", 60},
	{"Running Shoes", "Lightweight breathable road running shoes", 89.99, "Sports", 150},
}

// SeedProductCount is the number of products Seed inserts into an empty catalogue.
func SeedProductCount() int {
	return len(seedProducts)
}

// Seed fills empty tables with the sample catalogue and the test user. Each
// table is only touched when it has no rows, so running Seed on every start
// never duplicates data. hashPassword encodes the seeded user's password the
// same way registration does.
func (s *SQLiteStore) Seed(ctx context.Context, hashPassword func(string) (string, error)) (SeedResult, error) {
	var result SeedResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	var productCount int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&productCount); err != nil {
		return result, fmt.Errorf("failed to count products: %w", err)
	}
	if productCount == 0 {
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO products (name, description, price, category, stock) VALUES (?, ?, ?, ?, ?)")
		if err != nil {
			return result, fmt.Errorf("failed to prepare product insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range seedProducts {
			if _, err := stmt.ExecContext(ctx, p.name, p.description, p.price, p.category, p.stock); err != nil {
				return result, fmt.Errorf("failed to insert seed product %q: %w", p.name, err)
			}
			result.ProductsInserted++
		}
	}

	var userCount int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		return result, fmt.Errorf("failed to count users: %w", err)
	}
	if userCount == 0 {
		password, err := hashPassword(SeedPassword)
		if err != nil {
			return result, fmt.Errorf("failed to encode seed password: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO users (username, password) VALUES (?, ?)", SeedUsername, password); err != nil {
			return result, fmt.Errorf("failed to insert seed user: %w", err)
		}
		result.UsersInserted++
	}

	if err := tx.Commit(); err != nil {
		return SeedResult{}, fmt.Errorf("failed to commit seed: %w", err)
	}
	return result, nil
}
