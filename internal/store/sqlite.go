package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrConflict is returned when a write violates a UNIQUE constraint.
var ErrConflict = errors.New("unique constraint violated")

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS products (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        name TEXT NOT NULL,
        description TEXT,
        price REAL NOT NULL,
        category TEXT,
        stock INTEGER NOT NULL DEFAULT 0
    );

    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        username TEXT UNIQUE NOT NULL,
        password TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS chat_messages (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id TEXT,
        content TEXT NOT NULL,
        timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
        message_type TEXT
    );

    CREATE INDEX IF NOT EXISTS idx_chat_messages_user_ts ON chat_messages (user_id, timestamp);
    `
	_, err := s.db.Exec(schema)
	return err
}

// classify maps driver errors the callers need to tell apart.
func classify(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

// Product methods
func (s *SQLiteStore) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	query := "SELECT id, name, description, price, category, stock FROM products WHERE 1=1"
	var args []any
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		// instr keeps user input out of LIKE pattern syntax.
		query += " AND instr(lower(name), lower(?)) > 0"
		args = append(args, filter.Search)
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		var p Product
		var description, category sql.NullString
		if err := rows.Scan(&p.ID, &p.Name, &description, &p.Price, &category, &p.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		if description.Valid {
			p.Description = &description.String
		}
		if category.Valid {
			p.Category = &category.String
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

// User methods
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, "SELECT id, username, password FROM users WHERE username = ?", username).Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// CreateUser inserts the user inside a transaction that is rolled back on any
// failure, so a failed registration leaves no row behind.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, password string) (*User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin user insert: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "INSERT INTO users (username, password) VALUES (?, ?)", username, password)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read new user id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user insert: %w", classify(err))
	}
	return &User{ID: id, Username: username, Password: password}, nil
}

func (s *SQLiteStore) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, username FROM users ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0)
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// Chat message methods
func (s *SQLiteStore) CreateChatMessage(ctx context.Context, msg *ChatMessage) error {
	msg.Timestamp = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_messages (user_id, content, timestamp, message_type) VALUES (?, ?, ?, ?)",
		msg.UserID, msg.Content, msg.Timestamp, msg.MessageType)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	msg.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read new chat message id: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetChatMessagesByUserID(ctx context.Context, userID string) ([]ChatMessage, error) {
	query := `
        SELECT id, user_id, content, timestamp, message_type
        FROM chat_messages
        WHERE user_id = ?
        ORDER BY timestamp ASC, id ASC
    `
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	messages := make([]ChatMessage, 0)
	for rows.Next() {
		var msg ChatMessage
		var msgUserID, msgType sql.NullString
		if err := rows.Scan(&msg.ID, &msgUserID, &msg.Content, &msg.Timestamp, &msgType); err != nil {
			return nil, fmt.Errorf("failed to scan chat message row: %w", err)
		}
		msg.UserID = msgUserID.String
		msg.MessageType = msgType.String
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat messages: %w", err)
	}
	return messages, nil
}
