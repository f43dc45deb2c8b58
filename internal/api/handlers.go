package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"shopfront.dev/ecommerce-backend/internal/core"
	"shopfront.dev/ecommerce-backend/internal/store"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrBadRequest marks request bodies that are malformed or miss required fields.
var ErrBadRequest = errors.New("bad request")

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type APIHandler struct {
	catalog  *core.CatalogService
	accounts *core.AccountService
	chats    *core.ChatService
	health   HealthChecker
	logger   *slog.Logger
}

func NewAPIHandler(catalog *core.CatalogService, accounts *core.AccountService, chats *core.ChatService, health HealthChecker, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		catalog:  catalog,
		accounts: accounts,
		chats:    chats,
		health:   health,
		logger:   logger,
	}
}

// AuthResponse is returned by successful register and login calls; login
// carries no message.
type AuthResponse struct {
	Success bool   `json:"success"`
	UserID  int64  `json:"user_id"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type ChatHistoryItem struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"` // RFC 3339, UTC
	Type      string `json:"type"`
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r CredentialsRequest) validate() error {
	if r.Username == "" || r.Password == "" {
		return errors.New("username and password are required")
	}
	return nil
}

// UserRef is a chat user_id. Clients send either a string or the numeric id
// returned by login; both are kept as the decimal string.
type UserRef string

func (u *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*u = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = UserRef(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("user_id must be a string or a number")
	}
	if i, err := n.Int64(); err == nil {
		*u = UserRef(strconv.FormatInt(i, 10))
		return nil
	}
	*u = UserRef(n.String())
	return nil
}

type SaveMessageRequest struct {
	UserID  UserRef `json:"user_id"`
	Content string  `json:"content"`
	Type    string  `json:"type"`
}

func (r SaveMessageRequest) validate() error {
	if r.UserID == "" || r.Content == "" || r.Type == "" {
		return errors.New("user_id, content and type are required")
	}
	return nil
}

// ListProductsHandler handles GET /api/products?category=&search=
func (h *APIHandler) ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	filter := store.ProductFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}

	products, err := h.catalog.ListProducts(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list products", "category", filter.Category, "search", filter.Search, "error", err)
		h.writeFault(w)
		return
	}
	h.writeJSON(w, http.StatusOK, products)
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, core.ErrDuplicateUsername):
		h.writeError(w, http.StatusBadRequest, "Username already exists")
	case err != nil:
		h.writeError(w, http.StatusInternalServerError, "Registration failed")
	default:
		h.writeJSON(w, http.StatusOK, AuthResponse{
			Success: true,
			UserID:  user.ID,
			Message: "Registration successful",
		})
	}
}

// LoginHandler never logs the submitted credentials.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, core.ErrUserNotFound):
		h.writeError(w, http.StatusUnauthorized, "User not found")
	case errors.Is(err, core.ErrInvalidPassword):
		h.writeError(w, http.StatusUnauthorized, "Invalid password")
	case err != nil:
		h.logger.Error("login failed", "error", err)
		h.writeFault(w)
	default:
		h.logger.Debug("user logged in", "user_id", user.ID)
		h.writeJSON(w, http.StatusOK, AuthResponse{Success: true, UserID: user.ID})
	}
}

// CheckUsersHandler lists every user's id and username. It has no access
// control.
func (h *APIHandler) CheckUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		h.writeFault(w)
		return
	}

	resp := make([]UserSummary, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserSummary{ID: u.ID, Username: u.Username})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")

	messages, err := h.chats.History(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to get chat history", "user_id", userID, "error", err)
		h.writeFault(w)
		return
	}

	resp := make([]ChatHistoryItem, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, ChatHistoryItem{
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
			Type:      m.MessageType,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *APIHandler) SaveMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveMessageRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.chats.SaveMessage(r.Context(), string(req.UserID), req.Content, req.Type); err != nil {
		h.logger.Error("failed to save chat message", "user_id", req.UserID, "error", err)
		h.writeFault(w)
		return
	}
	h.writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "error", err)
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type validator interface {
	validate() error
}

type badRequestError struct {
	message string
}

func (e *badRequestError) Error() string { return e.message }

func (e *badRequestError) Unwrap() error { return ErrBadRequest }

// decode reads a JSON body of at most maxBodyBytes into dst and validates it.
// Both failures are reported as ErrBadRequest with a message safe to return to
// the client.
func decode(w http.ResponseWriter, r *http.Request, dst validator) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &badRequestError{message: "Request body too large"}
		}
		return &badRequestError{message: "Invalid request body"}
	}
	if err := dst.validate(); err != nil {
		return &badRequestError{message: err.Error()}
	}
	return nil
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

func (h *APIHandler) writeFault(w http.ResponseWriter) {
	h.writeError(w, http.StatusInternalServerError, "Internal server error")
}
