package handler

import (
	"context"

	"github.com/clickwall/clickwall/internal/app/model"
	"github.com/clickwall/clickwall/internal/app/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer mints bearer tokens for newly created accounts.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserDeps groups dependencies required by the user handler.
type UserDeps struct {
	Logger *zap.Logger
	Users  repository.UserRepository
	Tokens TokenIssuer
}

// UserHandler implements account provisioning. Accounts start with a zero
// click counter; the counter only moves through the ledger afterwards.
type UserHandler struct {
	logger *zap.Logger
	users  repository.UserRepository
	tokens TokenIssuer
}

// NewUserHandler creates a user handler with the provided dependencies.
func NewUserHandler(deps UserDeps) *UserHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{
		logger: logger,
		users:  deps.Users,
		tokens: deps.Tokens,
	}
}

// Register wires the user routes onto the provided router.
func (h *UserHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	api.Post("/users", h.Create)
}

// CreateUserRequest represents the request body for creating an account.
type CreateUserRequest struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Create handles POST /api/users.
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Username == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username and email are required",
		})
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	user := &model.User{
		ID:       req.ID,
		Username: req.Username,
		Email:    req.Email,
	}
	if err := h.users.Create(ctx, user); err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create user",
		})
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err), zap.String("user_id", user.ID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to issue token",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"click_count": user.ClickCount,
		"token":       token,
	})
}
