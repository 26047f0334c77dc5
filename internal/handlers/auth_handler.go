package handlers

import (
	"employee/internal/middleware"
	"employee/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for registration, login and the
// authenticated account's profile.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterProfileRoutes registers the routes that need an authenticated account.
func (h *AuthHandler) RegisterProfileRoutes(router fiber.Router) {
	profileRoutes := router.Group("/profile")
	profileRoutes.Get("/", h.HandleGetProfile)
	profileRoutes.Put("/", h.HandleUpdateProfile)
	profileRoutes.Put("/password", h.HandleChangePassword)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=30"`
	LastName  string `json:"last_name" validate:"required,max=30"`
	Password  string `json:"password" validate:"required,min=8,not_numeric"`
	Password2 string `json:"password2" validate:"required"`
}

// HandleRegister creates an account and returns it with an access token.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	account, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
		Password2: req.Password2,
	})
	if err != nil {
		return respondError(c, h.log, "Registration failed", err)
	}

	token, err := h.authService.IssueToken(account)
	if err != nil {
		return respondError(c, h.log, "Could not issue token", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account registered successfully",
		"account": account,
		"token":   token,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin authenticates an account and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	token, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, "Authentication failed", err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

// HandleGetProfile returns the authenticated account.
func (h *AuthHandler) HandleGetProfile(c *fiber.Ctx) error {
	account, err := h.authService.CurrentAccount(c.UserContext(), middleware.AccountID(c))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve profile", err)
	}
	return c.JSON(account)
}

// UpdateProfileRequest represents the request body for a profile update.
type UpdateProfileRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	FirstName string  `json:"first_name" validate:"required,max=30"`
	LastName  string  `json:"last_name" validate:"required,max=30"`
	Phone     *string `json:"phone" validate:"omitempty,max=15"`
	Address   *string `json:"address"`
}

// HandleUpdateProfile updates the authenticated account's profile.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	account, err := h.authService.UpdateProfile(c.UserContext(), middleware.AccountID(c), services.ProfileInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Address:   req.Address,
	})
	if err != nil {
		return respondError(c, h.log, "Could not update profile", err)
	}
	return c.JSON(account)
}

// ChangePasswordRequest represents the request body for a password change.
type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword  string `json:"new_password" validate:"required,min=8,not_numeric"`
	NewPassword2 string `json:"new_password2" validate:"omitempty,eqfield=NewPassword"`
}

// HandleChangePassword replaces the authenticated account's password.
func (h *AuthHandler) HandleChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	if err := h.authService.ChangePassword(c.UserContext(), middleware.AccountID(c), req.OldPassword, req.NewPassword); err != nil {
		return respondError(c, h.log, "Could not change password", err)
	}
	return c.JSON(fiber.Map{
		"status": "success",
	})
}
