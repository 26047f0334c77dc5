package handlers

import (
	"employee/internal/middleware"
	"employee/internal/models"
	"employee/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// FormFieldHandler handles HTTP requests for the owner's form schema.
type FormFieldHandler struct {
	service  *services.FormFieldService
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewFormFieldHandler creates a new FormFieldHandler.
func NewFormFieldHandler(service *services.FormFieldService, log logrus.FieldLogger) *FormFieldHandler {
	return &FormFieldHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// RegisterRoutes registers the form field routes with the Fiber app.
func (h *FormFieldHandler) RegisterRoutes(router fiber.Router) {
	fieldRoutes := router.Group("/form-fields")
	fieldRoutes.Get("/", h.HandleListFields)
	fieldRoutes.Post("/", h.HandleDefineField)
	fieldRoutes.Post("/reorder", h.HandleReorder)
	fieldRoutes.Get("/:id", h.HandleGetField)
	fieldRoutes.Patch("/:id", h.HandleUpdateField)
	fieldRoutes.Delete("/:id", h.HandleDeleteField)
}

// DefineFieldRequest represents the request body for a new form field.
// Required defaults to true when omitted.
type DefineFieldRequest struct {
	Label    string `json:"label" validate:"required,max=100"`
	Type     string `json:"type" validate:"required"`
	Required *bool  `json:"required"`
}

// UpdateFieldRequest represents a partial update of a form field.
type UpdateFieldRequest struct {
	Label    *string `json:"label" validate:"omitempty,max=100"`
	Type     *string `json:"type"`
	Required *bool   `json:"required"`
	Order    *int    `json:"order"`
}

// ReorderRequest lists field ids in their new display order.
type ReorderRequest struct {
	Order []string `json:"order"`
}

// HandleListFields returns the owner's fields in display order.
func (h *FormFieldHandler) HandleListFields(c *fiber.Ctx) error {
	fields, err := h.service.ListFields(c.UserContext(), middleware.AccountID(c))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve form fields", err)
	}
	return c.JSON(fields)
}

// HandleDefineField appends a field to the owner's schema.
func (h *FormFieldHandler) HandleDefineField(c *fiber.Ctx) error {
	var req DefineFieldRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	required := true
	if req.Required != nil {
		required = *req.Required
	}
	field, err := h.service.DefineField(c.UserContext(), middleware.AccountID(c), services.FieldInput{
		Label:    req.Label,
		Type:     models.FieldType(req.Type),
		Required: required,
	})
	if err != nil {
		return respondError(c, h.log, "Could not create form field", err)
	}
	return c.Status(fiber.StatusCreated).JSON(field)
}

// HandleGetField returns a single field.
func (h *FormFieldHandler) HandleGetField(c *fiber.Ctx) error {
	field, err := h.service.GetField(c.UserContext(), middleware.AccountID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve form field", err)
	}
	return c.JSON(field)
}

// HandleUpdateField applies a partial update to a field.
func (h *FormFieldHandler) HandleUpdateField(c *fiber.Ctx) error {
	var req UpdateFieldRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	patch := services.FieldPatch{
		Label:    req.Label,
		Required: req.Required,
		Order:    req.Order,
	}
	if req.Type != nil {
		fieldType := models.FieldType(*req.Type)
		patch.Type = &fieldType
	}
	field, err := h.service.UpdateField(c.UserContext(), middleware.AccountID(c), c.Params("id"), patch)
	if err != nil {
		return respondError(c, h.log, "Could not update form field", err)
	}
	return c.JSON(field)
}

// HandleDeleteField removes a field from the schema.
func (h *FormFieldHandler) HandleDeleteField(c *fiber.Ctx) error {
	fieldID := c.Params("id")
	if err := h.service.DeleteField(c.UserContext(), middleware.AccountID(c), fieldID); err != nil {
		return respondError(c, h.log, "Could not delete form field", err)
	}
	return c.JSON(fiber.Map{
		"message": "Form field " + fieldID + " deleted successfully",
	})
}

// HandleReorder assigns display order by list position.
func (h *FormFieldHandler) HandleReorder(c *fiber.Ctx) error {
	var req ReorderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.service.Reorder(c.UserContext(), middleware.AccountID(c), req.Order); err != nil {
		return respondError(c, h.log, "Could not reorder form fields", err)
	}
	return c.JSON(fiber.Map{
		"status": "success",
	})
}
