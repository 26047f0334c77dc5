package handlers

import (
	"strings"

	"employee/internal/middleware"
	"employee/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// formFieldPrefix prefixes field ids in form-encoded submissions.
const formFieldPrefix = "field_"

// EmployeeHandler handles HTTP requests for employee records.
type EmployeeHandler struct {
	service *services.EmployeeService
	log     logrus.FieldLogger
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(service *services.EmployeeService, log logrus.FieldLogger) *EmployeeHandler {
	return &EmployeeHandler{
		service: service,
		log:     log,
	}
}

// RegisterRoutes registers the employee routes with the Fiber app.
func (h *EmployeeHandler) RegisterRoutes(router fiber.Router) {
	employeeRoutes := router.Group("/employees")
	employeeRoutes.Get("/", h.HandleListEmployees)
	employeeRoutes.Post("/", h.HandleCreateEmployee)
	employeeRoutes.Get("/:id", h.HandleGetEmployee)
	employeeRoutes.Put("/:id", h.HandleUpdateEmployee)
	employeeRoutes.Delete("/:id", h.HandleDeleteEmployee)
}

// EmployeeRequest carries submitted values keyed by form field id.
type EmployeeRequest struct {
	Values map[string]*string `json:"values"`
}

// HandleListEmployees lists the owner's records, filtered by ?search=.
func (h *EmployeeHandler) HandleListEmployees(c *fiber.Ctx) error {
	employees, err := h.service.ListRecords(c.UserContext(), middleware.AccountID(c), c.Query("search"))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve employees", err)
	}
	return c.JSON(employees)
}

// HandleCreateEmployee captures a record against the current schema.
func (h *EmployeeHandler) HandleCreateEmployee(c *fiber.Ctx) error {
	raw, err := submittedValues(c)
	if err != nil {
		return badBody(c, err)
	}
	employee, err := h.service.CreateRecord(c.UserContext(), middleware.AccountID(c), raw)
	if err != nil {
		return respondError(c, h.log, "Could not create employee", err)
	}
	return c.Status(fiber.StatusCreated).JSON(employee)
}

// HandleGetEmployee returns a single record.
func (h *EmployeeHandler) HandleGetEmployee(c *fiber.Ctx) error {
	employee, err := h.service.GetRecord(c.UserContext(), middleware.AccountID(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, "Could not retrieve employee", err)
	}
	return c.JSON(employee)
}

// HandleUpdateEmployee replaces a record's values.
func (h *EmployeeHandler) HandleUpdateEmployee(c *fiber.Ctx) error {
	raw, err := submittedValues(c)
	if err != nil {
		return badBody(c, err)
	}
	employee, err := h.service.UpdateRecord(c.UserContext(), middleware.AccountID(c), c.Params("id"), raw)
	if err != nil {
		return respondError(c, h.log, "Could not update employee", err)
	}
	return c.JSON(employee)
}

// HandleDeleteEmployee removes a record.
func (h *EmployeeHandler) HandleDeleteEmployee(c *fiber.Ctx) error {
	employeeID := c.Params("id")
	if err := h.service.DeleteRecord(c.UserContext(), middleware.AccountID(c), employeeID); err != nil {
		return respondError(c, h.log, "Could not delete employee", err)
	}
	return c.JSON(fiber.Map{
		"message": "Employee " + employeeID + " deleted successfully",
	})
}

// submittedValues reads field values from either a JSON body
// {"values": {"<id>": "v"}} or a form body with field_<id> keys.
func submittedValues(c *fiber.Ctx) (map[string]*string, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationForm) {
		raw := make(map[string]*string)
		c.Request().PostArgs().VisitAll(func(key, value []byte) {
			if id, ok := strings.CutPrefix(string(key), formFieldPrefix); ok && id != "" {
				v := string(value)
				raw[id] = &v
			}
		})
		return raw, nil
	}

	var req EmployeeRequest
	if len(c.Body()) == 0 {
		return map[string]*string{}, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	if req.Values == nil {
		req.Values = map[string]*string{}
	}
	return req.Values, nil
}
