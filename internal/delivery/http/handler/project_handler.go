package handler

import (
	"errors"

	"devhub/internal/delivery/http/dto"
	"devhub/internal/delivery/http/middleware"
	"devhub/internal/pkg/response"
	ucproject "devhub/internal/usecase/project"

	"github.com/gofiber/fiber/v3"
)

type ProjectHandler struct {
	uc ucproject.Usecase
}

type projectRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Demo         string   `json:"demo"`
	DemoURL      string   `json:"demo_url"`
	Code         string   `json:"code"`
	CodeURL      string   `json:"code_url"`
}

func (r projectRequest) fields() ucproject.Fields {
	return ucproject.Fields{
		Name:         r.Name,
		Description:  r.Description,
		Technologies: r.Technologies,
		DemoURL:      firstNonEmpty(r.DemoURL, r.Demo),
		CodeURL:      firstNonEmpty(r.CodeURL, r.Code),
	}
}

func NewProjectHandler(uc ucproject.Usecase) *ProjectHandler {
	return &ProjectHandler{uc: uc}
}

// RegisterRoutes mounts the project endpoints on r. Every route requires auth.
func (h *ProjectHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/", h.Create)
	r.Get("/my-projects", h.ListMine)
	r.Put("/:id", h.Update)
	r.Delete("/:id", h.Delete)
}

func (h *ProjectHandler) Create(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req projectRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	p, err := h.uc.Add(c.Context(), userID, req.fields())
	if err != nil {
		return mapProjectUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Project created", dto.CreateProjectResponse{ProjectID: p.ID})
}

func (h *ProjectHandler) ListMine(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	ps, err := h.uc.ListMine(c.Context(), userID)
	if err != nil {
		return mapProjectUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewProjectResponses(ps))
}

func (h *ProjectHandler) Update(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id", "Invalid project id")
	if err != nil {
		return err
	}

	var req projectRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	p, err := h.uc.Update(c.Context(), userID, id, req.fields())
	if err != nil {
		return mapProjectUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Project updated", dto.NewProjectResponse(p))
}

func (h *ProjectHandler) Delete(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id", "Invalid project id")
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), userID, id); err != nil {
		return mapProjectUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Project deleted", nil)
}

func mapProjectUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucproject.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Project not found", nil, err)
	case errors.Is(err, ucproject.ErrProfileRequired):
		return middleware.NewAppError(fiber.StatusBadRequest, "Create your developer profile before adding projects", nil, err)
	case errors.Is(err, ucproject.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Project name and description are required", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
