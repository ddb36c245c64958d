package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"devhub/internal/delivery/http/dto"
	"devhub/internal/delivery/http/middleware"
	"devhub/internal/pkg/response"
	ucprofile "devhub/internal/usecase/profile"

	"github.com/gofiber/fiber/v3"
)

type ProfileHandler struct {
	uc ucprofile.Usecase
}

// profileRequest accepts both the short link keys sent by older clients
// and the *_url keys returned in responses.
type profileRequest struct {
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Bio         string   `json:"bio"`
	Location    string   `json:"location"`
	Experience  flexInt  `json:"experience"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Github      string   `json:"github"`
	GithubURL   string   `json:"github_url"`
	Linkedin    string   `json:"linkedin"`
	LinkedinURL string   `json:"linkedin_url"`
	Skills      []string `json:"skills"`
}

func (r profileRequest) fields() ucprofile.Fields {
	return ucprofile.Fields{
		Name:        r.Name,
		Title:       r.Title,
		Bio:         r.Bio,
		Location:    r.Location,
		Experience:  int(r.Experience),
		Email:       r.Email,
		Phone:       r.Phone,
		GithubURL:   firstNonEmpty(r.GithubURL, r.Github),
		LinkedinURL: firstNonEmpty(r.LinkedinURL, r.Linkedin),
		Skills:      r.Skills,
	}
}

// flexInt decodes a JSON number or a numeric string. Empty values decode to 0.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*n = flexInt(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

func NewProfileHandler(uc ucprofile.Usecase) *ProfileHandler {
	return &ProfileHandler{uc: uc}
}

func (h *ProfileHandler) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	if r == nil {
		return
	}

	r.Get("/developers", h.List)
	// /developer/me must be registered ahead of /developer/:userId.
	r.Get("/developer/me", auth, h.Me)
	r.Post("/developer/profile", auth, h.Create)
	r.Put("/developer/profile", auth, h.Upsert)
	r.Delete("/developer/profile", auth, h.Delete)
	r.Get("/developer/:userId", h.Get)
}

func (h *ProfileHandler) List(c fiber.Ctx) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	devs, err := h.uc.List(c.Context(), ucprofile.ListParams{
		Query:  c.Query("q"),
		Skill:  c.Query("skill"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewDeveloperResponses(devs))
}

func (h *ProfileHandler) Get(c fiber.Ctx) error {
	userID, err := parseUUIDParam(c, "userId", "Invalid user id")
	if err != nil {
		return err
	}

	dev, err := h.uc.Get(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewDeveloperResponse(dev))
}

func (h *ProfileHandler) Me(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	dev, err := h.uc.Me(c.Context(), userID)
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewDeveloperResponse(dev))
}

func (h *ProfileHandler) Create(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req profileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	id, err := h.uc.Create(c.Context(), userID, req.fields())
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusCreated, "Profile created", dto.SaveProfileResponse{DeveloperID: id, Created: true})
}

func (h *ProfileHandler) Upsert(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	var req profileRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid request payload", nil, err)
	}

	id, created, err := h.uc.Upsert(c.Context(), userID, req.fields())
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Profile saved", dto.SaveProfileResponse{DeveloperID: id, Created: created})
}

func (h *ProfileHandler) Delete(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}

	if err := h.uc.Delete(c.Context(), userID); err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Profile deleted", nil)
}

func queryInt(c fiber.Ctx, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, middleware.NewAppError(fiber.StatusBadRequest, "Invalid "+key, nil, err)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func mapProfileUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ucprofile.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Developer not found", nil, err)
	case errors.Is(err, ucprofile.ErrAlreadyExists):
		return middleware.NewAppError(fiber.StatusConflict, "Profile already exists", nil, err)
	case errors.Is(err, ucprofile.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid profile data", nil, err)
	case errors.Is(err, ucprofile.ErrNoPicture):
		return middleware.NewAppError(fiber.StatusBadRequest, "No profile picture to remove", nil, err)
	case errors.Is(err, ucprofile.ErrPictureTooLarge):
		return middleware.NewAppError(fiber.StatusBadRequest, "File too large, the limit is 5MB", nil, err)
	case errors.Is(err, ucprofile.ErrInvalidPicture):
		return middleware.NewAppError(fiber.StatusBadRequest, "Only image files are allowed", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
