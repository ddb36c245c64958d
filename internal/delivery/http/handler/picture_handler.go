package handler

import (
	"strings"

	"devhub/internal/delivery/http/dto"
	"devhub/internal/delivery/http/middleware"
	"devhub/internal/pkg/response"
	ucprofile "devhub/internal/usecase/profile"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

const pictureFormField = "profilePicture"

type PictureHandler struct {
	uc ucprofile.Usecase
}

func NewPictureHandler(uc ucprofile.Usecase) *PictureHandler {
	return &PictureHandler{uc: uc}
}

func (h *PictureHandler) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	if r == nil {
		return
	}

	r.Post("/upload-profile-picture", auth, h.Upload)
	r.Delete("/developer/profile-picture/:userId", auth, h.Remove)
}

func (h *PictureHandler) Upload(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if claimed := strings.TrimSpace(c.FormValue("userId")); claimed != "" {
		if err := requireSameUser(userID, claimed); err != nil {
			return err
		}
	}

	fh, err := c.FormFile(pictureFormField)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "No file uploaded", nil, err)
	}

	f, err := fh.Open()
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unreadable upload", nil, err)
	}
	defer f.Close()

	res, err := h.uc.UploadPicture(c.Context(), userID, ucprofile.PictureInput{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     f,
	})
	if err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Profile picture uploaded", dto.PictureResponse{
		ProfilePicture:    res.Filename,
		ProfilePictureURL: res.URL,
		DeveloperID:       res.ProfileID,
	})
}

func (h *PictureHandler) Remove(c fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := requireSameUser(userID, c.Params("userId")); err != nil {
		return err
	}

	if err := h.uc.RemovePicture(c.Context(), userID); err != nil {
		return mapProfileUsecaseError(err)
	}

	return response.Success(c, fiber.StatusOK, "Profile picture removed", nil)
}

// requireSameUser rejects requests naming a user other than the caller.
func requireSameUser(caller uuid.UUID, raw string) error {
	claimed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid user id", nil, err)
	}
	if claimed != caller {
		return middleware.NewAppError(fiber.StatusForbidden, "You can only change your own profile picture", nil, nil)
	}
	return nil
}
