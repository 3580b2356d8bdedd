package handler

import (
	"github.com/labstack/echo/v4"

	"civicsolve/internal/usecase"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/logger"
	"civicsolve/pkg/response"
)

type MediaHandler struct {
	mediaUseCase *usecase.MediaUseCase
}

func NewMediaHandler(mediaUseCase *usecase.MediaUseCase) *MediaHandler {
	return &MediaHandler{
		mediaUseCase: mediaUseCase,
	}
}

// Upload stores one multipart "file" field and returns the attachment descriptor to put in
// a complaint's media list.
func (h *MediaHandler) Upload(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.MissingField("file"))
	}

	logger.Debug("Received upload: %s, size: %d bytes", file.Filename, file.Size)
	if file.Size > usecase.MaxMediaSize {
		return response.Error(c, errors.Validation("File too large. Maximum size is 10MB."))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to open uploaded file", err))
	}
	defer src.Close()

	attachment, err := h.mediaUseCase.Upload(c.Request().Context(), src, file.Filename)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, "File uploaded successfully", attachment)
}
