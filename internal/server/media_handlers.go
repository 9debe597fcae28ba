package server

import (
	"errors"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"reverie/internal/media"
	"reverie/internal/models"

	"github.com/gofiber/fiber/v2"
)

var allowedAudioExts = map[string]struct{}{
	".mp3":  {},
	".m4a":  {},
	".ogg":  {},
	".wav":  {},
	".webm": {},
}

// UploadImage handles POST /api/media/image. The upload is processed into
// webp master/thumb variants plus a jpeg fallback; the response carries all
// three URLs.
func (s *Server) UploadImage(c *fiber.Ctx) error {
	userID := currentUserID(c)

	content, contentType, err := readUploadedFile(c)
	if err != nil {
		return nil
	}

	urls, err := s.uploader.UploadImage(c.UserContext(), userID, content, contentType)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(urls)
}

// UploadAudio handles POST /api/media/audio
func (s *Server) UploadAudio(c *fiber.Ctx) error {
	userID := currentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Audio file is required"))
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if _, ok := allowedAudioExts[ext]; !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unsupported audio format"))
	}

	content, err := readFileHeader(c, fileHeader)
	if err != nil {
		return nil
	}

	url, err := s.uploader.UploadAudio(c.UserContext(), userID, content, ext)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}

// readUploadedFile pulls the multipart "file" field and its declared
// content type. On failure the response is already written.
func readUploadedFile(c *fiber.Ctx) ([]byte, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Image file is required"))
		return nil, "", errResponseWritten
	}

	content, err := readFileHeader(c, fileHeader)
	if err != nil {
		return nil, "", err
	}
	return content, fileHeader.Header.Get("Content-Type"), nil
}

func readFileHeader(c *fiber.Ctx, fileHeader *multipart.FileHeader) ([]byte, error) {
	f, err := fileHeader.Open()
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
		return nil, errResponseWritten
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
		return nil, errResponseWritten
	}
	return content, nil
}
