package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/service"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/logger"
)

const (
	MaxMediaSize = 10 << 20
	mediaFolder  = "complaints"
)

// allowedMedia maps every accepted content type to its attachment kind.
var allowedMedia = map[string]entity.MediaType{
	"image/jpeg":         entity.MediaImage,
	"image/png":          entity.MediaImage,
	"image/gif":          entity.MediaImage,
	"video/mp4":          entity.MediaVideo,
	"video/x-msvideo":    entity.MediaVideo,
	"video/quicktime":    entity.MediaVideo,
	"audio/mpeg":         entity.MediaAudio,
	"audio/wav":          entity.MediaAudio,
	"audio/x-m4a":        entity.MediaAudio,
	"application/pdf":    entity.MediaDocument,
	"application/msword": entity.MediaDocument,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": entity.MediaDocument,
	"text/plain": entity.MediaDocument,
}

type MediaUseCase struct {
	files service.FileUploadService
}

func NewMediaUseCase(files service.FileUploadService) *MediaUseCase {
	return &MediaUseCase{
		files: files,
	}
}

// Upload sniffs the content rather than trusting the client's declared type.
func (uc *MediaUseCase) Upload(ctx context.Context, file io.Reader, filename string) (*entity.MediaAttachment, error) {
	data, err := io.ReadAll(io.LimitReader(file, MaxMediaSize+1))
	if err != nil {
		return nil, errors.BadRequest("Failed to read upload", err)
	}
	if len(data) == 0 {
		return nil, errors.MissingField("file")
	}
	if len(data) > MaxMediaSize {
		return nil, errors.Validation("File too large. Maximum size is 10MB.")
	}

	contentType, kind, ok := classifyMedia(data)
	if !ok {
		return nil, errors.Validation("Invalid file type. Only images, videos, audio, and documents are allowed.")
	}

	uri, err := uc.files.UploadFile(ctx, bytes.NewReader(data), contentType, fmt.Sprintf("%s/%s", mediaFolder, kind), true)
	if err != nil {
		return nil, errors.Internal("Failed to store media", err)
	}

	logger.Debug("Stored %s upload %q at %s", kind, filename, uri)
	return &entity.MediaAttachment{
		Type: kind,
		URI:  uri,
		Name: strings.TrimSpace(filename),
	}, nil
}

func classifyMedia(data []byte) (string, entity.MediaType, bool) {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		contentType := strings.SplitN(m.String(), ";", 2)[0]
		if kind, ok := allowedMedia[contentType]; ok {
			return contentType, kind, true
		}
	}
	return "", "", false
}
