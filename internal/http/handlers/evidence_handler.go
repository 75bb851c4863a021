package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/moderation-backend/internal/dto"
	"github.com/ignatzorin/moderation-backend/internal/http/handlers/common"
	"github.com/ignatzorin/moderation-backend/internal/storage"
)

// Разрешённые типы файлов доказательств
var allowedEvidenceMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// Разрешённые расширения файлов доказательств
var allowedEvidenceExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".pdf":  true,
}

// EvidenceHandler обслуживает загрузку файлов доказательств к апелляциям.
type EvidenceHandler struct {
	storage *storage.EvidenceStorage
}

// NewEvidenceHandler создаёт новый хэндлер.
func NewEvidenceHandler(storage *storage.EvidenceStorage) *EvidenceHandler {
	return &EvidenceHandler{storage: storage}
}

// Upload обрабатывает POST /api/evidence.
// Тип файла проверяется по магическим байтам, а не только по расширению.
func (h *EvidenceHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "поле file обязательно")
		return
	}

	if file.Size == 0 {
		common.RespondBadRequest(c, "файл не может быть пустым")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedEvidenceExtensions[ext] {
		common.RespondBadRequest(c, "неподдерживаемый формат файла, разрешены изображения и PDF")
		return
	}

	src, err := file.Open()
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}

	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		common.RespondBadRequest(c, "не удалось определить тип файла")
		return
	}

	if !allowedEvidenceMimeTypes[kind.MIME.Value] {
		common.RespondBadRequest(c, fmt.Sprintf("неподдерживаемый тип файла (%s), разрешены изображения и PDF", kind.MIME.Value))
		return
	}

	if seeker, ok := src.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			common.RespondError(c, http.StatusInternalServerError, "не удалось сбросить позицию файла")
			return
		}
	}

	relativePath, size, err := h.storage.Save(c.Request.Context(), userID, file.Filename, src)
	if err != nil {
		common.RespondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	common.RespondJSON(c, http.StatusCreated, dto.UploadResponse{
		URL:  "/uploads/" + filepath.ToSlash(relativePath),
		Size: size,
	})
}
