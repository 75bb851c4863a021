package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/moderation-backend/internal/dto"
	"github.com/ignatzorin/moderation-backend/internal/logger"
	"github.com/ignatzorin/moderation-backend/internal/pkg/apperror"
	"github.com/ignatzorin/moderation-backend/internal/repository"
)

// ErrorHandler обрабатывает ошибки централизованно.
// AppError переводится в соответствующий статус, внутренние ошибки
// маскируются и логируются.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if appErr, ok := apperror.As(err); ok {
			if appErr.HTTPStatus >= http.StatusInternalServerError && logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"error":  appErr.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("Request error")
			}

			c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
				Error: appErr.Message,
				Code:  string(appErr.Code),
				State: appErr.State,
			})
			return
		}

		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"error":  err.Error(),
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			}).Error("Request error")
		}

		statusCode := http.StatusInternalServerError
		message := "внутренняя ошибка сервера"

		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			statusCode = http.StatusNotFound
			message = "пользователь не найден"
		case errors.Is(err, repository.ErrContentNotFound):
			statusCode = http.StatusNotFound
			message = "контент не найден"
		case errors.Is(err, repository.ErrAppealNotFound):
			statusCode = http.StatusNotFound
			message = "апелляция не найдена"
		}

		c.JSON(statusCode, dto.ErrorResponse{Error: message})
	}
}
