package dto

// ErrorResponse стандартный ответ с ошибкой. Для конфликтов поле state
// содержит актуальное состояние сущности, чтобы клиент мог обновить UI.
type ErrorResponse struct {
	Error string      `json:"error"`
	Code  string      `json:"code,omitempty"`
	State interface{} `json:"state,omitempty"`
}

// SuccessResponse стандартный ответ об успехе.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// UploadResponse ответ на загрузку файла доказательства.
type UploadResponse struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
}
