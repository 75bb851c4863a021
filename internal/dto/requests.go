package dto

// RegisterRequest запрос регистрации.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Username string `json:"username" binding:"required"`
}

// LoginRequest запрос входа.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest запрос обновления токенов.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateContentRequest запрос регистрации контента.
type CreateContentRequest struct {
	ContentType string `json:"content_type" binding:"required"`
	Body        string `json:"body" binding:"required"`
}

// SubmitFlagRequest запрос подачи жалобы.
type SubmitFlagRequest struct {
	ContentID string  `json:"content_id" binding:"required"`
	Reason    string  `json:"reason" binding:"required"`
	Urgency   string  `json:"urgency,omitempty"`
	Details   *string `json:"details,omitempty"`
}

// SubmitAppealRequest запрос подачи апелляции.
type SubmitAppealRequest struct {
	ContentID         string   `json:"content_id" binding:"required"`
	AppealType        string   `json:"appeal_type" binding:"required"`
	AppealReason      string   `json:"appeal_reason" binding:"required"`
	UserStatement     string   `json:"user_statement" binding:"required"`
	AdditionalDetails *string  `json:"additional_details,omitempty"`
	EvidenceURLs      []string `json:"evidence_urls,omitempty"`
}

// CastVoteRequest запрос подачи голоса.
type CastVoteRequest struct {
	Decision   string `json:"decision" binding:"required"`
	Confidence int    `json:"confidence" binding:"required"`
	Reasoning  string `json:"reasoning" binding:"required"`
}

// UpdateConfigRequest запрос изменения настроек модерации.
type UpdateConfigRequest struct {
	AutoHideThreshold int `json:"auto_hide_threshold" binding:"required"`
	RequiredVotes     int `json:"required_votes" binding:"required"`
}
