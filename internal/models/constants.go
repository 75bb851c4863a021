package models

// Роли пользователей
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ContentStatus константы статусов контента
const (
	ContentStatusVisible       = "visible"
	ContentStatusHiddenPending = "hidden_pending_review"
	ContentStatusRemoved       = "removed"
)

// ContentType константы типов контента
const (
	ContentTypePost    = "post"
	ContentTypeComment = "comment"
	ContentTypeUser    = "user"
	ContentTypeMessage = "message"
)

// FlagReason константы причин жалоб
const (
	FlagReasonSpam           = "spam"
	FlagReasonHarassment     = "harassment"
	FlagReasonHateSpeech     = "hate_speech"
	FlagReasonViolence       = "violence"
	FlagReasonAdultContent   = "adult_content"
	FlagReasonMisinformation = "misinformation"
	FlagReasonCopyright      = "copyright"
	FlagReasonPrivacy        = "privacy"
	FlagReasonOther          = "other"
)

// FlagUrgency константы срочности жалоб
const (
	FlagUrgencyLow    = "low"
	FlagUrgencyMedium = "medium"
	FlagUrgencyHigh   = "high"
)

// FlagStatus константы статусов жалоб
const (
	FlagStatusActive   = "active"
	FlagStatusResolved = "resolved"
)

// AppealType константы типов апелляций
const (
	AppealTypeFalsePositive      = "false_positive"
	AppealTypeContextMissing     = "context_missing"
	AppealTypePolicyDisagreement = "policy_disagreement"
	AppealTypeTechnicalError     = "technical_error"
	AppealTypeOther              = "other"
)

// AppealStatus константы статусов апелляций
const (
	AppealStatusPending  = "pending"
	AppealStatusApproved = "approved"
	AppealStatusRejected = "rejected"
)

// VotingStatus константы состояния голосования по апелляции
const (
	VotingStatusNotStarted = "not_started"
	VotingStatusInProgress = "in_progress"
	VotingStatusCompleted  = "completed"
)

// VoteDecision константы решений голоса
const (
	VoteDecisionApprove = "approve"
	VoteDecisionReject  = "reject"
)

// ResolvedBy константы источника финального решения
const (
	ResolvedByCommunityVote = "community_vote"
	ResolvedByExpiry        = "expiry"
)

// ValidContentTypes список валидных типов контента
var ValidContentTypes = map[string]struct{}{
	ContentTypePost:    {},
	ContentTypeComment: {},
	ContentTypeUser:    {},
	ContentTypeMessage: {},
}

// ValidFlagReasons список валидных причин жалоб
var ValidFlagReasons = map[string]struct{}{
	FlagReasonSpam:           {},
	FlagReasonHarassment:     {},
	FlagReasonHateSpeech:     {},
	FlagReasonViolence:       {},
	FlagReasonAdultContent:   {},
	FlagReasonMisinformation: {},
	FlagReasonCopyright:      {},
	FlagReasonPrivacy:        {},
	FlagReasonOther:          {},
}

// ValidFlagUrgencies список валидных уровней срочности
var ValidFlagUrgencies = map[string]struct{}{
	FlagUrgencyLow:    {},
	FlagUrgencyMedium: {},
	FlagUrgencyHigh:   {},
}

// ValidAppealTypes список валидных типов апелляций
var ValidAppealTypes = map[string]struct{}{
	AppealTypeFalsePositive:      {},
	AppealTypeContextMissing:     {},
	AppealTypePolicyDisagreement: {},
	AppealTypeTechnicalError:     {},
	AppealTypeOther:              {},
}

// ValidVoteDecisions список валидных решений голоса
var ValidVoteDecisions = map[string]struct{}{
	VoteDecisionApprove: {},
	VoteDecisionReject:  {},
}

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleUser:      {},
	RoleModerator: {},
	RoleAdmin:     {},
}
