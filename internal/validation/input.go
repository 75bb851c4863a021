package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinFlagDetailsLength       = 0
	MaxFlagDetailsLength       = 1000
	MinAppealReasonLength      = 10
	MaxAppealReasonLength      = 200
	MinStatementLength         = 20
	MaxStatementLength         = 2000
	MaxAdditionalDetailsLength = 1000
	MaxEvidenceURLs            = 5
	MaxEvidenceURLLength       = 500
	MinVoteReasoningLength     = 10
	MaxVoteReasoningLength     = 500
	MinConfidence              = 1
	MaxConfidence              = 10
	MinUsernameLength          = 3
	MaxUsernameLength          = 30
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateFlagDetails проверяет дополнительное описание жалобы.
func ValidateFlagDetails(details *string) error {
	if details != nil && *details != "" {
		d := strings.TrimSpace(*details)
		if err := ValidateLength("описание жалобы", d, MinFlagDetailsLength, MaxFlagDetailsLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAppealReason проверяет краткую причину апелляции.
func ValidateAppealReason(reason string) error {
	if err := ValidateNonEmpty("причина апелляции", reason); err != nil {
		return err
	}
	return ValidateLength("причина апелляции", strings.TrimSpace(reason), MinAppealReasonLength, MaxAppealReasonLength)
}

// ValidateUserStatement проверяет заявление пользователя в апелляции.
func ValidateUserStatement(statement string) error {
	if err := ValidateNonEmpty("заявление", statement); err != nil {
		return err
	}
	return ValidateLength("заявление", strings.TrimSpace(statement), MinStatementLength, MaxStatementLength)
}

// ValidateAdditionalDetails проверяет дополнительные детали апелляции.
func ValidateAdditionalDetails(details *string) error {
	if details != nil && *details != "" {
		d := strings.TrimSpace(*details)
		if err := ValidateLength("дополнительные детали", d, 0, MaxAdditionalDetailsLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEvidenceURLs проверяет список ссылок на доказательства.
func ValidateEvidenceURLs(urls []string) error {
	if len(urls) > MaxEvidenceURLs {
		return fmt.Errorf("количество ссылок на доказательства не может превышать %d", MaxEvidenceURLs)
	}

	for _, raw := range urls {
		link := strings.TrimSpace(raw)
		if link == "" {
			return fmt.Errorf("ссылка на доказательство не может быть пустой")
		}

		if err := ValidateLength("ссылка на доказательство", link, 0, MaxEvidenceURLLength); err != nil {
			return err
		}

		parsed, err := url.Parse(link)
		if err != nil {
			return fmt.Errorf("некорректный формат URL")
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("ссылка должна начинаться с http:// или https://")
		}
		if parsed.Host == "" && !strings.HasPrefix(parsed.Path, "/") {
			return fmt.Errorf("ссылка должна содержать доменное имя")
		}
	}

	return nil
}

// ValidateConfidence проверяет уверенность голосующего.
func ValidateConfidence(confidence int) error {
	if confidence < MinConfidence || confidence > MaxConfidence {
		return fmt.Errorf("уверенность должна быть от %d до %d", MinConfidence, MaxConfidence)
	}
	return nil
}

// ValidateVoteReasoning проверяет обоснование голоса.
func ValidateVoteReasoning(reasoning string) error {
	if err := ValidateNonEmpty("обоснование голоса", reasoning); err != nil {
		return err
	}
	return ValidateLength("обоснование голоса", strings.TrimSpace(reasoning), MinVoteReasoningLength, MaxVoteReasoningLength)
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}
	return ValidateLength("имя пользователя", strings.TrimSpace(username), MinUsernameLength, MaxUsernameLength)
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	if len(parts[0]) == 0 || len(parts[0]) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(parts[1]) == 0 || len(parts[1]) > 255 || !strings.Contains(parts[1], ".") {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}
