package validator

import (
	"strings"

	"github.com/parley-chat/parley/internal/domain"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func ValidateGroup(name string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Group name is required")
	} else if len(name) > 100 {
		errs.Add("name", "Group name is too long")
	}

	return errs
}

func ValidateMessage(content string) ValidationErrors {
	errs := make(ValidationErrors)

	if content == "" {
		errs.Add("content", "Message content is required")
	} else if len(content) > 4000 {
		errs.Add("content", "Message content is too long")
	}

	return errs
}

func ValidateAttachment(ref, name, mimeType string) ValidationErrors {
	errs := make(ValidationErrors)

	if ref == "" {
		errs.Add("attachment_ref", "Attachment reference is required")
	}
	if strings.TrimSpace(name) == "" {
		errs.Add("attachment_name", "Attachment name is required")
	}
	if mimeType == "" {
		errs.Add("attachment_type", "Attachment MIME type is required")
	}

	return errs
}

func ValidateDisplayName(name string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("display_name", "Display name is required")
	} else if len(name) < 2 {
		errs.Add("display_name", "Display name must be at least 2 characters")
	} else if len(name) > 100 {
		errs.Add("display_name", "Display name is too long")
	}

	return errs
}

func ValidateStatus(status string) ValidationErrors {
	errs := make(ValidationErrors)

	if !domain.ValidStatus(status) {
		errs.Add("status", "Status must be online, offline, or away")
	}

	return errs
}
