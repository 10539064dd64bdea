package validator

import (
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

const MaxMessageLength = 2000

func ValidateMessageContent(content string) ValidationErrors {
	errs := make(ValidationErrors)

	content = strings.TrimSpace(content)
	if content == "" {
		errs.Add("content", "Message content is required")
	} else if len(content) > MaxMessageLength {
		errs.Add("content", "Message content is too long")
	}

	return errs
}

func ValidateCreateSwap(ownerID, requesterListingID, ownerListingID string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(ownerID) == "" {
		errs.Add("owner_id", "Owner is required")
	}
	if strings.TrimSpace(requesterListingID) == "" {
		errs.Add("requester_listing_id", "Requester listing is required")
	}
	if strings.TrimSpace(ownerListingID) == "" {
		errs.Add("owner_listing_id", "Owner listing is required")
	}

	return errs
}
