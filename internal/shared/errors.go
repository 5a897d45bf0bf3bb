package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidLineItem indicates a pricing input that fails validation.
	ErrInvalidLineItem = errors.New("invalid line item")
	// ErrTemplateNotFound indicates the referenced quotation template is missing.
	ErrTemplateNotFound = errors.New("template not found")
	// ErrCannotDeleteDefault guards against deleting an organisation's default template.
	ErrCannotDeleteDefault = errors.New("cannot delete default template")
	// ErrDefaultTemplateConflict signals a concurrent set-default race; callers should retry.
	ErrDefaultTemplateConflict = errors.New("default template conflict")
	// ErrTokenNotFound indicates no quotation matches the public access token.
	ErrTokenNotFound = errors.New("access token not found")
	// ErrQuotationExpired indicates the quotation's validity window has passed.
	ErrQuotationExpired = errors.New("quotation expired")
	// ErrInvalidTransition indicates a disallowed quotation status change.
	ErrInvalidTransition = errors.New("invalid status transition")
)
