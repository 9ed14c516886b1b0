package domain

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrBankAccountNotFound  = errors.New("bank account not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrEmailTaken           = errors.New("email already in use")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserInactive         = errors.New("user is inactive")
	ErrTokenRevoked         = errors.New("refresh token revoked")
	ErrTokenExpired         = errors.New("refresh token expired")
	ErrLoginThrottled       = errors.New("too many login attempts")
	ErrAccessDenied         = errors.New("access denied")

	ErrUnknownRole             = errors.New("unknown role")
	ErrOrganizationNameMissing = errors.New("organization name is required")
	ErrDocumentTooLarge        = errors.New("document exceeds size limit")
	ErrDocumentTypeForbidden   = errors.New("document type not allowed")
)
