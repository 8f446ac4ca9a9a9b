package errors

// Error code constants, format CATEGORY_SPECIFIC_DETAIL. Clients map these
// codes to display messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzAdminOnly = "AUTHZ_ADMIN_ONLY"
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY"

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID     = "VALIDATION_INVALID_ID"
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT"
	ValidationRequired      = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== Configuration (CONFIG_) ====================
	ConfigSessionNotFound     = "CONFIG_SESSION_NOT_FOUND"
	ConfigSessionClosed       = "CONFIG_SESSION_CLOSED"
	ConfigTemplateNotFound    = "CONFIG_TEMPLATE_NOT_FOUND"
	ConfigProductNotFound     = "CONFIG_PRODUCT_NOT_FOUND"
	ConfigIllegalCombination  = "CONFIG_ILLEGAL_COMBINATION"
	ConfigMissingRequiredFile = "CONFIG_MISSING_REQUIRED_FILE"
	ConfigRequirementUnmet    = "CONFIG_REQUIREMENT_UNMET"
	ConfigMainNotDetachable   = "CONFIG_MAIN_NOT_DETACHABLE"

	// ==================== Leads (LEAD_) ====================
	LeadNotFound         = "LEAD_NOT_FOUND"
	LeadLineNotFound     = "LEAD_LINE_NOT_FOUND"
	LeadExportFailed     = "LEAD_EXPORT_FAILED"
	LeadSubmissionFailed = "LEAD_SUBMISSION_FAILED"

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"
)
