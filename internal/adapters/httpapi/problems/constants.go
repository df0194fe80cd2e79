package problems

const (
	ContentTypeProblemJSON    = "application/problem+json"
	StatusClientClosedRequest = 499

	ProblemTypeValidation  = "validation_error"
	ProblemTypeInvalidJSON = "invalid_json"
	ProblemTypeNotFound    = "about:blank"
	ProblemTypeConflict    = "conflict"
	ProblemTypeForbidden   = "forbidden"
	ProblemTypeUnavailable = "unavailable"
	ProblemTypeTimeout     = "timeout"
	ProblemTypeInternal    = "internal_error"
	ProblemTypeCanceled    = "client_cancelled"

	TitleBadRequest         = "Bad Request"
	TitleValidation         = "Validation error"
	TitleConflict           = "Conflict"
	TitleForbidden          = "Forbidden"
	TitleNotFound           = "Not Found"
	TitleServiceUnavailable = "Service Unavailable"
	TitleGatewayTimeout     = "Gateway Timeout"
	TitleRequestCanceled    = "Request Canceled"
	TitleInternalError      = "Internal Server Error"

	DetailInvalidURL          = "invalid target_url"
	DetailInvalidCode         = "invalid code"
	DetailInvalidJSON         = "invalid json"
	DetailCodeConflict        = "code already exists"
	DetailNotFound            = "not found"
	DetailForbidden           = "owner token mismatch"
	DetailGenerationExhausted = "could not allocate a unique code"
	DetailTimeout             = "timeout"
	DetailRequestCanceled     = "request canceled"
	DetailInternalError       = "internal error"
	DetailMissingOwnerToken   = "missing owner token"
)
