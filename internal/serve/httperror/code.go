package httperror

const (
	Code400_0 = "400_0" // Invalid request body.
	Code429_0 = "429_0" // Rate limit exceeded.
	Code500_0 = "500_0" // An internal error occurred while processing this request.
	Code502_0 = "502_0" // The provider did not return a verification.
	Code502_1 = "502_1" // The provider did not approve the verification.
)
