package global

// The storefront client expects flat JSON bodies: errors as {"error": msg} and
// successes as {"message": msg, ...extra}.

type ErrorBody struct {
	Error string `json:"error"`
}

func ErrorResponse(message string) ErrorBody {
	return ErrorBody{Error: message}
}

func MessageResponse(message string, extra map[string]any) map[string]any {
	body := map[string]any{"message": message}
	for k, v := range extra {
		body[k] = v
	}
	return body
}
