package response

// The wire format is kept compatible with the browser frontend: single errors
// are {"error": msg}, validation failures are a flat field->message map, and
// success bodies carry "success": true plus an optional redirect hint for
// form callers.

// H is a free-form JSON body.
type H map[string]interface{}

// Err wraps a single error message.
func Err(msg string) H {
	return H{"error": msg}
}

// Fields renders a multi-field validation failure keyed by field name.
func Fields(fields map[string]string) H {
	body := make(H, len(fields))
	for k, v := range fields {
		body[k] = v
	}
	return body
}

// Success builds a success body, merging in any extra fields.
func Success(message string, extra H) H {
	body := H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

// Redirect builds a success body with a redirect hint for browser-form callers.
func Redirect(message, target string, extra H) H {
	body := Success(message, extra)
	body["redirect"] = target
	return body
}
