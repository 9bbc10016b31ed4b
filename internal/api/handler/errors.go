package handler

// errorBody documents the error envelope rendered by the API error handler.
type errorBody struct {
	Error       string `json:"error" example:"authentication"`
	Reason      string `json:"reason" example:"incorrect_password"`
	Description string `json:"description" example:"The password provided is incorrect."`
	Message     string `json:"message,omitempty"`
}
