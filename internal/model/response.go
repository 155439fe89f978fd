package model

type Response struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewResponse(message string, data interface{}) Response {
	return Response{
		Message: message,
		Data:    data,
	}
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
