package dto

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SuccessResponse wraps every successful payload.
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func Success(data interface{}) SuccessResponse {
	return SuccessResponse{Status: StatusSuccess, Data: data}
}

func Error(message string) ErrorResponse {
	return ErrorResponse{Status: StatusError, Message: message}
}

// MessageData is the payload of endpoints that only confirm an action.
type MessageData struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
