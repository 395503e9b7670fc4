package utils

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
}

func JSONResponse(w http.ResponseWriter, statusCode int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func SuccessResponse(w http.ResponseWriter, statusCode int, data interface{}, message string) {
	JSONResponse(w, statusCode, Response{Success: true, Data: data, Message: message})
}

func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, Response{Success: false, Message: message})
}

// CodedErrorResponse renders a business-rule failure with its stable code so
// staff clients can branch without string-matching messages.
func CodedErrorResponse(w http.ResponseWriter, statusCode int, message, errorCode string) {
	JSONResponse(w, statusCode, Response{Success: false, Message: message, ErrorCode: errorCode})
}
