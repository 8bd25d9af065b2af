// Package response defines the JSON envelope every API endpoint replies with.
package response

import "github.com/gin-gonic/gin"

// Envelope is the wire shape of every API response.
type Envelope struct {
	Success      bool              `json:"success"`
	Data         any               `json:"data,omitempty"`
	ErrorCode    ErrCode           `json:"errorCode,omitempty"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	Fields       map[string]string `json:"fields,omitempty"`
	StatusCode   int               `json:"statusCode"`
}

// ────────────────────────────────────────────────────────────────────────────
// Helper builders
// ────────────────────────────────────────────────────────────────────────────

// Success sends a successful JSON response with the given status code and data.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, Envelope{
		Success:    true,
		Data:       data,
		StatusCode: statusCode,
	})
}

// Fail sends a failed response with the code's canonical message.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, Envelope{
		Success:      false,
		ErrorCode:    code,
		ErrorMessage: GetMessage(code),
		StatusCode:   statusCode,
	})
}

// FailWithFields sends a failed response carrying per-field validation detail.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, fields map[string]string) {
	c.JSON(statusCode, Envelope{
		Success:      false,
		ErrorCode:    code,
		ErrorMessage: GetMessage(code),
		Fields:       fields,
		StatusCode:   statusCode,
	})
}

// FailMessage sends a failed response with a custom message.
func FailMessage(c *gin.Context, statusCode int, code ErrCode, message string) {
	c.JSON(statusCode, Envelope{
		Success:      false,
		ErrorCode:    code,
		ErrorMessage: message,
		StatusCode:   statusCode,
	})
}

// AbortFail sends a failed response and stops the handler chain. Used from
// middleware.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, Envelope{
		Success:      false,
		ErrorCode:    code,
		ErrorMessage: GetMessage(code),
		StatusCode:   statusCode,
	})
}
