package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"property-service/internal/services"
)

// ErrorResponse sends a standardized error response
// Internal errors are logged but not exposed to clients
func ErrorResponse(c *gin.Context, statusCode int, message string, err error) {
	requestID := getRequestID(c)

	// Log internal error details
	if err != nil {
		log.Printf("[ERROR] [%s] %s: %v", requestID, message, err)
	}

	// Send user-friendly response (don't expose internal errors)
	response := gin.H{
		"success":    false,
		"message":    message,
		"request_id": requestID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	// Only include error details in development mode
	if gin.Mode() == gin.DebugMode && err != nil {
		response["error_details"] = err.Error()
	}

	c.JSON(statusCode, response)
}

// SuccessResponse sends a standardized success response
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	requestID := getRequestID(c)

	response := gin.H{
		"success":    true,
		"message":    message,
		"request_id": requestID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}

	if data != nil {
		response["data"] = data
	}

	c.JSON(statusCode, response)
}

// ServiceErrorResponse maps a typed service error to its HTTP status.
// Anything unrecognized is a 500 with the details kept server-side.
func ServiceErrorResponse(c *gin.Context, err error) {
	if validationErr, ok := services.IsValidationError(err); ok {
		requestID := getRequestID(c)
		response := gin.H{
			"success":    false,
			"message":    "Validation failed",
			"errors":     map[string]string{validationErr.Field: validationErr.Message},
			"request_id": requestID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
		}
		if len(validationErr.Suggestions) > 0 {
			response["suggestions"] = validationErr.Suggestions
		}
		c.JSON(http.StatusBadRequest, response)
		return
	}
	if conflictErr, ok := services.IsConflictError(err); ok {
		ErrorResponse(c, http.StatusConflict, conflictErr.Message, nil)
		return
	}
	if notFoundErr, ok := services.IsNotFoundError(err); ok {
		ErrorResponse(c, http.StatusNotFound, notFoundErr.Message, nil)
		return
	}
	if forbiddenErr, ok := services.IsForbiddenError(err); ok {
		ErrorResponse(c, http.StatusForbidden, forbiddenErr.Message, nil)
		return
	}
	ErrorResponse(c, http.StatusInternalServerError, "Internal server error", err)
}

// getRequestID retrieves or generates a request ID
func getRequestID(c *gin.Context) string {
	// Check if request ID was set by middleware
	if requestID, exists := c.Get("request_id"); exists {
		return requestID.(string)
	}
	// Fallback to X-Request-ID header
	if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
		return requestID
	}
	return time.Now().Format("20060102150405")
}
