package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	errInternalServer    = "Internal server error"
	errBadRequest        = "Invalid request body"
	errUsernameRequired  = "Username is required"
	errInvalidUsername   = "Invalid username"
	errPinRequired       = "PIN needs to be set"
	errInvalidPin        = "PIN must be 4 digits"
	errIncorrectPin      = "Incorrect PIN"
	errNoToken           = "No token provided"
	errTokenInvalid      = "Invalid or expired token"
	errMissingField      = "URL and nickname are required"
	errInvalidBookmarkID = "Invalid URL ID"
	errInvalidRename     = "Invalid URL ID or nickname"
	errForbidden         = "Unauthorized"
	errCreateUser        = "Invalid or existing username"
	errUserNotFound      = "User not found"
	errSelfDelete        = "Cannot delete yourself"

	msgPinSet = "PIN set successfully"
)

// fail writes the common failure body.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
