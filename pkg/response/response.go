package response

import "github.com/gin-gonic/gin"

// The API speaks a deliberately small wire format: successful endpoints
// return their own payloads, every failure is {"message": <string>} and
// validation failures carry the field-keyed error map as the message.

// Message writes {"message": msg} with the given status.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// ValidationError writes the field-keyed error map as the message with 422.
func ValidationError(c *gin.Context, details map[string]string) {
	c.JSON(422, gin.H{"message": details})
}
