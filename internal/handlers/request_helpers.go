package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success":    false,
			"statusCode": http.StatusInternalServerError,
			"message":    "internal server error",
		})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

// respondWithError writes the uniform failure envelope and aborts.
func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{
		"success":    false,
		"statusCode": status,
		"message":    message,
	})
}

// respondWithData writes the uniform success envelope.
func respondWithData(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{
		"success":    true,
		"statusCode": status,
		"message":    message,
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

// currentUserID reads the userId set by the auth middleware.
func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("userId")
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok
}

// currentRole reads the role set by the auth middleware, defaulting to
// the plain user role.
func currentRole(c *gin.Context) string {
	value, exists := c.Get("role")
	if !exists {
		return "user"
	}
	role, ok := value.(string)
	if !ok || role == "" {
		return "user"
	}
	return role
}
