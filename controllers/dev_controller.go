package controllers

import (
	"net/http"
	"strconv"

	"mealplanner/utils"

	"github.com/gin-gonic/gin"
)

// MintToken issues a short-lived JWT for a user id. Local development
// only; the real deployment gets tokens from the identity provider in
// front of this service.
func MintToken(c *gin.Context) {
	uid, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	token, err := utils.GenerateJWT(uint(uid))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
