package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"crosschain-hub/internal/apperrors"
	"crosschain-hub/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// IdentityKey gin context key holding the authenticated caller address
const IdentityKey = "identity"

// respondWithError writes err using the status of its code. Errors without
// a code are logged and reported as internal.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		logrus.WithFields(logrus.Fields{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"error":  err.Error(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   string(apperrors.CodeUnknown),
			"message": "internal error",
		})
		return
	}

	c.JSON(appErr.Code.HTTPStatus(), gin.H{
		"success": false,
		"error":   string(appErr.Code),
		"kind":    string(appErr.Code.Kind()),
		"message": appErr.Message,
	})
}

// respondBadRequest reports a malformed body or parameter
func respondBadRequest(c *gin.Context, code apperrors.Code, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   string(code),
		"kind":    string(apperrors.KindValidation),
		"message": err.Error(),
	})
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// callerIdentity returns the address set by the auth middleware
func callerIdentity(c *gin.Context) (types.Address, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return types.Address{}, false
	}
	addr, ok := v.(types.Address)
	return addr, ok
}

// requireIdentity aborts with 401 when the request carries no identity
func requireIdentity(c *gin.Context) (types.Address, bool) {
	identity, ok := callerIdentity(c)
	if !ok {
		respondWithError(c, apperrors.ErrUnauthenticated)
		return types.Address{}, false
	}
	return identity, true
}

// addressParam parses a 0x hex path parameter
func addressParam(c *gin.Context, name string) (types.Address, bool) {
	addr, err := types.ParseAddress(c.Param(name))
	if err != nil {
		respondBadRequest(c, apperrors.CodeInvalidAddress, err)
		return types.Address{}, false
	}
	return addr, true
}

// pageParams reads page and page_size query values
func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

func respondPage(c *gin.Context, items interface{}, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
