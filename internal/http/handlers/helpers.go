package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ankitsaini000/rwew-sub007/internal/http/handlers/common"
	"github.com/ankitsaini000/rwew-sub007/internal/pkg/apperror"
)

// respondAppError writes an application error with its own status and
// message; anything else is masked as an internal error.
func respondAppError(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// caller extracts the authenticated user id and role, responding 401 when
// either is missing.
func caller(c *gin.Context) (userID uuid.UUID, role string, ok bool) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return uuid.Nil, "", false
	}
	role, err = common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return uuid.Nil, "", false
	}
	return userID, role, true
}
