package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/careercoach/internal/interview"
	"github.com/yoockh/careercoach/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

func requireUserID(c *gin.Context) (string, bool) {
	if v, ok := c.Get("user_id"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}

	writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
	return "", false
}

// requireSession resolves :id to a session owned by the caller.
func requireSession(c *gin.Context, reg *interview.Registry) (*interview.Orchestrator, bool) {
	userID, ok := requireUserID(c)
	if !ok {
		return nil, false
	}
	o, err := reg.Get(c.Param("id"), userID)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return o, true
}

// writeState answers with the snapshot, or with the error when the action was refused.
func writeState(c *gin.Context, s interview.Snapshot, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
