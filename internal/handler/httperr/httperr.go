package httperr

import (
	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int    `json:"-"`
	Code   string `json:"code,omitempty"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// AbortWithError records the original error on the context for monitoring and
// writes the public response body.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	abort(c, status, "", err, msg, detail)
}

// AbortWithCode additionally tags the body with a machine-readable code.
// Remote listing clients dispatch on it; the message is for humans only.
func AbortWithCode(c *gin.Context, status int, code string, err error, msg string) {
	abort(c, status, code, err, msg, nil)
}

func abort(c *gin.Context, status int, code string, err error, msg string, detail any) {
	if err == nil {
		panic("httperr: err cannot be nil")
	}

	resp := Response{Status: status, Code: code}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
