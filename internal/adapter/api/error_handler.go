package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"userhub/pkg/response"
)

const NotFoundMessage = "Sorry, Nothing at this URL."

// HTTPErrorHandler renders errors that escape handlers: unknown routes get a
// plain-text 404, framework errors below 500 keep their status, and the rest
// go through response.Error.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code < http.StatusInternalServerError {
		if he.Code == http.StatusNotFound {
			err = c.String(http.StatusNotFound, NotFoundMessage)
		} else {
			err = c.JSON(he.Code, response.ErrorBody{Message: fmt.Sprint(he.Message)})
		}
	} else {
		err = response.Error(c, err)
	}

	if err != nil {
		c.Logger().Error(err)
	}
}
