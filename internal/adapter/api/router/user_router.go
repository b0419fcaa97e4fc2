package router

import (
	"userhub/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
)

func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler) {
	users := e.Group("/user")

	users.POST("/create", userHandler.CreateUser)
	users.GET("/get/user_id=:user_id", userHandler.GetUser)
	users.POST("/update/user_id=:user_id", userHandler.UpdateUser)
	users.DELETE("/delete/user_id=:user_id", userHandler.DeleteUser)
	users.GET("/search", userHandler.SearchUsers)

	users.POST("/new_user_image/user_id=:user_id", userHandler.UploadProfileImage)
	users.DELETE("/delete_user_image/path=*", userHandler.DeleteProfileImage)
}
