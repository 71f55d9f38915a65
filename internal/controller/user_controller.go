package controller

import (
	"qr-health-be/internal/pkg/serverutils"
	"qr-health-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Me(ctx *fiber.Ctx) error
}

type userController struct {
	authService service.IAuthService
}

func NewUserController(authService service.IAuthService) IUserController {
	return &userController{
		authService: authService,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("me", c.Me)
}

func (c *userController) Me(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	res, err := c.authService.Me(ctx.Context(), userId)
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get profile", res))
}
