package controller

import (
	"mongolens-be/internal/dto"
	"mongolens-be/internal/pkg/serverutils"
	"mongolens-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IConnectionController interface {
	RegisterRoutes(r fiber.Router)
	Connect(ctx *fiber.Ctx) error
	Disconnect(ctx *fiber.Ctx) error
	CancelAttempt(ctx *fiber.Ctx) error
}

type connectionController struct {
	service service.ISessionService
}

func NewConnectionController(service service.ISessionService) IConnectionController {
	return &connectionController{service: service}
}

func (c *connectionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/connection/v1")
	h.Post("/connect", c.Connect)
	h.Post("/disconnect", c.Disconnect)
	h.Post("/cancel", c.CancelAttempt)
}

func (c *connectionController) Connect(ctx *fiber.Ctx) error {
	var req dto.ConnectRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Connect(ctx.Context(), req.ConnectionId, req.AttemptId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Connected", res))
}

func (c *connectionController) Disconnect(ctx *fiber.Ctx) error {
	if err := c.service.Disconnect(ctx.Context()); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Disconnected", nil))
}

func (c *connectionController) CancelAttempt(ctx *fiber.Ctx) error {
	var req dto.CancelAttemptRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	cancelled := c.service.CancelConnectionAttempt(req.AttemptId)
	return ctx.JSON(serverutils.SuccessResponse("Cancel attempt", dto.CancelResponse{Success: cancelled}))
}
