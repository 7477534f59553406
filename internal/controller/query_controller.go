package controller

import (
	"mongolens-be/internal/dto"
	"mongolens-be/internal/pkg/serverutils"
	"mongolens-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Collections(ctx *fiber.Ctx) error
	Documents(ctx *fiber.Ctx) error
	AllDocuments(ctx *fiber.Ctx) error
	Count(ctx *fiber.Ctx) error
	Schema(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
}

type queryController struct {
	service service.IQueryService
}

func NewQueryController(service service.IQueryService) IQueryController {
	return &queryController{service: service}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/query/v1")
	h.Get("/collections", c.Collections)
	h.Post("/documents", c.Documents)
	h.Post("/documents/all", c.AllDocuments)
	h.Post("/count", c.Count)
	h.Get("/schema/:collection", c.Schema)
	h.Post("/cancel", c.Cancel)
}

func (c *queryController) Collections(ctx *fiber.Ctx) error {
	res, err := c.service.ListCollections(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Collections", res))
}

func (c *queryController) Documents(ctx *fiber.Ctx) error {
	var req dto.DocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetDocuments(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Documents", res))
}

func (c *queryController) AllDocuments(ctx *fiber.Ctx) error {
	var req dto.AllDocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetAllDocuments(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Documents", res))
}

func (c *queryController) Count(ctx *fiber.Ctx) error {
	var req dto.CountRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.GetDocumentCount(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Document count", res))
}

func (c *queryController) Schema(ctx *fiber.Ctx) error {
	collection := ctx.Params("collection")
	if collection == "" {
		return fiber.NewError(fiber.StatusBadRequest, "collection is required")
	}

	res, err := c.service.GetSchemaAndSamples(ctx.Context(), collection)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Schema", res))
}

func (c *queryController) Cancel(ctx *fiber.Ctx) error {
	var req dto.CancelQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	cancelled := c.service.CancelQuery(req.QueryId)
	return ctx.JSON(serverutils.SuccessResponse("Cancel query", dto.CancelResponse{Success: cancelled}))
}
