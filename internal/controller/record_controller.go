package controller

import (
	"errors"

	"qr-health-be/internal/dto"
	"qr-health-be/internal/pkg/serverutils"
	"qr-health-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IRecordController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Index(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Dashboard(ctx *fiber.Ctx) error
}

type recordController struct {
	recordService service.IRecordService
}

func NewRecordController(recordService service.IRecordService) IRecordController {
	return &recordController{
		recordService: recordService,
	}
}

func (c *recordController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/record/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Create)
	h.Get("", c.Index)
	h.Get(":id", c.Show)
	h.Delete(":id", c.Delete)

	d := r.Group("/dashboard/v1")
	d.Use(serverutils.JwtMiddleware)
	d.Get("", c.Dashboard)
}

func (c *recordController) Create(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateRecordRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	// Attachment is optional; metadata-only records are fine.
	var file *service.RecordFile
	if fileHeader, err := ctx.FormFile("file"); err == nil && fileHeader != nil {
		opened, err := fileHeader.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unreadable file upload")
		}
		defer opened.Close()

		file = &service.RecordFile{
			Name:        fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
			Body:        opened,
		}
	}

	res, err := c.recordService.CreateRecord(ctx.Context(), userId, &req, file)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create record", res))
}

func (c *recordController) Index(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	recordType := ctx.Query("record_type")

	res, err := c.recordService.GetAllRecords(ctx.Context(), userId, recordType)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get records", res))
}

func (c *recordController) Show(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	recordId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	res, err := c.recordService.GetRecord(ctx.Context(), userId, recordId)
	if err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get record", res))
}

func (c *recordController) Delete(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	recordId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid record id")
	}

	if err := c.recordService.DeleteRecord(ctx.Context(), userId, recordId); err != nil {
		if errors.Is(err, service.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete record", nil))
}

func (c *recordController) Dashboard(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIdFromCtx(ctx)
	if err != nil {
		return err
	}

	res, err := c.recordService.Dashboard(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get dashboard", res))
}
