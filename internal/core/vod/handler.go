package vod

import (
	"bytes"
	"context"
	"errors"
	"time"

	"vodcrawler/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// CatalogService is what the HTTP handler needs from the catalog.
type CatalogService interface {
	List(ctx context.Context) ([]Vod, error)
	Get(ctx context.Context, id string) (*Vod, error)
	Create(ctx context.Context, in VodCreate) (*Vod, error)
	Update(ctx context.Context, id string, in VodUpdate) (*Vod, error)
	Delete(ctx context.Context, id string) error
	ExportXLSX(ctx context.Context) (*bytes.Buffer, error)
}

type Handler struct {
	service CatalogService
	log     *logger.Logger
}

func NewHandler(service CatalogService) *Handler {
	return &Handler{service: service, log: logger.New("VodHandler")}
}

// Register mounts the catalog routes on r.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/vods", h.HandleList)
	r.Get("/vods/export", h.HandleExport)
	r.Get("/vods/:id", h.HandleGet)
	r.Post("/vods", h.HandleCreate)
	r.Put("/vods/:id", h.HandleUpdate)
	r.Delete("/vods/:id", h.HandleDelete)
}

func (h *Handler) HandleList(c *fiber.Ctx) error {
	vods, err := h.service.List(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(vods)
}

func (h *Handler) HandleGet(c *fiber.Ctx) error {
	v, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	var in VodCreate
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	v, err := h.service.Create(c.UserContext(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

func (h *Handler) HandleUpdate(c *fiber.Ctx) error {
	var in VodUpdate
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	v, err := h.service.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(v)
}

func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) HandleExport(c *fiber.Ctx) error {
	buf, err := h.service.ExportXLSX(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	name := "vods-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	return c.Send(buf.Bytes())
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrNotFound.Error()})
	case errors.Is(err, ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrValidation):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	default:
		h.log.LogError("catalog request failed", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
