package controller

import (
	"errors"

	"atlas-be/internal/pkg/serverutils"
	"atlas-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	FastSpring(ctx *fiber.Ctx) error
	Paddle(ctx *fiber.Ctx) error
	MailerLite(ctx *fiber.Ctx) error
	GetSubscription(ctx *fiber.Ctx) error
}

type webhookController struct {
	billingService service.IBillingService
	mailService    service.IMailService
}

func NewWebhookController(billingService service.IBillingService, mailService service.IMailService) IWebhookController {
	return &webhookController{
		billingService: billingService,
		mailService:    mailService,
	}
}

func (c *webhookController) RegisterRoutes(r fiber.Router) {
	// Webhooks are public routes. Authenticity comes from the
	// per-provider signature over the raw body, not from a JWT.
	h := r.Group("/webhooks")
	h.Post("/fastspring", c.FastSpring)
	h.Post("/paddle", c.Paddle)
	h.Post("/mailerlite", c.MailerLite)

	b := r.Group("/billing")
	b.Use(serverutils.JwtMiddleware)
	b.Get("/status", c.GetSubscription)
}

func (c *webhookController) FastSpring(ctx *fiber.Ctx) error {
	err := c.billingService.HandleFastSpring(ctx.Context(), ctx.Body(), ctx.Get("X-FS-Signature"))
	return webhookResult(ctx, err)
}

func (c *webhookController) Paddle(ctx *fiber.Ctx) error {
	err := c.billingService.HandlePaddle(ctx.Context(), ctx.Body(), ctx.Get("Paddle-Signature"))
	return webhookResult(ctx, err)
}

func (c *webhookController) MailerLite(ctx *fiber.Ctx) error {
	err := c.mailService.HandleMailerLite(ctx.Context(), ctx.Body(), ctx.Get("Signature"))
	return webhookResult(ctx, err)
}

func (c *webhookController) GetSubscription(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	res, err := c.billingService.GetSubscription(ctx.Context(), profileId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Subscription", res))
}

func webhookResult(ctx *fiber.Ctx, err error) error {
	if err != nil {
		if errors.Is(err, service.ErrInvalidSignature) {
			return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid signature"))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Webhook processed", nil))
}
