package controller

import (
	"atlas-be/internal/dto"
	"atlas-be/internal/pkg/serverutils"
	"atlas-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IOpsController interface {
	RegisterRoutes(r fiber.Router)
	RetryUploads(ctx *fiber.Ctx) error
	BillingCycle(ctx *fiber.Ctx) error
	EscalationMonitor(ctx *fiber.Ctx) error
	Escalations(ctx *fiber.Ctx) error
	SendWelcome(ctx *fiber.Ctx) error
	AlertProxy(ctx *fiber.Ctx) error
	CicdAlert(ctx *fiber.Ctx) error
	SocialRecent(ctx *fiber.Ctx) error
}

type opsController struct {
	opsService     service.IOpsService
	billingService service.IBillingService
	mailService    service.IMailService
	serviceToken   string
}

func NewOpsController(
	opsService service.IOpsService,
	billingService service.IBillingService,
	mailService service.IMailService,
	serviceToken string,
) IOpsController {
	return &opsController{
		opsService:     opsService,
		billingService: billingService,
		mailService:    mailService,
		serviceToken:   serviceToken,
	}
}

func (c *opsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ops")
	h.Use(serverutils.ServiceTokenMiddleware(c.serviceToken))
	h.Post("/retry-uploads", c.RetryUploads)
	h.Post("/billing-cycle", c.BillingCycle)
	h.Post("/escalation-monitor", c.EscalationMonitor)
	h.Get("/escalations", c.Escalations)
	h.Post("/send-welcome", c.SendWelcome)
	h.Post("/alert-proxy", c.AlertProxy)
	h.Post("/cicd-alert", c.CicdAlert)

	social := r.Group("/social")
	social.Use(serverutils.ServiceTokenMiddleware(c.serviceToken))
	social.Get("/recent", c.SocialRecent)
}

func (c *opsController) RetryUploads(ctx *fiber.Ctx) error {
	res, err := c.opsService.RetryFailedUploads(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Retry uploads enqueued", res))
}

func (c *opsController) BillingCycle(ctx *fiber.Ctx) error {
	res, err := c.billingService.RunBillingCycle(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Billing cycle complete", res))
}

func (c *opsController) EscalationMonitor(ctx *fiber.Ctx) error {
	res, err := c.opsService.RunEscalationMonitor(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Escalation scan complete", res))
}

func (c *opsController) Escalations(ctx *fiber.Ctx) error {
	res, err := c.opsService.RecentEscalations(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Escalations", res))
}

func (c *opsController) SendWelcome(ctx *fiber.Ctx) error {
	var req dto.SendWelcomeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.mailService.SendWelcome(ctx.Context(), &req); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Welcome email sent", nil))
}

func (c *opsController) AlertProxy(ctx *fiber.Ctx) error {
	var req dto.AlertProxyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.opsService.AlertProxy(ctx.Context(), &req); err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Alert forwarded", nil))
}

func (c *opsController) CicdAlert(ctx *fiber.Ctx) error {
	var req dto.CicdAlertRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.opsService.CicdAlert(ctx.Context(), &req); err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Pipeline alert forwarded", nil))
}

func (c *opsController) SocialRecent(ctx *fiber.Ctx) error {
	res, err := c.opsService.SocialRecent(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Recent posts", res))
}
