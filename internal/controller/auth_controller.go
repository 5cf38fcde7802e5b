package controller

import (
	"atlas-be/internal/dto"
	"atlas-be/internal/pkg/serverutils"
	"atlas-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAuthController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Login(ctx *fiber.Ctx) error
	GetProfile(ctx *fiber.Ctx) error
	UpdateProfile(ctx *fiber.Ctx) error
	OAuthLogin(ctx *fiber.Ctx) error
	OAuthCallback(ctx *fiber.Ctx) error
}

type authController struct {
	service      service.IAuthService
	oauthService service.IOAuthService
}

func NewAuthController(authService service.IAuthService, oauthService service.IOAuthService) IAuthController {
	return &authController{
		service:      authService,
		oauthService: oauthService,
	}
}

func (c *authController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/auth")
	h.Post("/register", c.Register)
	h.Post("/login", c.Login)
	h.Get("/oauth/:provider", c.OAuthLogin)
	h.Get("/oauth/:provider/callback", c.OAuthCallback)

	p := r.Group("/profile")
	p.Use(serverutils.JwtMiddleware)
	p.Get("/", c.GetProfile)
	p.Put("/", c.UpdateProfile)
}

func (c *authController) Register(ctx *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Register(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Registered successfully", res))
}

func (c *authController) Login(ctx *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Login(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

func (c *authController) GetProfile(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	res, err := c.service.GetProfile(ctx.Context(), profileId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile", res))
}

func (c *authController) UpdateProfile(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	var req dto.UpdateProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.UpdateProfile(ctx.Context(), profileId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Profile updated", res))
}

func (c *authController) OAuthLogin(ctx *fiber.Ctx) error {
	url, err := c.oauthService.GetLoginURL(ctx.Params("provider"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.Redirect(url, fiber.StatusTemporaryRedirect)
}

func (c *authController) OAuthCallback(ctx *fiber.Ctx) error {
	code := ctx.Query("code")
	if code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Missing code"))
	}

	res, err := c.oauthService.HandleCallback(ctx.Context(), ctx.Params("provider"), code)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Login successful", res))
}

// profileIdFromLocals reads the id the JWT middleware stashed.
func profileIdFromLocals(ctx *fiber.Ctx) uuid.UUID {
	idStr, _ := ctx.Locals("user_id").(string)
	id, _ := uuid.Parse(idStr)
	return id
}
