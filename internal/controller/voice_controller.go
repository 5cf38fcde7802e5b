package controller

import (
	"errors"
	"io"

	"atlas-be/internal/dto"
	"atlas-be/internal/pkg/serverutils"
	"atlas-be/internal/service"
	"atlas-be/pkg/voice"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IVoiceController interface {
	RegisterRoutes(r fiber.Router)
	Transcribe(ctx *fiber.Ctx) error
	Speak(ctx *fiber.Ctx) error
	VoiceChat(ctx *fiber.Ctx) error
	StartCall(ctx *fiber.Ctx) error
	Heartbeat(ctx *fiber.Ctx) error
	EndCall(ctx *fiber.Ctx) error
}

type voiceController struct {
	service service.IVoiceService
}

func NewVoiceController(voiceService service.IVoiceService) IVoiceController {
	return &voiceController{service: voiceService}
}

func (c *voiceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/voice")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/stt", c.Transcribe)
	h.Post("/tts", c.Speak)
	h.Post("/chat/:conversationId", c.VoiceChat)
	h.Post("/call", c.StartCall)
	h.Post("/call/heartbeat", c.Heartbeat)
	h.Delete("/call", c.EndCall)
}

// readAudio accepts either a multipart upload under the "audio" field or
// the raw request body with its Content-Type.
func readAudio(ctx *fiber.Ctx) ([]byte, string, error) {
	if file, err := ctx.FormFile("audio"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()

		buf, err := io.ReadAll(f)
		if err != nil {
			return nil, "", err
		}
		mime := file.Header.Get("Content-Type")
		if mime == "" {
			mime = "audio/wav"
		}
		return buf, mime, nil
	}

	body := ctx.Body()
	if len(body) == 0 {
		return nil, "", errors.New("empty audio payload")
	}
	mime := ctx.Get("Content-Type")
	if mime == "" {
		mime = "audio/wav"
	}
	return body, mime, nil
}

func (c *voiceController) Transcribe(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	audio, mime, err := readAudio(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Transcribe(ctx.Context(), profileId, audio, mime)
	if err != nil {
		if errors.Is(err, voice.ErrZeroConfidence) {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(422, "Could not recognize any speech"))
		}
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcript", res))
}

func (c *voiceController) Speak(ctx *fiber.Ctx) error {
	var req dto.SpeakRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	audio, mime, err := c.service.Speak(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}

	ctx.Set("Content-Type", mime)
	return ctx.Send(audio)
}

func (c *voiceController) VoiceChat(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	conversationId, err := uuid.Parse(ctx.Params("conversationId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid conversation id"))
	}

	audio, mime, err := readAudio(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.VoiceChat(ctx.Context(), profileId, conversationId, audio, mime)
	if err != nil {
		if errors.Is(err, voice.ErrZeroConfidence) {
			return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(422, "Could not recognize any speech"))
		}
		if errors.Is(err, service.ErrRateLimited) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(serverutils.ErrorResponse(429, err.Error()))
		}
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Voice chat response", res))
}

func (c *voiceController) StartCall(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	res, err := c.service.StartCall(ctx.Context(), profileId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Call started", res))
}

func (c *voiceController) Heartbeat(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	var req dto.EndCallRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.service.Heartbeat(ctx.Context(), profileId, req.CallId); err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Heartbeat accepted", nil))
}

func (c *voiceController) EndCall(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	var req dto.EndCallRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	if err := c.service.EndCall(ctx.Context(), profileId, req.CallId); err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Call ended", nil))
}
