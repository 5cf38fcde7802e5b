package controller

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"

	"atlas-be/internal/dto"
	"atlas-be/internal/pkg/serverutils"
	"atlas-be/internal/service"
	"atlas-be/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// tokenFrameSize is the rune count per SSE token event. Small enough to
// look incremental on the client, large enough to keep frame overhead down.
const tokenFrameSize = 40

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateConversation(ctx *fiber.Ctx) error
	GetConversations(ctx *fiber.Ctx) error
	DeleteConversation(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	StreamChat(ctx *fiber.Ctx) error
	UploadMessages(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{service: chatService}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversations")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/", c.CreateConversation)
	h.Get("/", c.GetConversations)
	h.Delete("/:id", c.DeleteConversation)
	h.Get("/:id/messages", c.GetHistory)
	h.Post("/upload", c.UploadMessages)

	chat := r.Group("/chat")
	chat.Use(serverutils.JwtMiddleware)
	chat.Post("/", c.SendChat)
	// EventSource clients can only GET, everything else POSTs.
	chat.Get("/stream", c.StreamChat)
	chat.Post("/stream", c.StreamChat)
}

func (c *chatController) CreateConversation(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	var req dto.CreateConversationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.CreateConversation(ctx.Context(), profileId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Conversation created", res))
}

func (c *chatController) GetConversations(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	res, err := c.service.GetConversations(ctx.Context(), profileId)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Conversations", res))
}

func (c *chatController) DeleteConversation(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid conversation id"))
	}

	if err := c.service.DeleteConversation(ctx.Context(), profileId, conversationId); err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Conversation deleted", nil))
}

func (c *chatController) GetHistory(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	conversationId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid conversation id"))
	}

	res, err := c.service.GetHistory(ctx.Context(), profileId, conversationId)
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Messages", res))
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.SendChat(ctx.Context(), profileId, &req)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(serverutils.ErrorResponse(429, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat response", res))
}

// StreamChat answers the prompt over Server-Sent Events. The reply arrives
// as a "start" event, a run of fixed-size "token" events, a "done" event
// carrying the full response, then "end".
func (c *chatController) StreamChat(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	var req dto.SendChatRequest
	if ctx.Method() == fiber.MethodGet {
		req.ConversationId, _ = uuid.Parse(ctx.Query("conversation_id"))
		req.MessageId, _ = uuid.Parse(ctx.Query("message_id"))
		req.Content = ctx.Query("content")
	} else if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		writeSSE(w, "start", map[string]any{"conversation_id": req.ConversationId})

		res, err := c.service.StreamChat(ctx.Context(), profileId, &req, func(delta string) {
			for _, frame := range utils.ChunkText(delta, tokenFrameSize) {
				writeSSE(w, "token", map[string]any{"text": frame})
			}
		})
		if err != nil {
			writeSSE(w, "error", map[string]any{"message": err.Error()})
			writeSSE(w, "end", nil)
			return
		}

		writeSSE(w, "done", res)
		writeSSE(w, "end", nil)
	}))
	return nil
}

func (c *chatController) UploadMessages(ctx *fiber.Ctx) error {
	profileId := profileIdFromLocals(ctx)

	var req dto.UploadMessagesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.UploadMessages(ctx.Context(), profileId, &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Messages uploaded", res))
}

func writeSSE(w *bufio.Writer, event string, payload any) {
	fmt.Fprintf(w, "event: %s\n", event)
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n", data)
	} else {
		fmt.Fprint(w, "data: {}\n")
	}
	fmt.Fprint(w, "\n")
	w.Flush()
}
