package handler

import (
	"aura-support-be/internal/pkg/logger"
	"aura-support-be/internal/pkg/serverutils"
	internalWS "aura-support-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EscalationHandler serves the live hand-off feed for support staff.
type EscalationHandler struct {
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewEscalationHandler(hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *EscalationHandler {
	return &EscalationHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (h *EscalationHandler) RegisterRoutes(api fiber.Router) {
	api.Get("/support/escalations/ws", h.ServeWs)
	api.Get("/support/escalations/status", serverutils.NewJwtMiddleware(h.jwtSecret), h.Status)
}

// ServeWs authenticates the staff member and upgrades the connection.
// Browsers cannot set headers on a websocket handshake, so the token may
// also come from the "token" query parameter.
func (h *EscalationHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		tokenStr = serverutils.BearerToken(c)
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing token (Query 'token' or Header 'Authorization')"))
	}

	staffID, err := serverutils.ParseStaffToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("EscalationHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid token"))
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("EscalationHandler", "Starting WebSocket session", map[string]interface{}{"staff_id": staffID})
		h.hub.Serve(conn, staffID)
		h.logger.Info("EscalationHandler", "WebSocket session ended", map[string]interface{}{"staff_id": staffID})
	})(c)
}

// Status reports how many staff consoles this instance is feeding.
func (h *EscalationHandler) Status(c *fiber.Ctx) error {
	return c.JSON(serverutils.SuccessResponse("Escalation feed status", fiber.Map{
		"connected_staff": h.hub.ClientCount(),
	}))
}
