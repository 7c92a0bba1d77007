package http

import (
	"bufio"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/jhoicas/Repuestos-api/internal/application/events"
)

// Intervalo del comentario keepalive: mantiene viva la conexión a través de
// proxies que cortan streams inactivos.
const keepaliveInterval = 30 * time.Second

// EventHandler expone el stream SSE de cambios de inventario.
type EventHandler struct {
	broadcaster *events.Broadcaster
}

// NewEventHandler construye el handler.
func NewEventHandler(broadcaster *events.Broadcaster) *EventHandler {
	return &EventHandler{broadcaster: broadcaster}
}

// Stream godoc
// @Summary      Stream de eventos (SSE)
// @Description  Mantiene abierta una conexión text/event-stream y envía los cambios de documentos y solicitudes. Entrega best-effort: un cliente que pierde eventos reconcilia consultando la proyección de stock.
// @Tags         events
// @Security     Bearer
// @Produce      text/event-stream
// @Success      200
// @Router       /api/events/stream [get]
func (h *EventHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	ch, cancel := h.broadcaster.Subscribe()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		connected := events.Event{
			Type:      events.TypeConnected,
			Data:      map[string]string{"message": "conectado al stream de inventario"},
			Timestamp: time.Now().UTC(),
		}
		if !writeEvent(w, connected) {
			return
		}

		ticker := time.NewTicker(keepaliveInterval)
		defer ticker.Stop()

		for {
			select {
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if !writeEvent(w, evt) {
					return
				}
			case <-ticker.C:
				// Comentario SSE: los clientes lo ignoran
				if _, err := w.WriteString(": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

// Status godoc
// @Summary      Estado del stream de eventos
// @Tags         events
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/events/status [get]
func (h *EventHandler) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"subscribers": h.broadcaster.SubscriberCount(),
	})
}

// writeEvent serializa y envía un evento; false si el cliente se desconectó.
func writeEvent(w *bufio.Writer, evt events.Event) bool {
	payload, err := evt.SSE()
	if err != nil {
		return true // evento no serializable: se omite, el stream sigue
	}
	if _, err := w.WriteString(payload); err != nil {
		return false
	}
	if err := w.Flush(); err != nil {
		return false
	}
	return true
}
