// Package events implementa el notificador de cambios: un broadcaster en memoria
// al que los clientes SSE se suscriben. La entrega es best-effort y como máximo
// una vez por suscriptor; un evento perdido no corrompe estado porque los
// clientes pueden reconciliar consultando la proyección de stock.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// Tipos de evento publicados.
const (
	TypeConnected           = "connected"
	TypeDocumentChanged     = "document_changed"
	TypeRequestItemCreated  = "request_item_created"
	TypeRequestItemSupplied = "request_item_supplied"
)

// Event es un evento a difundir a los suscriptores.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// SSE serializa el evento en formato Server-Sent Events.
func (e Event) SSE() (string, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("serializar evento: %w", err)
	}
	return fmt.Sprintf("data: %s\n\n", payload), nil
}

// DocumentEventData forma del evento por cambio de estado de un documento:
// se publica exactamente una vez por transición confirmada, nunca por línea.
type DocumentEventData struct {
	TransactionID   string   `json:"transaction_id"`
	Kind            string   `json:"kind"`
	NewStatus       string   `json:"new_status"`
	AffectedPartIDs []string `json:"affected_part_ids"`
}

// NewDocumentEvent construye el evento de cambio de estado de un documento.
func NewDocumentEvent(doc *entity.Document) Event {
	partIDs := make([]string, 0, len(doc.Items))
	seen := make(map[string]struct{}, len(doc.Items))
	for _, it := range doc.Items {
		if _, ok := seen[it.PartID]; ok {
			continue
		}
		seen[it.PartID] = struct{}{}
		partIDs = append(partIDs, it.PartID)
	}
	return Event{
		Type: TypeDocumentChanged,
		Data: DocumentEventData{
			TransactionID:   doc.ID,
			Kind:            doc.Kind,
			NewStatus:       doc.Status,
			AffectedPartIDs: partIDs,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestItemCreatedEvent construye el evento de línea de solicitud creada,
// para que el tablero de almacén la muestre sin refrescar.
func NewRequestItemCreatedEvent(requestID, itemID, partID string, urgent bool) Event {
	return Event{
		Type: TypeRequestItemCreated,
		Data: map[string]any{
			"request_id": requestID,
			"item_id":    itemID,
			"part_id":    partID,
			"is_urgent":  urgent,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestItemSuppliedEvent construye el evento de línea de solicitud entregada.
func NewRequestItemSuppliedEvent(requestID, itemID, partNumber string) Event {
	return Event{
		Type: TypeRequestItemSupplied,
		Data: map[string]string{
			"request_id":  requestID,
			"item_id":     itemID,
			"part_number": partNumber,
		},
		Timestamp: time.Now().UTC(),
	}
}

// Tamaño del buffer por suscriptor: si se llena, el evento se descarta para
// ese suscriptor en lugar de bloquear al publicador.
const subscriberBuffer = 16

// Broadcaster difunde eventos a todos los suscriptores conectados.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBroadcaster construye el broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscribe registra un suscriptor y devuelve su canal de eventos junto con la
// función de baja. El canal se cierra al darse de baja.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish difunde el evento a todos los suscriptores sin bloquear.
// Devuelve cuántos lo recibieron; los buffers llenos descartan el evento.
func (b *Broadcaster) Publish(evt Event) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for ch := range b.subs {
		select {
		case ch <- evt:
			count++
		default:
			// suscriptor lento: descartar, reconciliará consultando la proyección
		}
	}
	return count
}

// SubscriberCount devuelve el número actual de suscriptores.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
