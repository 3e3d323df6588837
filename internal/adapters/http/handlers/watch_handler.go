package handlers

import (
	"context"
	"log"

	"plp-rushdesk/internal/core/services"
	"plp-rushdesk/internal/core/watch"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// WatchHandler streams collection snapshots over WebSocket. Clients
// subscribe to a collection and receive the full snapshot on connect and
// again after every change.
type WatchHandler struct {
	hub             *watch.Hub
	pnmService      *services.PNMService
	referralService *services.ReferralService
}

// NewWatchHandler creates a new watch handler
func NewWatchHandler(hub *watch.Hub, pnmService *services.PNMService, referralService *services.ReferralService) *WatchHandler {
	return &WatchHandler{
		hub:             hub,
		pnmService:      pnmService,
		referralService: referralService,
	}
}

// snapshotMessage is the wire format for a collection snapshot
type snapshotMessage struct {
	Collection string      `json:"collection"`
	Data       interface{} `json:"data"`
}

// Upgrade validates the subscription target before the WebSocket upgrade
func (h *WatchHandler) Upgrade(c *fiber.Ctx) error {
	collection := c.Params("collection")
	if collection != watch.CollectionPNMs && collection != watch.CollectionReferrals {
		return fiber.NewError(fiber.StatusNotFound, "Unknown collection")
	}
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// Subscribe handles a WebSocket subscription to a collection
func (h *WatchHandler) Subscribe() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		collection := conn.Params("collection")

		signal, unsubscribe := h.hub.Subscribe(collection)
		defer unsubscribe()

		// Initial snapshot on connect
		if err := h.sendSnapshot(conn, collection); err != nil {
			return
		}

		// Read pump: we never expect client messages, but reading is the
		// only way to observe the close frame
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-signal:
				if err := h.sendSnapshot(conn, collection); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
}

// sendSnapshot reads the collection and writes it as one message
func (h *WatchHandler) sendSnapshot(conn *websocket.Conn, collection string) error {
	var data interface{}
	var err error

	ctx := context.Background()
	switch collection {
	case watch.CollectionPNMs:
		data, err = h.pnmService.List(ctx, &services.ListInput{Status: "all"})
	case watch.CollectionReferrals:
		data, err = h.referralService.List(ctx)
	}
	if err != nil {
		log.Printf("❌ Failed to read %s snapshot: %v", collection, err)
		return err
	}

	return conn.WriteJSON(snapshotMessage{
		Collection: collection,
		Data:       data,
	})
}
