package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/udyamsetu/platform/internal/assistant"
	"github.com/udyamsetu/platform/internal/common"
)

// SessionCookie is the cookie carrying the session id; the same cookie the
// REST middleware reads.
const SessionCookie = "session_id"

// SessionResolver maps a session id to the user it authenticates. Backed by
// the redis session store in production, by a stub in tests.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sid string) (uint64, error)
}

// Browsers attach the session cookie to cross-origin upgrade requests, so
// the upgrader keeps gorilla's default same-origin check: requests carrying
// an Origin header from another host are refused. Non-browser clients send
// no Origin header and pass.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Gateway bridges the websocket transport and message routing. Per
// connection it runs admission (cookie -> session -> user), then dispatches
// inbound frames to the assistant or the peer relay.
//
// The gateway never writes the message ledger; clients persist through the
// REST path independently of live delivery.
type Gateway struct {
	sessions  SessionResolver
	registry  *Registry
	relay     *Relay
	responder assistant.Responder
}

func NewGateway(sessions SessionResolver, registry *Registry, responder assistant.Responder) *Gateway {
	return &Gateway{
		sessions:  sessions,
		registry:  registry,
		relay:     NewRelay(registry),
		responder: responder,
	}
}

// Registry exposes the connection registry for introspection endpoints.
func (g *Gateway) Registry() *Registry { return g.registry }

// HandleWS is the single socket endpoint. Admission failures reject before
// the upgrade: no frames are ever sent to an unauthenticated peer and no
// registry entry is created.
func (g *Gateway) HandleWS(c *gin.Context) {
	sid, err := c.Cookie(SessionCookie)
	if err != nil || sid == "" {
		common.Fail(c, http.StatusUnauthorized, 40102, "missing session")
		return
	}

	userID, err := g.sessions.ResolveSession(c.Request.Context(), sid)
	if err != nil || userID == 0 {
		common.Fail(c, http.StatusUnauthorized, 40103, "invalid session")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Printf("ws upgrade user=%d err=%v", userID, err)
		return
	}

	client := newClient(userID, conn)
	g.registry.Register(client)
	log.Printf("ws connected user=%d conns=%d", userID, g.registry.ConnCount(userID))

	go client.writePump()
	go client.readPump(g)
}

// dispatch classifies one inbound frame and routes it. Malformed frames are
// dropped and logged; the connection stays open.
func (g *Gateway) dispatch(c *Client, raw []byte) {
	var f inboundFrame
	if err := json.Unmarshal(raw, &f); err != nil {
		log.Printf("ws frame unparseable user=%d err=%v", c.UserID, err)
		return
	}

	switch f.Type {
	case frameAIMessage:
		if strings.TrimSpace(f.Content) == "" {
			log.Printf("ws ai frame missing content user=%d", c.UserID)
			return
		}
		// Responder is synchronous and cannot fail; the reply goes only to
		// the originating connection.
		c.push(outboundFrame{
			Type:    frameAIResponse,
			Content: g.responder.Reply(f.Content),
		})

	case frameChatMessage:
		if strings.TrimSpace(f.Content) == "" || f.ToUserID == 0 {
			log.Printf("ws chat frame missing fields user=%d", c.UserID)
			return
		}
		g.relay.Deliver(c.UserID, f.ToUserID, f.Content)

	default:
		log.Printf("ws frame unknown type=%q user=%d", f.Type, c.UserID)
	}
}
