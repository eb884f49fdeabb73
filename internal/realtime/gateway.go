// README: Websocket gateway: authenticates connections, registers channels,
// and feeds captain location reports into the fleet service.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gocab/internal/infra"
	"gocab/internal/modules/fleet"
	"gocab/internal/types"
)

type Gateway struct {
	registry *Registry
	fleet    *fleet.Service
	verifier infra.TokenVerifier
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewGateway(registry *Registry, fleetSvc *fleet.Service, verifier infra.TokenVerifier, log *slog.Logger) *Gateway {
	return &Gateway{
		registry: registry,
		fleet:    fleetSvc,
		verifier: verifier,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the app origin; token auth is the gate.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

type joinPayload struct {
	Role string `json:"role"`
}

type locationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Handle upgrades the request and runs the connection's read loop until the
// client goes away.
func (g *Gateway) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	identity, err := g.verifier.VerifyToken(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	go g.readLoop(conn, identity)
}

func (g *Gateway) readLoop(conn *websocket.Conn, identity *infra.Identity) {
	id := types.ID(identity.ID)
	role := Role(identity.Role)

	var sess *Session
	defer func() {
		if sess != nil {
			g.registry.Remove(role, id, sess)
		}
		_ = conn.Close()
	}()

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return
		}
		switch env.Event {
		case EventJoin:
			// Role comes from the verified token; the payload's role is only
			// checked for agreement.
			var p joinPayload
			if len(env.Data) > 0 {
				if err := json.Unmarshal(env.Data, &p); err != nil || (p.Role != "" && Role(p.Role) != role) {
					g.log.Warn("join rejected", "id", identity.ID, "claimed_role", p.Role, "role", identity.Role)
					continue
				}
			}
			sess = g.registry.Register(role, id, conn)
			g.log.Info("client joined", "role", identity.Role, "id", identity.ID)
		case EventReportLocation:
			if role != RoleCaptain {
				continue
			}
			var p locationPayload
			if err := json.Unmarshal(env.Data, &p); err != nil {
				continue
			}
			if err := g.fleet.ReportLocation(context.Background(), id, types.Point{Lat: p.Lat, Lng: p.Lng}); err != nil {
				g.log.Warn("location report rejected", "captain", identity.ID, "error", err)
			}
		default:
			g.log.Debug("unknown realtime event", "event", env.Event)
		}
	}
}
