package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/wanderplan/wanderplan-backend/config"
	"github.com/wanderplan/wanderplan-backend/internal/search"
	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/middleware"
	"github.com/wanderplan/wanderplan-backend/pkg/geocoder"
	"github.com/wanderplan/wanderplan-backend/types"
)

const searchWriteTimeout = 10 * time.Second

// SearchClientMessage represents an event from the client's search field.
type SearchClientMessage struct {
	Type      string                `json:"type"`
	Text      string                `json:"text,omitempty"`
	Candidate *types.PlaceCandidate `json:"candidate,omitempty"`
}

// SearchServerMessage represents a message pushed to the client.
type SearchServerMessage struct {
	Type      string                 `json:"type"`
	Results   []types.PlaceCandidate `json:"results,omitempty"`
	Address   string                 `json:"address,omitempty"`
	Searching *bool                  `json:"searching,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

// SearchWSHandler runs an interactive place-search session over a WebSocket.
// Each connection owns one search controller, so debouncing and stale-result
// suppression happen server-side while the client just streams keystrokes.
type SearchWSHandler struct {
	log            *zap.SugaredLogger
	geocoder       geocoder.Client
	searchCfg      *config.SearchConfig
	allowedOrigins []string
	isDevelopment  bool
}

func NewSearchWSHandler(geocodeClient geocoder.Client, searchCfg *config.SearchConfig, serverCfg *config.ServerConfig) *SearchWSHandler {
	return &SearchWSHandler{
		log:            logger.GetLogger().Named("search_ws_handler"),
		geocoder:       geocodeClient,
		searchCfg:      searchCfg,
		allowedOrigins: serverCfg.AllowedOrigins,
		isDevelopment:  serverCfg.Environment == config.EnvDevelopment,
	}
}

func (h *SearchWSHandler) getAcceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionContextTakeover,
	}
	if h.isDevelopment {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = h.allowedOrigins
	}
	return opts
}

// HandleSearchSocket upgrades the request and pumps search events until the
// client disconnects.
func (h *SearchWSHandler) HandleSearchSocket(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, h.getAcceptOptions())
	if err != nil {
		h.log.Errorw("Failed to accept WebSocket connection", "userID", userID, "error", err)
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var writeMu sync.Mutex
	send := func(msg SearchServerMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		writeCtx, writeCancel := context.WithTimeout(ctx, searchWriteTimeout)
		defer writeCancel()
		if err := wsjson.Write(writeCtx, conn, msg); err != nil {
			h.log.Debugw("Failed to write search message", "userID", userID, "error", err)
			cancel()
		}
	}

	controller := search.NewController(search.Config{
		Client:   h.geocoder,
		Debounce: time.Duration(h.searchCfg.DebounceMillis) * time.Millisecond,
		Limit:    h.searchCfg.ResultLimit,
		OnResults: func(results []types.PlaceCandidate) {
			send(SearchServerMessage{Type: "results", Results: results})
		},
		OnError: func(err error) {
			send(SearchServerMessage{Type: "error", Error: userFacingLookupError(err)})
		},
		OnSearching: func(searching bool) {
			send(SearchServerMessage{Type: "searching", Searching: &searching})
		},
	})
	defer controller.Close()

	h.log.Infow("Search session started", "userID", userID)

	for {
		var msg SearchClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				h.log.Debugw("Search session closed", "userID", userID)
			} else if ctx.Err() == nil {
				h.log.Debugw("Search session read failed", "userID", userID, "error", err)
			}
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		}

		switch msg.Type {
		case "input":
			controller.OnTextChanged(msg.Text)
		case "focus":
			controller.OnFocus()
		case "select":
			if msg.Candidate == nil {
				send(SearchServerMessage{Type: "error", Error: "select requires a candidate"})
				continue
			}
			address := controller.OnSelect(*msg.Candidate)
			send(SearchServerMessage{Type: "selected", Address: address})
		case "reset":
			controller.Reset()
		default:
			send(SearchServerMessage{Type: "error", Error: "unknown message type"})
		}
	}
}

// userFacingLookupError keeps provider internals out of client messages.
func userFacingLookupError(err error) string {
	var lookupErr *geocoder.LookupError
	if errors.As(err, &lookupErr) {
		return lookupErr.Message
	}
	return "place search is temporarily unavailable"
}
