package gameapi

import (
	"fmt"
	"net/http"
	"time"

	dmn "github.com/beka-birhanu/vinom-client/domain"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The status API listens locally; any origin may watch.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// events streams session events as JSON text frames until either side closes.
func (sc *SessionController) events(ctx *gin.Context) {
	ws, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		sc.logger.Warning(fmt.Sprintf("websocket upgrade: %s", err))
		return
	}

	id, events := sc.gameClient.Subscribe()
	closed := make(chan struct{})
	go sc.readPump(ws, closed)
	sc.writePump(ws, events, closed)
	sc.gameClient.Unsubscribe(id)
}

// readPump discards client frames and keeps the read deadline alive; it closes
// closed when the client goes away.
func (sc *SessionController) readPump(ws *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	ws.SetReadLimit(1 << 10)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error { return ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		if _, _, err := ws.NextReader(); err != nil {
			return
		}
	}
}

// writePump forwards events to the client and pings it until the event channel
// closes, a write fails or the client leaves.
func (sc *SessionController) writePump(ws *websocket.Conn, events <-chan dmn.Event, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case e, ok := <-events:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := ws.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
