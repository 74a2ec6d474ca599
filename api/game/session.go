package gameapi

import (
	"net/http"

	"github.com/beka-birhanu/vinom-client/service"
	"github.com/beka-birhanu/vinom-client/service/i"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// SessionController serves the state of the local game session and accepts moves.
type SessionController struct {
	gameClient i.GameClient
	logger     i.Logger
}

// NewSessionController initializes a SessionController.
func NewSessionController(gc i.GameClient, logger i.Logger) (*SessionController, error) {
	if gc == nil {
		return nil, errors.New("game client is required")
	}
	if logger == nil {
		logger = nopLogger{}
	}
	return &SessionController{
		gameClient: gc,
		logger:     logger,
	}, nil
}

// RegisterPublic registers public routes.
func (sc *SessionController) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/health", sc.health)
	route.GET("/session", sc.session)
	route.GET("/maze", sc.maze)
}

// RegisterProtected registers protected routes.
func (sc *SessionController) RegisterProtected(route *gin.RouterGroup) {
	route.POST("/moves", sc.move)
	route.GET("/events", sc.events)
}

func (sc *SessionController) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (sc *SessionController) session(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, sc.gameClient.Snapshot())
}

func (sc *SessionController) maze(ctx *gin.Context) {
	m := sc.gameClient.Maze()
	if m == nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "maze not loaded yet"})
		return
	}
	ctx.JSON(http.StatusOK, newMazeResponse(m))
}

// move queues a step of the local player.
func (sc *SessionController) move(ctx *gin.Context) {
	var request MoveRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := sc.gameClient.TryMove(*request.FromRow, *request.FromCol, *request.ToRow, *request.ToCol)
	switch {
	case err == nil:
		ctx.Status(http.StatusAccepted)
	case errors.Is(err, service.ErrIllegalMove):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotYourTurn), errors.Is(err, service.ErrGameOver), errors.Is(err, service.ErrWrongOrigin):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoMaze), errors.Is(err, service.ErrSessionStopped):
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		sc.logger.Error("move request: " + err.Error())
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "error while submitting move"})
	}
}

type nopLogger struct{}

func (nopLogger) Info(string)    {}
func (nopLogger) Warning(string) {}
func (nopLogger) Error(string)   {}
