package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-client/api"
	gameapi "github.com/beka-birhanu/vinom-client/api/game"
	api_i "github.com/beka-birhanu/vinom-client/api/i"
	"github.com/beka-birhanu/vinom-client/api/identity"
	"github.com/beka-birhanu/vinom-client/config"
	logger "github.com/beka-birhanu/vinom-client/infrastruture/log"
	"github.com/beka-birhanu/vinom-client/infrastruture/token"
	"github.com/beka-birhanu/vinom-client/maze"
	"github.com/beka-birhanu/vinom-client/service"
	"github.com/beka-birhanu/vinom-client/service/i"
	"github.com/beka-birhanu/vinom-client/tcp"
)

const (
	operatorTokenTTL = 24 * time.Hour
	shutdownTimeout  = 5 * time.Second
)

// Global variables for dependencies
var (
	cfg               config.Config
	appLogger         *logger.Logger
	gameClient        *service.GameClient
	socketManager     *tcp.ClientSocketManager
	jwtTokenizer      i.Tokenizer
	sessionController api_i.Controller
	router            *api.Router
)

func newLogger(prefix, color string) *logger.Logger {
	var opts []logger.Option
	if cfg.LogFile != "" {
		opts = append(opts, logger.WithRotatingFile(cfg.LogFile))
	}
	l, err := logger.New(prefix, color, os.Stdout, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating %s logger: %v\n", prefix, err)
		os.Exit(1)
	}
	return l
}

func initGameClient() {
	gameClient = service.NewGameClient(service.GameClientWithLogger(newLogger("GAME", config.ColorBlue)))
	appLogger.Info(fmt.Sprintf("Game client initialized, session %s", gameClient.SessionID()))
}

func initSocketManager() {
	socketLogger := newLogger("SOCKET", config.ColorCyan)

	var err error
	socketManager, err = tcp.NewClientSocketManager(
		tcp.ClientConfig{
			ServerAddr: cfg.ServerAddr(),
			Handlers: tcp.Handlers{
				OnMazeReady: func(m *maze.Maze) {
					socketLogger.Info("maze loaded:\n" + m.String())
					gameClient.OnMazeReady(m)
				},
				OnOpponentMove:         gameClient.OnOpponentMove,
				OnTurnChanged:          gameClient.OnTurnChanged,
				OnScoreChanged:         gameClient.OnScoreChanged,
				OnOpponentScoreChanged: gameClient.OnOpponentScoreChanged,
				OnGameOver:             gameClient.OnGameOver,
				OnStateChange: func(s tcp.State, err error) {
					gameClient.OnConnectionChange(s.String(), err)
				},
			},
		},
		tcp.ClientWithHeartbeatInterval(cfg.HeartbeatInterval),
		tcp.ClientWithReadTimeout(cfg.ReadTimeout),
		tcp.ClientWithReconnectBackoff(cfg.ReconnectBackoff),
		tcp.ClientWithDialTimeout(cfg.DialTimeout),
		tcp.ClientWithRequeueOnSendFailure(cfg.RequeueOnSendFailure),
		tcp.ClientWithLogger(socketLogger),
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating client socket manager: %v", err))
		os.Exit(1)
	}

	gameClient.SetMoveSubmitter(socketManager)
	appLogger.Info(fmt.Sprintf("Client socket manager initialized for %s", cfg.ServerAddr()))
}

func initJWTTokenizer() {
	if cfg.JWTSecret == "" {
		appLogger.Warning("STATUS_JWT_SECRET is empty, protected status routes are open")
		return
	}
	jwtTokenizer = token.NewJwtService(cfg.JWTSecret, cfg.JWTIssuer)

	operatorToken, err := jwtTokenizer.Generate(map[string]interface{}{
		"session": gameClient.SessionID().String(),
	}, operatorTokenTTL)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Generating operator token: %v", err))
		os.Exit(1)
	}
	appLogger.Info("JWT Tokenizer initialized")
	fmt.Fprintf(os.Stderr, "status API operator token: %s\n", operatorToken)
}

func initSessionController() {
	var err error
	sessionController, err = gameapi.NewSessionController(gameClient, newLogger("STATUS", config.ColorMagenta))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session controller initialized")
}

func initRouter() {
	router = api.NewRouter(api.Config{
		Addr:                    cfg.StatusAddr,
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{sessionController},
		AuthorizationMiddleware: identity.Authoriz(jwtTokenizer),
	})
	appLogger.Info("Router initialized")
}

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger = newLogger("APP", config.ColorGreen)
	defer func() {
		_ = appLogger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	initGameClient()
	initSocketManager()

	if cfg.StatusAddr != "" {
		initJWTTokenizer()
		initSessionController()
		initRouter()

		go func() {
			if err := router.Run(); err != nil {
				appLogger.Error(fmt.Sprintf("Status API: %v", err))
				stop()
			}
		}()
		appLogger.Info("Status API listening on " + cfg.StatusAddr)
	}

	if err := socketManager.Start(); err != nil {
		appLogger.Error(fmt.Sprintf("Starting client socket manager: %v", err))
		os.Exit(1)
	}

	<-ctx.Done()
	appLogger.Info("Shutting down")

	if router != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := router.Shutdown(shutdownCtx); err != nil {
			appLogger.Warning(fmt.Sprintf("Status API shutdown: %v", err))
		}
		cancel()
	}

	socketManager.Stop()
	gameClient.Close()

	snap := gameClient.Snapshot()
	appLogger.Info(fmt.Sprintf("Session %s ended: score %d, opponent %d, game over %t",
		snap.SessionID, snap.Score, snap.OpponentScore, snap.GameOver))
}
