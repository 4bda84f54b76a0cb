package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/tabula"
	"github.com/aretw0/tabula/internal/presentation/graph"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/aretw0/tabula/pkg/flow"
	"github.com/aretw0/tabula/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FlowResourceURI exposes the mermaid rendering of the game flow.
const FlowResourceURI = "tabula://flow"

// GameResponse is returned by start_game.
type GameResponse struct {
	GameID string            `json:"game_id" jsonschema_description:"Identifier to pass to the other tools"`
	State  *domain.GameState `json:"state" jsonschema_description:"The initial game state"`
}

// StateResponse is returned by game_state.
type StateResponse struct {
	GameID string            `json:"game_id"`
	Player int               `json:"player,omitempty" jsonschema_description:"Perspective of the view, 0 for the full state"`
	State  *domain.GameState `json:"state"`
}

// Server wraps a session manager and exposes it as an MCP Server.
type Server struct {
	sessions  *session.Manager
	flow      *flow.Tree
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance. tree may be nil, in which
// case the flow resource is not registered.
func NewServer(sessions *session.Manager, tree *flow.Tree, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		flow:      tree,
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("tabula-mcp", strings.TrimSpace(tabula.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	if tree != nil {
		s.registerResources()
	}
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_game",
		mcp.WithDescription("Start a new game. Players are seated in the given order."),
		mcp.WithString("players", mcp.Required(), mcp.Description("Comma separated player names")),
		mcp.WithString("settings", mcp.Description("JSON object of game settings (optional)")),
		mcp.WithString("seed", mcp.Description("Random seed, for replayable games (optional)")),
		mcp.WithOutputSchema[GameResponse](),
	), mcp.NewStructuredToolHandler(s.handleStartGame))

	s.mcpServer.AddTool(mcp.NewTool("current_selection",
		mcp.WithDescription("Describe what a player may do next: the action, or the next argument needed."),
		mcp.WithString("game_id", mcp.Required(), mcp.Description("Game identifier")),
		mcp.WithNumber("player", mcp.Required(), mcp.Description("Player position, starting at 1")),
		mcp.WithOutputSchema[domain.MoveResponse](),
	), mcp.NewStructuredToolHandler(s.handleCurrentSelection))

	s.mcpServer.AddTool(mcp.NewTool("process_move",
		mcp.WithDescription("Submit a move. Incomplete or invalid moves are answered with the next selection and an error message."),
		mcp.WithString("game_id", mcp.Required(), mcp.Description("Game identifier")),
		mcp.WithNumber("player", mcp.Required(), mcp.Description("Player position, starting at 1")),
		mcp.WithString("action", mcp.Description("Action name; omit to be asked which action")),
		mcp.WithString("args", mcp.Description(`JSON array of arguments, board elements as "$el(id)" and players as "$p(n)"`)),
		mcp.WithOutputSchema[domain.MoveResult](),
	), mcp.NewStructuredToolHandler(s.handleProcessMove))

	s.mcpServer.AddTool(mcp.NewTool("game_state",
		mcp.WithDescription("Read a game. With a player the view hides what that player may not see."),
		mcp.WithString("game_id", mcp.Required(), mcp.Description("Game identifier")),
		mcp.WithNumber("player", mcp.Description("Player position (optional)")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGameState))

	s.mcpServer.AddTool(mcp.NewTool("list_games",
		mcp.WithDescription("List stored game identifiers."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStartGame(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (GameResponse, error) {
	names, _ := args["players"].(string)
	setup := domain.SetupState{}
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		setup.Players = append(setup.Players, domain.Player{Position: len(setup.Players) + 1, Name: name})
	}
	if raw, ok := args["settings"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &setup.Settings); err != nil {
			return GameResponse{}, fmt.Errorf("invalid settings: %w", err)
		}
	}
	setup.Seed, _ = args["seed"].(string)

	id, state, err := s.sessions.Create(ctx, setup)
	if err != nil {
		return GameResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return GameResponse{GameID: id, State: state}, nil
}

func (s *Server) handleCurrentSelection(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (domain.MoveResponse, error) {
	id, _ := args["game_id"].(string)
	player, err := intArg(args, "player")
	if err != nil {
		return domain.MoveResponse{}, err
	}
	resp, err := s.sessions.Selection(ctx, id, player)
	if err != nil {
		return domain.MoveResponse{}, fmt.Errorf("selection failed: %w", err)
	}
	return *resp, nil
}

func (s *Server) handleProcessMove(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (domain.MoveResult, error) {
	id, _ := args["game_id"].(string)
	player, err := intArg(args, "player")
	if err != nil {
		return domain.MoveResult{}, err
	}
	move := domain.Move{Player: player}
	move.Action, _ = args["action"].(string)
	if raw, ok := args["args"].(string); ok && raw != "" {
		var wire []any
		if err := json.Unmarshal([]byte(raw), &wire); err != nil {
			return domain.MoveResult{}, fmt.Errorf("invalid args: %w", err)
		}
		if move.Args, err = domain.DecodeMoveArgs(wire); err != nil {
			return domain.MoveResult{}, fmt.Errorf("invalid args: %w", err)
		}
	}

	result, err := s.sessions.Move(ctx, id, move)
	if err != nil {
		return domain.MoveResult{}, fmt.Errorf("move failed: %w", err)
	}
	if !result.Accepted() {
		s.logger.Debug("MCP move rejected", "game_id", id, "action", move.Action, "player", player, "problem", result.Response.Error)
	}
	return *result, nil
}

func (s *Server) handleGameState(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (StateResponse, error) {
	id, _ := args["game_id"].(string)
	if _, ok := args["player"]; !ok {
		state, err := s.sessions.Load(ctx, id)
		if err != nil {
			return StateResponse{}, fmt.Errorf("load failed: %w", err)
		}
		return StateResponse{GameID: id, State: state}, nil
	}
	player, err := intArg(args, "player")
	if err != nil {
		return StateResponse{}, err
	}
	view, err := s.sessions.PlayerState(ctx, id, player)
	if err != nil {
		return StateResponse{}, fmt.Errorf("load failed: %w", err)
	}
	return StateResponse{GameID: id, Player: view.Position, State: &view.State}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(FlowResourceURI, "Game Flow",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      FlowResourceURI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(s.flow, nil),
			},
		}, nil
	})
}

// intArg reads a whole number argument. JSON numbers arrive as float64.
func intArg(args map[string]any, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case string:
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
			return 0, fmt.Errorf("%s must be a number, got %q", key, v)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}
