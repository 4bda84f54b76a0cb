package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/tabula/internal/demo"
	"github.com/aretw0/tabula/internal/presentation/tui"
	"github.com/aretw0/tabula/pkg/board"
	"github.com/aretw0/tabula/pkg/domain"
	"github.com/muesli/termenv"
)

// ErrQuit is returned when the player leaves a game before it ends.
var ErrQuit = errors.New("game left unfinished")

// PlayOptions configures an interactive game.
type PlayOptions struct {
	Players []string
	Seed    string
	// GameID resumes a stored game instead of starting one.
	GameID string
	// Quiet skips the banner and the rules.
	Quiet bool
	// Profile styles the prompts; termenv.Ascii prints them plain.
	Profile termenv.Profile
}

// Play runs a hot-seat game on a line based terminal: every seated player
// answers in turn on the same input.
func Play(ctx context.Context, app *App, in io.Reader, out io.Writer, opts PlayOptions) error {
	styler := tui.NewStyler(opts.Profile)
	if !opts.Quiet {
		tui.PrintBanner(out)
		rules, err := tui.NewRenderer()(demo.Rules)
		if err != nil {
			rules = demo.Rules
		}
		fmt.Fprintln(out, rules)
	}

	id, state, err := openGame(ctx, app, opts)
	if err != nil {
		return err
	}
	printSystemMessage(out, "Game %s", id)

	lines := bufio.NewScanner(in)
	for !state.Finished {
		if err := ctx.Err(); err != nil {
			return err
		}
		next, err := playTurn(ctx, app, id, state, lines, out, styler)
		if err != nil {
			if errors.Is(err, ErrQuit) {
				printSystemMessage(out, "Resume with --game %s", id)
			}
			return err
		}
		state = next
	}

	announce(out, state)
	return nil
}

func openGame(ctx context.Context, app *App, opts PlayOptions) (string, *domain.GameState, error) {
	if opts.GameID != "" {
		state, err := app.Sessions.Load(ctx, opts.GameID)
		if err != nil {
			return "", nil, err
		}
		return opts.GameID, state, nil
	}
	setup := domain.SetupState{
		Settings: domain.Values{"rounds": app.Config.Game.Rounds},
		Seed:     opts.Seed,
	}
	for i, name := range opts.Players {
		setup.Players = append(setup.Players, domain.Player{Position: i + 1, Name: name})
	}
	return app.Sessions.Create(ctx, setup)
}

// playTurn asks the current player until a move is accepted.
func playTurn(ctx context.Context, app *App, id string, state *domain.GameState, lines *bufio.Scanner, out io.Writer, styler *tui.Styler) (*domain.GameState, error) {
	player := state.CurrentPlayerPosition
	resp, err := app.Sessions.Selection(ctx, id, player)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "\n%s\n", styler.Heading(playerName(state, player)+"'s turn"))

	move, sel := resp.Move, resp.Selection
	for {
		if sel == nil && move.Action == "" {
			return nil, fmt.Errorf("player %d has no move in game %s", player, id)
		}
		if sel != nil {
			fmt.Fprint(out, styler.Selection(sel))
			fmt.Fprint(out, "> ")
			if !lines.Scan() {
				if err := lines.Err(); err != nil {
					return nil, err
				}
				return nil, ErrQuit
			}
			input := lines.Text()
			if cmd := strings.TrimSpace(input); cmd == "quit" || cmd == "exit" {
				return nil, ErrQuit
			}
			arg, err := tui.ParseAnswer(sel, input)
			if err != nil {
				fmt.Fprintln(out, styler.Error(err.Error()))
				continue
			}
			switch sel.Name {
			case domain.ActionSelectionName:
				move = domain.Move{Action: domain.FormatArg(arg), Player: player}
			case domain.ConfirmSelectionName:
			default:
				move.Args = append(move.Args, arg)
			}
		}

		result, err := app.Sessions.Move(ctx, id, move)
		if err != nil {
			return nil, err
		}
		if result.Accepted() {
			return result.State, nil
		}
		if result.Response.Error != "" {
			fmt.Fprintln(out, styler.Error(result.Response.Error))
			if result.Response.Selection == nil {
				// Nothing left to ask: start the turn over.
				return state, nil
			}
		}
		move, sel = result.Response.Move, result.Response.Selection
	}
}

func announce(out io.Writer, state *domain.GameState) {
	g := board.New()
	if err := g.Deserialize(state.Board); err != nil {
		printSystemMessage(out, "Game over.")
		return
	}
	if winner := demo.Winner(g); winner != 0 {
		printSystemMessage(out, "Game over. %s wins!", playerName(state, winner))
		return
	}
	printSystemMessage(out, "Game over. Nobody reached the summit or found the treasure.")
}

func playerName(state *domain.GameState, position int) string {
	for _, p := range state.Players {
		if p.Position == position && p.Name != "" {
			return p.Name
		}
	}
	return fmt.Sprintf("Player %d", position)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, ">>> %s\n", fmt.Sprintf(format, args...))
}
