package mcpdriver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/controller"
	"github.com/arcanelabs/duelcore/internal/events"
	"github.com/arcanelabs/duelcore/internal/rng"
	"github.com/arcanelabs/duelcore/internal/turnmachine"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// activeSession is the singleton duel (one per stdio process), matching
// the teacher's "only one game at a time" assumption.
var activeSession *Session

// ToolResponse is what every tool call returns as its JSON text body.
type ToolResponse struct {
	Events   []string         `json:"events"`
	Pending  *PendingDecision `json:"pending,omitempty"`
	GameOver bool             `json:"game_over"`
	Winner   int              `json:"winner,omitempty"`
	Result   string           `json:"result,omitempty"`
}

// RegisterTools adds every mcpdriver tool to s, exactly the way the
// teacher's RegisterTools wires internal/mcp's five tools.
func RegisterTools(s *server.MCPServer, provider carddef.Provider) {
	s.AddTool(startGameTool(), makeStartGameHandler(provider))
	s.AddTool(takeActionTool(), handleTakeAction)
	s.AddTool(chooseCardsTool(), handleChooseCards)
	s.AddTool(answerYesNoTool(), handleAnswerYesNo)
	s.AddTool(getGameStateTool(), handleGetGameState)
}

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_duel",
		mcp.WithDescription("Start a new duel, with the caller as one seat and a random-policy opponent as the other. "+
			"Returns the first pending decision, if any belongs to the caller."),
		mcp.WithString("deck", mcp.Required(), mcp.Description("newline-separated card names for the caller's deck")),
		mcp.WithString("opponent_deck", mcp.Required(), mcp.Description("newline-separated card names for the opponent's deck")),
		mcp.WithNumber("seat", mcp.Required(), mcp.Description("0 = caller goes first, 1 = caller goes second")),
		mcp.WithNumber("seed", mcp.Description("RNG seed; omit for 0")),
	)
}

func takeActionTool() mcp.Tool {
	return mcp.NewTool("take_action",
		mcp.WithDescription("Choose an action by index. Use when the pending decision type is 'choose_action'."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the pending decision's actions list")),
	)
}

func chooseCardsTool() mcp.Tool {
	return mcp.NewTool("choose_cards",
		mcp.WithDescription("Select cards by index from the pending candidates list. Use for 'choose_targets', "+
			"'choose_mana_sources', 'choose_damage_order', or 'choose_discards'."),
		mcp.WithString("indices", mcp.Required(), mcp.Description("space-separated 0-based indices, or empty for none")),
	)
}

func answerYesNoTool() mcp.Tool {
	return mcp.NewTool("answer_yes_no",
		mcp.WithDescription("Answer a yes/no prompt. Use when the pending decision type is 'choose_yes_no'."),
		mcp.WithBoolean("answer", mcp.Required(), mcp.Description("true for yes, false for no")),
	)
}

func getGameStateTool() mcp.Tool {
	return mcp.NewTool("get_duel_state",
		mcp.WithDescription("Read the accumulated event log and the current pending decision without responding. Read-only."),
	)
}

func makeStartGameHandler(provider carddef.Provider) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if activeSession != nil {
			return mcp.NewToolResultError("a duel is already running; only one at a time is supported"), nil
		}
		splitLines := func(s string) []string {
			var out []string
			for _, line := range strings.Split(s, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					out = append(out, line)
				}
			}
			return out
		}
		deck := splitLines(request.GetString("deck", ""))
		oppDeck := splitLines(request.GetString("opponent_deck", ""))
		seat := request.GetInt("seat", 0)
		if seat != 0 && seat != 1 {
			return mcp.NewToolResultError("seat must be 0 or 1"), nil
		}
		seed := uint64(request.GetInt("seed", 0))

		decks := [2][]string{deck, oppDeck}
		if seat == 1 {
			decks[0], decks[1] = oppDeck, deck
		}

		cfg := turnmachine.Config{Deck0: decks[0], Deck1: decks[1], Provider: provider, Seed: seed}
		// Both seats start as Random; NewSession below overwrites the
		// caller's seat with the MCP bridge, leaving the opponent's as-is.
		var controllers [2]controller.Controller
		controllers[0] = controller.NewRandom(rng.NewFromSeed(seed ^ 0xA5A5A5A5))
		controllers[1] = controller.NewRandom(rng.NewFromSeed(seed ^ 0x5A5A5A5A))
		eng, err := turnmachine.New(cfg, controllers[0], controllers[1])
		if err != nil {
			return mcp.NewToolResultErrorf("start duel: %v", err), nil
		}

		sess := NewSession(eng, seat)
		sess.Start(ctx)
		activeSession = sess

		return mcp.NewToolResultText(respondJSON(buildResponse(sess))), nil
	}
}

func handleTakeAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := activeSession
	if sess == nil {
		return mcp.NewToolResultError("no duel is running; call start_duel first"), nil
	}
	pending := sess.Current()
	if pending == nil || pending.Type != DecisionChooseAction {
		return mcp.NewToolResultErrorf("no pending choose_action decision"), nil
	}
	index := request.GetInt("index", -1)
	sess.respond(actionResponse{Index: index})
	return mcp.NewToolResultText(respondJSON(awaitNext(sess))), nil
}

func handleChooseCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := activeSession
	if sess == nil {
		return mcp.NewToolResultError("no duel is running; call start_duel first"), nil
	}
	pending := sess.Current()
	if pending == nil {
		return mcp.NewToolResultError("no pending decision"), nil
	}
	switch pending.Type {
	case DecisionChooseTargets, DecisionChooseManaSources, DecisionChooseDamageOrder, DecisionChooseDiscards:
	default:
		return mcp.NewToolResultErrorf("pending decision %q does not take card indices", pending.Type), nil
	}
	indices, err := parseIndices(request.GetString("indices", ""))
	if err != nil {
		return mcp.NewToolResultErrorf("invalid indices: %v", err), nil
	}
	sess.respond(indicesResponse{Indices: indices})
	return mcp.NewToolResultText(respondJSON(awaitNext(sess))), nil
}

func handleAnswerYesNo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := activeSession
	if sess == nil {
		return mcp.NewToolResultError("no duel is running; call start_duel first"), nil
	}
	pending := sess.Current()
	if pending == nil || pending.Type != DecisionChooseYesNo {
		return mcp.NewToolResultErrorf("no pending choose_yes_no decision"), nil
	}
	sess.respond(yesNoResponse{Answer: request.GetBool("answer", false)})
	return mcp.NewToolResultText(respondJSON(awaitNext(sess))), nil
}

func handleGetGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := activeSession
	if sess == nil {
		return mcp.NewToolResultError("no duel is running; call start_duel first"), nil
	}
	return mcp.NewToolResultText(respondJSON(buildResponse(sess))), nil
}

// awaitNext blocks for the next pending decision (or duel end) after a
// response has just been sent, then builds the tool response for it.
func awaitNext(sess *Session) *ToolResponse {
	sess.WaitForPending()
	resp := buildResponse(sess)
	if resp.GameOver {
		activeSession = nil
	}
	return resp
}

func buildResponse(sess *Session) *ToolResponse {
	resp := &ToolResponse{}
	for _, e := range sess.Events() {
		resp.Events = append(resp.Events, events.Format(e))
	}
	if done, winner, runErr := sess.Done(); done {
		resp.GameOver = true
		resp.Winner = winner
		if runErr != nil {
			resp.Result = runErr.Error()
		} else {
			resp.Result = fmt.Sprintf("player %d wins", winner+1)
		}
		return resp
	}
	resp.Pending = sess.Current()
	return resp
}

func parseIndices(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, tok := range strings.Fields(s) {
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", tok, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
