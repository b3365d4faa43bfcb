// Command duelsim-mcp exposes one duel as an MCP stdio tool server, so an
// LLM or agent process can play a live seat move-by-move (spec §4.8's
// interactive controller variant). Direct structural analog of the
// teacher's cmd/tcgx-mcp.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arcanelabs/duelcore/internal/carddef"
	"github.com/arcanelabs/duelcore/internal/mcpdriver"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	cardsFile := flag.String("cards", "", "optional YAML file of extra card definitions layered over the built-ins")
	flag.Parse()

	var extra []*carddef.CardDefinition
	if *cardsFile != "" {
		defs, err := carddef.LoadFixtureFile(*cardsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "duelsim-mcp: load cards: %v\n", err)
			os.Exit(1)
		}
		extra = defs
	}
	provider := carddef.NewFixtureProvider(extra...)

	s := server.NewMCPServer("duelsim", "1.0.0")
	mcpdriver.RegisterTools(s, provider)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "duelsim-mcp: %v\n", err)
		os.Exit(1)
	}
}
