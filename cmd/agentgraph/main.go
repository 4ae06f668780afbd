// Command agentgraph runs a configured agent system either as a one-shot
// request, an interactive terminal chat or an HTTP server.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ArcadeAI/agentgraph"
	"github.com/ArcadeAI/agentgraph/config"
	"github.com/ArcadeAI/agentgraph/core"
	"github.com/ArcadeAI/agentgraph/logging"
	"github.com/ArcadeAI/agentgraph/server"
)

func main() {
	var (
		configPath = flag.String("config", "agents.yaml", "path to the agent configuration file")
		debug      = flag.Bool("debug", false, "enable debug logging")
		serve      = flag.Bool("serve", false, "run the HTTP server instead of the terminal chat")
		addr       = flag.String("addr", ":8080", "listen address for -serve")
	)
	flag.Parse()

	// Missing .env is fine; environment variables may be set directly.
	_ = godotenv.Load()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := logging.NewSlogLogger(os.Stderr, level, "text")

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if *serve {
		srv := server.New(cfg, func(o *server.Options) {
			o.Logger = logger
		})
		logger.Info("http server listening", "addr", *addr)
		if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	sys, err := agentgraph.New(cfg, func(o *agentgraph.Options) {
		o.Logger = logger
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx := context.Background()
	sess := core.NewSession("cli")

	if args := flag.Args(); len(args) > 0 {
		printResult(sys.Run(ctx, sess, strings.Join(args, " ")))
		return
	}

	interactive(ctx, sys, sess)
}

// interactive runs the read/eval loop until exit or EOF. "reset" clears the
// conversation and "continue" resumes a turn parked behind an authorization
// prompt.
func interactive(ctx context.Context, sys *agentgraph.System, sess *core.Session) {
	fmt.Println("Type a message, or: exit, reset, continue")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return
		case "reset":
			sess.Clear()
			fmt.Println("Conversation cleared.")
			continue
		case "continue":
			result, err := sys.Resume(ctx, sess)
			if err != nil {
				fmt.Println("Error:", err)
				continue
			}
			printResult(result)
			continue
		}
		printResult(sys.Run(ctx, sess, line))
	}
}

func printResult(result *agentgraph.TurnResult) {
	for _, text := range result.Responses {
		if url, ok := strings.CutPrefix(text, core.AuthRequiredMarker); ok {
			fmt.Println("Authorization required. Visit the link below, then type 'continue':")
			fmt.Println(" ", strings.TrimSpace(url))
			continue
		}
		fmt.Println(text)
	}
	if len(result.ToolCalls) > 0 {
		fmt.Printf("(%d tool call(s) executed)\n", len(result.ToolCalls))
	}
}
