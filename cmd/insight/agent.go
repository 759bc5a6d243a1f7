package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/humanintuition/insight/internal/agent"
	"github.com/humanintuition/insight/internal/grok"
	"github.com/humanintuition/insight/internal/profile"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Chat with an agent grounded in your behavioral profile",
	Long: `Start an interactive chat session. The agent reads the saved profile
and uses it to give advice calibrated to how you actually operate.

Type "exit" or "quit" to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profilePath, _ := cmd.Flags().GetString("profile")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireGrokKey(); err != nil {
			return err
		}

		doc, err := profile.Load(profilePath)
		if err != nil {
			return err
		}

		client := grok.NewClientWithBaseURL(cfg.Grok.APIKey, cfg.Grok.BaseURL)
		session, err := agent.NewSession(client, cfg.Grok.Model, doc)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Printf("%s (model %s, profile %s)\n",
			colorize(colorBold, "insight agent"), cfg.Grok.Model, profilePath)
		fmt.Println(`Type "exit" or "quit" to leave.`)

		return runREPL(ctx, session, os.Stdin, os.Stdout)
	},
}

func init() {
	agentCmd.Flags().String("profile", profile.DefaultPath, "profile file to ground the agent in")
}

// runREPL drives the read-ask-print loop until EOF, an exit command, or
// context cancellation.
func runREPL(ctx context.Context, session *agent.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		default:
		}

		fmt.Fprint(out, colorize(colorCyan, "you> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}

		reply, err := session.Ask(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			printError("%v", err)
			continue
		}

		fmt.Fprintf(out, "\n%s %s\n\n", colorize(colorBold, "agent>"), reply)
	}
}
