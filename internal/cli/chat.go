package cli

import (
	"bufio"
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dwizi/recruit-desk/internal/adminclient"
	"github.com/dwizi/recruit-desk/internal/app"
	"github.com/dwizi/recruit-desk/internal/config"
	"github.com/dwizi/recruit-desk/internal/gateway"
	"github.com/dwizi/recruit-desk/internal/tui"
)

type chatBackend = tui.Sender

// localBackend answers through an in-process router instead of the API.
type localBackend struct {
	gateway *gateway.Service
}

func (b localBackend) Chat(ctx context.Context, input adminclient.ChatRequest) (adminclient.ChatResponse, error) {
	output, err := b.gateway.HandleMessage(ctx, gateway.MessageInput{
		ActingUserID: input.ActingUserID,
		Text:         input.Text,
	})
	if err != nil {
		return adminclient.ChatResponse{}, err
	}
	return adminclient.ChatResponse{
		Handled: output.Handled,
		Intent:  string(output.Intent),
		Reply:   output.Reply,
	}, nil
}

// openBackend returns the chat backend and a cleanup func.
func openBackend(cfg config.Config, logger *slog.Logger, local bool) (chatBackend, func(), error) {
	if local {
		runtime, err := app.New(cfg, logger, app.Options{})
		if err != nil {
			return nil, nil, err
		}
		return localBackend{gateway: runtime.Gateway()}, func() { _ = runtime.Close() }, nil
	}
	client, err := adminclient.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {}, nil
}

func newChatCommand(logger *slog.Logger) *cobra.Command {
	var (
		actingUserID string
		message      string
		local        bool
		timeoutSec   int
	)

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send requests to recruit-desk",
		Long:  "Send a single request, or start an interactive session when no message is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, cleanup, err := openBackend(config.FromEnv(), logger, local)
			if err != nil {
				return err
			}
			defer cleanup()

			text := strings.TrimSpace(message)
			if text == "" && len(args) > 0 {
				text = strings.TrimSpace(strings.Join(args, " "))
			}
			if text != "" {
				ctx, cancel := context.WithTimeout(context.Background(), boundedTimeout(timeoutSec))
				defer cancel()
				response, err := backend.Chat(ctx, adminclient.ChatRequest{Text: text, ActingUserID: actingUserID})
				if err != nil {
					return err
				}
				printDeskReply(cmd, strings.TrimSpace(response.Reply))
				return nil
			}

			cmd.Printf("Connected as %s. Type /exit to quit.\n", fallbackActor(actingUserID))
			return runInteractiveChat(cmd, backend, actingUserID, timeoutSec)
		},
	}
	cmd.Flags().StringVarP(&actingUserID, "as", "u", "", "acting user id (staff id)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "single message to send (non-interactive mode)")
	cmd.Flags().BoolVar(&local, "local", false, "answer in-process against the local database instead of the API")
	cmd.Flags().IntVar(&timeoutSec, "timeout-sec", 120, "request timeout in seconds")
	return cmd
}

func newTUICommand(logger *slog.Logger) *cobra.Command {
	var (
		actingUserID string
		local        bool
	)
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal chat console",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			backend, cleanup, err := openBackend(cfg, logger, local)
			if err != nil {
				return err
			}
			defer cleanup()
			if local {
				cfg.AdminAPIURL = ""
			}
			return tui.Run(cfg, backend, actingUserID, logger)
		},
	}
	cmd.Flags().StringVarP(&actingUserID, "as", "u", "", "acting user id (staff id)")
	cmd.Flags().BoolVar(&local, "local", false, "answer in-process against the local database instead of the API")
	return cmd
}

func runInteractiveChat(cmd *cobra.Command, backend chatBackend, actingUserID string, timeoutSec int) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		cmd.Print("you> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "/exit" || text == "/quit" {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), boundedTimeout(timeoutSec))
		response, err := backend.Chat(ctx, adminclient.ChatRequest{Text: text, ActingUserID: actingUserID})
		cancel()
		if err != nil {
			cmd.PrintErrf("chat request failed: %v\n", err)
			continue
		}
		printDeskReply(cmd, strings.TrimSpace(response.Reply))
	}
	return scanner.Err()
}

func printDeskReply(cmd *cobra.Command, reply string) {
	if reply == "" {
		cmd.Println("desk> (no reply)")
		return
	}
	for index, line := range strings.Split(reply, "\n") {
		line = strings.TrimRight(line, "\r")
		if index == 0 {
			cmd.Printf("desk> %s\n", line)
			continue
		}
		cmd.Printf("      %s\n", line)
	}
}

func fallbackActor(actingUserID string) string {
	if strings.TrimSpace(actingUserID) == "" {
		return "anonymous"
	}
	return strings.TrimSpace(actingUserID)
}

func boundedTimeout(input int) time.Duration {
	if input < 1 {
		input = 120
	}
	if input > 600 {
		input = 600
	}
	return time.Duration(input) * time.Second
}

func newSeedCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo staff, candidates, clients, notes and tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			runtime, err := app.New(config.FromEnv(), logger, app.Options{})
			if err != nil {
				return err
			}
			defer runtime.Close()

			summary, err := app.Seed(cmd.Context(), runtime.Store(), time.Now().UTC())
			if err != nil {
				return err
			}
			cmd.Printf(
				"seeded %d staff, %d candidates, %d clients, %d interviews, %d meeting notes, %d meeting tasks, %d task assignments\n",
				summary.Staff, summary.Candidates, summary.Clients, summary.Interviews, summary.Notes, summary.Tasks, summary.Assignments,
			)
			return nil
		},
	}
}
