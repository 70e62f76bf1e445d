// Command ask answers one emergency question from the terminal without
// starting the web server.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crisis-assist/internal/config"
	"crisis-assist/internal/graceful"
	"crisis-assist/internal/llm"
	"crisis-assist/internal/location"
	"crisis-assist/internal/logging"
	"crisis-assist/internal/places"
	"crisis-assist/internal/tools"
)

var (
	configPath string
	plain      bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask the crisis assistant one question and print the answer",
	Long: `Resolves your location, sends one question to the assistant and prints
the answer as four sections: emergency steps, nearest location, route
guidance and emergency contacts.

Without arguments the question is read from standard input.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.json", "path to the JSON config file")
	rootCmd.Flags().BoolVar(&plain, "plain", false, "print the answer without markdown rendering")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	config.LoadEnv()
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	} else if level == "info" {
		// keep the terminal for the answer
		level = "warn"
	}
	logger, err := logging.New(level)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := graceful.Context(cmd.Context(), logger)
	defer cancel()

	out := cmd.OutOrStdout()
	question, answer, err := answerOnce(ctx, cfg, logger, bufio.NewReader(cmd.InOrStdin()), out, args)
	if err != nil {
		return err
	}
	return printAnswer(out, question, answer)
}

func promptQuestion(in *bufio.Reader, out io.Writer) (string, error) {
	fmt.Fprintln(out, "How can I help you? :  ")
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("reading question: %w", err)
	}
	question := strings.TrimSpace(line)
	if question == "" {
		return "", errors.New("no question entered")
	}
	return question, nil
}

// answerOnce resolves the location first, so an address prompt comes before
// the question prompt, then takes the question from args or in and generates
// the answer. An empty answer means generation failed and was logged.
func answerOnce(ctx context.Context, cfg *config.Config, logger *zap.Logger, in *bufio.Reader, out io.Writer, args []string) (question, answer string, err error) {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout()}

	resolver := location.NewResolver(location.NewClient(cfg, httpClient),
		location.StdinPrompter{In: in, Out: out}, logger)
	var loc *location.Location
	if resolved, _, err := resolver.Resolve(ctx); err == nil {
		loc = &resolved
	}

	question = strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		question, err = promptQuestion(in, out)
		if err != nil {
			return "", "", err
		}
	}

	registry := tools.NewRegistry(logger)
	if err := registry.Register(places.NewTool(places.NewFinder(cfg, httpClient, logger), loc)); err != nil {
		logger.Error("tool registration failed", zap.Error(err))
	}

	generator := llm.NewGenerator(cfg, llm.NewClient(cfg, &http.Client{Timeout: cfg.LLMTimeout()}), registry, logger)
	return question, generator.Answer(ctx, question, loc), nil
}

func printAnswer(out io.Writer, question, answer string) error {
	fmt.Fprintln(out, "\n=== User Query ===")
	fmt.Fprintln(out, question)
	fmt.Fprintln(out, "\n=== Client Answer ===")
	if answer == "" {
		fmt.Fprintln(out, "No answer")
		return nil
	}
	if plain {
		fmt.Fprintln(out, answer)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		fmt.Fprintln(out, answer)
		return nil
	}
	rendered, err := renderer.Render(answer)
	if err != nil {
		fmt.Fprintln(out, answer)
		return nil
	}
	fmt.Fprint(out, rendered)
	return nil
}
