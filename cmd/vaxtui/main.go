package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vnma/vaxtui/internal/api"
	"github.com/vnma/vaxtui/internal/certificate"
	"github.com/vnma/vaxtui/internal/config"
	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/logging"
	"github.com/vnma/vaxtui/internal/realtime"
	"github.com/vnma/vaxtui/internal/screens"
	"github.com/vnma/vaxtui/internal/signin"
	"github.com/vnma/vaxtui/internal/store"
	"github.com/vnma/vaxtui/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

const probeTimeout = 15 * time.Second

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	var reset bool
	flag.BoolVar(&reset, "reset", false, "forget the server connection and cached sessions")
	flag.Parse()

	if showVersion {
		fmt.Printf("vaxtui %s\n", Version)
		return
	}

	if reset {
		if err := resetAll(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✓ Server settings and saved sessions removed")
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func resetAll() error {
	if err := config.ClearServerConfig(); err != nil {
		return err
	}
	return config.ClearCache()
}

func run() error {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := logging.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = logging.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting vaxtui", "version", Version)

	stdin := bufio.NewReader(os.Stdin)

	// Check if configured
	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg, stdin, logger); err != nil {
			return err
		}
	}

	sessions, err := store.NewSessionStore(config.GetCachePath(), cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	defer sessions.Close()

	client := api.NewClient(api.Options{
		BaseURL:      cfg.Server.URL,
		ClientID:     cfg.Server.ClientID,
		ClientSecret: cfg.Server.ClientSecret,
		Timeout:      cfg.Server.Timeout,
		Logger:       logger,
	})

	user, err := authenticate(client, sessions, stdin, logger)
	if err != nil {
		return err
	}

	deps := screens.Deps{
		Auth:         client,
		Accounts:     client,
		Vaccines:     client,
		Sites:        client,
		Schedules:    client,
		Appointments: client,
		Records:      client,
		Assistant:    client,
		Stats:        client,
		Certificates: certificate.NewDownloader(client, sessions, cfg.Downloads.Dir, logger),
		Opener:       certificate.NewOpener(cfg.Downloads.Viewer, logger),
		User:         *user,
		PageSize:     cfg.Lists.PageSize,
		Logger:       logger,
	}
	if cfg.Chat.DatabaseURL != "" {
		deps.Chat = realtime.NewClient(realtime.Options{
			DatabaseURL:  cfg.Chat.DatabaseURL,
			Auth:         cfg.Chat.Auth,
			PollInterval: cfg.Chat.PollInterval,
			Logger:       logger,
		})
	}

	// Create TUI model
	model := tui.NewModel(tui.Options{
		Deps:    deps,
		Session: sessions,
		Timeout: cfg.Server.Timeout,
		Logger:  logger,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(model, opts...)

	logger.Info("starting TUI", "user", user.Username, "role", user.Role())

	final, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := final.(tui.Model); ok && m.SignedOut {
		fmt.Println("✓ Signed out")
	}

	logger.Info("shutting down")
	return nil
}

// authenticate resumes the saved session or asks for credentials
func authenticate(client *api.Client, sessions *store.SessionStore, in io.Reader, logger *slog.Logger) (*domain.User, error) {
	ctx := context.Background()

	resumeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	user, err := signin.Resume(resumeCtx, client, sessions, time.Now(), logger)
	cancel()
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, signin.ErrNoSession) {
		return nil, fmt.Errorf("could not restore your session: %w", err)
	}

	flow := &signin.Flow{
		Auth:      client,
		Sessions:  sessions,
		Registrar: client,
		In:        in,
		Out:       os.Stdout,
		ReadPassword: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd()))
		},
		Logger: logger,
	}
	user, err = flow.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return user, nil
}

// runSetupFlow asks for the service connection on first start
func runSetupFlow(cfg *config.Config, reader *bufio.Reader, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to vaxtui!")
	fmt.Println()

	prompt := func(label string) (string, error) {
		fmt.Print(label)
		input, err := reader.ReadString('\n')
		if err != nil && input == "" {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return strings.TrimSpace(input), nil
	}

	// Loop until the server answers
	var serverURL string
	for {
		var err error
		serverURL, err = prompt("Enter the vaccination service URL (e.g., http://127.0.0.1:8000): ")
		if err != nil {
			return err
		}
		if serverURL == "" {
			fmt.Println("Server URL cannot be empty. Please try again.")
			continue
		}
		serverURL = strings.TrimRight(serverURL, "/")

		fmt.Println()
		_, err = signin.WithSpinner(os.Stdout, "Contacting server...", func() (struct{}, error) {
			ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
			defer cancel()
			probe := api.NewClient(api.Options{BaseURL: serverURL, Timeout: probeTimeout, Logger: logger})
			return struct{}{}, probe.Ping(ctx)
		})
		if err != nil {
			fmt.Printf("✗ Could not reach %s: %v\n", serverURL, err)
			fmt.Println("Please check the URL and try again.")
			fmt.Println()
			continue
		}
		fmt.Println("✓ Server reachable")
		break
	}

	clientID, err := prompt("OAuth client ID: ")
	if err != nil {
		return err
	}
	if clientID == "" {
		return errors.New("client ID cannot be empty")
	}
	clientSecret, err := prompt("OAuth client secret (leave empty for public clients): ")
	if err != nil {
		return err
	}

	cfg.Server.URL = serverURL
	cfg.Server.ClientID = clientID
	cfg.Server.ClientSecret = clientSecret

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Printf("✓ Configuration saved to %s\n", config.ConfigFile())
	logger.Info("server configured", "url", serverURL)
	return nil
}
