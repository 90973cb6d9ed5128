// Package signin restores a saved session or runs the interactive
// username/password sign-in before the TUI starts.
package signin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vnma/vaxtui/internal/domain"
	"github.com/vnma/vaxtui/internal/listing"
)

const (
	authTimeout = 30 * time.Second
	maxAttempts = 3

	// typed at the username prompt to create an account instead
	registerCommand = "new"
)

// ErrNoSession means the user has to sign in again
var ErrNoSession = errors.New("no saved session")

// Authenticator is the part of the REST client sign-in needs
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*domain.Token, error)
	CurrentUser(ctx context.Context) (*domain.User, error)
	SetToken(token string)
}

// Registrar creates citizen accounts without a token
type Registrar interface {
	Register(ctx context.Context, in domain.AccountInput) (*domain.User, error)
}

// Sessions persists the signed-in state between runs
type Sessions interface {
	LoadSession() (*domain.Session, bool)
	SaveSession(s *domain.Session) error
	ClearSession() error
}

// Resume reuses the saved session. A missing, expired or rejected token
// clears the session and returns ErrNoSession. Other failures, such as an
// unreachable server, are returned as is and keep the session.
func Resume(ctx context.Context, auth Authenticator, sessions Sessions, now time.Time, logger *slog.Logger) (*domain.User, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sess, ok := sessions.LoadSession()
	if !ok || sess.Token.AccessToken == "" {
		return nil, ErrNoSession
	}
	if sess.Expired(now) {
		logger.Info("saved session expired", "username", sess.User.Username)
		_ = sessions.ClearSession()
		return nil, ErrNoSession
	}

	auth.SetToken(sess.Token.AccessToken)
	u, err := auth.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			logger.Info("saved session rejected", "username", sess.User.Username)
			auth.SetToken("")
			_ = sessions.ClearSession()
			return nil, ErrNoSession
		}
		return nil, err
	}

	sess.User = *u
	if err := sessions.SaveSession(sess); err != nil {
		logger.Warn("failed to refresh saved session", "error", err)
	}
	return u, nil
}

// Flow prompts for credentials on a terminal and signs in
type Flow struct {
	Auth     Authenticator
	Sessions Sessions

	// Registrar, when set, lets a new citizen create an account at the
	// username prompt
	Registrar Registrar

	In           io.Reader
	Out          io.Writer
	ReadPassword func() ([]byte, error) // reads without echo

	Now    func() time.Time
	Logger *slog.Logger
}

// Run asks for a username and password until sign-in succeeds or the
// attempts run out. With a Registrar, typing "new" as the username creates
// an account first and then signs in with it. The new session is saved.
func (f *Flow) Run(ctx context.Context) (*domain.User, error) {
	logger := f.logger()
	now := f.Now
	if now == nil {
		now = time.Now
	}

	fmt.Fprintln(f.Out)
	fmt.Fprintln(f.Out, "Sign in")
	fmt.Fprintln(f.Out, "━━━━━━━")

	reader := bufio.NewReader(f.In)
	readLine := func(label string) (string, error) {
		fmt.Fprint(f.Out, label)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimSpace(line), nil
	}

	usernamePrompt := "Username: "
	if f.Registrar != nil {
		usernamePrompt = fmt.Sprintf("Username (or %q to create an account): ", registerCommand)
	}

	for attempt := 1; ; attempt++ {
		username, err := readLine(usernamePrompt)
		if err != nil {
			return nil, fmt.Errorf("failed to read username: %w", err)
		}

		var password string
		if f.Registrar != nil && username == registerCommand {
			in, err := f.register(ctx, readLine)
			if err != nil {
				if errors.Is(err, domain.ErrValidation) {
					fmt.Fprintln(f.Out)
					attempt--
					continue
				}
				return nil, err
			}
			username, password = in.Username, in.Password
		} else {
			fmt.Fprint(f.Out, "Password: ")
			passwordBytes, err := f.ReadPassword()
			if err != nil {
				return nil, fmt.Errorf("failed to read password: %w", err)
			}
			fmt.Fprintln(f.Out) // newline after hidden input
			password = string(passwordBytes)
		}

		tok, err := WithSpinner(f.Out, "Signing in...", func() (*domain.Token, error) {
			loginCtx, cancel := context.WithTimeout(ctx, authTimeout)
			defer cancel()
			return f.Auth.Login(loginCtx, username, password)
		})
		if err != nil {
			fmt.Fprintf(f.Out, "✗ %s\n", domain.UserMessage(err, "Sign in failed"))
			var ve *domain.ValidationError
			retry := errors.Is(err, domain.ErrUnauthenticated) || errors.As(err, &ve)
			if !retry || attempt >= maxAttempts {
				return nil, err
			}
			fmt.Fprintln(f.Out)
			continue
		}

		userCtx, cancel := context.WithTimeout(ctx, authTimeout)
		u, err := f.Auth.CurrentUser(userCtx)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("failed to load your account: %w", err)
		}

		sess := &domain.Session{Token: *tok, User: *u}
		if tok.ExpiresIn > 0 {
			sess.ExpiresAt = now().Add(time.Duration(tok.ExpiresIn) * time.Second)
		}
		if err := f.Sessions.SaveSession(sess); err != nil {
			logger.Warn("failed to save session", "error", err)
		}

		fmt.Fprintf(f.Out, "✓ Signed in as %s\n", u.Username)
		return u, nil
	}
}

// register asks for the new account's details, checks them locally and
// creates the account. Rejected input is reported and returned as a
// validation error so the caller can go back to the prompt.
func (f *Flow) register(ctx context.Context, readLine func(string) (string, error)) (domain.AccountInput, error) {
	fmt.Fprintln(f.Out)
	fmt.Fprintln(f.Out, "Create account")
	fmt.Fprintln(f.Out, "━━━━━━━━━━━━━━")

	var in domain.AccountInput
	fields := []struct {
		label string
		dest  *string
	}{
		{"Username: ", &in.Username},
		{"Email: ", &in.Email},
		{"First name: ", &in.FirstName},
		{"Last name: ", &in.LastName},
	}
	for _, fld := range fields {
		v, err := readLine(fld.label)
		if err != nil {
			return in, fmt.Errorf("failed to read input: %w", err)
		}
		*fld.dest = v
	}

	secrets := []struct {
		label string
		dest  *string
	}{
		{"Password: ", &in.Password},
		{"Confirm password: ", &in.Confirm},
	}
	for _, sec := range secrets {
		fmt.Fprint(f.Out, sec.label)
		b, err := f.ReadPassword()
		if err != nil {
			return in, fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(f.Out)
		*sec.dest = string(b)
	}

	if err := listing.Validate(in); err != nil {
		fmt.Fprintf(f.Out, "✗ %s\n", domain.UserMessage(err, "Invalid account details"))
		return in, err
	}

	_, err := WithSpinner(f.Out, "Creating account...", func() (*domain.User, error) {
		regCtx, cancel := context.WithTimeout(ctx, authTimeout)
		defer cancel()
		return f.Registrar.Register(regCtx, in)
	})
	if err != nil {
		fmt.Fprintf(f.Out, "✗ %s\n", domain.UserMessage(err, "Could not create the account"))
		return in, err
	}
	fmt.Fprintf(f.Out, "✓ Account %s created\n", in.Username)
	f.logger().Info("account registered", "username", in.Username)
	return in, nil
}

func (f *Flow) logger() *slog.Logger {
	if f.Logger == nil {
		return slog.Default()
	}
	return f.Logger
}
