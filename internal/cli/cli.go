// Package cli implements the givelife command-line client.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"givelife/internal/util"
	"givelife/pkg/apiclient"
	"givelife/pkg/domain"
	"givelife/pkg/session"
)

// ErrUsage reports a malformed command line. Usage has already been printed.
var ErrUsage = errors.New("usage error")

type command struct {
	summary string
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"login":        {"sign in and store the session", runLogin},
	"register":     {"create an account: register <donor|hospital|admin|rbc|ministry>", runRegister},
	"profile":      {"show the signed-in profile, or update it with flags", runProfile},
	"logout":       {"forget the stored session", runLogout},
	"inventory":    {"blood stock for your hospital, or totals across hospitals", runInventory},
	"donors":       {"list registered donors", runDonors},
	"appointments": {"list appointments", runAppointments},
	"activity":     {"recent activity", runActivity},
}

type env struct {
	cfg    Config
	api    *apiclient.Client
	store  *session.Store
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
	now    func() time.Time
}

// Streams are the standard streams of one invocation.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run parses args and executes one command.
func Run(ctx context.Context, args []string, streams Streams) error {
	return run(ctx, args, streams, time.Now)
}

func run(ctx context.Context, args []string, streams Streams, now func() time.Time) error {
	if streams.In == nil {
		streams.In = strings.NewReader("")
	}
	if streams.Out == nil {
		streams.Out = io.Discard
	}
	if streams.Err == nil {
		streams.Err = io.Discard
	}

	fs := flag.NewFlagSet("givelife", flag.ContinueOnError)
	fs.SetOutput(streams.Err)
	configPath := fs.String("config", "", "config file (default: givelife.yaml if present)")
	apiURL := fs.String("api", "", "API base url")
	sessionFile := fs.String("session", "", "session file")
	fs.Usage = func() { usage(streams.Err, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return ErrUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return ErrUsage
	}
	name := fs.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(streams.Err, "unknown command %q\n", name)
		fs.Usage()
		return ErrUsage
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *apiURL != "" {
		cfg.APIBaseURL = *apiURL
	}
	if *sessionFile != "" {
		cfg.SessionFile = *sessionFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := util.InitLoggerTo(streams.Err, cfg.LogLevel, "text")
	api, err := apiclient.New(apiclient.Config{
		BaseURL:    cfg.APIBaseURL,
		Timeout:    cfg.APITimeout,
		RetryCount: cfg.APIRetryCount,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	store, err := session.New(ctx, session.Config{
		Auth:      api,
		Persister: session.FilePersister{Path: cfg.SessionFile},
		Logger:    logger,
		Now:       now,
	})
	if err != nil {
		return err
	}
	e := &env{
		cfg:    cfg,
		api:    api,
		store:  store,
		logger: logger,
		in:     streams.In,
		out:    streams.Out,
		now:    now,
	}
	if err := cmd.run(ctx, e, fs.Args()[1:]); err != nil && !errors.Is(err, flag.ErrHelp) {
		return err
	}
	return nil
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "usage: givelife [flags] <command> [command flags]")
	fmt.Fprintln(w, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-13s %s\n", name, commands[name].summary)
	}
	fmt.Fprintln(w, "\nflags:")
	fs.PrintDefaults()
}

// signedIn returns the stored user and token, or an error telling the
// operator to log in.
func (e *env) signedIn() (domain.User, string, error) {
	st := e.store.State()
	token := e.store.Token()
	if !st.Authenticated || st.User == nil || token == "" {
		return domain.User{}, "", fmt.Errorf("%w: run \"givelife login\" first", session.ErrNotAuthenticated)
	}
	return *st.User, token, nil
}

func newFlagSet(name string, e *env) *flag.FlagSet {
	fs := flag.NewFlagSet("givelife "+name, flag.ContinueOnError)
	fs.SetOutput(e.out)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return ErrUsage
	}
	return nil
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}
