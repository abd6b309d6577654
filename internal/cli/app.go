package cli

import (
	"context"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"nawabs/internal/build"
	"nawabs/internal/catalog"
	"nawabs/internal/config"
	"nawabs/internal/deps"
	"nawabs/internal/logx"
	"nawabs/internal/paths"
	"nawabs/internal/prompt"
	"nawabs/internal/tui"
	"nawabs/internal/vcs"
)

// app bundles everything a command handler needs: the discovered workspace,
// merged configuration, loggers, the exec runner and the asker.
type app struct {
	pp     paths.WorkspacePaths
	cfg    config.Config
	logger logx.Logger
	closer io.Closer
	runner vcs.Runner
	asker  prompt.Asker

	loader *catalog.Loader
}

// newApp discovers the workspace and assembles the per-command environment.
// The command name only labels the run's log file.
func newApp(command string) (*app, error) {
	pp, err := paths.Discover(flagWorkspace)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(&cfg); err != nil {
		return nil, err
	}

	fileLogger, closer, err := logx.New(pp, command)
	logger := logx.Tee{newConsoleLogger()}
	if err == nil {
		logger = append(logger, fileLogger)
	}

	var asker prompt.Asker
	if cfg.Interactive {
		asker = tui.NewPicker(os.Stdin, os.Stderr)
	} else {
		asker = prompt.NewTerminal(os.Stdin, os.Stderr)
	}

	a := &app{
		pp:     pp,
		cfg:    cfg,
		logger: logger,
		closer: closer,
		runner: vcs.CmdRunner{},
		asker:  asker,
	}
	a.loader = &catalog.Loader{
		Paths:  pp,
		Logger: logger,
		Refresher: &catalog.ScriptRefresher{
			Paths:  pp,
			NimExe: cfg.NimExe,
			Runner: a.runner,
			Logger: logger,
		},
	}
	return a, nil
}

// applyFlags merges command-line flags over the workspace configuration.
func applyFlags(cfg *config.Config) error {
	if flagNim != "" {
		cfg.NimExe = flagNim
	}
	if flagDepsDir != "" {
		cfg.DepsDir = flagDepsDir
	}
	if flagCloneHTTPS {
		cfg.CloneUsingHTTPS = true
	}
	if flagNoRecipes {
		cfg.NoRecipes = true
	}
	if flagDepsPolicy != "" {
		policy, err := config.ParsePolicy(flagDepsPolicy)
		if err != nil {
			return err
		}
		cfg.DepsPolicy = policy
	}

	cfg.Interactive = !flagNonInteractive && isatty.IsTerminal(os.Stdin.Fd())
	return nil
}

func (a *app) Close() {
	if a.closer != nil {
		a.closer.Close()
	}
}

func (a *app) client() *vcs.Client {
	return &vcs.Client{Runner: a.runner, Logger: a.logger}
}

func (a *app) loadCatalog(ctx context.Context) ([]catalog.Package, error) {
	return a.loader.Load(ctx)
}

func (a *app) cloner(pkgs []catalog.Package) (*deps.Cloner, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &deps.Cloner{
		Config:  &a.cfg,
		Paths:   a.pp,
		Catalog: pkgs,
		Client:  a.client(),
		Logger:  a.logger,
		Asker:   a.asker,
		WorkDir: workDir,
	}, nil
}

func (a *app) tinkerer(pkgs []catalog.Package, cloner *deps.Cloner) *build.Tinkerer {
	return &build.Tinkerer{
		Config:  &a.cfg,
		Paths:   a.pp,
		Catalog: pkgs,
		Runner:  a.runner,
		Logger:  a.logger,
		Asker:   a.asker,
		Cloner:  cloner,
		Out:     os.Stderr,
	}
}

// consoleLogger adapts charmbracelet/log to the Printf interface the
// services take. Messages log at debug level so --verbose gates them.
type consoleLogger struct {
	l *charmlog.Logger
}

func newConsoleLogger() consoleLogger {
	level := charmlog.InfoLevel
	if flagVerbose {
		level = charmlog.DebugLevel
	}
	return consoleLogger{l: charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})}
}

func (c consoleLogger) Printf(format string, v ...any) {
	c.l.Debugf(format, v...)
}

// reportForeignDeps surfaces accumulated system-level dependencies verbatim.
func (a *app) reportForeignDeps(out io.Writer) {
	if len(a.cfg.ForeignDeps) == 0 {
		return
	}
	io.WriteString(out, "Foreign dependencies (install these with your system package manager):\n")
	for _, dep := range a.cfg.ForeignDeps {
		io.WriteString(out, "  "+dep+"\n")
	}
}
