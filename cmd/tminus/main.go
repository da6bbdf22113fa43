package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/tminus/internal/app"
	"github.com/dori/tminus/internal/config"
	"github.com/dori/tminus/internal/countdown"
	"github.com/dori/tminus/internal/ui"
	"github.com/dori/tminus/internal/ui/theme"
	"github.com/urfave/cli"
)

var (
	version = "0.1.0"
)

var (
	configPath string
	themeName  string

	globalFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "config, c",
			Usage:       "path to config.yaml",
			Value:       config.DefaultPath(),
			Destination: &configPath,
		},
		cli.StringFlag{
			Name:        "theme",
			Usage:       "theme for the TUI (dark, light)",
			Destination: &themeName,
		},
	}
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if errors.Is(err, countdown.ErrInvalidInput) {
			fmt.Fprintln(os.Stderr, err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "tminus",
		HelpName:  "tminus",
		Usage:     "count down to a date and time",
		UsageText: "tminus [--theme dark|light] [command] [arguments...]",
		Version:   version,
		Flags:     globalFlags,
		Before:    setupLogging,
		Action:    runTUI,
		Commands: []cli.Command{
			{
				Name:      "add",
				Aliases:   []string{"a"},
				Usage:     "save a named timer",
				ArgsUsage: "<name> <YYYY-MM-DD> <HH:MM>",
				Action:    add,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "show saved timers that have not expired",
				Action:  list,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "remove a saved timer",
				ArgsUsage: "<name>",
				Action:    remove,
			},
			{
				Name:      "watch",
				Aliases:   []string{"w"},
				Usage:     "count down in the terminal without the TUI",
				ArgsUsage: "[name]",
				Flags:     watchFlags,
				Action:    watch,
			},
			{
				Name:   "history",
				Usage:  "show countdowns that ran to zero",
				Flags:  historyFlags,
				Action: history,
			},
			{
				Name:  "version",
				Usage: "prints installed version of tminus",
				Action: func(ctx *cli.Context) error {
					fmt.Fprintf(ctx.App.Writer, "tminus v%s\n", version)
					return nil
				},
			},
		},
		HideVersion: true,
	}
}

// setupLogging sends log output to a file when TMINUS_DEBUG=1 and drops it
// otherwise, since stderr belongs to the TUI or the progress bar
func setupLogging(*cli.Context) error {
	if os.Getenv("TMINUS_DEBUG") != "1" {
		log.SetOutput(io.Discard)
		return nil
	}
	// The file stays open for the life of the process
	_, err := tea.LogToFile(filepath.Join(os.TempDir(), "tminus-debug.log"), "tminus")
	return err
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if themeName != "" {
		cfg.Theme = themeName
	}
	return cfg, nil
}

func runTUI(ctx *cli.Context) error {
	if ctx.NArg() > 0 {
		return cli.ShowAppHelp(ctx)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	t, ok := theme.ByName(cfg.Theme)
	if !ok {
		return fmt.Errorf("unknown theme %q (want dark or light)", cfg.Theme)
	}
	theme.SetTheme(t)

	application, err := app.New(cfg, app.Options{Exclusive: true, Sound: true})
	if err != nil {
		return err
	}
	defer application.Close()

	p := tea.NewProgram(
		ui.NewRootModel(application),
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
