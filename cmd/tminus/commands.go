package main

import (
	"fmt"

	"github.com/dori/tminus/internal/app"
	"github.com/dori/tminus/internal/model"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"
)

var (
	historyLimit int
	historyClear bool

	historyFlags = []cli.Flag{
		cli.IntFlag{
			Name:        "limit, n",
			Usage:       "number of entries to show, 0 for all",
			Value:       20,
			Destination: &historyLimit,
		},
		cli.BoolFlag{
			Name:        "clear",
			Usage:       "delete the whole history",
			Destination: &historyClear,
		},
	}
)

// openApp opens the store without the lock or the audio device
func openApp() (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg, app.Options{})
}

func describe(t model.Timer) string {
	return fmt.Sprintf("%s at %s (%s)", t.FormatDate(), t.Time, humanize.Time(t.TargetTime()))
}

func add(ctx *cli.Context) error {
	if ctx.NArg() != 3 {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	args := ctx.Args()
	timer, err := a.Controller.Save(args.Get(0), args.Get(1), args.Get(2))
	if err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "Saved %s: %s\n", timer.Name, describe(timer))
	return nil
}

func list(ctx *cli.Context) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	timers, err := a.Controller.Saved()
	if err != nil {
		return err
	}
	if len(timers) == 0 {
		fmt.Fprintln(ctx.App.Writer, "tminus: no saved timers")
		return nil
	}

	width := 0
	for _, t := range timers {
		width = max(width, len(t.Name))
	}
	for _, t := range timers {
		fmt.Fprintf(ctx.App.Writer, "%-*s  %s\n", width, t.Name, describe(t))
	}
	return nil
}

func remove(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	name := ctx.Args().First()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.Controller.Load(name); !ok {
		return fmt.Errorf("no saved timer named %q", name)
	}
	if err := a.Controller.Delete(name); err != nil {
		return err
	}

	fmt.Fprintf(ctx.App.Writer, "Deleted %s\n", name)
	return nil
}

func history(ctx *cli.Context) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if historyClear {
		n, err := a.DB.ClearCompletions()
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "Cleared %d entries\n", n)
		return nil
	}

	completions, err := a.DB.GetCompletions(historyLimit)
	if err != nil {
		return err
	}
	if len(completions) == 0 {
		fmt.Fprintln(ctx.App.Writer, "tminus: nothing has finished yet")
		return nil
	}

	for _, c := range completions {
		fmt.Fprintf(ctx.App.Writer, "%s  %-20s  %s\n",
			c.CompletedAt.Local().Format("2006-01-02 15:04"),
			c.Label(),
			humanize.Time(c.CompletedAt),
		)
	}
	return nil
}
