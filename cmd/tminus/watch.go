package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dori/tminus/internal/alarm"
	"github.com/dori/tminus/internal/app"
	"github.com/dori/tminus/internal/countdown"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var (
	watchDate string
	watchTime string
	watchName string

	watchFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "date, d",
			Usage:       "target date as YYYY-MM-DD",
			Destination: &watchDate,
		},
		cli.StringFlag{
			Name:        "time, t",
			Usage:       "target time as HH:MM",
			Destination: &watchTime,
		},
		cli.StringFlag{
			Name:        "name, n",
			Usage:       "save the timer under this name",
			Destination: &watchName,
		},
	}
)

func watch(ctx *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(cfg, app.Options{Exclusive: true, Sound: true})
	if err != nil {
		return err
	}
	defer a.Close()

	name, date, clock := watchName, watchDate, watchTime
	if ctx.NArg() > 0 {
		saved, ok := a.Controller.Load(ctx.Args().First())
		if !ok {
			return fmt.Errorf("no saved timer named %q", ctx.Args().First())
		}
		name, date, clock = saved.Name, saved.Date, saved.Time
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Subscribe before starting so the first tick is not missed
	events := a.Engine.Events()

	timer, err := a.Controller.Start(name, date, clock)
	if err != nil && timer.Target == 0 {
		return err
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	total := timer.Target - a.Engine.Now().UnixMilli()
	if total < 1 {
		total = 1
	}

	var left atomic.Int64
	left.Store(total)

	label := timer.DisplayName()
	p := mpb.NewWithContext(sigCtx, mpb.WithWidth(48), mpb.WithRefreshRate(200*time.Millisecond))
	bar := p.New(total,
		mpb.BarStyle().Lbound("╢").Filler("█").Tip("█").Padding("░").Rbound("╟"),
		mpb.PrependDecorators(
			decor.Name(label, decor.WC{W: len(label) + 1, C: decor.DindentRight}),
		),
		mpb.AppendDecorators(
			decor.OnComplete(
				decor.Any(func(decor.Statistics) string {
					return countdown.Decompose(left.Load()).String()
				}, decor.WC{W: 12}),
				"Time's up!",
			),
		),
	)

	for {
		select {
		case <-sigCtx.Done():
			a.Controller.Reset()
			bar.Abort(false)
			p.Wait()
			fmt.Fprintln(ctx.App.Writer, "Stopped.")
			return nil

		case ev, ok := <-events:
			if !ok {
				bar.Abort(false)
				p.Wait()
				return countdown.ErrEngineClosed
			}
			if !a.Controller.Accept(ev) {
				continue
			}

			if !ev.State.Expired {
				left.Store(ev.State.Remaining.Millis())
				bar.SetCurrent(elapsed(total, ev.State.Remaining.Millis()))
				continue
			}

			left.Store(0)
			bar.SetCurrent(total)
			p.Wait()

			if err := a.Controller.Expire(ev); err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			fmt.Fprintf(ctx.App.Writer, "%s: Time's up!\n", label)

			waitForAlarm(sigCtx, a.Alarm)
			return nil
		}
	}
}

// elapsed returns the bar position for remaining ms out of total, kept
// within [0, total]. The first tick can report more than total because
// total is sampled after the run starts.
func elapsed(total, remaining int64) int64 {
	return min(max(total-remaining, 0), total)
}

// waitForAlarm lets the tone play out unless interrupted
func waitForAlarm(ctx context.Context, al *alarm.Alarm) {
	if al == nil || al.Silent() {
		return
	}
	select {
	case <-time.After(alarm.DefaultDuration):
	case <-ctx.Done():
	}
	al.Stop()
}
