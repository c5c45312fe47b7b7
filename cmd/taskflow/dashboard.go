package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nhle/taskflow/internal/clock"
	"github.com/nhle/taskflow/internal/report"
	"github.com/nhle/taskflow/internal/ui"
)

func runDashboard(args []string) error {
	fs, configPath := newFlagSet("dashboard")
	email := fs.String("email", "", "show the dashboard of this user instead of all tasks")
	width := fs.Int("width", 0, "output width (default: $COLUMNS or 80)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e, err := setup(ctx, fs, *configPath)
	if err != nil {
		return err
	}
	defer e.store.Close()

	clk := clock.Real()
	reports := report.NewService(e.store, clk, e.log)

	title := "taskflow: all tasks"
	var scope *string
	if *email != "" {
		user, err := e.store.GetUserByEmail(ctx, *email)
		if err != nil {
			return fmt.Errorf("looking up %s: %w", *email, err)
		}
		scope = &user.ID
		title = "taskflow: " + user.Name
	}

	d, err := reports.Dashboard(ctx, scope)
	if err != nil {
		return err
	}

	w := *width
	if w == 0 {
		w, _ = strconv.Atoi(os.Getenv("COLUMNS"))
	}
	fmt.Println(ui.NewLayout(w).RenderDashboard(title, *d, clk.Now()))
	return nil
}
