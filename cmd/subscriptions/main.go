package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/svwadmin/reservations-tracker/internal/export"
	"github.com/svwadmin/reservations-tracker/internal/subscription"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		dbPath = flag.String("db", "./subscriptions.db", "path to the registry database")
		out    = flag.String("out", "", "write an XLSX export to this path instead of listing")
		remove = flag.String("remove", "", "remove the subscription for this email")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	sqlStore, err := subscription.OpenSQLStore(*dbPath)
	if err != nil {
		printError("Error: open registry store: %v\n", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	registry, err := subscription.NewRegistry(ctx, sqlStore, log)
	if err != nil {
		printError("Error: load registry: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *remove != "":
		if err := registry.Remove(ctx, *remove); err != nil {
			printError("Error: remove %s: %v\n", *remove, err)
			os.Exit(1)
		}
		fmt.Printf("removed %s\n", *remove)
	case *out != "":
		data, err := export.NewService(registry, log).ExportSubscriptionsXLSX()
		if err != nil {
			printError("Error: export: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			printError("Error: write %s: %v\n", *out, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", *out)
	default:
		listSubscriptions(registry)
	}
}

func listSubscriptions(registry *subscription.Registry) {
	metas := registry.All()
	if len(metas) == 0 {
		fmt.Println("no subscriptions")
		return
	}
	for _, m := range metas {
		days := make([]string, len(m.Weekdays))
		for i, d := range m.Weekdays {
			days[i] = fmt.Sprint(d)
		}
		lead := "-"
		if m.ReminderLeadDays != nil {
			lead = fmt.Sprint(*m.ReminderLeadDays)
		}
		fmt.Printf("%-40s weekdays=[%s] lead_days=%s immediate=%t\n",
			m.Email, strings.Join(days, ","), lead, m.ImmediateNotifications)
	}
}
