package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"donorhub/internal/client"
	"donorhub/internal/domain"
)

// admintool drives the sync client against a running API. It is the
// terminal counterpart of the admin pages: list, triage, and delete records
// in any of the three collections.
//
//	admintool -collection recommendations list
//	admintool -token SECRET approve 1714690000000
//	admintool -base http://donorhub.school.example stats

func main() {
	var (
		baseFlag       string
		fallbacksFlag  string
		collectionFlag string
		tokenFlag      string
		timeoutFlag    time.Duration
	)

	flag.StringVar(&baseFlag, "base", client.DefaultBaseURL, "server base URL")
	flag.StringVar(&fallbacksFlag, "fallbacks", "", "comma-separated fallback origins probed after -base")
	flag.StringVar(&collectionFlag, "collection", "recommendations", "collection to operate on")
	flag.StringVar(&tokenFlag, "token", os.Getenv("ADMIN_TOKEN"), "admin bearer token for mutations")
	flag.DurationVar(&timeoutFlag, "timeout", 5*time.Second, "per-attempt timeout")
	flag.Parse()

	collection, err := domain.ParseCollection(strings.TrimSpace(collectionFlag))
	if err != nil {
		exitWithError(err)
	}

	args := flag.Args()
	if len(args) == 0 {
		exitWithError(errors.New("usage: admintool [flags] list|stats|create|approve|reject|complete|read|delete [id|json]"))
	}
	command := args[0]

	c := client.New(client.Options{
		BaseURL:        baseFlag,
		FallbackURLs:   splitOrigins(fallbacksFlag),
		Collection:     collection,
		Token:          tokenFlag,
		AttemptTimeout: timeoutFlag,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch command {
	case "list":
		records, err := c.FetchAll(ctx)
		if err != nil {
			exitWithError(err)
		}
		printRecords(collection, records)
	case "stats":
		if _, err := c.FetchAll(ctx); err != nil {
			exitWithError(err)
		}
		printStats(c.Stats())
	case "create":
		if len(args) < 2 {
			exitWithError(errors.New("create requires a JSON field mapping argument"))
		}
		fields, err := parseFields(args[1])
		if err != nil {
			exitWithError(err)
		}
		rec, err := c.Create(ctx, fields)
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("created %s\n", rec.ID())
	case "approve", "reject", "complete", "read":
		if len(args) < 2 {
			exitWithError(fmt.Errorf("%s requires a record id", command))
		}
		status := statusForCommand(command)
		rec, err := c.UpdateStatus(ctx, args[1], status)
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("%s is now %s\n", rec.ID(), rec.Status())
	case "delete":
		if len(args) < 2 {
			exitWithError(errors.New("delete requires a record id"))
		}
		removed, err := c.Delete(ctx, args[1])
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("deleted %s (%s)\n", removed.ID(), removed.StatusOrDefault(collection))
	default:
		exitWithError(fmt.Errorf("unknown command %q", command))
	}
}

func statusForCommand(command string) string {
	switch command {
	case "approve":
		return domain.StatusApproved
	case "reject":
		return domain.StatusRejected
	case "complete":
		return domain.StatusCompleted
	default:
		return domain.StatusRead
	}
}

func parseFields(arg string) (domain.Record, error) {
	var fields domain.Record
	if err := json.Unmarshal([]byte(arg), &fields); err != nil {
		return nil, fmt.Errorf("invalid JSON fields: %w", err)
	}
	return fields, nil
}

var titleCase = cases.Title(language.English)

func printRecords(c domain.Collection, records []domain.Record) {
	if len(records) == 0 {
		fmt.Println("no records")
		return
	}
	for _, rec := range records {
		name, _ := rec["name"].(string)
		fmt.Printf("%-16s  %-10s  %-24s  %s\n",
			rec.ID(),
			titleCase.String(rec.StatusOrDefault(c)),
			rec.Timestamp(),
			name,
		)
	}
}

func printStats(stats client.Aggregates) {
	fmt.Printf("total: %d\n", stats.Total)
	for status, count := range stats.ByStatus {
		fmt.Printf("%s: %d\n", titleCase.String(status), count)
	}
	if stats.AmountTotal > 0 {
		fmt.Printf("amount total: %.2f\n", stats.AmountTotal)
	}
}

func splitOrigins(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
