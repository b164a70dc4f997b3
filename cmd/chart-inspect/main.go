// Command chart-inspect prints chart rows stored in Firestore.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"songrank/internal/firestore"
	"songrank/internal/model"
	"songrank/internal/sink"
)

func main() {
	projectID := flag.String("project", os.Getenv("GCP_PROJECT_ID"), "GCP project ID")
	collection := flag.String("collection", "chart_rows", "Firestore collection name")
	date := flag.String("date", "", "chart date to print, YYYY-MM-DD")
	countOnly := flag.Bool("count", false, "only show row counts per date")
	asCSV := flag.Bool("csv", false, "print the rows as CSV instead of a table")
	flag.Parse()

	if *projectID == "" {
		log.Fatal("-project or GCP_PROJECT_ID is required")
	}
	if !*countOnly && *date == "" {
		log.Fatal("-date is required unless -count is set")
	}

	ctx := context.Background()
	client, err := firestore.New(ctx, *projectID, *collection)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	if *countOnly {
		counts, err := client.CountByDate(ctx)
		if err != nil {
			log.Fatalf("Error counting rows: %v", err)
		}
		printCounts(os.Stdout, counts)
		return
	}

	rows, err := client.GetRowsForDate(ctx, *date)
	if err != nil {
		log.Fatalf("Error reading rows: %v", err)
	}
	if *asCSV {
		if err := sink.EncodeCSV(os.Stdout, rows); err != nil {
			log.Fatalf("Error writing CSV: %v", err)
		}
		return
	}
	printRows(os.Stdout, *date, rows)
}

func printRows(w io.Writer, date string, rows []model.ChartRow) {
	fmt.Fprintf(w, "Chart %s\n", date)
	fmt.Fprintln(w, "--------------------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-5s %-5s %s [%s]\n", r.CurrentRank, r.PreviousRank, r.Title, r.Artist)
	}
	fmt.Fprintln(w, "--------------------")
	fmt.Fprintf(w, "Total rows: %d\n", len(rows))
}

func printCounts(w io.Writer, counts map[string]int) {
	dates := make([]string, 0, len(counts))
	total := 0
	for d, n := range counts {
		dates = append(dates, d)
		total += n
	}
	sort.Strings(dates)

	fmt.Fprintln(w, "Rows per date:")
	fmt.Fprintln(w, "--------------------")
	for _, d := range dates {
		fmt.Fprintf(w, "%-12s %d\n", d, counts[d])
	}
	fmt.Fprintln(w, "--------------------")
	fmt.Fprintf(w, "%-12s %d\n", "TOTAL", total)
}
