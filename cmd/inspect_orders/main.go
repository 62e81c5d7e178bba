// inspect_orders dumps the order ledger and bet log for a quick look at
// what the bot has done, without going through the HTTP API.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	_ "modernc.org/sqlite"
)

var ordersCompact = `SELECT id, event_ticker,
	player_fav||' v '||player_dog AS matchup,
	tournament, target_cents AS tgt, market_cents AS mkt, contracts,
	printf('%.0f', COALESCE(h2h_win_pct,0)*100) AS h2h,
	CASE dry_run WHEN 1 THEN 'dry' ELSE 'live' END AS mode,
	status, placed_at
FROM placed_orders ORDER BY placed_at DESC, id DESC LIMIT ?`

var betsCompact = `SELECT id,
	player_fav||' v '||player_dog AS matchup,
	tournament, tournament_level AS level, surface,
	printf('%.0f', fav_probability*100) AS prob,
	target_cents AS tgt,
	COALESCE(lowest_price_reached,'') AS low,
	COALESCE(match_outcome,'') AS result,
	COALESCE(printf('%.2f', pnl),'') AS pnl,
	status
FROM tracked_bets ORDER BY tracked_at DESC, id DESC LIMIT ?`

func main() {
	n := flag.Int("n", 20, "number of recent rows to display")
	dir := flag.String("data", "data", "directory holding orders.db and bets.db")
	which := flag.String("db", "all", "which DB to inspect: orders, bets, or all")
	flag.Parse()

	if *which != "orders" && *which != "bets" && *which != "all" {
		fmt.Fprintf(os.Stderr, "unknown db %q (use orders, bets, or all)\n", *which)
		os.Exit(1)
	}

	if *which == "orders" || *which == "all" {
		printCompact("Placed Orders", *dir+"/orders.db", ordersCompact, *n)
	}
	if *which == "all" {
		fmt.Println()
	}
	if *which == "bets" || *which == "all" {
		printCompact("Tracked Bets", *dir+"/bets.db", betsCompact, *n)
	}
}

func printCompact(title, dbPath, query string, n int) {
	fmt.Printf("=== %s ===\n", title)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		fmt.Printf("  (cannot open %s: %v)\n", dbPath, err)
		return
	}
	defer db.Close()

	rows, err := db.Query(query, n)
	if err != nil {
		fmt.Printf("  (query failed: %v)\n", err)
		return
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		fmt.Printf("  (columns: %v)\n", err)
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			fmt.Printf("  (scan: %v)\n", err)
			return
		}
		for i, v := range vals {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			switch t := v.(type) {
			case nil:
				fmt.Fprint(w, "")
			case []byte:
				fmt.Fprint(w, string(t))
			default:
				fmt.Fprint(w, t)
			}
		}
		fmt.Fprintln(w)
		count++
	}
	w.Flush()
	fmt.Printf("(%d rows)\n", count)
}
