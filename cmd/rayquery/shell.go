package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rayforce-db/rayforce-go"
	"github.com/rayforce-db/rayforce-go/internal/styles"
)

// runShell reads statements from stdin until EOF or \q, executing each
// against the connection and rendering the result.
func runShell(conn *rayforce.Connection, cfg Config) error {
	fmt.Println(styles.Header("rayquery"))
	fmt.Printf("%s %s %s\n", styles.Info("connected to"), styles.Bold(cfg.DSN), styles.Session(conn.SessionID()))
	fmt.Println(styles.Dim("backend: " + rayforce.CurrentBackend().String()))
	fmt.Println(styles.Dim(`type a statement, \q to quit`))

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(styles.Bold("ray> "))
		if !sc.Scan() {
			fmt.Println()
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			continue
		case line == `\q` || line == "exit" || line == "quit":
			return nil
		}
		if err := runOne(conn, cfg, line); err != nil {
			fmt.Println(styles.Error(err.Error()))
		}
	}
}

// runOne executes a single statement and prints the resulting table.
func runOne(conn *rayforce.Connection, cfg Config, query string) error {
	rs, err := conn.Query(query)
	if err != nil {
		return err
	}
	defer rs.Close() //nolint:errcheck
	rs.BatchSize = cfg.BatchSize

	tbl, err := rs.All()
	if err != nil {
		return err
	}
	printTable(tbl)
	return nil
}

func printTable(t *rayforce.Table) {
	cols := t.Columns()
	if len(cols) == 0 {
		fmt.Println(styles.Success("ok"))
		return
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = fmt.Sprintf("%s:%s", c.Name, c.Kind)
	}
	rows := make([][]string, t.Rows())
	for r := range rows {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.Values[r].String()
		}
		rows[r] = cells
	}

	fmt.Println(styles.RenderTable(headers, rows))
	fmt.Println(styles.RowCount(t.Rows()))
}
