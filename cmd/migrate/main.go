package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

func main() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	dir := "migrations"
	listOnly := false
	for _, a := range os.Args[1:] {
		if a == "--list" {
			listOnly = true
		} else {
			dir = a
		}
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping: %v", err)
	}
	log.Println("[Migrate] connected to database")

	if listOnly {
		if err := listApplied(db); err != nil {
			log.Fatalf("[Migrate] %v", err)
		}
		return
	}

	applied, failed, err := apply(db, dir)
	if err != nil {
		log.Fatalf("[Migrate] %v", err)
	}
	log.Printf("[Migrate] done: %d applied, %d failed", applied, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// apply runs every pending migrations/*.sql in lexical order, each in its
// own transaction, and records it in schema_migrations so reruns skip it.
// A failing migration is rolled back and counted; later files still run.
func apply(db *sql.DB, dir string) (applied, failed int, err error) {
	if _, err = db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return 0, 0, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	done, err := appliedSet(db)
	if err != nil {
		return 0, 0, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read migrations dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		if done[f] {
			log.Printf("[Migrate] %s already applied, skipping", f)
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return applied, failed, fmt.Errorf("read %s: %w", f, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			continue
		}
		if err := applyOne(db, f, string(data)); err != nil {
			log.Printf("[Migrate] %s failed: %v", f, err)
			failed++
			continue
		}
		log.Printf("[Migrate] %s applied", f)
		applied++
	}
	return applied, failed, nil
}

func applyOne(db *sql.DB, name, content string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations (filename) VALUES ($1)`, name); err != nil {
		return err
	}
	return tx.Commit()
}

func appliedSet(db *sql.DB) (map[string]bool, error) {
	rows, err := db.Query(`SELECT filename FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[string]bool)
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scan schema_migrations: %w", err)
		}
		done[f] = true
	}
	return done, rows.Err()
}

func listApplied(db *sql.DB) error {
	rows, err := db.Query(`SELECT filename, applied_at FROM schema_migrations ORDER BY filename`)
	if err != nil {
		return fmt.Errorf("query schema_migrations: %w", err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		var f, at string
		if err := rows.Scan(&f, &at); err != nil {
			return err
		}
		fmt.Printf("  %s  %s\n", f, at)
		n++
	}
	fmt.Printf("Total: %d applied migrations\n", n)
	return rows.Err()
}
