// Command quickstart demonstrates the Get operation pipeline against an
// in-memory sqlite database: registry-based resolution, blocking execution,
// and live observation driven by change notifications.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/MrZLO/storio/storio"
	"github.com/MrZLO/storio/storio/sqlengine"
)

type User struct {
	ID    int64
	Name  string
	Email string
}

func main() {
	ctx := context.Background()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() { _ = db.Close() }()

	if _, err = db.ExecContext(ctx, `CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, email TEXT)`); err != nil {
		log.Fatal("failed to create schema: ", err)
	}

	registry := storio.NewTypeRegistry()
	storio.RegisterGetResolver(registry, storio.NewGetResolver(func(cursor storio.Cursor) (User, error) {
		var user User
		scanErr := cursor.Scan(&user.ID, &user.Name, &user.Email)
		return user, scanErr
	}))

	store, err := sqlengine.NewStoreFromSQLDB(db,
		sqlengine.WithDialect("sqlite3"),
		sqlengine.WithTypeRegistry(registry),
		sqlengine.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))),
	)
	if err != nil {
		log.Fatal("failed to create store: ", err)
	}

	operation, err := storio.GetObject[User](store).
		WithQuery(storio.BuildQuery().
			Table("users").
			Where("email = ?", "gopher@example.com").
			Finalize()).
		Prepare()
	if err != nil {
		log.Fatal("failed to prepare operation: ", err)
	}

	// No rows yet: absence, not an error.
	_, found, err := operation.ExecuteBlocking(ctx)
	if err != nil {
		log.Fatal("get failed: ", err)
	}
	fmt.Println("found before insert:", found)

	// Observe the query: the first result is replayed immediately, every
	// change of the users table re-executes it.
	subscription, err := operation.Observe(ctx)
	if err != nil {
		log.Fatal("observe failed: ", err)
	}
	defer subscription.Unsubscribe()

	initial := <-subscription.Results()
	fmt.Println("initial emission found:", initial.Found)

	if _, err = store.Exec(ctx, `INSERT INTO users (name, email) VALUES (?, ?)`, "Gopher", "gopher@example.com"); err != nil {
		log.Fatal("insert failed: ", err)
	}
	store.NotifyChange(ctx, storio.NewChange("users"))

	updated := <-subscription.Results()
	fmt.Printf("after change: found=%v user=%+v\n", updated.Found, updated.Object)
}
