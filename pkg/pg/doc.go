// Package pg stores subscription records in PostgreSQL through pgx/v5.
//
// Connect opens a pool with retries, Migrate applies the embedded goose
// migrations that create the paywall_kv table, and Storage exposes that table
// as a kv.Storage:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	storage := pg.NewStorage(pool)
//
// SetMany runs in a transaction and DeleteMany is a single statement, so a
// subscription's keys are written and removed together.
package pg
