// Package sqlite stores subscription records in a single-file SQLite
// database using the pure Go modernc.org/sqlite driver.
//
//	storage, err := sqlite.Open(ctx, sqlite.Config{Path: "paywall.db"})
//	if err != nil {
//		return err
//	}
//	defer storage.Close()
//
// Records live in one key/value table created on Open. Multi-key writes run in
// a transaction.
package sqlite
