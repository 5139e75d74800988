// Package postgres contains PostgreSQL implementations of the store
// interfaces. Each store owns a typed accessor over store.DBTX so it works
// against either a connection pool or a transaction.
package postgres
