// Package server connects to a SeekDB or OceanBase server over the MySQL
// wire protocol and implements seekdb.Backend on top of a gorm connection
// pool.
//
// # Connection
//
// Config describes the address, the tenant-qualified user and the pool.
// It can be built in code, loaded from YAML or read from SERVER_*
// environment variables:
//
//	cfg, err := server.NewConfigFromEnv()
//	if err != nil {
//	    return err
//	}
//	srv, err := server.NewServer(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	defer srv.Close()
//
//	client, err := seekdb.NewClient(srv)
//
// # Errors
//
// Every error returned by Exec and Query carries a seekdb category:
// unknown database or table errors become seekdb.ErrNotFound, broken
// connections seekdb.ErrConnection and all remaining statement failures
// seekdb.ErrSQL. The driver's *mysql.MySQLError stays reachable with
// errors.As.
//
// # Reconnection
//
// MonitorConnection pings the server periodically and RetryConnection
// reopens the pool after a failure. Statements that fail with a connection
// error also trigger a reconnect. FXModule runs both loops for the lifetime
// of the application.
package server
