package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Aleph-Alpha/seekdb/v1/seekdb"
)

// Server is a seekdb.Backend on top of a gorm connection pool. It monitors
// the connection and reconnects in the background.
//
// Concurrency: the active *gorm.DB is stored in an atomic pointer and is
// swapped on reconnection without blocking statements in flight.
type Server struct {
	cfg             Config
	logger          *zap.Logger
	client          atomic.Pointer[gorm.DB]
	shutdownSignal  chan struct{}
	retryChanSignal chan error

	closeShutdownOnce sync.Once
}

var _ seekdb.Backend = (*Server)(nil)

// NewServer opens the connection pool described by cfg. A nil logger
// disables logging.
func NewServer(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:             cfg,
		logger:          logger.With(zap.String("component", "server")),
		shutdownSignal:  make(chan struct{}),
		retryChanSignal: make(chan error, 1),
	}
	conn, err := s.connect()
	if err != nil {
		return nil, err
	}
	s.client.Store(conn)
	return s, nil
}

// connect opens and pings a new pool.
func (s *Server) connect() (*gorm.DB, error) {
	database, err := gorm.Open(
		mysql.Open(s.cfg.DSN()),
		&gorm.Config{
			TranslateError: true,
			Logger:         gormlogger.Discard,
		})
	if err != nil {
		return nil, seekdb.NewError(seekdb.CategoryConnection, err, "opening connection to %s:%d", s.cfg.Connection.Host, s.cfg.Connection.Port)
	}

	databaseInstance, err := database.DB()
	if err != nil {
		return nil, seekdb.NewError(seekdb.CategoryConnection, err, "getting database instance")
	}

	details := s.cfg.ConnectionDetails
	maxOpenConns := details.MaxOpenConns
	if maxOpenConns <= 0 {
		maxOpenConns = 5
	}
	maxIdleConns := details.MaxIdleConns
	if maxIdleConns <= 0 {
		maxIdleConns = maxOpenConns
	}
	connMaxLifetime := details.ConnMaxLifetime
	if connMaxLifetime <= 0 {
		connMaxLifetime = 5 * time.Minute
	}
	databaseInstance.SetMaxOpenConns(maxOpenConns)
	databaseInstance.SetMaxIdleConns(maxIdleConns)
	databaseInstance.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := databaseInstance.PingContext(ctx); err != nil {
		_ = databaseInstance.Close()
		return nil, TranslateError(err)
	}

	s.logger.Info("connected to server",
		zap.String("host", s.cfg.Connection.Host),
		zap.Int("port", s.cfg.Connection.Port),
		zap.String("tenant", s.cfg.Connection.Tenant),
		zap.String("database", s.cfg.Connection.DbName),
	)
	return database, nil
}

// DB returns the active gorm handle.
func (s *Server) DB() *gorm.DB {
	return s.client.Load()
}

// Exec runs a statement and returns the number of affected rows.
//
// Statements are sent to the pool as-is. gorm's clause builder would
// rewrite every '?' including those inside string literals.
func (s *Server) Exec(ctx context.Context, query string, args []any) (int64, error) {
	db := s.DB().WithContext(ctx)
	result, err := db.Statement.ConnPool.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, s.fail(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, s.fail(err)
	}
	return n, nil
}

// Query runs a statement and returns all rows. Column values keep the type
// the driver scans them into: []byte for text and binary columns, int64 and
// float64 for numbers with the binary protocol.
func (s *Server) Query(ctx context.Context, query string, args []any) ([]seekdb.Row, error) {
	db := s.DB().WithContext(ctx)
	rows, err := db.Statement.ConnPool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.fail(err)
	}
	defer func() { _ = rows.Close() }()

	out, err := scanRows(rows)
	if err != nil {
		return nil, s.fail(err)
	}
	return out, nil
}

func scanRows(rows *sql.Rows) ([]seekdb.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []seekdb.Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		out = append(out, seekdb.NewRow(columns, values))
	}
	return out, rows.Err()
}

// fail translates err and wakes the reconnect loop on connection errors.
func (s *Server) fail(err error) error {
	err = TranslateError(err)
	if errors.Is(err, seekdb.ErrConnection) {
		select {
		case s.retryChanSignal <- err:
		default:
		}
	}
	return err
}

// Ping checks that the server answers.
func (s *Server) Ping(ctx context.Context) error {
	db, err := s.DB().DB()
	if err != nil {
		return TranslateError(err)
	}
	return TranslateError(db.PingContext(ctx))
}

// RetryConnection waits for connection failures and reopens the pool until
// it succeeds. It returns on shutdown or when ctx is done.
func (s *Server) RetryConnection(ctx context.Context) {
outerLoop:
	for {
		select {
		case <-s.shutdownSignal:
			s.logger.Info("stopping RetryConnection loop due to shutdown signal")
			return
		case <-ctx.Done():
			return
		case cause := <-s.retryChanSignal:
			s.logger.Warn("connection lost, reconnecting", zap.Error(cause))
		innerLoop:
			for {
				select {
				case <-s.shutdownSignal:
					return
				case <-ctx.Done():
					return
				default:
					newConn, err := s.connect()
					if err != nil {
						s.logger.Error("reconnection failed", zap.Error(err))
						select {
						case <-time.After(time.Second):
						case <-s.shutdownSignal:
							return
						case <-ctx.Done():
							return
						}
						continue innerLoop
					}
					old := s.client.Swap(newConn)
					if old != nil {
						if sqlDB, err := old.DB(); err == nil {
							_ = sqlDB.Close()
						}
					}
					s.logger.Info("reconnected to server")
					continue outerLoop
				}
			}
		}
	}
}

// MonitorConnection pings the server every HealthCheckInterval and signals
// RetryConnection when the ping fails.
func (s *Server) MonitorConnection(ctx context.Context) {
	interval := s.cfg.ConnectionDetails.HealthCheckInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdownSignal:
			s.logger.Info("stopping MonitorConnection loop due to shutdown signal")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.healthCheck(); err != nil {
				select {
				case s.retryChanSignal <- err:
				default:
				}
			}
		}
	}
}

func (s *Server) healthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// Close stops the background loops and closes the pool.
func (s *Server) Close() error {
	s.closeShutdownOnce.Do(func() {
		close(s.shutdownSignal)
	})

	db := s.DB()
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
