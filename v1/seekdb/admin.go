package seekdb

import (
	"context"
	"fmt"
	"strings"
)

const schemataColumns = "SCHEMA_NAME, DEFAULT_CHARACTER_SET_NAME, DEFAULT_COLLATION_NAME"

// CreateDatabase creates a database if it does not exist yet.
func (c *Client) CreateDatabase(ctx context.Context, name string) (err error) {
	ctx, op := c.startOperation(ctx, "create_database", name)
	defer func() { op.end(err, 0) }()

	if err = validateDatabaseName(name); err != nil {
		return err
	}
	_, err = c.exec(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteIdentifier(name), nil)
	return err
}

// GetDatabase returns the database called name, or ErrNotFound.
func (c *Client) GetDatabase(ctx context.Context, name string) (db *Database, err error) {
	ctx, op := c.startOperation(ctx, "get_database", name)
	defer func() { op.end(err, 0) }()

	if err = validateDatabaseName(name); err != nil {
		return nil, err
	}
	rows, err := c.query(ctx,
		"SELECT "+schemataColumns+" FROM information_schema.SCHEMATA WHERE SCHEMA_NAME = ?",
		[]any{name})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, notFound("database %q", name)
	}
	d := c.databaseFromRow(rows[0])
	return &d, nil
}

// DeleteDatabase drops a database. Dropping a missing database is not an error.
func (c *Client) DeleteDatabase(ctx context.Context, name string) (err error) {
	ctx, op := c.startOperation(ctx, "delete_database", name)
	defer func() { op.end(err, 0) }()

	if err = validateDatabaseName(name); err != nil {
		return err
	}
	_, err = c.exec(ctx, "DROP DATABASE IF EXISTS "+quoteIdentifier(name), nil)
	return err
}

// ListDatabases returns the databases visible to the connected user. Nil
// limit and offset mean no paging.
func (c *Client) ListDatabases(ctx context.Context, limit, offset *uint32) (dbs []Database, err error) {
	ctx, op := c.startOperation(ctx, "list_databases", "")
	defer func() { op.end(err, int64(len(dbs))) }()

	var b strings.Builder
	b.WriteString("SELECT " + schemataColumns + " FROM information_schema.SCHEMATA")
	if limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *limit)
	}
	if offset != nil {
		if limit == nil {
			b.WriteString(" LIMIT " + maxLimit)
		}
		fmt.Fprintf(&b, " OFFSET %d", *offset)
	}

	rows, err := c.query(ctx, b.String(), nil)
	if err != nil {
		return nil, err
	}
	dbs = make([]Database, 0, len(rows))
	for _, row := range rows {
		dbs = append(dbs, c.databaseFromRow(row))
	}
	return dbs, nil
}

func (c *Client) databaseFromRow(row Row) Database {
	d := Database{Tenant: c.tenant}
	d.Name, _ = row.String("SCHEMA_NAME")
	d.Charset, _ = row.String("DEFAULT_CHARACTER_SET_NAME")
	d.Collation, _ = row.String("DEFAULT_COLLATION_NAME")
	return d
}

func validateDatabaseName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalidInput("database name must not be empty")
	}
	return nil
}
