package models

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLConfig describes a MySQL or MariaDB connection.
type MySQLConfig struct {
	Host     string            `op:"host" default:"localhost"`
	Port     int               `op:"port" default:"3306"`
	User     string            `op:"user" default:"root"`
	Password SecretString      `op:"password,optional"`
	Database string            `op:"database"`
	Timeout  time.Duration     `op:"timeout" default:"10s"`
	Params   map[string]string `op:"params,optional"`
}

// EnvPrefix makes MYSQL_HOST, MYSQL_USER and so on override stored fields in
// developer mode.
func (c MySQLConfig) EnvPrefix() string { return "MYSQL_" }

// Config returns the go-sql-driver configuration.
func (c MySQLConfig) Config() *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password.Reveal()
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	cfg.DBName = c.Database
	cfg.Timeout = c.Timeout
	cfg.ParseTime = true
	if len(c.Params) > 0 {
		cfg.Params = make(map[string]string, len(c.Params))
		for k, v := range c.Params {
			cfg.Params[k] = v
		}
	}
	return cfg
}

// DSN formats the connection string. It contains the password.
func (c MySQLConfig) DSN() string {
	return c.Config().FormatDSN()
}

// Open connects with go-sql-driver/mysql and pings the server.
func (c MySQLConfig) Open(ctx context.Context) (*sql.DB, error) {
	return openDB(ctx, "mysql", c.DSN())
}
