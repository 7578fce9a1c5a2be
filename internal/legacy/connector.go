package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/wpx/internal/shared"
	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DefaultPrefix  = "wp_"
	DefaultPort    = 3306
	DefaultCharset = "utf8mb4"
	defaultTimeout = 10 * time.Second
)

// RequiredTables are the logical tables a WordPress schema must provide.
var RequiredTables = []string{"posts", "users", "postmeta", "usermeta", "terms", "term_taxonomy", "term_relationships"}

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9_]*$`)

// Opener opens a database handle; [sql.Open] by default.
type Opener func(driver, dsn string) (*sql.DB, error)

// Connector opens connections to the legacy WordPress database.
//
// Connections are never cached: every [Connector.Connect] returns a fresh handle that the caller closes.
type Connector struct {
	cfg     shared.DatabaseConfig
	open    Opener
	logger  *log.Logger
	timeout time.Duration
}

// ConnectorOption configures a [Connector].
type ConnectorOption func(*Connector)

// WithOpener replaces the function used to open handles.
func WithOpener(o Opener) ConnectorOption {
	return func(c *Connector) { c.open = o }
}

// WithConnectorLogger sets the logger used for connection diagnostics.
func WithConnectorLogger(l *log.Logger) ConnectorOption {
	return func(c *Connector) { c.logger = l }
}

// NewConnector creates a [Connector], filling unset settings with WordPress defaults.
func NewConnector(cfg shared.DatabaseConfig, opts ...ConnectorOption) *Connector {
	if cfg.Driver == "" {
		cfg.Driver = "mysql"
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.Charset == "" {
		cfg.Charset = DefaultCharset
	}

	c := &Connector{cfg: cfg, open: sql.Open, timeout: defaultTimeout}
	if cfg.Timeout > 0 {
		c.timeout = time.Duration(cfg.Timeout) * time.Second
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = shared.NewLogger(nil)
	}
	return c
}

// Prefix returns the configured table prefix.
func (c *Connector) Prefix() string {
	return c.cfg.Prefix
}

// TableName applies the configured prefix to a logical table name.
func (c *Connector) TableName(logical string) string {
	return c.cfg.Prefix + logical
}

// DSN builds the driver connection string.
func (c *Connector) DSN() string {
	if c.cfg.Driver != "mysql" {
		return c.cfg.Name
	}

	mc := mysql.NewConfig()
	mc.User = c.cfg.Username
	mc.Passwd = c.cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	mc.DBName = c.cfg.Name
	mc.Timeout = c.timeout
	mc.Params = map[string]string{"charset": c.cfg.Charset}
	return mc.FormatDSN()
}

// Connect opens a new handle and verifies it with a trivial query.
func (c *Connector) Connect(ctx context.Context) (*sql.DB, error) {
	if !prefixPattern.MatchString(c.cfg.Prefix) {
		return nil, fmt.Errorf("%w: table prefix %q may only contain letters, digits and underscores", shared.ErrInvalidConfig, c.cfg.Prefix)
	}

	db, err := c.open(c.cfg.Driver, c.DSN())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrConnection, err)
	}

	probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var one int
	if err := db.QueryRowContext(probeCtx, "SELECT 1").Scan(&one); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", shared.ErrConnection, err)
	}
	return db, nil
}

// ConnectionState is the outcome class of [Connector.TestConnection].
type ConnectionState string

const (
	StateOK      ConnectionState = "ok"
	StateWarning ConnectionState = "warning"
	StateError   ConnectionState = "error"
)

// ConnectionStats holds the counts reported by a healthy connection.
type ConnectionStats struct {
	Posts int `json:"posts"`
	Users int `json:"users"`
}

// ConnectionStatus is the health report of the legacy source.
type ConnectionStatus struct {
	Status        ConnectionState  `json:"status"`
	Message       string           `json:"message"`
	Stats         *ConnectionStats `json:"stats,omitempty"`
	MissingTables []string         `json:"missing_tables,omitempty"`
}

// TestConnection checks reachability, required tables and basic counts.
//
// Failures are reported through the returned status, never as an error.
func (c *Connector) TestConnection(ctx context.Context) ConnectionStatus {
	db, err := c.Connect(ctx)
	if err != nil {
		c.logger.Error("legacy connection failed", "driver", c.cfg.Driver, "error", err)
		return ConnectionStatus{
			Status:  StateError,
			Message: "Failed to connect to WordPress database. Please check your settings.",
		}
	}
	defer db.Close()

	var missing []string
	for _, table := range RequiredTables {
		if !c.tableExists(ctx, db, table) {
			missing = append(missing, table)
		}
	}

	if len(missing) > 0 {
		c.logger.Warn("legacy schema incomplete", "missing", missing)
		return ConnectionStatus{
			Status:        StateWarning,
			Message:       "Connected to database but some WordPress tables are missing: " + strings.Join(missing, ", "),
			MissingTables: missing,
		}
	}

	stats := ConnectionStats{}
	postsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE post_status = 'publish'", c.TableName("posts"))
	if err := db.QueryRowContext(ctx, postsQuery).Scan(&stats.Posts); err != nil {
		c.logger.Warn("failed to count published posts", "error", err)
	}
	usersQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", c.TableName("users"))
	if err := db.QueryRowContext(ctx, usersQuery).Scan(&stats.Users); err != nil {
		c.logger.Warn("failed to count users", "error", err)
	}

	return ConnectionStatus{
		Status:  StateOK,
		Message: fmt.Sprintf("Successfully connected to WordPress database. Found %d published posts and %d users.", stats.Posts, stats.Users),
		Stats:   &stats,
	}
}

// tableExists probes a table with a query both MySQL and SQLite accept.
func (c *Connector) tableExists(ctx context.Context, db *sql.DB, logical string) bool {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", c.TableName(logical)))
	if err != nil {
		return false
	}
	rows.Close()
	return true
}
