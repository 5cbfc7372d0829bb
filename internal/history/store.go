// Package history records an audit trail of client registrations and
// restarts to an embedded Kùzu graph database. It is a pure
// observability add-on: the manager never blocks on it, and a Store that
// fails to open or write never affects session state.
package history

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kuzudb/go-kuzu"

	"github.com/xfce-go/xsmd/internal/arch"
	"github.com/xfce-go/xsmd/internal/domain"
)

const schema = `
CREATE NODE TABLE IF NOT EXISTS Client(
    client_id STRING,
    program STRING DEFAULT '',
    hostname STRING DEFAULT '',
    PRIMARY KEY (client_id)
);
CREATE NODE TABLE IF NOT EXISTS Session(
    name STRING,
    started_at TIMESTAMP,
    PRIMARY KEY (name)
);
CREATE REL TABLE IF NOT EXISTS REGISTERED_IN(FROM Client TO Session, registered_at TIMESTAMP);
CREATE REL TABLE IF NOT EXISTS RESTARTED_AS(FROM Client TO Client, restarted_at TIMESTAMP);
`

// Store wraps a single Kùzu connection behind a mutex. One connection is
// enough here: writes are fire-and-forget from the manager's notifier hook
// and reads are occasional CLI lookups, so a connection pool sized for
// concurrent writes would be unused machinery in this domain.
type Store struct {
	logger arch.Logger

	mu   sync.Mutex
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Open creates (or reuses) the Kùzu database at path and ensures its
// schema exists.
func Open(path string, logger arch.Logger) (*Store, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	conn, err := kuzu.NewConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("history: open connection: %w", err)
	}

	s := &Store{logger: logger, db: db, conn: conn}
	for _, stmt := range strings.Split(schema, ";\n") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := conn.Query(stmt + ";"); err != nil {
			conn.Close()
			db.Close()
			return nil, fmt.Errorf("history: apply schema: %w", err)
		}
	}
	return s, nil
}

// Close releases the underlying Kùzu connection and database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.Close()
	s.db.Close()
	return nil
}

// Notify implements arch.Notifier. Only EventClientRegistered carries
// anything worth recording; every other event type is ignored. Failures
// are logged, never returned or propagated — a dropped audit write must
// never be mistaken for a protocol error by the manager.
func (s *Store) Notify(e domain.Event) {
	if e.Type != domain.EventClientRegistered {
		return
	}
	if err := s.recordRegistration(e); err != nil {
		s.logger.Warn("history: failed to record registration", "client_id", e.ClientID, "error", err)
	}
}

func (s *Store) recordRegistration(e domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionName := e.SessionName
	if sessionName == "" {
		sessionName = "default"
	}

	if _, err := s.conn.Query(fmt.Sprintf(
		`MERGE (c:Client {client_id: %s}) ON CREATE SET c.program = %s, c.hostname = %s;`,
		quote(string(e.ClientID)), quote(e.Program), quote(e.Hostname),
	)); err != nil {
		return fmt.Errorf("upsert client: %w", err)
	}

	if _, err := s.conn.Query(fmt.Sprintf(
		`MERGE (s:Session {name: %s}) ON CREATE SET s.started_at = %s;`,
		quote(sessionName), timestamp(e.Timestamp),
	)); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := s.conn.Query(fmt.Sprintf(
		`MATCH (c:Client {client_id: %s}), (s:Session {name: %s})
		 CREATE (c)-[:REGISTERED_IN {registered_at: %s}]->(s);`,
		quote(string(e.ClientID)), quote(sessionName), timestamp(e.Timestamp),
	)); err != nil {
		return fmt.Errorf("create REGISTERED_IN edge: %w", err)
	}

	if e.PreviousID != "" && e.PreviousID != e.ClientID {
		if _, err := s.conn.Query(fmt.Sprintf(
			`MATCH (old:Client {client_id: %s}), (new:Client {client_id: %s})
			 CREATE (old)-[:RESTARTED_AS {restarted_at: %s}]->(new);`,
			quote(string(e.PreviousID)), quote(string(e.ClientID)), timestamp(e.Timestamp),
		)); err != nil {
			return fmt.Errorf("create RESTARTED_AS edge: %w", err)
		}
	}

	return nil
}

// quote renders a Go string as a Cypher string literal, escaping the
// characters that would otherwise terminate it early.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func timestamp(t time.Time) string {
	if t.IsZero() {
		return "current_timestamp()"
	}
	return "timestamp('" + t.UTC().Format("2006-01-02 15:04:05") + "')"
}

var _ arch.Notifier = (*Store)(nil)
