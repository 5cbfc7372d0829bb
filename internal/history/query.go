package history

import (
	"fmt"
	"time"
)

// Registration is one row of a client's registration lineage: which
// session it registered in, when, and — if it replaced an earlier
// registration — which client id it restarted from.
type Registration struct {
	ClientID     string
	SessionName  string
	RegisteredAt time.Time
	RestartedFrom string
}

// Lineage returns every session a client (or any client it descends from
// via RESTARTED_AS) has registered in, most recent first. Queried by
// `xsmd history <client-id>`.
func (s *Store) Lineage(clientID string) ([]Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`
		MATCH (ancestor:Client)-[:RESTARTED_AS*0..]->(c:Client {client_id: %s})
		MATCH (ancestor)-[r:REGISTERED_IN]->(s:Session)
		RETURN ancestor.client_id, s.name, r.registered_at
		ORDER BY r.registered_at DESC;`, quote(clientID))

	result, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("history: query lineage: %w", err)
	}
	defer result.Close()

	var out []Registration
	for result.HasNext() {
		record, err := result.Next()
		if err != nil {
			return nil, fmt.Errorf("history: read lineage row: %w", err)
		}
		if len(record) < 3 {
			return nil, fmt.Errorf("history: unexpected lineage row shape: %d fields", len(record))
		}
		ancestorID, _ := record[0].(string)
		sessionName, _ := record[1].(string)
		registeredAt, _ := record[2].(time.Time)

		reg := Registration{ClientID: clientID, SessionName: sessionName, RegisteredAt: registeredAt}
		if ancestorID != clientID {
			reg.RestartedFrom = ancestorID
		}
		out = append(out, reg)
	}
	return out, nil
}
