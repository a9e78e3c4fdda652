package datasource

import "sync"

// StatementLog records the SQL statements executed during an analysis so
// discovery reports can list them. Adapters append to it when one is attached.
type StatementLog struct {
	mu    sync.Mutex
	stmts []string
}

// NewStatementLog creates an empty statement log.
func NewStatementLog() *StatementLog {
	return &StatementLog{}
}

// Record appends a statement to the log. Safe for concurrent use.
func (l *StatementLog) Record(stmt string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stmts = append(l.stmts, stmt)
}

// Statements returns a copy of the recorded statements in execution order.
func (l *StatementLog) Statements() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.stmts))
	copy(out, l.stmts)
	return out
}

// Reset clears the log.
func (l *StatementLog) Reset() {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stmts = nil
}
