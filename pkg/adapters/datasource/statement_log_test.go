package datasource

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementLog_RecordsInOrder(t *testing.T) {
	log := NewStatementLog()
	log.Record("SELECT 1")
	log.Record("SELECT 2")

	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, log.Statements())
}

func TestStatementLog_StatementsReturnsACopy(t *testing.T) {
	log := NewStatementLog()
	log.Record("SELECT 1")

	stmts := log.Statements()
	stmts[0] = "mutated"

	assert.Equal(t, []string{"SELECT 1"}, log.Statements())
}

func TestStatementLog_Reset(t *testing.T) {
	log := NewStatementLog()
	log.Record("SELECT 1")
	log.Reset()

	assert.Empty(t, log.Statements())
}

func TestStatementLog_NilIsSafe(t *testing.T) {
	var log *StatementLog
	log.Record("SELECT 1")
	log.Reset()
	assert.Nil(t, log.Statements())
}

func TestStatementLog_ConcurrentRecord(t *testing.T) {
	log := NewStatementLog()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			log.Record(fmt.Sprintf("SELECT %d", n))
		}(i)
	}
	wg.Wait()

	assert.Len(t, log.Statements(), 50)
}

func TestTableStatsRow_TotalBytes(t *testing.T) {
	row := TableStatsRow{DataBytes: 4096, IndexBytes: 512}
	assert.Equal(t, int64(4608), row.TotalBytes())
}

func TestColumnRow_IsAutoIncrement(t *testing.T) {
	assert.True(t, ColumnRow{Extra: "auto_increment"}.IsAutoIncrement())
	assert.True(t, ColumnRow{Extra: "identity"}.IsAutoIncrement())
	assert.False(t, ColumnRow{Extra: ""}.IsAutoIncrement())
	assert.False(t, ColumnRow{Extra: "VIRTUAL GENERATED"}.IsAutoIncrement())
}
