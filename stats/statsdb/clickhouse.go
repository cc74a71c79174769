package statsdb

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/fatih/structs"
	"github.com/tebeka/atexit"
)

// NewClickHouse creates a Recorder writing to a ClickHouse server over the
// native protocol. Tables go into the given database, which must exist.
func NewClickHouse(
	host string, port int,
	database, username, password string,
) Recorder {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      time.Second * 30,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  time.Hour,
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
		BlockBufferSize:  10,
	})
	if err != nil {
		panic(fmt.Errorf("failed to connect to ClickHouse: %w", err))
	}

	if err := conn.Ping(context.Background()); err != nil {
		panic(fmt.Errorf("failed to ping ClickHouse: %w", err))
	}

	w := &clickhouseWriter{
		conn:      conn,
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type clickhouseWriter struct {
	mu sync.Mutex

	conn      clickhouse.Conn
	tables    map[string]*table
	batchSize int

	entryCount int
}

func (w *clickhouseWriter) CreateTable(tableName string, sampleEntry any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	mustBeFlatStruct(sampleEntry)

	names := structs.Names(sampleEntry)
	cols := make([]string, 0, len(names))
	for i, n := range names {
		cols = append(cols, n+" "+clickhouseType(sampleEntry, i))
	}

	createSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s
		) ENGINE = MergeTree()
		ORDER BY %s
	`, tableName, strings.Join(cols, ",\n\t\t\t"), names[0])

	err := w.conn.Exec(context.Background(), createSQL)
	if err != nil {
		panic(fmt.Errorf("failed to create table %s: %w", tableName, err))
	}

	w.tables[tableName] = &table{}
}

func clickhouseType(entry any, field int) string {
	f := structs.Fields(entry)[field]

	switch f.Value().(type) {
	case string:
		return "String"
	case float32, float64:
		return "Float64"
	case bool:
		return "Bool"
	case int, int8, int16, int32, int64:
		return "Int64"
	default:
		return "UInt64"
	}
}

func (w *clickhouseWriter) Insert(tableName string, entry any) {
	w.mu.Lock()

	t, exists := w.tables[tableName]
	if !exists {
		w.mu.Unlock()
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	t.entries = append(t.entries, entry)
	w.entryCount++

	if w.entryCount >= w.batchSize {
		w.flushLocked()
	}

	w.mu.Unlock()
}

func (w *clickhouseWriter) ListTables() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	tables := make([]string, 0, len(w.tables))
	for name := range w.tables {
		tables = append(tables, name)
	}

	return tables
}

func (w *clickhouseWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushLocked()
}

func (w *clickhouseWriter) flushLocked() {
	if w.entryCount == 0 {
		return
	}

	ctx := context.Background()

	for tableName, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		batch, err := w.conn.PrepareBatch(ctx,
			fmt.Sprintf("INSERT INTO %s", tableName))
		if err != nil {
			panic(fmt.Errorf("failed to prepare batch for %s: %w",
				tableName, err))
		}

		for _, entry := range t.entries {
			if err := batch.Append(fieldValues(entry)...); err != nil {
				panic(fmt.Errorf("failed to append to batch: %w", err))
			}
		}

		if err := batch.Send(); err != nil {
			panic(fmt.Errorf("failed to send batch: %w", err))
		}

		t.entries = t.entries[:0]
	}

	w.entryCount = 0
}

func (w *clickhouseWriter) Close() {
	w.Flush()

	if err := w.conn.Close(); err != nil {
		panic(fmt.Errorf("failed to close ClickHouse connection: %w", err))
	}
}
