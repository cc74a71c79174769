package statsdb

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/structs"

	// Need to use MySQL connections.
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// NewMySQL creates a Recorder writing to a fresh xid-stamped database on a
// MySQL server. The connection is configured through environment variables:
// MEMSIM_STATS_USERNAME (required), MEMSIM_STATS_PASSWORD, MEMSIM_STATS_IP
// (default 127.0.0.1), and MEMSIM_STATS_PORT (default 3306).
func NewMySQL() Recorder {
	w := &mysqlWriter{
		batchSize: 100000,
		tables:    make(map[string]*table),
	}

	w.connect()
	w.createDatabase()

	atexit.Register(func() { w.Flush() })

	return w
}

type mysqlWriter struct {
	mu sync.Mutex

	db     *sql.DB
	dbName string

	tables     map[string]*table
	batchSize  int
	entryCount int
}

func (w *mysqlWriter) connect() {
	username := os.Getenv("MEMSIM_STATS_USERNAME")
	if username == "" {
		panic("stats username is not set, " +
			"use environment variable MEMSIM_STATS_USERNAME to set it.")
	}

	password := os.Getenv("MEMSIM_STATS_PASSWORD")

	ipAddress := os.Getenv("MEMSIM_STATS_IP")
	if ipAddress == "" {
		ipAddress = "127.0.0.1"
	}

	portString := os.Getenv("MEMSIM_STATS_PORT")
	if portString == "" {
		portString = "3306"
	}
	port, err := strconv.Atoi(portString)
	if err != nil {
		panic(err)
	}

	connectStr := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		username, password, ipAddress, port)
	db, err := sql.Open("mysql", connectStr)
	if err != nil {
		panic(err)
	}

	w.db = db
}

func (w *mysqlWriter) createDatabase() {
	w.dbName = "memsim_" + xid.New().String()
	log.Printf("Results are recorded in database: %s\n", w.dbName)

	w.mustExecute("CREATE DATABASE " + w.dbName)
	w.mustExecute("USE " + w.dbName)
}

func (w *mysqlWriter) CreateTable(tableName string, sampleEntry any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	mustBeFlatStruct(sampleEntry)

	names := structs.Names(sampleEntry)
	cols := make([]string, 0, len(names))
	for i, n := range names {
		cols = append(cols, n+" "+mysqlType(sampleEntry, i))
	}

	w.mustExecute("CREATE TABLE " + tableName +
		" (\n\t" + strings.Join(cols, ",\n\t") + "\n) ENGINE=InnoDB;")

	w.tables[tableName] = &table{}
}

func mysqlType(entry any, field int) string {
	f := structs.Fields(entry)[field]

	switch f.Value().(type) {
	case string:
		return "varchar(200)"
	case float32, float64:
		return "double"
	case bool:
		return "bool"
	default:
		return "bigint"
	}
}

func (w *mysqlWriter) Insert(tableName string, entry any) {
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

func (w *mysqlWriter) ListTables() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	tables := make([]string, 0, len(w.tables))
	for name := range w.tables {
		tables = append(tables, name)
	}

	return tables
}

func (w *mysqlWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.flushLocked()
}

// flushLocked writes each table's buffered rows with one multi-row INSERT.
func (w *mysqlWriter) flushLocked() {
	if w.entryCount == 0 {
		return
	}

	for tableName, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		placeholders := "(?" +
			strings.Repeat(", ?", len(structs.Names(t.entries[0]))-1) + ")"

		sqlStr := "INSERT INTO " + tableName + " VALUES "
		vals := []any{}
		for i, entry := range t.entries {
			if i > 0 {
				sqlStr += ","
			}
			sqlStr += placeholders
			vals = append(vals, fieldValues(entry)...)
		}

		stmt, err := w.db.Prepare(sqlStr)
		if err != nil {
			panic(err)
		}

		if _, err := stmt.Exec(vals...); err != nil {
			panic(err)
		}

		if err := stmt.Close(); err != nil {
			panic(err)
		}

		t.entries = nil
	}

	w.entryCount = 0
}

func (w *mysqlWriter) Close() {
	w.Flush()

	if err := w.db.Close(); err != nil {
		panic(err)
	}
}

func (w *mysqlWriter) mustExecute(query string) sql.Result {
	res, err := w.db.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}
