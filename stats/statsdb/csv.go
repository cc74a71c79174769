package statsdb

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/fatih/structs"
	"github.com/tebeka/atexit"
)

// NewCSV creates a Recorder writing each table to prefix + "_<table>.csv".
func NewCSV(prefix string) Recorder {
	w := &csvWriter{
		prefix: prefix,
		tables: make(map[string]*csvTable),
	}

	atexit.Register(func() { w.Flush() })

	return w
}

type csvTable struct {
	file   *os.File
	writer *csv.Writer
}

type csvWriter struct {
	mu sync.Mutex

	prefix string
	tables map[string]*csvTable
}

func (w *csvWriter) CreateTable(tableName string, sampleEntry any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	mustBeFlatStruct(sampleEntry)

	file, err := os.OpenFile(w.prefix+"_"+tableName+".csv",
		os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		panic(err)
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(structs.Names(sampleEntry)); err != nil {
		panic(err)
	}

	w.tables[tableName] = &csvTable{file: file, writer: writer}
}

func (w *csvWriter) Insert(tableName string, entry any) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	row := make([]string, 0, len(structs.Names(entry)))
	for _, v := range fieldValues(entry) {
		row = append(row, fmt.Sprintf("%v", v))
	}

	if err := t.writer.Write(row); err != nil {
		panic(err)
	}
}

func (w *csvWriter) ListTables() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	tables := make([]string, 0, len(w.tables))
	for name := range w.tables {
		tables = append(tables, name)
	}

	return tables
}

func (w *csvWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, t := range w.tables {
		t.writer.Flush()
		if err := t.writer.Error(); err != nil {
			panic(err)
		}
	}
}

func (w *csvWriter) Close() {
	w.Flush()

	w.mu.Lock()
	defer w.mu.Unlock()

	for _, t := range w.tables {
		if err := t.file.Close(); err != nil {
			panic(err)
		}
	}
}
