package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/qgen/ent/schema"
)

const (
	llmEventsTable = "llm_request_events"
	runsTable      = "runs"
	questionsTable = "questions"
)

// sqlite is the dialect used for every statement the store builds.
var sqlite = entsql.Dialect(dialect.SQLite)

// tableSchemas maps each table to the ent schema that describes it.
func tableSchemas() []struct {
	name   string
	schema ent.Interface
} {
	return []struct {
		name   string
		schema ent.Interface
	}{
		{sequenceTable, entschema.GlobalSequence{}},
		{llmEventsTable, entschema.LLMRequestEvent{}},
		{runsTable, entschema.Run{}},
		{questionsTable, entschema.Question{}},
	}
}

// tables builds the migration tables from the ent schemas. Tables without
// a declared id get an auto-increment integer key, as ent generates.
func tables() ([]*schema.Table, error) {
	byName := make(map[string]*schema.Table)
	var out []*schema.Table
	for _, ts := range tableSchemas() {
		t, err := buildTable(ts.name, ts.schema)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", ts.name, err)
		}
		byName[ts.name] = t
		out = append(out, t)
	}

	// questions.run_id -> runs.id, removed with the run.
	runs, questions := byName[runsTable], byName[questionsTable]
	runID, ok := columnByName(questions, "run_id")
	if !ok {
		return nil, fmt.Errorf("table %s: missing run_id", questionsTable)
	}
	questions.ForeignKeys = append(questions.ForeignKeys, &schema.ForeignKey{
		Symbol:     "questions_runs_questions",
		Columns:    []*schema.Column{runID},
		RefTable:   runs,
		RefColumns: []*schema.Column{runs.PrimaryKey[0]},
		OnDelete:   schema.Cascade,
	})
	return out, nil
}

func buildTable(name string, s ent.Interface) (*schema.Table, error) {
	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, s.Fields()...)
	indexes = append(indexes, s.Indexes()...)

	t := &schema.Table{Name: name}
	var id *schema.Column
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("field %s: %w", d.Name, d.Err)
		}
		c := columnOf(d)
		if c.Name == "id" {
			id = c
			if c.Type == field.TypeInt || c.Type == field.TypeInt64 {
				c.Increment = true
			}
			continue
		}
		t.Columns = append(t.Columns, c)
	}
	if id == nil {
		id = &schema.Column{Name: "id", Type: field.TypeInt, Increment: true}
	}
	t.Columns = append([]*schema.Column{id}, t.Columns...)
	t.PrimaryKey = []*schema.Column{id}

	for _, ix := range indexes {
		d := ix.Descriptor()
		cols := make([]*schema.Column, 0, len(d.Fields))
		for _, fn := range d.Fields {
			c, ok := columnByName(t, fn)
			if !ok {
				return nil, fmt.Errorf("index on unknown field %q", fn)
			}
			cols = append(cols, c)
		}
		t.Indexes = append(t.Indexes, &schema.Index{
			Name:    indexName(name, d.Fields, d.StorageKey),
			Unique:  d.Unique,
			Columns: cols,
		})
	}
	return t, nil
}

func columnOf(d *field.Descriptor) *schema.Column {
	name := d.Name
	if d.StorageKey != "" {
		name = d.StorageKey
	}
	c := &schema.Column{
		Name:     name,
		Type:     d.Info.Type,
		Size:     int64(d.Size),
		Unique:   d.Unique,
		Nullable: d.Optional,
		Comment:  d.Comment,
	}
	// Function defaults are applied by the repositories, not the table.
	if d.Default != nil {
		c.Default = d.Default
	}
	return c
}

func columnByName(t *schema.Table, name string) (*schema.Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

func indexName(table string, fields []string, key string) string {
	if key != "" {
		return key
	}
	return table + "_" + strings.Join(fields, "_")
}

// migrate creates or updates the tables through ent's schema migrator.
func migrate(ctx context.Context, db *sql.DB) error {
	ts, err := tables()
	if err != nil {
		return err
	}
	m, err := schema.NewMigrate(entsql.OpenDB(dialect.SQLite, db))
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, ts...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
