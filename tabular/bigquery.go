package tabular

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

type WrappedBigQuery struct {
	Context context.Context
	Client  *bigquery.Client
	Project string
}

// NewWrappedBigQuery connects to BigQuery as project.
func NewWrappedBigQuery(ctx context.Context, project string) (*WrappedBigQuery, error) {
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("Connecting to BigQuery: %w", err)
	}

	return &WrappedBigQuery{Context: ctx, Client: client, Project: project}, nil
}

func (wbq *WrappedBigQuery) Close() error {
	return wbq.Client.Close()
}

// TableQuery builds a query that returns every column of a fully qualified
// table, e.g. "project.dataset.cohort".
func TableQuery(table string) string {
	return fmt.Sprintf("SELECT * FROM `%s`", strings.Trim(table, "`"))
}

// QueryTable runs a standard SQL query and collects the result as a Table.
// NULL values become empty strings; everything else is formatted with
// fmt.Sprint.
func (wbq *WrappedBigQuery) QueryTable(sql string) (Table, error) {
	t := Table{}

	itr, err := wbq.Client.Query(sql).Read(wbq.Context)
	if err != nil {
		return t, err
	}

	for {
		var values []bigquery.Value
		err := itr.Next(&values)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return t, err
		}

		if t.Header == nil {
			t.Header = schemaNames(itr.Schema)
		}

		t.Rows = append(t.Rows, formatValues(values))
	}

	if t.Header == nil {
		t.Header = schemaNames(itr.Schema)
	}

	return t, nil
}

func schemaNames(schema bigquery.Schema) []string {
	out := make([]string, 0, len(schema))
	for _, field := range schema {
		out = append(out, field.Name)
	}

	return out
}

func formatValues(values []bigquery.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		out[i] = fmt.Sprint(v)
	}

	return out
}
