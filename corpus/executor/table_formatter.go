package executor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/query"
)

// TableFormatter renders query results as markdown tables, applying
// the query's select columns, order-by and limit.
type TableFormatter struct {
	// MaxWidth is the maximum width for a value cell
	MaxWidth int
	// TruncateString is the string to append when truncating
	TruncateString string
}

// NewTableFormatter creates a table formatter with default settings.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		MaxWidth:       50,
		TruncateString: "...",
	}
}

// Result table columns.
const (
	ColDocument   = "document"
	ColSentence   = "sentence"
	ColValue      = "value"
	ColType       = "type"
	ColVariable   = "variable"
	ColCondition  = "condition"
	ColRightValue = "right_value"
	ColRightType  = "right_type"
)

var defaultColumns = []string{ColDocument, ColSentence, ColValue, ColType, ColVariable, ColCondition}

// FormatResult renders the result under the shaping rules of q. A nil
// query renders every column in natural order.
func (tf *TableFormatter) FormatResult(result *corpus.QueryResult, q *query.Query) string {
	if result == nil || result.IsEmpty() {
		return "_Empty result_"
	}

	columns := defaultColumns
	hasJoin := false
	for _, d := range result.Details() {
		if d.IsJoinResult() {
			hasJoin = true
			break
		}
	}
	if hasJoin {
		columns = append(append([]string(nil), columns...), ColRightValue, ColRightType)
	}

	details := append([]corpus.MatchDetail(nil), result.Details()...)
	if q != nil {
		if len(q.Select) > 0 {
			columns = q.Select
		}
		if q.OrderBy != "" {
			sortDetails(details, q.OrderBy, q.OrderDescending)
		}
		if q.Limit > 0 && q.Limit < len(details) {
			details = details[:q.Limit]
		}
	}

	tableString := &strings.Builder{}
	alignment := make([]tw.Align, len(columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}
	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(columns)

	for _, d := range details {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = tf.truncate(cellValue(d, col))
		}
		table.Append(row)
	}
	table.Render()

	tableString.WriteString(fmt.Sprintf("\n_%d rows_\n", len(details)))
	return tableString.String()
}

func (tf *TableFormatter) truncate(s string) string {
	if tf.MaxWidth > 0 && len(s) > tf.MaxWidth {
		return s[:tf.MaxWidth] + tf.TruncateString
	}
	return s
}

func cellValue(d corpus.MatchDetail, column string) string {
	switch column {
	case ColDocument:
		return fmt.Sprintf("%d", d.DocumentID())
	case ColSentence:
		if d.SentenceID() == corpus.NoSentence {
			return "-"
		}
		return fmt.Sprintf("%d", d.SentenceID())
	case ColValue:
		return formatValue(d.Value)
	case ColType:
		return d.Type.String()
	case ColVariable:
		return d.Variable
	case ColCondition:
		return d.ConditionID
	case ColRightValue:
		if !d.IsJoinResult() {
			return ""
		}
		return formatValue(d.RightValue)
	case ColRightType:
		if !d.IsJoinResult() {
			return ""
		}
		return d.RightType.String()
	}
	// A bound variable name selects the value of details carrying it.
	if strings.HasPrefix(column, "?") {
		if d.Variable == column {
			return formatValue(d.Value)
		}
		if d.IsJoinResult() && d.RightVariable == column {
			return formatValue(d.RightValue)
		}
		return ""
	}
	return ""
}

func formatValue(v corpus.Value) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", val)
	}
}

func sortDetails(details []corpus.MatchDetail, column string, descending bool) {
	sort.SliceStable(details, func(i, j int) bool {
		less := cellLess(details[i], details[j], column)
		if descending {
			return cellLess(details[j], details[i], column)
		}
		return less
	})
}

func cellLess(a, b corpus.MatchDetail, column string) bool {
	switch column {
	case ColDocument:
		return a.DocumentID() < b.DocumentID()
	case ColSentence:
		return a.SentenceID() < b.SentenceID()
	}
	at, aok := a.MatchedDate()
	bt, bok := b.MatchedDate()
	if aok && bok {
		return at.Before(bt)
	}
	return cellValue(a, column) < cellValue(b, column)
}
