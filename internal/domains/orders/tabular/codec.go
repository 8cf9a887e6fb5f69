// Package tabular converts order collections to and from comma-separated text.
//
// The column order is fixed: id, productId, quantity, date, status, complete. Absent values
// are written as the literal string "null" so downstream tooling can tell them apart from
// empty strings. Decoding reads "null" back as the column default, so a status left unset
// comes back as PLACED.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// Null is written in place of absent values.
const Null = "null"

// Header is the first row of every export.
var Header = []string{"id", "productId", "quantity", "date", "status", "complete"}

const (
	colID = iota
	colProductID
	colQuantity
	colDate
	colStatus
	colComplete
)

// Rows with this many fields or fewer are treated as partial and dropped.
const minFields = 2

var (
	// ErrMalformed reports text that is not valid CSV (bad quoting and the like).
	ErrMalformed = errors.New("malformed csv input")
	// ErrInvalidValue reports a field that cannot be coerced to its column type, or an id that is not positive.
	ErrInvalidValue = errors.New("invalid column value")
	// ErrUnknownStatus reports a status that is not exactly PLACED, APPROVED or DELIVERED.
	ErrUnknownStatus = errors.New("unknown status literal")
)

var statusLiterals = map[domain.Status]string{
	domain.StatusPlaced:    "PLACED",
	domain.StatusApproved:  "APPROVED",
	domain.StatusDelivered: "DELIVERED",
}

var literalStatuses = map[string]domain.Status{
	"PLACED":    domain.StatusPlaced,
	"APPROVED":  domain.StatusApproved,
	"DELIVERED": domain.StatusDelivered,
}

// dateLayouts are tried in order. The second accepts timestamps without seconds, e.g. 2024-06-12T10:00Z.
var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"}

// RowError pins a decode failure to its line and column.
type RowError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d, column %s: %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Encode writes the header followed by one row per order, in the order given.
func Encode(w io.Writer, orders []*domain.Order) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, order := range orders {
		if order == nil {
			continue
		}
		if err := cw.Write(encodeRow(order)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func encodeRow(order *domain.Order) []string {
	return []string{
		strconv.FormatInt(order.ID, 10),
		strconv.FormatInt(order.ProductID, 10),
		strconv.FormatInt(order.Quantity, 10),
		formatDate(order.Date),
		formatStatus(order.Status),
		strconv.FormatBool(order.Complete),
	}
}

func formatDate(date *time.Time) string {
	if date == nil {
		return Null
	}
	return date.Format(time.RFC3339Nano)
}

func formatStatus(status domain.Status) string {
	if literal, ok := statusLiterals[status]; ok {
		return literal
	}
	if status == "" {
		return Null
	}
	return string(status)
}

// Decode parses every row into an order. Rows with two fields or fewer are skipped, as is a
// header row. The first row that cannot be coerced aborts decoding with a *RowError.
func Decode(r io.Reader) ([]*domain.Order, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	var orders []*domain.Order
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
			}
			return nil, err
		}
		if len(record) <= minFields || isHeader(record) {
			continue
		}
		line, _ := cr.FieldPos(0)
		order, err := decodeRow(line, record)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func isHeader(record []string) bool {
	return strings.TrimPrefix(strings.TrimSpace(record[colID]), "\ufeff") == Header[colID]
}

// decodeRow coerces fields positionally. Missing trailing columns are treated as absent.
func decodeRow(line int, record []string) (*domain.Order, error) {
	order := &domain.Order{Status: domain.StatusPlaced}
	var err error
	if order.ID, err = parseID(line, record[colID]); err != nil {
		return nil, err
	}
	if order.ProductID, err = parseInt(line, colProductID, record[colProductID]); err != nil {
		return nil, err
	}
	if order.Quantity, err = parseInt(line, colQuantity, record[colQuantity]); err != nil {
		return nil, err
	}
	if len(record) > colDate {
		if order.Date, err = parseDate(line, record[colDate]); err != nil {
			return nil, err
		}
	}
	if len(record) > colStatus {
		if order.Status, err = parseStatus(line, record[colStatus]); err != nil {
			return nil, err
		}
	}
	if len(record) > colComplete {
		if order.Complete, err = parseBool(line, record[colComplete]); err != nil {
			return nil, err
		}
	}
	if err := order.Validate(); err != nil {
		return nil, &RowError{Line: line, Column: Header[colQuantity], Value: record[colQuantity], Err: err}
	}
	return order, nil
}

func parseInt(line, col int, value string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, &RowError{Line: line, Column: Header[col], Value: value, Err: ErrInvalidValue}
	}
	return n, nil
}

// parseID rejects zero and negative ids; the stores only ever hand out ids from 1 upwards.
func parseID(line int, value string) (int64, error) {
	id, err := parseInt(line, colID, value)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, &RowError{Line: line, Column: Header[colID], Value: value, Err: ErrInvalidValue}
	}
	return id, nil
}

func parseDate(line int, value string) (*time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == Null {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, trimmed); err == nil {
			return &date, nil
		}
	}
	return nil, &RowError{Line: line, Column: Header[colDate], Value: value, Err: ErrInvalidValue}
}

// parseStatus is exact and case-sensitive. The null sentinel decodes to PLACED.
func parseStatus(line int, value string) (domain.Status, error) {
	if value == Null {
		return domain.StatusPlaced, nil
	}
	status, ok := literalStatuses[value]
	if !ok {
		return "", &RowError{Line: line, Column: Header[colStatus], Value: value, Err: ErrUnknownStatus}
	}
	return status, nil
}

func parseBool(line int, value string) (bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == Null {
		return false, nil
	}
	b, err := strconv.ParseBool(trimmed)
	if err != nil {
		return false, &RowError{Line: line, Column: Header[colComplete], Value: value, Err: ErrInvalidValue}
	}
	return b, nil
}
