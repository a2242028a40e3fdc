package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrMalformedRecord  = errors.New("malformed record")
	ErrMissingProductID = errors.New("missing product identifier")
)

// A RejectedRecord reports one input row that failed normalization.
// It carries the original row fields so the caller can log or
// dead-letter the record; the rest of the batch continues.
type RejectedRecord struct {
	Fields map[string]string
	Reason error
}

func (e *RejectedRecord) Error() string {
	return fmt.Sprintf("record rejected: %v: %s", e.Reason, e.fieldsString())
}

func (e *RejectedRecord) Unwrap() error {
	return e.Reason
}

func (e *RejectedRecord) fieldsString() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%q", k, e.Fields[k])
	}
	return b.String()
}
