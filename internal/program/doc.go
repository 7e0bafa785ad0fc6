// Package program loads transition tables and answers rule lookups.
//
// A table can be read from three sources:
//   - plain text, one rule per line: state read write move next
//   - YAML documents with start, input and rules fields
//   - CUE documents of the same shape, checked against a built-in schema
//
// Whatever the source, NewTable sorts the rules so that, for each state,
// rules reading an exact symbol come before rules reading the wildcard.
// The sort is stable, so among equally specific rules the first one in
// the source wins. After construction a Table is immutable and safe to
// share.
package program
