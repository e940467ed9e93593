// Package repository translates domain filters into Hygraph GraphQL
// documents and owns the gateway's local stores (audit trail, counters).
package repository

import "errors"

// ErrNotFound is returned when an upstream entity id/slug has no match.
var ErrNotFound = errors.New("not found")

type aggregateCount struct {
	Aggregate struct {
		Count int `json:"count"`
	} `json:"aggregate"`
}

// connectID builds the relation-connect shape Hygraph expects.
func connectID(id string) map[string]interface{} {
	return map[string]interface{}{"connect": map[string]interface{}{"id": id}}
}

// whereID builds a where clause matching a single id.
func whereID(id string) map[string]interface{} {
	return map[string]interface{}{"id": id}
}
