package service

import "github.com/pkordes/transfer-tracker/internal/domain"

// Validate checks c against every field rule of schema and returns one
// message per failed field, in schema declaration order. An empty result
// means the candidate may be persisted.
//
// Rules come from the schema alone: a field is reported only when it is
// required under the candidate's gate and the candidate leaves it missing.
// Numeric ranges (pax, GL count) are not checked here; the caller's input
// layer enforces them.
func Validate(schema domain.Schema, c domain.Candidate) []string {
	gate := c.Gate()
	var msgs []string
	for _, f := range schema.Fields() {
		if f.Required(gate) && f.Missing(c) {
			msgs = append(msgs, f.Message)
		}
	}
	return msgs
}
