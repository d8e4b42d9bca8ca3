// Package nativeflow converts loosely shaped interactive buttons into
// the canonical native-flow wire format: classification of button
// variants, normalization of legacy shapes, aggregate validation, and
// assembly of the message envelope.
//
// Everything here is pure and stateless; delivery belongs to the
// transport package.
package nativeflow

// Prepare runs the full pipeline over raw input: validate, normalize,
// assemble. On validation failure it returns a *ValidationError carrying
// every problem found; the envelope is only built from input that passed.
func Prepare(cfg MessageConfig, buttons []any) (*MessageEnvelope, error) {
	result := Validate(cfg, buttons)
	if !result.IsValid {
		return nil, ValidationFailed("", result)
	}

	envelope := Assemble(cfg, Normalize(buttons))
	return &envelope, nil
}
