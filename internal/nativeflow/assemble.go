package nativeflow

// Media header subtype codes. Unknown media types fall back to the
// document code rather than failing assembly.
var mediaTypeCodes = map[string]int{
	"image":    1,
	"video":    2,
	"document": 3,
}

const (
	defaultMediaTypeCode = 3
	defaultHeaderType    = 1
)

// Assemble builds the wire envelope from a validated config and a
// normalized button list. It performs no validation of its own; run
// Validate first, or call Prepare which does both.
func Assemble(cfg MessageConfig, entries []any) MessageEnvelope {
	params := MessageParams{
		Body: TextSection{Text: cfg.Body},
	}
	if cfg.Footer != "" {
		params.Footer = &TextSection{Text: cfg.Footer}
	}

	switch {
	case cfg.HeaderMedia != nil:
		code, ok := mediaTypeCodes[cfg.HeaderMedia.MediaType]
		if !ok {
			code = defaultMediaTypeCode
		}
		params.Header = &Header{
			Type: code,
			Text: cfg.HeaderText,
			Media: &MediaAttachment{
				URL:     cfg.HeaderMedia.MediaURL,
				Caption: cfg.HeaderMedia.MediaCaption,
			},
		}
	case cfg.HeaderText != "":
		headerType := cfg.HeaderType
		if headerType == 0 {
			headerType = defaultHeaderType
		}
		params.Header = &Header{Type: headerType, Text: cfg.HeaderText}
	}

	return MessageEnvelope{
		Interactive: InteractiveMessage{
			NativeFlow: NativeFlowMessage{
				Buttons:       projectEntries(entries),
				MessageParams: params,
			},
		},
	}
}

// projectEntries coerces a normalized list into typed entries. Normalize
// output is either NativeFlowEntry values or canonical maps; anything
// else collapses to a zero entry rather than corrupting the envelope.
func projectEntries(entries []any) []NativeFlowEntry {
	out := make([]NativeFlowEntry, len(entries))
	for i, e := range entries {
		switch v := e.(type) {
		case NativeFlowEntry:
			out[i] = v
		case map[string]any:
			out[i] = NativeFlowEntry{
				Name:             stringField(v, "name"),
				ButtonParamsJSON: stringField(v, "buttonParamsJson"),
			}
		}
	}
	return out
}
