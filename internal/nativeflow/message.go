package nativeflow

// --- Message configuration ---

// MessageConfig is the caller-facing description of an interactive
// message: required body text plus optional footer and header. Header
// media takes precedence over header text when both are set.
type MessageConfig struct {
	Body        string       `json:"body"`
	Footer      string       `json:"footer,omitempty"`
	HeaderType  int          `json:"headerType,omitempty"`
	HeaderText  string       `json:"headerText,omitempty"`
	HeaderMedia *HeaderMedia `json:"headerMedia,omitempty"`
}

// HeaderMedia attaches an image, video, or document to the header.
type HeaderMedia struct {
	MediaType    string `json:"mediaType"`
	MediaURL     string `json:"mediaUrl"`
	MediaCaption string `json:"mediaCaption,omitempty"`
}

// --- Wire envelope ---

// MessageEnvelope is the outermost wire object handed to the transport.
type MessageEnvelope struct {
	Interactive InteractiveMessage `json:"interactive"`
}

type InteractiveMessage struct {
	NativeFlow NativeFlowMessage `json:"nativeFlow"`
}

type NativeFlowMessage struct {
	Buttons       []NativeFlowEntry `json:"buttons"`
	MessageParams MessageParams     `json:"messageParams"`
}

// MessageParams carries the textual content alongside the buttons. Body
// is always present; footer and header are omitted entirely when unset.
type MessageParams struct {
	Body   TextSection  `json:"body"`
	Footer *TextSection `json:"footer,omitempty"`
	Header *Header      `json:"header,omitempty"`
}

type TextSection struct {
	Text string `json:"text"`
}

// Header carries a numeric subtype plus either text or a media
// attachment. Type 1 is text; media headers use the attachment's code.
type Header struct {
	Type  int              `json:"type"`
	Text  string           `json:"text"`
	Media *MediaAttachment `json:"media,omitempty"`
}

// MediaAttachment always serializes its caption, even when empty, so
// receivers see a stable shape.
type MediaAttachment struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}
