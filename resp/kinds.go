package resp

import "strconv"

// VerbatimFormat is the three letter format tag of a verbatim string.
type VerbatimFormat string

const (
	FormatText     VerbatimFormat = "txt"
	FormatMarkdown VerbatimFormat = "mkd"
)

// PushKind is the category of a push message.
type PushKind struct {
	name  string
	other string
}

var (
	PushDisconnection = PushKind{name: "Disconnection"}
	PushInvalidate    = PushKind{name: "Invalidate"}
	PushMessage       = PushKind{name: "Message"}
	PushPMessage      = PushKind{name: "PMessage"}
	PushSMessage      = PushKind{name: "SMessage"}
	PushUnsubscribe   = PushKind{name: "Unsubscribe"}
	PushPUnsubscribe  = PushKind{name: "PUnsubscribe"}
	PushSUnsubscribe  = PushKind{name: "SUnsubscribe"}
	PushSubscribe     = PushKind{name: "Subscribe"}
	PushPSubscribe    = PushKind{name: "PSubscribe"}
	PushSSubscribe    = PushKind{name: "SSubscribe"}
)

var pushByWire = map[string]PushKind{
	"invalidate":   PushInvalidate,
	"message":      PushMessage,
	"pmessage":     PushPMessage,
	"smessage":     PushSMessage,
	"unsubscribe":  PushUnsubscribe,
	"punsubscribe": PushPUnsubscribe,
	"sunsubscribe": PushSUnsubscribe,
	"subscribe":    PushSubscribe,
	"psubscribe":   PushPSubscribe,
	"ssubscribe":   PushSSubscribe,
}

// PushOther returns the kind used for push types the core does not know.
func PushOther(kind string) PushKind {
	return PushKind{name: "Other", other: kind}
}

// ParsePushKind maps the wire name of a push message to its kind.
func ParsePushKind(wire string) PushKind {
	if k, ok := pushByWire[wire]; ok {
		return k
	}
	return PushOther(wire)
}

// String renders the kind the way the host runtime sees it.
func (k PushKind) String() string {
	if k.name == "" {
		return "Other(\"\")"
	}
	if k.name == "Other" {
		return "Other(" + strconv.Quote(k.other) + ")"
	}
	return k.name
}

// ServerError is a structured error reply.
type ServerError struct {
	Code   string // e.g. "ERR", "MOVED", "NOSCRIPT"
	Detail string
}

// Error renders the error as "<code>: <detail>".
func (e *ServerError) Error() string {
	switch {
	case e.Code == "":
		return e.Detail
	case e.Detail == "":
		return e.Code
	default:
		return e.Code + ": " + e.Detail
	}
}
