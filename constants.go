package glidebridge

// MaxRequestArgsLength is the total argument size, in bytes, above which
// the host passes request arguments as a leaked byte-buffer vector rather
// than inline.
const MaxRequestArgsLength = 1 << 12

// FinishedScanCursor is the cursor handle reported when a cluster scan
// has visited every node.
const FinishedScanCursor = "finished"

// Key type names as reported by the TYPE command.
const (
	TypeString = "string"
	TypeList   = "list"
	TypeSet    = "set"
	TypeZSet   = "zset"
	TypeHash   = "hash"
	TypeStream = "stream"
)
