package hosttest

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/wippyai/glide-bridge/host"
)

// KV is one entry of a flattened host map.
type KV struct {
	Key   any
	Value any
}

// Plain flattens a host object graph into values go-cmp can compare:
// maps become []KV in insertion order and sets become a slice sorted by
// their printed form.
func Plain(obj host.Object) any {
	switch v := obj.(type) {
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = Plain(e)
		}
		return out
	case *host.Map:
		out := make([]KV, 0, v.Len())
		v.Range(func(k, val host.Object) bool {
			out = append(out, KV{Key: Plain(k), Value: Plain(val)})
			return true
		})
		return out
	case *host.Set:
		elems := v.Elements()
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = Plain(e)
		}
		sort.Slice(out, func(i, j int) bool {
			return fmt.Sprintf("%T%v", out[i], out[i]) < fmt.Sprintf("%T%v", out[j], out[j])
		})
		return out
	case *big.Int:
		return v.String()
	default:
		return v
	}
}
