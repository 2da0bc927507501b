package bridge

import (
	"strconv"

	glidebridge "github.com/wippyai/glide-bridge"
	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/guard"
	"github.com/wippyai/glide-bridge/host"
	"github.com/wippyai/glide-bridge/resource"
	"github.com/wippyai/glide-bridge/transcoder"
)

// ValueFromPointer redeems a reply handle and returns it as host objects
// with strings as host text.
func (b *Bridge) ValueFromPointer(env host.Env, handle int64) host.Object {
	return guard.Call[host.Object](env, "valueFromPointer", nil, func() (host.Object, error) {
		return b.resolve(env, handle, true)
	})
}

// ValueFromPointerBinary is ValueFromPointer with strings as byte arrays.
func (b *Bridge) ValueFromPointerBinary(env host.Env, handle int64) host.Object {
	return guard.Call[host.Object](env, "valueFromPointerBinary", nil, func() (host.Object, error) {
		return b.resolve(env, handle, false)
	})
}

func (b *Bridge) resolve(env host.Env, handle int64, utf8 bool) (host.Object, error) {
	v, err := b.replies.Redeem(resource.Handle(handle))
	if err != nil {
		return nil, err
	}
	return transcoder.Translate(env, v, utf8)
}

// CreateLeakedBytesVec copies a host byte[][] into native memory and
// returns a handle to it.
func (b *Bridge) CreateLeakedBytesVec(env host.Env, arr host.Object) int64 {
	return guard.Call(env, "createLeakedBytesVec", int64(0), func() (int64, error) {
		n, err := env.ArrayLength(arr)
		if err != nil {
			return 0, errors.BoundaryAPI(nil, "read argument array length", err)
		}

		vec := make([][]byte, n)
		for i := 0; i < n; i++ {
			elem, err := env.ArrayElement(arr, i)
			if err != nil {
				return 0, errors.BoundaryAPI([]string{"[" + strconv.Itoa(i) + "]"}, "read argument", err)
			}
			data, err := env.ByteArrayValue(elem)
			if err != nil {
				return 0, errors.BoundaryAPI([]string{"[" + strconv.Itoa(i) + "]"}, "read argument bytes", err)
			}
			vec[i] = data
		}

		h, err := b.args.Insert(vec)
		return int64(h), err
	})
}

// MaxRequestArgsLengthInBytes returns the inline argument size limit.
func (b *Bridge) MaxRequestArgsLengthInBytes() int64 {
	return glidebridge.MaxRequestArgsLength
}

func (b *Bridge) constant(env host.Env, op, value string) host.Object {
	return guard.Call[host.Object](env, op, nil, func() (host.Object, error) {
		return newString(env, value)
	})
}

// FinishedCursorHandleConstant returns the finished scan cursor id.
func (b *Bridge) FinishedCursorHandleConstant(env host.Env) host.Object {
	return b.constant(env, "getFinishedCursorHandleConstant", glidebridge.FinishedScanCursor)
}

// TypeStringConstant returns the "string" key type name.
func (b *Bridge) TypeStringConstant(env host.Env) host.Object {
	return b.constant(env, "getTypeStringConstant", glidebridge.TypeString)
}

// TypeListConstant returns the "list" key type name.
func (b *Bridge) TypeListConstant(env host.Env) host.Object {
	return b.constant(env, "getTypeListConstant", glidebridge.TypeList)
}

// TypeSetConstant returns the "set" key type name.
func (b *Bridge) TypeSetConstant(env host.Env) host.Object {
	return b.constant(env, "getTypeSetConstant", glidebridge.TypeSet)
}

// TypeZSetConstant returns the "zset" key type name.
func (b *Bridge) TypeZSetConstant(env host.Env) host.Object {
	return b.constant(env, "getTypeZSetConstant", glidebridge.TypeZSet)
}

// TypeHashConstant returns the "hash" key type name.
func (b *Bridge) TypeHashConstant(env host.Env) host.Object {
	return b.constant(env, "getTypeHashConstant", glidebridge.TypeHash)
}

// TypeStreamConstant returns the "stream" key type name.
func (b *Bridge) TypeStreamConstant(env host.Env) host.Object {
	return b.constant(env, "getTypeStreamConstant", glidebridge.TypeStream)
}
