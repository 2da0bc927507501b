package transcoder

import (
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/glide-bridge/errors"
	"github.com/wippyai/glide-bridge/host"
	"github.com/wippyai/glide-bridge/resp"
)

// MaxDepth bounds container nesting so a hostile reply cannot exhaust the
// goroutine stack.
const MaxDepth = 512

// Mode selects how string replies reach the host.
type Mode uint8

const (
	// ModeText delivers strings as host text, validating bulk strings as UTF-8.
	ModeText Mode = iota
	// ModeBinary delivers strings as raw byte arrays.
	ModeBinary
)

func (m Mode) String() string {
	if m == ModeBinary {
		return "binary"
	}
	return "text"
}

// Decoder converts replies into host objects through one Env.
type Decoder struct {
	env  host.Env
	mode Mode
}

// NewDecoder returns a decoder that allocates through env.
func NewDecoder(env host.Env, mode Mode) *Decoder {
	return &Decoder{env: env, mode: mode}
}

// Translate converts v into a host object graph. utf8 selects ModeText.
func Translate(env host.Env, v resp.Value, utf8 bool) (host.Object, error) {
	mode := ModeBinary
	if utf8 {
		mode = ModeText
	}
	return NewDecoder(env, mode).Decode(v)
}

// Decode converts v. The decoder owns v for the duration of the call.
func (d *Decoder) Decode(v resp.Value) (host.Object, error) {
	return d.decode(v, 0)
}

func (d *Decoder) decode(v resp.Value, depth int) (host.Object, error) {
	if depth > MaxDepth {
		return nil, errors.Decoding(nil, "reply nesting exceeds "+strconv.Itoa(MaxDepth)+" levels")
	}

	switch v.Kind {
	case resp.KindNil:
		return nil, nil

	case resp.KindSimpleString, resp.KindVerbatimString:
		if d.mode == ModeText {
			return d.call("new string", func() (host.Object, error) { return d.env.NewString(v.Str) })
		}
		return d.call("new byte array", func() (host.Object, error) { return d.env.NewByteArray([]byte(v.Str)) })

	case resp.KindOkay:
		return d.call("new string", func() (host.Object, error) { return d.env.NewString("OK") })

	case resp.KindInt:
		return d.call("new long", func() (host.Object, error) { return d.env.NewLong(v.Int) })

	case resp.KindDouble:
		return d.call("new double", func() (host.Object, error) { return d.env.NewDouble(v.Float) })

	case resp.KindBoolean:
		return d.call("new boolean", func() (host.Object, error) { return d.env.NewBoolean(v.Bool) })

	case resp.KindBulkString:
		return d.decodeBulk(v.Bytes)

	case resp.KindBigNumber:
		if v.Big == nil {
			return nil, errors.Decoding(nil, "big number reply without a value")
		}
		return d.call("new big integer", func() (host.Object, error) { return d.env.NewBigInteger(v.Big) })

	case resp.KindArray:
		return d.decodeArray(v.Elems, depth)

	case resp.KindMap:
		return d.decodeMap(v.Pairs, depth)

	case resp.KindSet:
		return d.decodeSet(v.Elems, depth)

	case resp.KindPush:
		return d.decodePush(v, depth)

	case resp.KindServerError:
		msg := ""
		if v.Err != nil {
			msg = v.Err.Error()
		}
		return d.call("new exception", func() (host.Object, error) {
			return d.env.NewException(host.ClassRequest, msg)
		})

	case resp.KindAttribute:
		panic(errors.Unsupported(nil, "attribute replies are not supported"))

	default:
		return nil, errors.Unsupported(nil, "reply kind "+v.Kind.String())
	}
}

func (d *Decoder) decodeBulk(data []byte) (host.Object, error) {
	if d.mode == ModeBinary {
		return d.call("new byte array", func() (host.Object, error) { return d.env.NewByteArray(data) })
	}
	if !utf8.Valid(data) {
		return nil, errors.InvalidUTF8(nil, data)
	}
	return d.call("new string", func() (host.Object, error) { return d.env.NewString(string(data)) })
}

// decodeArray builds an Object[] with one slot per element.
func (d *Decoder) decodeArray(elems []resp.Value, depth int) (host.Object, error) {
	arr, err := d.call("new object array", func() (host.Object, error) { return d.env.NewObjectArray(len(elems)) })
	if err != nil {
		return nil, err
	}

	for i, elem := range elems {
		obj, err := d.decode(elem, depth+1)
		if err != nil {
			return nil, prefix(err, indexSeg(i))
		}
		if err := d.env.SetArrayElement(arr, i, obj); err != nil {
			return nil, errors.BoundaryAPI([]string{indexSeg(i)}, "set array element", err)
		}
	}
	return arr, nil
}

func (d *Decoder) decodeMap(pairs []resp.Pair, depth int) (host.Object, error) {
	m, err := d.call("new ordered map", d.env.NewOrderedMap)
	if err != nil {
		return nil, err
	}

	for i, p := range pairs {
		k, err := d.decode(p.Key, depth+1)
		if err != nil {
			return nil, prefix(err, "{key "+strconv.Itoa(i)+"}")
		}
		v, err := d.decode(p.Value, depth+1)
		if err != nil {
			return nil, prefix(err, "{"+strconv.Itoa(i)+"}")
		}
		if err := d.env.MapPut(m, k, v); err != nil {
			return nil, errors.BoundaryAPI([]string{"{" + strconv.Itoa(i) + "}"}, "map put", err)
		}
	}
	return m, nil
}

func (d *Decoder) decodeSet(elems []resp.Value, depth int) (host.Object, error) {
	s, err := d.call("new set", d.env.NewSet)
	if err != nil {
		return nil, err
	}

	for i, elem := range elems {
		obj, err := d.decode(elem, depth+1)
		if err != nil {
			return nil, prefix(err, "<"+strconv.Itoa(i)+">")
		}
		if err := d.env.SetAdd(s, obj); err != nil {
			return nil, errors.BoundaryAPI([]string{"<" + strconv.Itoa(i) + ">"}, "set add", err)
		}
	}
	return s, nil
}

// decodePush builds {"kind": <kind>, "values": Object[]}.
func (d *Decoder) decodePush(v resp.Value, depth int) (host.Object, error) {
	m, err := d.call("new ordered map", d.env.NewOrderedMap)
	if err != nil {
		return nil, err
	}

	kindKey, err := d.call("new string", func() (host.Object, error) { return d.env.NewString("kind") })
	if err != nil {
		return nil, err
	}
	kindValue, err := d.call("new string", func() (host.Object, error) { return d.env.NewString(v.Push.String()) })
	if err != nil {
		return nil, err
	}
	if err := d.env.MapPut(m, kindKey, kindValue); err != nil {
		return nil, errors.BoundaryAPI([]string{".kind"}, "map put", err)
	}

	valuesKey, err := d.call("new string", func() (host.Object, error) { return d.env.NewString("values") })
	if err != nil {
		return nil, err
	}
	values, err := d.decodeArray(v.Elems, depth)
	if err != nil {
		return nil, prefix(err, ".values")
	}
	if err := d.env.MapPut(m, valuesKey, values); err != nil {
		return nil, errors.BoundaryAPI([]string{".values"}, "map put", err)
	}
	return m, nil
}

// call runs one host allocation and classifies its failure.
func (d *Decoder) call(what string, fn func() (host.Object, error)) (host.Object, error) {
	obj, err := fn()
	if err != nil {
		return nil, errors.BoundaryAPI(nil, what, err)
	}
	return obj, nil
}

func indexSeg(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// prefix records that err happened below seg. Paths are built on the way
// out so the success path allocates nothing for them.
func prefix(err error, seg string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = append([]string{seg}, e.Path...)
	}
	return err
}
