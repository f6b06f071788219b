package codec

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/planforge/planforge/internal/component"
)

// ErrUnreadableFormat is returned when a payload cannot be parsed as a
// serialized component in any supported form.
var ErrUnreadableFormat = errors.New("unreadable component format")

var gzipMagic = []byte{0x1f, 0x8b}

// Write serializes a component to its plain JSON form.
func Write(c component.Component) (string, error) {
	raw, err := component.Encode(c)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// WriteCompressed serializes a component to base64-wrapped gzip JSON, safe
// to store in a text column.
func WriteCompressed(c component.Component) (string, error) {
	raw, err := component.Encode(c)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Read parses either form produced by Write or WriteCompressed.
func Read(text string) (component.Component, error) {
	return ReadBytes([]byte(text))
}

// ReadBytes parses a serialized component: plain JSON, raw gzip JSON, or
// base64-wrapped gzip JSON. Anything else fails with ErrUnreadableFormat.
func ReadBytes(data []byte) (component.Component, error) {
	payload := bytes.TrimSpace(data)
	if bytes.HasPrefix(payload, gzipMagic) {
		var err error
		payload, err = gunzip(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableFormat, err)
		}
	} else if !bytes.HasPrefix(payload, []byte("{")) {
		decoded, err := base64.StdEncoding.DecodeString(string(payload))
		if err != nil || !bytes.HasPrefix(decoded, gzipMagic) {
			return nil, fmt.Errorf("%w: neither JSON nor compressed payload", ErrUnreadableFormat)
		}
		decoded, err = gunzip(decoded)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnreadableFormat, err)
		}
		payload = decoded
	}

	c, err := component.Decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFormat, err)
	}
	return c, nil
}

func gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// Clone deep-copies a component through serialization. With regenerateIDs
// every node in the copy, structural children included, gets a fresh id;
// descriptors and source links are preserved either way.
func Clone(c component.Component, regenerateIDs bool) (component.Component, error) {
	raw, err := component.Encode(c)
	if err != nil {
		return nil, err
	}
	clone, err := component.Decode(raw)
	if err != nil {
		return nil, err
	}
	if regenerateIDs {
		clone.Meta().ID = component.NewID()
		for _, node := range component.Resolve(clone).Descendants() {
			node.Component.Meta().ID = component.NewID()
		}
	}
	return clone, nil
}

// PlainJSON returns the component's serialized form as a raw message.
func PlainJSON(c component.Component) (json.RawMessage, error) {
	raw, err := component.Encode(c)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(raw), nil
}

// ApplyJSON replaces target's fields structurally from data while leaving
// target's id and descriptors untouched. The payload must carry the same
// kind as target. Fields absent from the payload reset to their zero
// values: a cleared waypoint list or flag in the payload clears it on the
// target too, rather than keeping stale local state.
func ApplyJSON(target component.Component, data []byte) error {
	fresh, err := component.Decode(bytes.TrimSpace(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadableFormat, err)
	}
	if fresh.Kind() != target.Kind() {
		return fmt.Errorf("%w: cannot apply %q onto %q", ErrUnreadableFormat, fresh.Kind(), target.Kind())
	}
	fresh.Meta().ID = target.Meta().ID
	fresh.Meta().Descriptors = target.Meta().Descriptors

	// same kind means same concrete type, so the target can be
	// overwritten in place and parent links into it stay valid
	reflect.ValueOf(target).Elem().Set(reflect.ValueOf(fresh).Elem())
	return nil
}
