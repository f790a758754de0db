package journal

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoBuf encodes records as a google.protobuf.Struct. Data must be
// representable as a Struct value: nil, bool, numbers, string, []byte,
// []any and map[string]any.
var ProtoBuf Codec = &protoBufCodec{}

type protoBufCodec struct{}

func (*protoBufCodec) Name() string { return "protobuf" }

func (*protoBufCodec) Marshal(r *Record) ([]byte, error) {
	fields := map[string]any{
		"id":          r.ID,
		"function":    r.Function,
		"class":       r.Class,
		"namespace":   r.Namespace,
		"tags":        stringsToList(r.Tags),
		"categories":  stringsToList(r.Categories),
		"data":        r.Data,
		"stopped":     r.Stopped,
		"unstoppable": r.Unstoppable,
		"timestamp":   r.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", proto.Error, err)
	}
	return proto.Marshal(s)
}

func (*protoBufCodec) Unmarshal(b []byte, r *Record) error {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return err
	}
	m := s.AsMap()

	r.ID, _ = m["id"].(string)
	r.Function, _ = m["function"].(string)
	r.Class, _ = m["class"].(string)
	r.Namespace, _ = m["namespace"].(string)
	r.Tags = listToStrings(m["tags"])
	r.Categories = listToStrings(m["categories"])
	r.Data = m["data"]
	r.Stopped, _ = m["stopped"].(bool)
	r.Unstoppable, _ = m["unstoppable"].(bool)
	if ts, ok := m["timestamp"].(string); ok {
		r.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	}
	return nil
}

func stringsToList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func listToStrings(v any) []string {
	list, _ := v.([]any)
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
