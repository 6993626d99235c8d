package grpc

import (
	"strings"
	"testing"

	"google.golang.org/grpc/encoding"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type codecTestMessage struct {
	DrawID int64   `json:"draw_id"`
	Values []int32 `json:"values"`
}

func TestJSONCodecIsRegistered(t *testing.T) {
	codec := encoding.GetCodec(JSONCodecName)
	if codec == nil {
		t.Fatal("expected json codec to be registered")
	}
	if codec.Name() != "json" {
		t.Fatalf("codec name = %q", codec.Name())
	}
}

func TestJSONCodecPlainStruct(t *testing.T) {
	codec := JSONCodec{}
	data, err := codec.Marshal(codecTestMessage{DrawID: 7, Values: []int32{1, 2}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"draw_id":7,"values":[1,2]}` {
		t.Fatalf("payload = %s", data)
	}

	var decoded codecTestMessage
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.DrawID != 7 || len(decoded.Values) != 2 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestJSONCodecProtoMessage(t *testing.T) {
	codec := JSONCodec{}
	data, err := codec.Marshal(&grpc_health_v1.HealthCheckRequest{Service: "lottery"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"lottery"`) {
		t.Fatalf("payload = %s", data)
	}

	var decoded grpc_health_v1.HealthCheckRequest
	if err := codec.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.GetService() != "lottery" {
		t.Fatalf("service = %q", decoded.GetService())
	}
}

func TestJSONCodecUnmarshalError(t *testing.T) {
	var decoded codecTestMessage
	err := JSONCodec{}.Unmarshal([]byte("{"), &decoded)
	if err == nil || !strings.Contains(err.Error(), "json codec unmarshal") {
		t.Fatalf("expected wrapped unmarshal error, got %v", err)
	}
}
