package schema

import (
	"encoding/json"
	"testing"
)

type jsonOnly struct {
	Base
	Topic string `json:"topic"`
}

type presentable struct {
	Base
	Text string `json:"text"`
}

func (p presentable) String() string {
	return p.Text
}

func TestStringifyString(t *testing.T) {
	s := String("hello")
	if got := Stringify(s); got != "hello" {
		t.Errorf("Expect hello, but got %s", got)
	}
}

func TestStringifyFallsBackToJSON(t *testing.T) {
	s := jsonOnly{Topic: "bitcoin"}
	got := Stringify(s)
	var decoded jsonOnly
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("Stringify produced invalid JSON: %v", err)
	}
	if decoded.Topic != "bitcoin" {
		t.Errorf("Expect topic bitcoin, but got %s", decoded.Topic)
	}
}

func TestStringifyPrefersPresentation(t *testing.T) {
	s := presentable{Text: "rendered"}
	if got := Stringify(s); got != "rendered" {
		t.Errorf("Expect rendered, but got %s", got)
	}
}

func TestToBytes(t *testing.T) {
	if got := ToBytes(String("raw")); string(got) != "raw" {
		t.Errorf("Expect raw, but got %s", got)
	}
}
