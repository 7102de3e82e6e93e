package config

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{`"30s"`, 30 * time.Second},
		{`"1h"`, time.Hour},
		{`"100ms"`, 100 * time.Millisecond},
		{`90`, 90 * time.Second},
		{`"90"`, 90 * time.Second},
	}
	for _, tc := range cases {
		var d Duration
		if err := yaml.Unmarshal([]byte(tc.in), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if d.Std() != tc.want {
			t.Errorf("unmarshal %s = %v, want %v", tc.in, d.Std(), tc.want)
		}
	}
}

func TestDurationUnmarshalInvalid(t *testing.T) {
	var d Duration
	if err := yaml.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestDurationMarshalRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(Duration(90 * time.Second))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var d Duration
	if err := yaml.Unmarshal(out, &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Fatalf("round trip = %v, want 90s", d.Std())
	}
}
