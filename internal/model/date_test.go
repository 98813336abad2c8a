package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(1994, time.May, 5)

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `"1994-05-05"` {
		t.Errorf("expected \"1994-05-05\", got %s", data)
	}

	var parsed Date
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(d.Time) {
		t.Errorf("round-trip mismatch: %v != %v", parsed, d)
	}
}

func TestDate_UnmarshalRejectsMalformed(t *testing.T) {
	for _, input := range []string{`"05/05/1994"`, `"1994-13-01"`, `"1994-02-30"`, `12345`, `"yesterday"`} {
		var d Date
		if err := json.Unmarshal([]byte(input), &d); err == nil {
			t.Errorf("expected error for %s", input)
		}
	}
}

func TestDate_ScanFromDriverValues(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(1994, time.May, 5, 13, 30, 0, 0, time.Local)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "1994-05-05" {
		t.Errorf("expected 1994-05-05, got %s", d)
	}

	if err := d.Scan([]byte("1994-05-05")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "1994-05-05" {
		t.Errorf("expected 1994-05-05, got %s", d)
	}

	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
