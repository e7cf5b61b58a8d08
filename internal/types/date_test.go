package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2026-03-02", "2026-03-02", false},
		{" 2026-12-31 ", "2026-12-31", false},
		{"2026-03-02T23:30:00-05:00", "2026-03-02", false},
		{"2026-02-30", "", true},
		{"03/02/2026", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseDate(%q): err %v, want error %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got.String() != tt.want {
			t.Fatalf("ParseDate(%q): got %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	instant := time.Date(2026, 3, 3, 2, 0, 0, 0, time.UTC)

	if got := DateOf(instant, time.UTC).String(); got != "2026-03-03" {
		t.Fatalf("UTC date: got %s", got)
	}
	if got := DateOf(instant, est).String(); got != "2026-03-02" {
		t.Fatalf("EST date: got %s", got)
	}

	d := DateOf(instant, est)
	if start := d.In(est); !start.Equal(time.Date(2026, 3, 2, 5, 0, 0, 0, time.UTC)) {
		t.Fatalf("start of day: got %v", start.UTC())
	}
}

func TestDateArithmetic(t *testing.T) {
	d, _ := ParseDate("2026-02-28")

	if got := d.AddDays(1).String(); got != "2026-03-01" {
		t.Fatalf("AddDays: got %s", got)
	}
	if !d.Before(d.AddDays(1)) || !d.AddDays(1).After(d) || d.Before(d) {
		t.Fatal("ordering is wrong")
	}
	if d.IsZero() || !(Date{}).IsZero() {
		t.Fatal("IsZero is wrong")
	}
}

func TestDateJSON(t *testing.T) {
	var body struct {
		From Date  `json:"from"`
		Due  *Date `json:"due"`
	}
	if err := json.Unmarshal([]byte(`{"from":"2026-03-02","due":null}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.From.String() != "2026-03-02" || body.Due != nil {
		t.Fatalf("unexpected body: %+v", body)
	}

	out, err := json.Marshal(body.From)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2026-03-02"` {
		t.Fatalf("marshal: got %s", out)
	}

	if err := json.Unmarshal([]byte(`{"from":20260302}`), &body); err == nil {
		t.Fatal("numeric date accepted")
	}
}
