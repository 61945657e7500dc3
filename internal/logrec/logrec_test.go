package logrec

import (
	"testing"
	"time"
)

func TestParseOperation(t *testing.T) {
	cases := []struct {
		in      string
		want    Operation
		wantErr bool
	}{
		{"INSERT", OpInsert, false},
		{"insert", OpInsert, false},
		{" Update ", OpUpdate, false},
		{"DELETE", OpDelete, false},
		{"UPSERT", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseOperation(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseOperation(%q): expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseOperation(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseOperation(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDetail_String(t *testing.T) {
	cases := []struct {
		d    Detail
		want string
	}{
		{Number(2.54), "2.54"},
		{Number(2), "2"},
		{Number(14.08), "14.08"},
		{Timestamp("2024-08-14 00:00:00"), "2024-08-14 00:00:00"},
		{Text("Rayon 4"), "Rayon 4"},
	}
	for _, tc := range cases {
		if got := tc.d.String(); got != tc.want {
			t.Errorf("%s detail String() = %q, want %q", tc.d.Kind(), got, tc.want)
		}
	}
}

func TestDecodeDetail_RoundTrip(t *testing.T) {
	details := []Detail{
		Number(19.99),
		Timestamp("2024-08-14 12:30:00"),
		Text("hello"),
		Text(""),
	}
	for _, d := range details {
		got, err := DecodeDetail(string(d.Kind()), d.String())
		if err != nil {
			t.Fatalf("DecodeDetail(%q, %q): %v", d.Kind(), d.String(), err)
		}
		if got != d {
			t.Errorf("DecodeDetail(%q, %q) = %#v, want %#v", d.Kind(), d.String(), got, d)
		}
	}
}

func TestDecodeDetail_Errors(t *testing.T) {
	if _, err := DecodeDetail("number", "not-a-number"); err == nil {
		t.Error("expected error for malformed number detail")
	}
	if _, err := DecodeDetail("blob", "x"); err == nil {
		t.Error("expected error for unknown detail kind")
	}
}

func TestTimestamp_Time(t *testing.T) {
	ts := Timestamp("2024-08-14 09:15:00")
	got, err := ts.Time()
	if err != nil {
		t.Fatalf("Time() failed: %v", err)
	}
	want := time.Date(2024, time.August, 14, 9, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Time() = %v, want %v", got, want)
	}
}

func TestFromSerialDays(t *testing.T) {
	cases := []struct {
		days int64
		want time.Time
	}{
		{45518, time.Date(2024, time.August, 14, 0, 0, 0, 0, time.UTC)},
		{1, time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)},
		{0, SerialEpoch},
	}
	for _, tc := range cases {
		if got := FromSerialDays(tc.days); !got.Equal(tc.want) {
			t.Errorf("FromSerialDays(%d) = %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestSnapshot_LastWriteWins(t *testing.T) {
	s := Snapshot{}
	s.Put("Price", Number(2.0))
	s.Put("price", Number(2.54))

	d, ok := s.Get("PRICE")
	if !ok {
		t.Fatal("expected price in snapshot")
	}
	if d != Number(2.54) {
		t.Errorf("Get(price) = %v, want 2.54", d)
	}
	if len(s) != 1 {
		t.Errorf("snapshot has %d keys, want 1 (case-folded)", len(s))
	}
}
