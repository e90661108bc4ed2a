package shell

import "testing"

func TestParseUint(t *testing.T) {
	testCases := []struct {
		descr   string
		in      string
		max     uint64
		want    uint64
		wantErr bool
	}{
		{descr: "decimal", in: "42", max: 0xFF, want: 42},
		{descr: "hex", in: "0x7FFF", max: 0x7FFF, want: 0x7FFF},
		{descr: "binary", in: "0b1010", max: 0xFF, want: 10},
		{descr: "zero", in: "0", max: 0xFF, want: 0},
		{descr: "over max", in: "0x8000", max: 0x7FFF, wantErr: true},
		{descr: "overflows 64 bits", in: "0xFFFFFFFFFFFFFFFFF", max: 0xFF, wantErr: true},
		{descr: "negative", in: "-1", max: 0xFF, wantErr: true},
		{descr: "garbage", in: "zorp", max: 0xFF, wantErr: true},
		{descr: "empty", in: "", max: 0xFF, wantErr: true},
	}

	for _, tc := range testCases {
		got, err := ParseUint(tc.in, tc.max)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("Test %q: ParseUint(%q) = %d, want error", tc.descr, tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Test %q: ParseUint(%q): %v", tc.descr, tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Test %q: ParseUint(%q) = %d, want %d", tc.descr, tc.in, got, tc.want)
		}
	}
}
