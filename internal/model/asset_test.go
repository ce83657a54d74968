package model

import (
	"errors"
	"testing"
)

func TestParseAssetInfo(t *testing.T) {
	tests := []struct {
		in   string
		want AssetInfo
	}{
		{in: "native:uusd", want: NativeAsset("uusd")},
		{in: " Native:uluna ", want: NativeAsset("uluna")},
		{
			in:   "token:0x00000000000000000000000000000000000000b2",
			want: TokenAsset("0x00000000000000000000000000000000000000B2"),
		},
	}
	for _, tt := range tests {
		got, err := ParseAssetInfo(tt.in)
		if err != nil {
			t.Fatalf("%q: %v", tt.in, err)
		}
		if got.Kind != tt.want.Kind || !got.Equal(tt.want) {
			t.Fatalf("%q: got %+v, want %+v", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"uusd", "native:", "token:0x12", "cw20:abc"} {
		if _, err := ParseAssetInfo(in); !errors.Is(err, ErrInvalidAssetInfo) {
			t.Fatalf("%q: expected ErrInvalidAssetInfo, got %v", in, err)
		}
	}
}

func TestAssetInfoEqual(t *testing.T) {
	a := TokenAsset("0x00000000000000000000000000000000000000b2")
	b := TokenAsset("0x00000000000000000000000000000000000000B2")
	if !a.Equal(b) {
		t.Fatalf("token addresses should compare case-insensitively")
	}
	if NativeAsset("uusd").Equal(NativeAsset("UUSD")) {
		t.Fatalf("native denoms are case-sensitive")
	}
}
