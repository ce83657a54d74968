package chain

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestPackBalanceOf(t *testing.T) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	owner := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	data, err := parsed.Pack("balanceOf", owner)
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	selector := []byte{0x70, 0xa0, 0x82, 0x31}
	if !bytes.Equal(data[:4], selector) {
		t.Fatalf("unexpected selector %x", data[:4])
	}
	if len(data) != 36 {
		t.Fatalf("unexpected calldata length %d", len(data))
	}
}

func TestUnpackAmount(t *testing.T) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	want, _ := new(big.Int).SetString("1000000000000000000000", 10)
	resp, err := parsed.Methods["totalSupply"].Outputs.Pack(want)
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}
	got, err := unpackAmount("totalSupply", resp)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if got.String() != want.String() {
		t.Fatalf("amount mismatch: %s != %s", got, want)
	}
}

func TestUnpackDecimals(t *testing.T) {
	parsed, err := erc20ABIInstance()
	if err != nil {
		t.Fatalf("parse abi: %v", err)
	}
	resp, err := parsed.Methods["decimals"].Outputs.Pack(uint8(6))
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}
	got, err := unpackDecimals(resp)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if got != 6 {
		t.Fatalf("decimals mismatch: %d", got)
	}
}

func TestAmountFromBigBounds(t *testing.T) {
	if _, err := amountFromBig(big.NewInt(-1)); err == nil {
		t.Fatalf("expected error for negative amount")
	}
	tooLarge := new(big.Int).Lsh(big.NewInt(1), 128)
	if _, err := amountFromBig(tooLarge); err == nil {
		t.Fatalf("expected error for amount above 128 bits")
	}
	largest := new(big.Int).Sub(tooLarge, big.NewInt(1))
	got, err := amountFromBig(largest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != largest.String() {
		t.Fatalf("amount mismatch: %s", got)
	}
}
