package sha2

import (
	"encoding/hex"
	"strings"
	"testing"
)

func TestSHA384NISTVector(t *testing.T) {
	got := Sum(SHA384, []byte("abc"))
	want := "CB00753F45A35E8BB5A03D699AC65007272C32AB0EDED1631A8B605A43FF5BED8086072BA1E7CC2358BAECA134C825A7"
	if strings.ToUpper(hex.EncodeToString(got)) != want {
		t.Fatalf("SHA384(abc) = %X, want %s", got, want)
	}
}

func TestComputeHashDestinationTooSmall(t *testing.T) {
	dest := make([]byte, 4)
	if _, err := ComputeHash(SHA256, []byte("x"), dest, nil, nil); err != ErrDestinationTooSmall {
		t.Fatalf("want ErrDestinationTooSmall, got %v", err)
	}
}

func TestComputeHashPrependMustEqualBlockSize(t *testing.T) {
	dest := make([]byte, SHA256.Size())
	bad := make([]byte, SHA256.BlockSize()-1)
	if _, err := ComputeHash(SHA256, []byte("x"), dest, bad, nil); err != ErrPrependMustEqualBlockSize {
		t.Fatalf("want ErrPrependMustEqualBlockSize, got %v", err)
	}
}
