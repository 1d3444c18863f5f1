package types

import (
	"encoding/json"
	"strings"
	"testing"
)

const sampleHex = "0x0101010101010101010101010101010101010101010101010101010101010101"

func TestParseAddress(t *testing.T) {
	withPrefix, err := ParseAddress(sampleHex)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	bare, err := ParseAddress(strings.TrimPrefix(sampleHex, "0x"))
	if err != nil {
		t.Fatalf("parse without prefix: %v", err)
	}
	upper, err := ParseAddress("0X" + strings.ToUpper(strings.TrimPrefix(sampleHex, "0x")))
	if err != nil {
		t.Fatalf("parse upper case: %v", err)
	}
	if withPrefix != bare || bare != upper {
		t.Fatal("expected all spellings to parse to the same address")
	}
	if withPrefix.Hex() != sampleHex {
		t.Fatalf("expected %s, got %s", sampleHex, withPrefix.Hex())
	}

	for _, bad := range []string{"", "0x01", sampleHex + "01", "0xzz"} {
		if _, err := ParseAddress(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestAddressJSON(t *testing.T) {
	type payload struct {
		Owner Address `json:"owner"`
	}
	in := payload{Owner: MustParseAddress(sampleHex)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), sampleHex) {
		t.Fatalf("expected hex in JSON, got %s", data)
	}

	var out payload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Owner != in.Owner {
		t.Fatalf("expected %s, got %s", in.Owner, out.Owner)
	}
}

func TestAddressScan(t *testing.T) {
	var a Address
	if err := a.Scan(sampleHex); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	var b Address
	if err := b.Scan([]byte(sampleHex)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if a != b || a.Hex() != sampleHex {
		t.Fatalf("unexpected scan result %s / %s", a, b)
	}
	if err := a.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}
}

func TestBytesToAddressPadsLeft(t *testing.T) {
	a := BytesToAddress([]byte{0xab})
	if a[AddressLength-1] != 0xab || a[0] != 0 {
		t.Fatalf("expected left padding, got %s", a)
	}
	if !ZeroAddress.IsZero() || a.IsZero() {
		t.Fatal("unexpected IsZero result")
	}
}

func TestAmountJSON(t *testing.T) {
	var quoted, bare Amount
	if err := json.Unmarshal([]byte(`"18446744073709551615"`), &quoted); err != nil {
		t.Fatalf("unmarshal quoted: %v", err)
	}
	if quoted != MaxAmount {
		t.Fatalf("expected max amount, got %d", quoted)
	}
	if err := json.Unmarshal([]byte(`1500`), &bare); err != nil {
		t.Fatalf("unmarshal bare: %v", err)
	}
	if bare != 1500 {
		t.Fatalf("expected 1500, got %d", bare)
	}

	data, err := json.Marshal(Amount(1500))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"1500"` {
		t.Fatalf("expected quoted decimal, got %s", data)
	}

	var bad Amount
	for _, in := range []string{`"-1"`, `"abc"`, `1.5`, `"18446744073709551616"`} {
		if err := json.Unmarshal([]byte(in), &bad); err == nil {
			t.Fatalf("expected error for %s", in)
		}
	}
}

func TestAmountValueAndScan(t *testing.T) {
	v, err := Amount(77).Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != "77" {
		t.Fatalf("expected \"77\", got %v", v)
	}

	var a Amount
	if err := a.Scan("77"); err != nil || a != 77 {
		t.Fatalf("scan string: %d (%v)", a, err)
	}
	if err := a.Scan(int64(5)); err != nil || a != 5 {
		t.Fatalf("scan int64: %d (%v)", a, err)
	}
	if err := a.Scan(int64(-5)); err == nil {
		t.Fatal("expected error for negative amount")
	}
}
