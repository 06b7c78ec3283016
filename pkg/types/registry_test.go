package types

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestRegistryJSONKeys(t *testing.T) {
	var reg Registry
	data := []byte(`{"12":{"redirect":40,"force":true},"5":{"url":"checkout"}}`)
	if err := json.Unmarshal(data, &reg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got := reg.IDs(); !slices.Equal(got, []int64{5, 12}) {
		t.Fatalf("IDs() = %v, want [5 12]", got)
	}
	if got := reg[12].Redirect(); got != 40 {
		t.Errorf("Redirect() = %d, want 40", got)
	}
	if !reg[12].Has(FieldForce) {
		t.Error("Has(force) = false, want true")
	}
	if !reg[5].RedirectEmpty() {
		t.Error("RedirectEmpty() on record without redirect = false, want true")
	}
}

func TestURLRecordHas(t *testing.T) {
	rec := URLRecord{"force": nil, "defer": false}
	if rec.Has(FieldForce) {
		t.Error("Has on nil value should be false")
	}
	if !rec.Has(FieldDefer) {
		t.Error("Has on false value should be true")
	}
	if rec.Defer() {
		t.Error("Defer() = true, want false")
	}
}

func TestRegistryCloneIsDeep(t *testing.T) {
	reg := Registry{1: {"redirect": 3.0}}
	cp := reg.Clone()
	cp[1]["redirect"] = 9.0
	if reg[1].Redirect() != 3 {
		t.Errorf("original mutated through clone: %v", reg[1])
	}
}
