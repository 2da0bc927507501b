package glidebridge

import "testing"

func TestConstantsStable(t *testing.T) {
	if MaxRequestArgsLength != 4096 {
		t.Errorf("MaxRequestArgsLength = %d", MaxRequestArgsLength)
	}
	if FinishedScanCursor != "finished" {
		t.Errorf("FinishedScanCursor = %q", FinishedScanCursor)
	}

	types := map[string]string{
		TypeString: "string",
		TypeList:   "list",
		TypeSet:    "set",
		TypeZSet:   "zset",
		TypeHash:   "hash",
		TypeStream: "stream",
	}
	for got, want := range types {
		if got != want {
			t.Errorf("type constant %q, want %q", got, want)
		}
	}
}
