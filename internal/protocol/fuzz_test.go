package protocol

import (
	"bytes"
	"testing"
)

func FuzzDecode(f *testing.F) {
	// Seed corpus with one frame of each grammar plus malformed input.
	f.Add([]byte("+OK\r\n"))
	f.Add([]byte("-ERR oops\r\n"))
	f.Add([]byte(":1234\r\n"))
	f.Add([]byte("$5\r\nhello\r\n"))
	f.Add([]byte("*2\r\n$3\r\nGET\r\n$3\r\nkey\r\n"))
	f.Add([]byte("#t\r\n"))
	f.Add([]byte("$-1\r\n"))
	f.Add([]byte("*-1\r\n"))
	f.Add([]byte("_\r\n"))
	f.Add([]byte("*2\r\n*1\r\n:1\r\n+x\r\n"))
	f.Add([]byte("$5\r\nhel"))
	f.Add([]byte("garbage"))

	f.Fuzz(func(t *testing.T, data []byte) {
		v, n, err := Decode(data)
		if err != nil {
			if n != 0 {
				t.Errorf("consumed %d bytes on error", n)
			}
			return
		}

		if n <= 0 || n > len(data) {
			t.Fatalf("consumed %d bytes of %d", n, len(data))
		}

		// Whatever decoded must survive a full encode/decode cycle.
		// The wire bytes themselves may differ from the input (":+42"
		// re-encodes as ":42"), but the value must be stable.
		encoded := Encode(v)
		v2, m, err := Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(Encode(%q)) error: %v", data[:n], err)
		}
		if m != len(encoded) {
			t.Errorf("re-decode consumed %d of %d bytes", m, len(encoded))
		}
		if !bytes.Equal(Encode(v2), encoded) {
			t.Errorf("canonical encoding not stable for %q", data[:n])
		}
	})
}
