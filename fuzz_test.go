package keyguard

import "testing"

func FuzzDecryptFragment(f *testing.F) {
	f.Add(0, testDeviceID)
	f.Add(2, PlaceholderDeviceID)
	f.Add(-1, "x")
	f.Add(3, "")

	f.Fuzz(func(t *testing.T, index int, deviceID string) {
		got := DecryptFragment(index, deviceID)
		if index < 0 || index >= FragmentCount || deviceID == "" {
			if got != "" {
				t.Fatalf("DecryptFragment(%d, %q): got %q, want empty", index, deviceID, got)
			}
			return
		}
		if len(got) > FragmentSpan {
			t.Fatalf("fragment longer than span: %d", len(got))
		}
		if !isPrintable(got) {
			t.Fatalf("fragment not printable: %q", got)
		}
	})
}

func FuzzEncodeTable(f *testing.F) {
	f.Add("sk_live_abc", testDeviceID)
	f.Add("", "d")
	f.Add("0123456789abcdefghijklmnopqrstuvwxyz", "another-device")

	f.Fuzz(func(t *testing.T, secret, deviceID string) {
		table, err := EncodeTable(secret, deviceID)
		if err != nil {
			return
		}
		got, err := table.Assemble(deviceID)
		if err != nil {
			t.Fatalf("Assemble: %v", err)
		}
		if got != secret {
			t.Fatalf("round trip: got %q, want %q", got, secret)
		}
	})
}

func FuzzDeobfuscate(f *testing.F) {
	valid, err := obfuscate([]byte(`"seed"`), testDeviceID)
	if err != nil {
		f.Fatal(err)
	}
	f.Add(valid, testDeviceID)
	f.Add([]byte("KG"), testDeviceID)
	f.Add([]byte{}, "x")

	f.Fuzz(func(t *testing.T, data []byte, deviceID string) {
		plaintext, err := deobfuscate(data, deviceID)
		if err != nil {
			if plaintext != nil {
				t.Fatal("plaintext returned with error")
			}
			return
		}
		if deviceID == "" {
			t.Fatal("accepted empty device identifier")
		}
		again, err := obfuscate(plaintext, deviceID)
		if err != nil {
			t.Fatalf("obfuscate: %v", err)
		}
		if len(again) != len(data) {
			t.Fatalf("length changed: %d != %d", len(again), len(data))
		}
	})
}
