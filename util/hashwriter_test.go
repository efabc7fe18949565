package util

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ndlib/bagger/bagit"
)

func TestHashWriter(t *testing.T) {
	const input = "hello1 hello2 hello3 hello4 hello5abcdefghijklmnopqrstuvwxyz0123456789"
	const goalMD5 = "0101fc798d94a730b0f0bf1bd2cc1959"
	const goalSHA256 = "fef15edd82b33633582c723562d192fec2d2003df12d4aeac89df17c279a1658"
	var w = new(bytes.Buffer)
	hw := NewHashWriter(w, bagit.MD5, bagit.SHA256)
	dohashtest(t, hw, input, goalMD5, goalSHA256)
	if w.String() != input {
		t.Errorf("Wrapped writer got %q, expected %q", w.String(), input)
	}

	hw2 := NewHashWriterPlain(bagit.MD5)
	dohashtest(t, hw2, input, goalMD5, "")
	if _, ok := hw2.Sum(bagit.SHA256); ok {
		t.Errorf("SHA256 computed by an MD5 only writer")
	}
}

func dohashtest(t *testing.T, hw *HashWriter, input string, goalmd5, goalsha256 string) {
	hw.Write([]byte(input))
	if hw.Size() != int64(len(input)) {
		t.Errorf("Size is %d, expected %d", hw.Size(), len(input))
	}
	h, _ := hw.Sum(bagit.MD5)
	if h != goalmd5 {
		t.Fatalf("Got %v, expected %v\n", h, goalmd5)
	}
	if goalsha256 == "" {
		return
	}
	h, _ = hw.Sum(bagit.SHA256)
	if h != goalsha256 {
		t.Fatalf("Got %v, expected %v\n", h, goalsha256)
	}
}

func TestVerifyStreamHash(t *testing.T) {
	var table = []struct {
		want map[bagit.Algorithm]string
		ok   bool
	}{
		{nil, true},
		{map[bagit.Algorithm]string{bagit.MD5: "5d41402abc4b2a76b9719d911017c592"}, true},
		{map[bagit.Algorithm]string{
			bagit.MD5:    "5d41402abc4b2a76b9719d911017c592",
			bagit.SHA256: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		}, true},
		{map[bagit.Algorithm]string{bagit.MD5: "00000000000000000000000000000000"}, false},
		{map[bagit.Algorithm]string{
			bagit.MD5:    "5d41402abc4b2a76b9719d911017c592",
			bagit.SHA256: "0000",
		}, false},
	}
	for _, tab := range table {
		ok, err := VerifyStreamHash(strings.NewReader("hello"), tab.want)
		if err != nil {
			t.Fatal(err)
		}
		if ok != tab.ok {
			t.Errorf("VerifyStreamHash(%v) = %v, expected %v", tab.want, ok, tab.ok)
		}
	}
}
