package bagit

import (
	"archive/zip"
	"io"
	"testing"
	"time"

	"github.com/ndlib/bagger/store"
)

type zdata map[string]string

const (
	testDeclaration = "BagIt-Version: 1.0\nTag-File-Character-Encoding: UTF-8\n"
	testMD5         = "5d41402abc4b2a76b9719d911017c592 data/hello1\n161bc25962da8fed6d2f59922fb642aa data/hello2\n"
	testSHA256      = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824 data/hello1\n" +
		"12998c017066eb0d2a70b94e6ed3192985855ce390f321bbdb832022888bd251 data/hello2\n"
	testTagMD5 = "70a24bb0066ed02fddd1509cb4f26066 manifest-md5.txt\n" +
		"c7fe4346092207cf6d4a754dc4f444fb manifest-sha256.txt\n" +
		"eaa2c609ff6371712f623f5531945b44 bagit.txt\n"
)

// goodBag returns the contents of a valid bag, changed by the given
// edits. An edit with an empty value removes the file.
func goodBag(edits zdata) zdata {
	result := zdata{
		"bagit.txt":           testDeclaration,
		"data/hello1":         "hello",
		"data/hello2":         "hello there",
		"manifest-md5.txt":    testMD5,
		"manifest-sha256.txt": testSHA256,
		"tagmanifest-md5.txt": testTagMD5,
	}
	for k, v := range edits {
		if v == "" {
			delete(result, k)
			continue
		}
		result[k] = v
	}
	return result
}

func TestVerify(t *testing.T) {
	var table = []struct {
		name     string
		contents zdata
		ok       bool
	}{
		{"ok-1", goodBag(nil), true},
		// tag manifests are optional
		{"ok-2", goodBag(zdata{"tagmanifest-md5.txt": ""}), true},
		// extra payload file
		{"extra-1", goodBag(zdata{"data/hello3": "hello"}), false},
		// missing payload file
		{"extra-2", goodBag(zdata{"data/hello2": ""}), false},
		// tag manifest lists a missing tag file
		{"extra-3", goodBag(zdata{"tagmanifest-md5.txt": testTagMD5 + "abcdef missing.txt\n"}), false},
		// payload file only in one of the manifests
		{"extra-4", goodBag(zdata{
			"manifest-md5.txt":    "5d41402abc4b2a76b9719d911017c592 data/hello1\n",
			"tagmanifest-md5.txt": "",
		}), false},
		// mismatch payload file
		{"checksum-1", goodBag(zdata{"data/hello1": "goodbye"}), false},
		// mismatch tag file
		{"checksum-2", goodBag(zdata{"bagit.txt": "BagIt-Version: 0.97\nTag-File-Character-Encoding: UTF-8\n"}), false},
		// extra tag file
		{"checksum-3", goodBag(zdata{"tagfile.txt": "extra tag file"}), true},
		// upper case hex is fine
		{"checksum-4", goodBag(zdata{
			"manifest-md5.txt":    "5D41402ABC4B2A76B9719D911017C592 data/hello1\n161bc25962da8fed6d2f59922fb642aa data/hello2\n",
			"tagmanifest-md5.txt": "",
		}), true},
		// manifest not hex
		{"manifest-1", goodBag(zdata{
			"manifest-md5.txt":    "thisisnothexdata0000000000000000 data/hello1\n161bc25962da8fed6d2f59922fb642aa data/hello2\n",
			"tagmanifest-md5.txt": "",
		}), false},
		// missing final newline
		{"manifest-2", goodBag(zdata{
			"manifest-md5.txt":    "5d41402abc4b2a76b9719d911017c592 data/hello1\n161bc25962da8fed6d2f59922fb642aa data/hello2",
			"tagmanifest-md5.txt": "",
		}), true},
		// manifest line only has hash
		{"manifest-3", goodBag(zdata{
			"manifest-sha256.txt": "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824\n",
			"tagmanifest-md5.txt": "",
		}), false},
		// tag manifest lists a payload file
		{"manifest-4", goodBag(zdata{"tagmanifest-md5.txt": testTagMD5 + "5d41402abc4b2a76b9719d911017c592 data/hello1\n"}), false},
		// no payload manifest at all
		{"manifest-5", goodBag(zdata{
			"manifest-md5.txt":    "",
			"manifest-sha256.txt": "",
			"tagmanifest-md5.txt": "",
		}), false},
		{"declaration-1", goodBag(zdata{"bagit.txt": "", "tagmanifest-md5.txt": ""}), false},
		{"declaration-2", goodBag(zdata{"bagit.txt": "BagIt-Version: 1.0\n", "tagmanifest-md5.txt": ""}), false},
	}

	for _, tab := range table {
		t.Logf("Doing %s", tab.name)
		r := openzip(t, tab.name, tab.contents)
		err := r.Verify()
		if tab.ok && err != nil {
			t.Errorf("%s: Verify returned %s", tab.name, err.Error())
		} else if !tab.ok {
			if _, ok := err.(BagError); !ok {
				t.Errorf("%s: Verify returned %v, expected a BagError", tab.name, err)
			}
		}
	}
}

func TestTagParser(t *testing.T) {
	r := openzip(t, "tags", zdata{
		"bagit.txt":    testDeclaration,
		"bag-info.txt": "a-tag: some text\nanother-tag: more text\n  extended line\na-tag: again\n",
	})
	tags, err := r.Tags()
	if err != nil {
		t.Fatal(err)
	}
	var expected = []struct {
		label  string
		values []string
	}{
		{VersionLabel, []string{"1.0"}},
		{EncodingLabel, []string{"UTF-8"}},
		{"a-tag", []string{"some text", "again"}},
		{"another-tag", []string{"more text extended line"}},
	}
	if len(tags) != len(expected) {
		t.Fatalf("Got %d tags, expected %d: %#v", len(tags), len(expected), tags)
	}
	for i, e := range expected {
		if tags[i].Label != e.label || !stringsEqual(tags[i].Values, e.values) {
			t.Errorf("Tag %d is %#v, expected %s %v", i, tags[i], e.label, e.values)
		}
	}
}

func TestChecksum(t *testing.T) {
	r := openzip(t, "cksum", goodBag(nil))

	if r.Checksum("hello1") == nil {
		t.Error("Checksum for file 'data/hello1' returns nil")
	}
	sums := r.Checksum("hello2")
	if sums[SHA256] != "12998c017066eb0d2a70b94e6ed3192985855ce390f321bbdb832022888bd251" {
		t.Errorf("Checksum.SHA256 for file 'data/hello2' is %q", sums[SHA256])
	}
	if sums[MD5] != "161bc25962da8fed6d2f59922fb642aa" {
		t.Errorf("Checksum.MD5 for file 'data/hello2' is %q", sums[MD5])
	}
	if r.Checksum("hello3") != nil {
		t.Error("Checksum for nonexistent file 'data/hello3' returns value")
	}

	files := r.Files()
	if !stringsEqual(files, []string{"hello1", "hello2"}) {
		t.Errorf("Files() = %v", files)
	}
}

func openzip(t *testing.T, name string, contents zdata) *Reader {
	mstore := store.NewMemory()
	f, err := mstore.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	makezipfile(f, contents)
	f.Close()

	f2, size, err := mstore.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(f2, size)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func makezipfile(w io.Writer, contents zdata) {
	const dirname = "test/"
	z := zip.NewWriter(w)
	for k, v := range contents {
		header := zip.FileHeader{
			Name:   dirname + k,
			Method: zip.Store,
		}
		header.SetModTime(time.Now())
		out, _ := z.CreateHeader(&header)
		// this should check the number of bytes written, and loop
		out.Write([]byte(v))
	}
	z.Close()
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
