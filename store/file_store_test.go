package store

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestKeyValid(t *testing.T) {
	var table = []struct {
		key string
		err error
	}{
		{"abc.zip", nil},
		{"bag-info.tmpl", nil},
		{"", ErrKeyInvalid},
		{".scratch", ErrKeyInvalid},
		{"a/b", ErrKeyContainsSlash},
		{"a b", ErrKeyContainsWhiteSpace},
		{"a\x01b", ErrKeyContainsControlChar},
		{"a\xffb", ErrKeyContainsNonUnicode},
	}
	for _, tab := range table {
		err := isKeyValid(tab.key)
		if err != tab.err {
			t.Errorf("isKeyValid(%q) = %v, expected %v", tab.key, err, tab.err)
		}
	}
}

func TestListPrefix(t *testing.T) {
	dir, err := ioutil.TempDir("", "store")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	for _, name := range []string{"abc-1", "abc-2", "abd-1", "xyz"} {
		ioutil.WriteFile(filepath.Join(dir, name), nil, 0666)
	}
	os.Mkdir(filepath.Join(dir, "abc-dir"), 0777)

	s := NewFileSystem(dir)
	var table = []struct {
		prefix   string
		expected []string
	}{
		{"", []string{"abc-1", "abc-2", "abd-1", "xyz"}},
		{"ab", []string{"abc-1", "abc-2", "abd-1"}},
		{"abc", []string{"abc-1", "abc-2"}},
		{"q", nil},
	}
	for _, tab := range table {
		result, err := s.ListPrefix(tab.prefix)
		if err != nil {
			t.Errorf("Got unexpected error: %s", err.Error())
		} else if !equal(tab.expected, result) {
			t.Errorf("Got result %v, expected %v", result, tab.expected)
		}
	}
}

func TestFileSystemCreate(t *testing.T) {
	dir, err := ioutil.TempDir("", "store")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	s := NewFileSystem(dir)
	testStore(t, s)

	// the scratch directory is not listed
	w, err := s.Create("world")
	if err != nil {
		t.Fatal(err)
	}
	w.Close()
	keys, _ := s.ListPrefix("")
	if !equal(keys, []string{"world"}) {
		t.Errorf("Got keys %v, expected [world]", keys)
	}
}

func TestMemory(t *testing.T) {
	testStore(t, NewMemory())
}

// testStore checks the behavior shared by every Store.
func testStore(t *testing.T, s Store) {
	w, err := s.Create("hello")
	if err != nil {
		t.Fatal(err)
	}
	w.Write([]byte("hello there"))
	if _, _, err := s.Open("hello"); err != ErrNotFound {
		t.Errorf("Open before Close returned %v, expected ErrNotFound", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Create("hello"); err != ErrKeyExists {
		t.Errorf("Second Create returned %v, expected ErrKeyExists", err)
	}

	r, size, err := s.Open("hello")
	if err != nil {
		t.Fatal(err)
	}
	data, err := ioutil.ReadAll(NewReader(r))
	r.Close()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello there" || size != int64(len(data)) {
		t.Errorf("Read %q (size %d), expected %q", data, size, "hello there")
	}

	if err := s.Delete("hello"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("hello"); err != nil {
		t.Errorf("Deleting missing key returned %v", err)
	}
	if _, _, err := s.Open("hello"); err != ErrNotFound {
		t.Errorf("Open after Delete returned %v, expected ErrNotFound", err)
	}
}

func equal(a, b []string) bool {
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
