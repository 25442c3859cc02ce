package pkg

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "xtpl" {
		t.Errorf("Name = %q, want %q", Name, "xtpl")
	}

	if Description == "" {
		t.Error("Description is empty")
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("reading VERSION: %v", err)
	}

	if want := strings.TrimSpace(string(buf)); Version != want {
		t.Errorf("Version = %q, want %q", Version, want)
	}
}

func TestAuthor(t *testing.T) {
	if !slices.ContainsFunc(Author, func(a AuthorInfo) bool {
		return a.Name == "ardnew" && a.Email == "andrew@ardnew.com"
	}) {
		t.Errorf("Author = %v, missing ardnew", Author)
	}

	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestDirs(t *testing.T) {
	for name, dir := range map[string]string{
		"ConfigDir": ConfigDir(),
		"CacheDir":  CacheDir(),
	} {
		if filepath.Base(dir) != Prefix() {
			t.Errorf("%s() = %q, want base %q", name, dir, Prefix())
		}
	}

	if strings.HasPrefix(Prefix(), ".") {
		t.Errorf("Prefix() = %q has a leading dot", Prefix())
	}
}

func TestUserDir(t *testing.T) {
	fail := func() (string, error) { return "", os.ErrNotExist }

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got, want := userDir(fail, ".x"), filepath.Join(home, ".x", Prefix()); got != want {
		t.Errorf("userDir(fail) = %q, want %q", got, want)
	}

	ok := func() (string, error) { return "/base", nil }
	if got, want := userDir(ok, ".x"), filepath.Join("/base", Prefix()); got != want {
		t.Errorf("userDir(ok) = %q, want %q", got, want)
	}
}
