package resource

import (
	"io"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name           string
		dir, stem, ext string
	}{
		{"", "", "", ""},
		{"World/Stormwind.wmo", "World/", "Stormwind", ".wmo"},
		{"World/Stormwind.wmo.xml", "World/", "Stormwind", ".wmo.xml"},
		{"World/.wtf", "World/", "", ".wtf"},
		{"World/Stormwind.", "World/", "Stormwind", "."},
		{"World/Stormwind", "World/", "Stormwind", ""},
		{"World/", "World/", "", ""},
		{"Stormwind.wmo", "", "Stormwind", ".wmo"},
		{"Stormwind", "", "Stormwind", ""},
		{".wtf", "", "", ".wtf"},
		{`World\wmo\Azeroth\Stormwind.wmo`, `World\wmo\Azeroth\`, "Stormwind", ".wmo"},
	}
	for _, tc := range tests {
		dir, stem, ext := Split(tc.name)
		if dir != tc.dir || stem != tc.stem || ext != tc.ext {
			t.Errorf("Split(%q): got (%q,%q,%q) want (%q,%q,%q)",
				tc.name, dir, stem, ext, tc.dir, tc.stem, tc.ext)
		}
	}
}

func testFS() *FS {
	return NewDirFS(MapDir{
		"World/Maps/Azeroth/Azeroth_32_48.adt": []byte("root"),
		"World/wmo/Stormwind.wmo":              []byte("wmo"),
	})
}

func TestOpenCaseInsensitive(t *testing.T) {
	fs := testFS()
	h, err := fs.Open(`WORLD\maps\azeroth\AZEROTH_32_48.ADT`)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer h.Close()
	b, err := io.ReadAll(h)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(b) != "root" {
		t.Errorf("contents: got %q want %q", b, "root")
	}
}

func TestOpenNotFound(t *testing.T) {
	fs := testFS()
	if _, err := fs.Open("World/Maps/Azeroth/Azeroth_00_00.adt"); err == nil {
		t.Error("expected not-found error")
	}
}

func TestExists(t *testing.T) {
	fs := testFS()
	ok, err := fs.Exists("world/WMO/stormwind.WMO")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if !ok {
		t.Error("expected resource to exist")
	}
	ok, err = fs.Exists("world/WMO/ironforge.wmo")
	if err != nil {
		t.Fatalf("exists failed: %v", err)
	}
	if ok {
		t.Error("expected resource to be missing")
	}
}
