package badge

import (
	"testing"
)

func TestPixelSize(t *testing.T) {
	tests := []struct {
		name                          string
		width, proportion, resolution float64
		wantW, wantH                  int
	}{
		{"defaults", DefaultWidth, DefaultProportion, DefaultResolution, 750, 938},
		{"letter landscape certificate", 11, 8.5 / 11, 150, 1650, 1275},
		{"square", 1, 1, 100, 100, 100},
		{"zero width clamps", 0, 1.25, 300, 1, 1},
		{"negative resolution clamps", 2.5, 1.25, -300, 1, 1},
		{"zero proportion clamps height", 2, 0, 100, 200, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(1, "Team A", "")
			b.SetSize(tt.width, tt.proportion, tt.resolution)
			w, h := b.PixelSize()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("PixelSize() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	b := New(1, "Team A", "OSU")
	w, h := b.PixelSize()
	if w != 750 || h != 938 {
		t.Errorf("PixelSize() = %dx%d, want 750x938", w, h)
	}
	if b.Fit != FitWidth {
		t.Errorf("Fit = %v, want %v", b.Fit, FitWidth)
	}
	if b.Anchor != Middle {
		t.Errorf("Anchor = %v, want %v", b.Anchor, Middle)
	}
	if b.BackgroundColor.A != 0xff || b.TextColor.A != 0xff {
		t.Error("default colors should be opaque")
	}
}

func TestSetSizeBumpsRevision(t *testing.T) {
	b := New(1, "Team A", "")
	r0 := b.Revision()
	b.SetSize(3, 1, 200)
	if b.Revision() == r0 {
		t.Error("SetSize should change the revision")
	}
	r1 := b.Revision()
	b.SetSize(3, 1, 200)
	if b.Revision() == r1 {
		t.Error("SetSize with identical values should still change the revision")
	}
	if b.Height() != 3 {
		t.Errorf("Height() = %v, want 3", b.Height())
	}
}

func TestNumberText(t *testing.T) {
	tests := []struct {
		number int
		want   string
	}{
		{1, "01"},
		{12, "12"},
		{123, "123"},
		{0, "00"},
		{NoNumber, ""},
		{-5, ""},
	}
	for _, tt := range tests {
		b := New(tt.number, "x", "")
		if got := b.NumberText(); got != tt.want {
			t.Errorf("NumberText(%d) = %q, want %q", tt.number, got, tt.want)
		}
		if b.HasNumber() != (tt.number >= 0) {
			t.Errorf("HasNumber(%d) = %v", tt.number, b.HasNumber())
		}
	}
}

func TestExtraValue(t *testing.T) {
	b := New(1, "Team A", "")
	b.Extra = []string{
		"unrelated line",
		"text-participation::first",
		"  text-participation::won first place in the ",
		"other::x",
	}

	got, ok := b.ExtraValue("text-participation")
	if !ok {
		t.Fatal("ExtraValue should find the matching line")
	}
	if got != "won first place in the" {
		t.Errorf("ExtraValue() = %q", got)
	}

	if _, ok := b.ExtraValue("missing"); ok {
		t.Error("ExtraValue should report missing keys")
	}
}

func TestParseFit(t *testing.T) {
	tests := []struct {
		input   string
		want    Fit
		wantErr bool
	}{
		{"fit_width", FitWidth, false},
		{"FIT_HEIGHT", FitHeight, false},
		{"fit-height", FitHeight, false},
		{"fill", Fill, false},
		{"stretch", FitWidth, true},
	}
	for _, tt := range tests {
		got, err := ParseFit(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFit(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestAnchorOffsetY(t *testing.T) {
	tests := []struct {
		anchor Anchor
		want   int
	}{
		{Top, 0},
		{Bottom, 600},
		{Middle, 300},
	}
	for _, tt := range tests {
		if got := tt.anchor.OffsetY(1000, 400); got != tt.want {
			t.Errorf("%v.OffsetY() = %d, want %d", tt.anchor, got, tt.want)
		}
	}

	if a, err := ParseAnchor("Bottom"); err != nil || a != Bottom {
		t.Errorf("ParseAnchor(Bottom) = %v, %v", a, err)
	}
	if _, err := ParseAnchor("left"); err == nil {
		t.Error("ParseAnchor(left) should fail")
	}
}
