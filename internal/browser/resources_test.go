package browser

import (
	"testing"

	"github.com/go-rod/rod/lib/proto"
)

func TestBlockedTypes_Aliases(t *testing.T) {
	got := blockedTypes([]string{"Images", " fonts ", "media", "stylesheets"})
	for _, want := range []proto.NetworkResourceType{
		proto.NetworkResourceTypeImage,
		proto.NetworkResourceTypeFont,
		proto.NetworkResourceTypeMedia,
		proto.NetworkResourceTypeStylesheet,
	} {
		if !got[want] {
			t.Errorf("missing %s", want)
		}
	}
	if len(got) != 4 {
		t.Errorf("got %d types, want 4", len(got))
	}
}

func TestBlockedTypes_RawNames(t *testing.T) {
	got := blockedTypes([]string{"script", "XHR", "", "unknown"})
	if !got[proto.NetworkResourceTypeScript] || !got[proto.NetworkResourceTypeXHR] {
		t.Errorf("raw names not resolved: %v", got)
	}
	if len(got) != 2 {
		t.Errorf("got %d types, want 2", len(got))
	}
}

func TestConfigDefaults(t *testing.T) {
	m := NewManager(Config{})
	if m.cfg.Stealth != LevelHeadless {
		t.Errorf("Stealth: got %v", m.cfg.Stealth)
	}
	if m.cfg.NavigationTimeout == 0 || m.cfg.SelectorTimeout == 0 {
		t.Error("timeouts not defaulted")
	}
	if m.cfg.Logger == nil {
		t.Error("logger not defaulted")
	}
}

func TestManager_NewPageBeforeStart(t *testing.T) {
	m := NewManager(Config{})
	if _, err := m.NewPage(t.Context()); err == nil {
		t.Fatal("expected error without a started browser")
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := m.Start(t.Context()); err == nil {
		t.Fatal("expected error starting a closed manager")
	}
}
