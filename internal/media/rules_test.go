package media

import (
	"testing"

	"github.com/caronelabs/mediad/internal/config"
)

func testRulesConfig() config.MediaConfig {
	return config.MediaConfig{
		EnabledKinds:     []string{"image", "video", "audio", "document"},
		BannedExtensions: []string{"exe", "bat", "cmd"},
	}
}

func TestRulesDefaultsPerKind(t *testing.T) {
	r := NewRules(testRulesConfig())

	if !r.ExtensionAllowed(KindImage, "jpg") || !r.ExtensionAllowed(KindImage, "webp") {
		t.Error("image defaults should allow jpg and webp")
	}
	if r.ExtensionAllowed(KindImage, "mp4") {
		t.Error("image must not allow mp4")
	}
	if !r.MimeAllowed(KindDocument, "application/pdf") {
		t.Error("document defaults should allow application/pdf")
	}
	if got := r.MaxSizeBytes(KindImage); got != 5120*1024 {
		t.Errorf("MaxSizeBytes(image) = %d, want %d", got, 5120*1024)
	}
}

func TestRulesOverrides(t *testing.T) {
	cfg := testRulesConfig()
	cfg.Validation = map[string]config.KindRule{
		"image": {Extensions: []string{"png"}, MaxSizeKB: 100},
	}
	r := NewRules(cfg)

	if r.ExtensionAllowed(KindImage, "jpg") {
		t.Error("override should drop jpg")
	}
	if !r.ExtensionAllowed(KindImage, "PNG") {
		t.Error("override should allow png case-insensitively")
	}
	if got := r.MaxSizeBytes(KindImage); got != 100*1024 {
		t.Errorf("MaxSizeBytes = %d, want %d", got, 100*1024)
	}
}

func TestRulesBannedAndEnabled(t *testing.T) {
	cfg := testRulesConfig()
	cfg.EnabledKinds = []string{"image", "document"}
	r := NewRules(cfg)

	if !r.ExtensionBanned(".EXE") {
		t.Error("banned list must normalize dot and case")
	}
	if r.KindEnabled(KindVideo) {
		t.Error("video should be disabled")
	}
	kinds := r.EnabledKinds()
	if len(kinds) != 2 || kinds[0] != KindImage || kinds[1] != KindDocument {
		t.Errorf("EnabledKinds = %v", kinds)
	}
}

func TestDetectKind(t *testing.T) {
	r := NewRules(testRulesConfig())
	tests := []struct {
		ext  string
		want Kind
	}{
		{"jpg", KindImage},
		{".PNG", KindImage},
		{"mp4", KindVideo},
		{"mp3", KindAudio},
		{"pdf", KindDocument},
	}
	for _, tt := range tests {
		got, err := r.DetectKind(tt.ext)
		if err != nil {
			t.Fatalf("DetectKind(%q): %v", tt.ext, err)
		}
		if got != tt.want {
			t.Errorf("DetectKind(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
	if _, err := r.DetectKind("xyz"); !IsValidation(err) {
		t.Errorf("DetectKind(xyz) err = %v, want validation error", err)
	}
}

func TestDetectKindHonorsOverrides(t *testing.T) {
	cfg := testRulesConfig()
	cfg.Validation = map[string]config.KindRule{
		"document": {Extensions: []string{"pdf", "md"}},
	}
	r := NewRules(cfg)

	got, err := r.DetectKind("md")
	if err != nil {
		t.Fatalf("DetectKind(md): %v", err)
	}
	if got != KindDocument {
		t.Errorf("DetectKind(md) = %q, want %q", got, KindDocument)
	}
	// The override replaces the list, so dropped defaults stop detecting.
	if _, err := r.DetectKind("docx"); !IsValidation(err) {
		t.Errorf("DetectKind(docx) err = %v, want validation error", err)
	}
}

func TestContentTypeForExtension(t *testing.T) {
	if got := ContentTypeForExtension("jpg"); got != "image/jpeg" {
		t.Errorf("jpg = %q", got)
	}
	if got := ContentTypeForExtension("bin"); got != DefaultContentType {
		t.Errorf("unknown = %q, want %q", got, DefaultContentType)
	}
}
