package gofont

import (
	"testing"

	"github.com/forenoonwatch/richtext/font"
	"github.com/forenoonwatch/richtext/internal/uax24"
)

func TestCollectionIsMemoized(t *testing.T) {
	if Collection() != Collection() {
		t.Fatal("Collection() must return the same instance on repeat calls")
	}
}

func TestCollectionCoversLatinText(t *testing.T) {
	reg := font.NewCollectionRegistry(Collection())
	text := "hello"
	offset := 0
	ssf, err := reg.GetSubFont(font.Font{}, text, &offset, len(text), uax24.Common, false, false, false)
	if err != nil {
		t.Fatalf("GetSubFont: %v", err)
	}
	if offset != len(text) {
		t.Fatalf("offset = %d, want %d", offset, len(text))
	}
	if ssf.Face == nil {
		t.Fatal("GetSubFont returned a nil Face for Latin text")
	}
}

func TestCollectionCoversArabicText(t *testing.T) {
	reg := font.NewCollectionRegistry(Collection())
	text := "السلام"
	offset := 0
	ssf, err := reg.GetSubFont(font.Font{}, text, &offset, len(text), uax24.Common, false, false, false)
	if err != nil {
		t.Fatalf("GetSubFont: %v", err)
	}
	if offset == 0 {
		t.Fatal("GetSubFont made no progress over Arabic text")
	}
	if ssf.Face == nil {
		t.Fatal("GetSubFont returned a nil Face for Arabic text")
	}
}
