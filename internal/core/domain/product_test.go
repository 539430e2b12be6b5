package domain

import "testing"

func TestCategoryKindOf(t *testing.T) {
	tests := []struct {
		category string
		want     CategoryKind
	}{
		{"chemises", CategoryStandard},
		{"gros", CategoryBulk},
		{"Gros", CategoryBulk},
		{"En Gros", CategoryBulk},
		{"accessoires-gros", CategoryBulk},
		{"", CategoryStandard},
	}
	for _, tt := range tests {
		if got := CategoryKindOf(tt.category); got != tt.want {
			t.Errorf("CategoryKindOf(%q) = %v, want %v", tt.category, got, tt.want)
		}
	}
}

func TestAvailableSizesAndColors(t *testing.T) {
	p := Product{
		Variants: []Variant{
			{ID: "1", Size: "M", Color: "Bleu", Stock: 4},
			{ID: "2", Size: "M", Color: "Noir", Stock: 2},
			{ID: "3", Size: "L", Color: "Bleu", Stock: 0},
			{ID: "4", Size: "XL", Color: "Bleu", Stock: 1},
		},
	}

	sizes := p.AvailableSizes()
	if len(sizes) != 2 || sizes[0] != "M" || sizes[1] != "XL" {
		t.Errorf("unexpected sizes: %v", sizes)
	}

	colors := p.AvailableColors()
	if len(colors) != 2 || colors[0] != "Bleu" || colors[1] != "Noir" {
		t.Errorf("unexpected colors: %v", colors)
	}
}

func TestFindVariant(t *testing.T) {
	p := testProduct()

	v, ok := p.FindVariant("L", "Bleu")
	if !ok || v.ID != "v-2" {
		t.Errorf("expected v-2, got %v (ok=%v)", v.ID, ok)
	}
	if _, ok := p.FindVariant("L", "Rouge"); ok {
		t.Error("expected no match for unknown pair")
	}
}

func TestMainImage(t *testing.T) {
	if got := (Product{}).MainImage(); got != "" {
		t.Errorf("expected empty image, got %q", got)
	}
	if got := testProduct().MainImage(); got != "https://example.com/chemise.jpg" {
		t.Errorf("unexpected main image: %q", got)
	}
}
