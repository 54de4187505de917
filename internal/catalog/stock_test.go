package catalog

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParseStockQuantity(t *testing.T) {
	cases := []struct {
		stock string
		want  int
	}{
		{"In Stock (50 kg)", 50},
		{"In Stock (7 piece)", 7},
		{"In Stock (100 kg)", 100},
		{"Out of Stock", DefaultStockQuantity},
		{"In Stock", DefaultStockQuantity},
		{"", DefaultStockQuantity},
		{"(12 dozen)", 12},
	}

	for _, tc := range cases {
		if got := ParseStockQuantity(tc.stock); got != tc.want {
			t.Errorf("ParseStockQuantity(%q) = %d, want %d", tc.stock, got, tc.want)
		}
	}
}

func TestFormatStock(t *testing.T) {
	if got := FormatStock(50, "kg"); got != "In Stock (50 kg)" {
		t.Errorf("FormatStock(50, kg) = %q", got)
	}
	if got := FormatStock(0, "kg"); got != "Out of Stock" {
		t.Errorf("FormatStock(0, kg) = %q", got)
	}
	if got := FormatStock(-3, "piece"); got != "Out of Stock" {
		t.Errorf("FormatStock(-3, piece) = %q", got)
	}
}

func TestProperty_StockDescriptorRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("formatting a positive quantity then parsing recovers it", prop.ForAll(
		func(quantity int) bool {
			return ParseStockQuantity(FormatStock(quantity, "kg")) == quantity
		},
		gen.IntRange(1, 1_000_000),
	))

	properties.Property("non-positive quantities format to a non-purchasable descriptor", prop.ForAll(
		func(quantity int) bool {
			return FormatStock(quantity, "kg") == "Out of Stock"
		},
		gen.IntRange(-1_000_000, 0),
	))

	properties.TestingRun(t)
}
