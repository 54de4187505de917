package catalog

import (
	"fmt"
	"regexp"
	"strconv"
)

// DefaultStockQuantity is assumed when a stock descriptor carries no
// parseable quantity.
const DefaultStockQuantity = 10

var stockQuantityPattern = regexp.MustCompile(`\((\d+)\s*\w+\)`)

// FormatStock synthesizes the display stock descriptor from a structured
// quantity. An out-of-stock descriptor never implies purchasability.
func FormatStock(quantity int, unit string) string {
	if quantity > 0 {
		return fmt.Sprintf("In Stock (%d %s)", quantity, unit)
	}
	return "Out of Stock"
}

// ParseStockQuantity extracts the integer quantity from a stock descriptor
// such as "In Stock (50 kg)". Descriptors without a parenthesized quantity,
// including "Out of Stock", yield DefaultStockQuantity.
func ParseStockQuantity(stock string) int {
	match := stockQuantityPattern.FindStringSubmatch(stock)
	if match == nil {
		return DefaultStockQuantity
	}
	quantity, err := strconv.Atoi(match[1])
	if err != nil {
		return DefaultStockQuantity
	}
	return quantity
}
