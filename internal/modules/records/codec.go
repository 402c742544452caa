package records

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/turnips/internal/domain"
)

// encodePrices packs the price slots as a msgpack array of nullable ints.
func encodePrices(prices [domain.PriceSlots]domain.Price) ([]byte, error) {
	values := make([]*int, len(prices))
	for i, p := range prices {
		values[i] = p.Ptr()
	}
	data, err := msgpack.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("failed to encode prices: %w", err)
	}
	return data, nil
}

// decodePrices is the inverse of encodePrices. Extra slots are ignored and
// absent slots are missing.
func decodePrices(data []byte) ([domain.PriceSlots]domain.Price, error) {
	var prices [domain.PriceSlots]domain.Price
	var values []*int
	if err := msgpack.Unmarshal(data, &values); err != nil {
		return prices, fmt.Errorf("failed to decode prices: %w", err)
	}
	for i := 0; i < len(values) && i < domain.PriceSlots; i++ {
		prices[i] = domain.PriceFromPtr(values[i])
	}
	return prices, nil
}

func encodeCells(cells []string) ([]byte, error) {
	if cells == nil {
		cells = []string{}
	}
	data, err := msgpack.Marshal(cells)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cells: %w", err)
	}
	return data, nil
}

func decodeCells(data []byte) ([]string, error) {
	var cells []string
	if err := msgpack.Unmarshal(data, &cells); err != nil {
		return nil, fmt.Errorf("failed to decode cells: %w", err)
	}
	if cells == nil {
		cells = []string{}
	}
	return cells, nil
}
