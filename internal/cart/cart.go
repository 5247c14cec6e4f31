package cart

import (
	"github.com/oklog/ulid/v2"
)

// LineItem is a single cart entry. Price is stored in paisa (integer
// minor units) so totals never touch floating point.
type LineItem struct {
	ID              string            `json:"id"`
	LegacyID        string            `json:"_id,omitempty"`
	Title           string            `json:"title"`
	Image           string            `json:"image,omitempty"`
	PricePaisa      int64             `json:"price_paisa"`
	Quantity        int64             `json:"quantity"`
	CountInStock    int64             `json:"count_in_stock,omitempty"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}

// Key returns the merge identity of the item: its id (or legacy _id)
// plus the selected option set. Items with equal keys are the same
// line item and merge on add.
func (li LineItem) Key() string {
	id := li.ID
	if id == "" {
		id = li.LegacyID
	}
	return id + "|" + canonicalOptions(li.SelectedOptions)
}

func (li LineItem) matches(itemID string) bool {
	return li.ID == itemID || li.LegacyID == itemID
}

// OptionsEqual reports whether two option sets select the same
// variant. nil and empty maps are both "no variant" and compare equal.
func OptionsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

// AddItem merges candidate into list by (id, options) identity and
// returns the new list. A match increments quantity and preserves the
// existing entry's other fields (price and image are not refreshed).
// No match appends the candidate with options defaulted to an empty
// map. A candidate without any id gets a generated one so it is still
// insertable.
func AddItem(list []LineItem, candidate LineItem) []LineItem {
	if candidate.Quantity < 1 {
		candidate.Quantity = 1
	}
	if candidate.ID == "" && candidate.LegacyID == "" {
		candidate.ID = ulid.Make().String()
	}
	if candidate.ID == "" {
		candidate.ID = candidate.LegacyID
	}

	out := make([]LineItem, len(list))
	copy(out, list)

	for i, existing := range out {
		if existing.matches(candidate.ID) && OptionsEqual(existing.SelectedOptions, candidate.SelectedOptions) {
			out[i].Quantity += candidate.Quantity
			if out[i].CountInStock > 0 && out[i].Quantity > out[i].CountInStock {
				out[i].Quantity = out[i].CountInStock
			}
			return out
		}
	}

	if candidate.SelectedOptions == nil {
		candidate.SelectedOptions = map[string]string{}
	}
	if candidate.CountInStock > 0 && candidate.Quantity > candidate.CountInStock {
		candidate.Quantity = candidate.CountInStock
	}
	return append(out, candidate)
}

// UpdateQuantity sets the quantity of the entry matching itemID (by id
// or legacy _id). A target below 1 removes the entry instead of
// storing a zero.
func UpdateQuantity(list []LineItem, itemID string, quantity int64) []LineItem {
	if quantity < 1 {
		return RemoveItem(list, itemID)
	}

	out := make([]LineItem, len(list))
	copy(out, list)
	for i, existing := range out {
		if existing.matches(itemID) {
			if existing.CountInStock > 0 && quantity > existing.CountInStock {
				quantity = existing.CountInStock
			}
			out[i].Quantity = quantity
			break
		}
	}
	return out
}

// RemoveItem filters out every entry matching itemID by id or legacy _id.
func RemoveItem(list []LineItem, itemID string) []LineItem {
	out := make([]LineItem, 0, len(list))
	for _, existing := range list {
		if existing.matches(itemID) {
			continue
		}
		out = append(out, existing)
	}
	return out
}

// SubtotalPaisa returns the sum of price times quantity across the list.
func SubtotalPaisa(list []LineItem) int64 {
	var total int64
	for _, li := range list {
		total += li.PricePaisa * li.Quantity
	}
	return total
}

// ItemCount returns the total quantity across the list.
func ItemCount(list []LineItem) int64 {
	var count int64
	for _, li := range list {
		count += li.Quantity
	}
	return count
}
