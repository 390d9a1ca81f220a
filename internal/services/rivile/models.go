package rivile

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// EntryList decodes a JSON field that holds either an array of records
// or a single bare record. The Rivile API collapses one-element lists
// into the element itself, so the shape is resolved here, once, and
// never leaks past this package. Absent/null input decodes to an empty
// list.
type EntryList []json.RawMessage

func (l *EntryList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	// bare object: wrap into a one-element list
	*l = EntryList{json.RawMessage(data)}
	return nil
}

// First decodes the first entry into out. Returns false when the list
// is empty or the entry is not a record.
func (l EntryList) First(out interface{}) bool {
	if len(l) == 0 {
		return false
	}
	return json.Unmarshal(l[0], out) == nil
}

// FlexString accepts a JSON string or number. The API is inconsistent
// about quoting scalar values.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	*s = FlexString(data)
	return nil
}

// FlexInt accepts a JSON number or numeric string; anything else
// (including fractions of a unit) truncates to an integer, defaulting
// to zero.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &v); err != nil {
			*i = 0
			return nil
		}
	} else {
		v = string(data)
	}
	v = strings.TrimSpace(v)
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*i = FlexInt(int(f))
	} else {
		*i = 0
	}
	return nil
}

// RawProduct is one record of the paginated N17 product feed.
type RawProduct struct {
	Code           string    `json:"N17_KODAS_PS"`
	Title          string    `json:"N17_PAVU"`
	GroupCode      string    `json:"N17_KODAS_GS"`
	CollectionCode string    `json:"N17_KODAS_LS_3"`
	BrandCode      string    `json:"N17_KODAS_LS_4"`
	Image          string    `json:"N17_pav_k3"`
	Variants       EntryList `json:"I33"`
	Links          EntryList `json:"N37"`
}

// Valid reports whether the record carries everything a Shopify product
// needs: at least one variant and one description link, plus the four
// identifying scalars. Invalid records are skipped, never persisted
// with placeholders.
func (p *RawProduct) Valid() bool {
	return len(p.Variants) > 0 && len(p.Links) > 0 &&
		p.Code != "" && p.Title != "" &&
		p.GroupCode != "" && p.BrandCode != ""
}

// RawVariant is one I33 sub-record of a product.
type RawVariant struct {
	Option      FlexString `json:"I33_KODAS_US"`
	Price       FlexString `json:"I33_KAINA"`
	SKU         FlexString `json:"I33_KODAS_PS"`
	VariantCode FlexString `json:"I33_KODAS_IS"`
}

// ProductPage is one page of the product feed. An empty Products list
// signals the end of pagination.
type ProductPage struct {
	Products EntryList `json:"N17"`
}

// CollectionDetails is the N35 record describing a product's collection.
type CollectionDetails struct {
	Title       string
	Description string
}
