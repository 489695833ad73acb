package converter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ginjaninja78/tax-invoice-generator/internal/filename"
	"github.com/ginjaninja78/tax-invoice-generator/internal/metadata"
	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
)

func TestAssemble(t *testing.T) {
	meta := &metadata.Metadata{GST: "10ABCDE1234F1Z5", VendorCode: "V-778"}
	place := metadata.Place{Name: "DMART", BillTo: "Avenue Supermarts Ltd", PlaceOfSupply: "Bihar", SiteCode: "D42"}
	parsed := filename.Parse("15467510000244_20250422_055526.xlsx")
	items := []types.LineItem{{ArticleCode: 1}, {ArticleCode: 2}}

	bill := Assemble(meta, place, 1001, parsed, items)

	want := types.BillRecord{
		GST:           "10ABCDE1234F1Z5",
		VendorCode:    "V-778",
		PO:            "15467510000244",
		DeliveryDate:  "22-04-2025",
		InvoiceNo:     "1001",
		BillTo:        "Avenue Supermarts Ltd",
		PlaceOfSupply: "Bihar",
		SiteCode:      "D42",
	}
	got := bill
	got.Items = nil
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Assemble() = %+v, want %+v", got, want)
	}
	if len(bill.Items) != 2 || bill.Items[1].ArticleCode != 2 {
		t.Errorf("items = %+v", bill.Items)
	}
}

func TestOutputStem(t *testing.T) {
	tests := []struct {
		name    string
		place   string
		date    string
		po      string
		want    string
		wantErr bool
	}{
		{"standard", "DMART", "22-04-2025", "15467510000244", "DMART_2025-04-22_15467510000244", false},
		{"new year", "RELIANCE", "01-01-2026", "PO1", "RELIANCE_2026-01-01_PO1", false},
		{"unavailable date", "DMART", filename.NotAvailable, "PO1", "", true},
		{"raw fallback date", "DMART", "notadate", "PO1", "", true},
		{"impossible date", "DMART", "31-02-2025", "PO1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OutputStem(tt.place, tt.date, tt.po)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDeliveryDate) {
					t.Fatalf("OutputStem() error = %v, want ErrInvalidDeliveryDate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("OutputStem() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("OutputStem() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFileDateStampRoundTrip(t *testing.T) {
	// A filename date survives parse, bill formatting and the output stamp.
	for _, raw := range []string{"20250422", "20241231", "20240229"} {
		parsed := filename.Parse("PO_" + raw + "_x.xlsx")
		stamp, err := FileDateStamp(parsed.DeliveryDate)
		if err != nil {
			t.Fatalf("FileDateStamp(%q) error = %v", parsed.DeliveryDate, err)
		}
		want := raw[:4] + "-" + raw[4:6] + "-" + raw[6:]
		if stamp != want {
			t.Errorf("FileDateStamp(%q) = %q, want %q", parsed.DeliveryDate, stamp, want)
		}
	}
}
