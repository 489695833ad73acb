package pdfwriter

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ginjaninja78/tax-invoice-generator/internal/types"
)

func lineItem(code int64, desc string, qty int64, rate string) types.LineItem {
	r := decimal.RequireFromString(rate)
	taxable := decimal.NewFromInt(qty).Mul(r).Round(2)
	return types.LineItem{
		ArticleCode:  code,
		HSNCode:      19059020,
		Description:  desc,
		Grammage:     "300 g",
		Quantity:     qty,
		Rate:         r,
		TaxableValue: taxable,
		TotalAmount:  taxable,
	}
}

func sampleBill(items int) types.BillRecord {
	bill := types.BillRecord{
		GST:           "10ABCDE1234F1Z5",
		VendorCode:    "V-778",
		PO:            "15467510000244",
		DeliveryDate:  "22-04-2025",
		InvoiceNo:     "1001",
		BillTo:        "Avenue Supermarts Ltd\nBegusarai",
		PlaceOfSupply: "Bihar",
		SiteCode:      "D42",
	}
	for i := 0; i < items; i++ {
		bill.Items = append(bill.Items, lineItem(590001234+int64(i), fmt.Sprintf("Rusk Premium %d", i), 100, "45.5"))
	}
	return bill
}

var testOptions = Options{CompanyName: "A.G AGRO", CompanyAddress: "TEGHRA,BEGUSARAI-851133"}

// renderPlain renders without stream compression so text operators are searchable.
func renderPlain(t *testing.T, bill types.BillRecord) []byte {
	t.Helper()

	pdf := build(bill, testOptions)
	pdf.SetCompression(false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	return buf.Bytes()
}

func pageCount(pdf []byte) int {
	return bytes.Count(pdf, []byte("<</Type /Page\n"))
}

func shown(text string) []byte {
	return []byte("(" + text + ")Tj")
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(sampleBill(3), &buf, testOptions); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not start with a PDF header: %q", buf.Bytes()[:8])
	}
}

func TestRenderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "DMART_2025-04-22_15467510000244.pdf")
	if err := Render(sampleBill(3), path, testOptions); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("rendered file is not a PDF")
	}
}

func TestRenderText(t *testing.T) {
	out := renderPlain(t, sampleBill(2))

	for _, want := range []string{
		"TAX INVOICE",
		"A.G AGRO",
		"BILL TO",
		"PLACE OF SUPPLY",
		"INVOICE NO: 1001",
		"DATE: 22-04-2025",
		"VENDOR: V-778",
		"SITE CODE: D42",
		"GST: 10ABCDE1234F1Z5",
		"PO-15467510000244",
		"590001234",
		"4,550.00",
		"9,100.00",
		"0.00%",
		types.SubTotalLabel,
		types.ThankYouLine,
		types.SignatureLine,
	} {
		if !bytes.Contains(out, shown(want)) {
			t.Errorf("PDF does not show %q", want)
		}
	}

	if got := pageCount(out); got != 1 {
		t.Errorf("pages = %d, want 1", got)
	}
}

func TestRenderRepeatsTableHeader(t *testing.T) {
	out := renderPlain(t, sampleBill(80))

	pages := pageCount(out)
	if pages < 2 {
		t.Fatalf("pages = %d, want a multi-page invoice", pages)
	}

	headers := bytes.Count(out, shown(types.ItemHeaders[0]))
	if headers < pages-1 || headers < 2 {
		t.Errorf("table header shown %d times over %d pages", headers, pages)
	}

	if !bytes.Contains(out, shown("Rusk Premium 79")) {
		t.Error("last item missing")
	}
}

func TestRenderNoItems(t *testing.T) {
	out := renderPlain(t, sampleBill(0))

	if !bytes.Contains(out, shown(types.SubTotalLabel)) {
		t.Error("Sub Total row missing on an empty bill")
	}
	if !bytes.Contains(out, shown("0.00")) {
		t.Error("empty bill totals are not zero")
	}
}

func TestNumberFormatting(t *testing.T) {
	d := &document{printer: message.NewPrinter(language.English)}

	amounts := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"38.5", "38.50"},
		{"1234.5", "1,234.50"},
		{"1234567.891", "1,234,567.89"},
		{"-42", "-42.00"},
	}
	for _, tt := range amounts {
		if got := d.amount(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("amount(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}

	rates := []struct {
		in   string
		want string
	}{
		{"0", "0.00%"},
		{"0.09", "9.00%"},
		{"0.125", "12.50%"},
	}
	for _, tt := range rates {
		if got := percent(decimal.RequireFromString(tt.in)); got != tt.want {
			t.Errorf("percent(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
