package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterKeepsHeaderOrder(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Reference", "Amount"},
		Rows:    []map[string]string{{"Amount": "7,500.00", "Reference": "ref-1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Reference,Amount\nref-1,\"7,500.00\"\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterNeutralizesFormulas(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Customer", "Phone", "Note"},
		Rows:    []map[string]string{{"Customer": "=HYPERLINK(\"x\")", "Phone": "+234 801", "Note": "plain"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Customer,Phone,Note\n\"'=HYPERLINK(\"\"x\"\")\",'+234 801,plain\n", string(out))
}

func TestPDFExporterRendersTableAndReceipt(t *testing.T) {
	exporter := NewPDFExporter()
	table, err := exporter.Render(Dataset{
		Headers: []string{"Reference", "Status"},
		Rows:    []map[string]string{{"Reference": "ref-1", "Status": "pending"}},
	}, "Bank transfers")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(table, []byte("%PDF")))

	receipt, err := exporter.RenderReceipt(Receipt{
		Title:     "Payment receipt",
		Reference: "ref-1",
		Lines:     []ReceiptLine{{Description: "Go Basics", Amount: "5,000.00"}},
		Total:     "5,000.00",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(receipt, []byte("%PDF")))

	_, err = exporter.RenderReceipt(Receipt{})
	assert.Error(t, err)
}
