package service

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"estate-api/internal/model"

	"github.com/go-pdf/fpdf"
)

// ContractSheet is everything printed on a contract
type ContractSheet struct {
	Contract model.Contract
	Property model.Property
	Owner    model.User
	Renter   model.User
}

type ContractRenderer interface {
	Render(sheet ContractSheet) ([]byte, error)
}

// PDFRenderer lays the contract out on a single A4 page in core Helvetica.
// Text is translated to cp1252, so accented Latin names print as written.
type PDFRenderer struct {
	// Leaves page streams readable
	Uncompressed bool
}

func (r PDFRenderer) Render(sheet ContractSheet) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!r.Uncompressed)
	pdf.SetTitle(fmt.Sprintf("Rental contract %d", sheet.Contract.ID), true)
	pdf.SetCreator("estate-api", false)

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "RENTAL CONTRACT", "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	for _, l := range contractLines(sheet) {
		if l == "" {
			pdf.Ln(4)
			continue
		}

		pdf.CellFormat(0, 7, tr(l), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func contractLines(sheet ContractSheet) []string {
	c := sheet.Contract
	p := sheet.Property

	return []string{
		fmt.Sprintf("Contract no. %d, status %s", c.ID, c.Status),
		fmt.Sprintf("Issued on %s", c.CreatedAt.UTC().Format(time.DateOnly)),
		"",
		"Property: " + p.Title,
		"Address: " + joinNonEmpty(", ", p.Address, p.City),
		fmt.Sprintf("Monthly price: %.2f", c.Price),
		"",
		"Owner: " + party(sheet.Owner),
		"Renter: " + party(sheet.Renter),
		"",
		"Signed: " + yesNo(c.IsSigned),
		"Notarized: " + yesNo(c.IsNotarized),
	}
}

func party(u model.User) string {
	if u.Email == "" {
		return u.Username
	}

	return fmt.Sprintf("%s <%s>", u.Username, u.Email)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, sep)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
