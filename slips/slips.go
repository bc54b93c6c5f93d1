package slips

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"nailbar/db"
	"nailbar/globals"
	"nailbar/models"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

// QRPayload is what the front-desk scanner verifies at check-in:
// code|date|time|signature.
func QRPayload(code, date, clock string) string {
	data := fmt.Sprintf("%s|%s|%s", code, date, clock)
	h := hmac.New(sha256.New, globals.JwtSecret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// GET /api/bookings/code/:code/slip — printable appointment slip PDF.
func PrintSlip(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	code := ps.ByName("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var bk models.Booking
	if err := db.BookingsCollection.FindOne(ctx, bson.M{"code": code}).Decode(&bk); err != nil {
		http.Error(w, "booking not found", http.StatusNotFound)
		return
	}

	var slot models.Slot
	if err := db.SlotCollection.FindOne(ctx, bson.M{"slotid": bk.SlotID}).Decode(&slot); err != nil {
		http.Error(w, "booking slot missing; run recovery first", http.StatusConflict)
		return
	}

	var customerName string
	if bk.CustomerID != nil {
		var c models.Customer
		if err := db.CustomersCollection.FindOne(ctx, bson.M{"customerid": *bk.CustomerID}).Decode(&c); err == nil {
			customerName = c.Name
		}
	}

	qrPNG, err := qrcode.Encode(QRPayload(bk.Code, slot.Date, slot.Time), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Appointment Slip")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Booking: %s", bk.Code))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Service: %s", bk.ServiceType))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s  Time: %s", slot.Date, slot.Time))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Tech: %s", bk.TechID))
	pdf.Ln(8)
	if customerName != "" {
		pdf.Cell(0, 10, fmt.Sprintf("Customer: %s", customerName))
		pdf.Ln(8)
	}
	pdf.Cell(0, 10, fmt.Sprintf("Status: %s", bk.Status))
	pdf.Ln(12)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 20, pdf.GetY(), 50, 50, false, opts, 0, "")

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=slip-%s.pdf", bk.Code))
	if err := pdf.Output(w); err != nil {
		http.Error(w, "Failed to render PDF", http.StatusInternalServerError)
	}
}
