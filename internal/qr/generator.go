package qr

import (
	"fmt"
	"net/url"

	"github.com/skip2/go-qrcode"
)

type Generator interface {
	Generate(restaurantID int, orderingToken string) ([]byte, error)
}

// TableQRGenerator renders the table-tent code a guest scans to open the
// menu with a table-scoped ordering token.
type TableQRGenerator struct {
	BaseURL string
	Size    int
}

func (g TableQRGenerator) Generate(restaurantID int, orderingToken string) ([]byte, error) {
	size := g.Size
	if size <= 0 {
		size = 256
	}
	target := fmt.Sprintf("%s/menu?restaurant=%d&token=%s",
		g.BaseURL, restaurantID, url.QueryEscape(orderingToken))
	return qrcode.Encode(target, qrcode.Medium, size)
}

var _ Generator = TableQRGenerator{}
