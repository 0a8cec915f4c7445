package entity

import "time"

// Client is one row of the roster: the name is the primary key, the link
// points at the client's price sheet in Google Sheets.
type Client struct {
	Name           string    `json:"name"`
	PriceSheetLink string    `json:"priceSheetLink"`
	CustomerNumber string    `json:"customerNumber"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ClientDetails is a client enriched with the resolved spreadsheet title.
// The title is empty when resolution is unavailable or failed.
type ClientDetails struct {
	Client
	SpreadsheetTitle string `json:"spreadsheetTitle"`
}
