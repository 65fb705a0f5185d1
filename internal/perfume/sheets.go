package perfume

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetAppender appends draw rows to a Google spreadsheet using a service
// account credentials file.
type SheetAppender struct {
	svc           *sheets.Service
	spreadsheetID string
	writeRange    string
}

func NewSheetAppender(ctx context.Context, credentialsPath, spreadsheetID, writeRange string) (*SheetAppender, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("init sheets service: %w", err)
	}
	return &SheetAppender{svc: svc, spreadsheetID: spreadsheetID, writeRange: writeRange}, nil
}

func (a *SheetAppender) AppendDraw(e Entry, at time.Time) error {
	values := &sheets.ValueRange{
		Values: [][]interface{}{{at.Format(time.RFC3339), e.Name, e.Description}},
	}
	_, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, a.writeRange, values).
		ValueInputOption("USER_ENTERED").
		Do()
	if err != nil {
		return fmt.Errorf("append draw row: %w", err)
	}
	return nil
}
