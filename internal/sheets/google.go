package sheets

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	serrors "github.com/aniketsandhanwootz-wq/wootz-summary/internal/errors"
)

// googleAPI is the production rowAPI backed by the Sheets v4 values API.
type googleAPI struct {
	svc         *sheetsv4.Service
	sheetID     string
	readRange   string
	appendRange string
}

// dialGoogle authenticates with a service account and opens the sheet.
func dialGoogle(ctx context.Context, cfg Config) (rowAPI, error) {
	conf := &jwt.Config{
		Email:      cfg.ServiceAccountEmail,
		PrivateKey: []byte(cfg.PrivateKey),
		Scopes:     []string{sheetsv4.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}

	svc, err := sheetsv4.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &googleAPI{
		svc:     svc,
		sheetID: cfg.SheetID,
		// Row 1 is the header.
		readRange:   fmt.Sprintf("%s!A2:F", cfg.SheetName),
		appendRange: fmt.Sprintf("%s!A:F", cfg.SheetName),
	}, nil
}

func (g *googleAPI) ReadRows(ctx context.Context) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.sheetID, g.readRange).Context(ctx).Do()
	if err != nil {
		return nil, wrapGoogleErr("read", err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		row := make([]string, len(r))
		for i, v := range r {
			row[i] = fmt.Sprint(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (g *googleAPI) AppendRow(ctx context.Context, row []string) error {
	vals := make([]interface{}, len(row))
	for i, v := range row {
		vals[i] = v
	}

	_, err := g.svc.Spreadsheets.Values.Append(g.sheetID, g.appendRange,
		&sheetsv4.ValueRange{Values: [][]interface{}{vals}}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return wrapGoogleErr("append", err)
	}
	return nil
}

func wrapGoogleErr(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return serrors.NewAPIError("sheets", gerr.Code, fmt.Sprintf("%s: %s", op, gerr.Message))
	}
	return fmt.Errorf("sheets %s: %w", op, err)
}
